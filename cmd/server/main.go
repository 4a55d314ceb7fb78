package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"restobackend/internal/config"
	httpapi "restobackend/internal/http"
	"restobackend/internal/kitchen"
	"restobackend/internal/logging"
	"restobackend/internal/service"
	"restobackend/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database error", zap.Error(err))
	}
	defer closeStore()

	svc := service.New(store, logger, service.WithSettings(service.Settings{
		LookbackDays:     cfg.LookbackDays,
		TargetMargin:     cfg.TargetMarginPercent,
		TargetDailySales: cfg.TargetDailySales,
		Estimator: kitchen.SerialLine{
			SetupMinutes:   cfg.KitchenSetupMinutes,
			PerUnitMinutes: cfg.KitchenPerUnitMinutes,
		},
	}))
	handler := httpapi.NewHandler(svc)
	router := httpapi.NewRouter(handler, logger)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("backend listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("force close failed", zap.Error(closeErr))
		}
	}
}
