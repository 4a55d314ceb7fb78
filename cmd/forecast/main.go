package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"restobackend/internal/config"
	"restobackend/internal/excel"
	"restobackend/internal/kitchen"
	"restobackend/internal/logging"
	"restobackend/internal/service"
	"restobackend/internal/storage"

	"go.uber.org/zap"
)

type options struct {
	importPath   string
	xlsxPath     string
	lookbackDays int
	health       bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if opts.lookbackDays > 0 {
		cfg.LookbackDays = opts.lookbackDays
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

	if err := run(ctx, svc, opts); err != nil {
		logger.Fatal("forecast failed", zap.Error(err))
	}
}

func run(ctx context.Context, svc *service.Service, opts options) error {
	if opts.importPath != "" {
		file, err := os.Open(opts.importPath)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		rows, err := excel.ParseIngredientRows(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("parse import file: %w", err)
		}
		if _, err := svc.ImportIngredientStock(ctx, rows); err != nil {
			return err
		}
	}

	if opts.xlsxPath != "" {
		out, err := os.Create(opts.xlsxPath)
		if err != nil {
			return fmt.Errorf("create workbook: %w", err)
		}
		if err := svc.ExportForecastWorkbook(ctx, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}

	var payload any
	if opts.health {
		score, err := svc.HealthScore(ctx)
		if err != nil {
			return err
		}
		payload = score
	} else {
		result, err := svc.DepletionForecast(ctx)
		if err != nil {
			return err
		}
		payload = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func parseFlags() options {
	var opts options
	flag.StringVar(
		&opts.importPath,
		"import",
		"",
		"optional ingredient stock spreadsheet to import before forecasting",
	)
	flag.StringVar(
		&opts.xlsxPath,
		"xlsx",
		"",
		"write the forecast workbook to this path instead of printing JSON",
	)
	flag.IntVar(
		&opts.lookbackDays,
		"lookback",
		0,
		"override FORECAST_LOOKBACK_DAYS",
	)
	flag.BoolVar(
		&opts.health,
		"health",
		false,
		"print the health score instead of the depletion forecast",
	)
	flag.Parse()
	if opts.lookbackDays < 0 {
		log.Fatalf("invalid --lookback: %d", opts.lookbackDays)
	}
	return opts
}
