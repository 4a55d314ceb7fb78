package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(handler *Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/forecast/depletion", handler.DepletionForecast)
		r.Get("/forecast/depletion.xlsx", handler.DepletionWorkbook)

		r.Get("/kitchen", handler.KitchenOverview)
		r.Post("/sales", handler.RecordSale)
		r.Post("/orders/{id}/advance", handler.AdvanceOrder)
		r.Post("/orders/{id}/refund", handler.RefundOrder)

		r.Get("/sales/{id}/items/{productID}/profit", handler.ItemProfit)
		r.Get("/analytics/profit", handler.PeriodProfit)
		r.Get("/analytics/health", handler.HealthScore)

		r.Post("/ingredients/{id}/waste", handler.LogWaste)
		r.Post("/ingredients/import-excel", handler.ImportIngredientsExcel)
	})

	return r
}
