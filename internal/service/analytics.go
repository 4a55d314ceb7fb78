package service

import (
	"context"
	"fmt"
	"time"

	"restobackend/internal/domain"
	"restobackend/internal/forecast"
	"restobackend/internal/health"
	"restobackend/internal/profit"

	"go.uber.org/zap"
)

type catalog struct {
	products    map[int64]domain.Product
	ingredients []domain.Ingredient
	rates       profit.RateTable
}

func (c catalog) ingredientIndex() map[int64]domain.Ingredient {
	return domain.IngredientIndex(c.ingredients)
}

func (s *Service) loadCatalog(ctx context.Context, withRates bool) (catalog, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("load products: %w", err)
	}
	ingredients, err := s.store.ListIngredients(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("load ingredients: %w", err)
	}
	snapshot := catalog{
		products:    domain.ProductIndex(products),
		ingredients: ingredients,
	}
	if withRates {
		configs, err := s.store.ListPlatformConfigs(ctx)
		if err != nil {
			return catalog{}, fmt.Errorf("load platform configs: %w", err)
		}
		snapshot.rates = profit.NewRateTable(configs)
	}
	return snapshot, nil
}

func (s *Service) lookbackWindow() (time.Time, time.Time) {
	now := s.now()
	return now.AddDate(0, 0, -s.settings.LookbackDays), now
}

// DepletionForecast projects ingredient coverage from the completed sales
// of the lookback window.
func (s *Service) DepletionForecast(ctx context.Context) (forecast.Forecast, error) {
	from, now := s.lookbackWindow()
	sales, err := s.store.ListSalesBetween(ctx, from, now, domain.StatusCompleted)
	if err != nil {
		return forecast.Forecast{}, s.fail("depletion forecast", fmt.Errorf("load sales: %w", err))
	}
	snapshot, err := s.loadCatalog(ctx, false)
	if err != nil {
		return forecast.Forecast{}, s.fail("depletion forecast", err)
	}

	result := forecast.Predict(forecast.PredictInput{
		Now:         now,
		WindowDays:  s.settings.LookbackDays,
		Sales:       sales,
		Products:    snapshot.products,
		Ingredients: snapshot.ingredients,
	})
	if result.InsufficientData {
		s.logger.Info("depletion forecast has no completed sales in window",
			zap.Int("window_days", s.settings.LookbackDays))
	}
	return result, nil
}

// PeriodProfit sums revenue, recipe cost and commission of completed sales
// created in [from, to].
func (s *Service) PeriodProfit(ctx context.Context, from, to time.Time) (profit.PeriodSummary, error) {
	if to.Before(from) {
		return profit.PeriodSummary{}, fmt.Errorf("%w: period end is before its start", ErrInvalidInput)
	}
	sales, err := s.store.ListSalesBetween(ctx, from, to, domain.StatusCompleted)
	if err != nil {
		return profit.PeriodSummary{}, s.fail("period profit", fmt.Errorf("load sales: %w", err))
	}
	snapshot, err := s.loadCatalog(ctx, true)
	if err != nil {
		return profit.PeriodSummary{}, s.fail("period profit", err)
	}
	return profit.Period(from, to, sales, snapshot.products, snapshot.ingredientIndex(), snapshot.rates), nil
}

// ItemProfit breaks down revenue, cost and apportioned commission of one
// product within a sale.
func (s *Service) ItemProfit(ctx context.Context, saleID, productID int64) (profit.ItemBreakdown, error) {
	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return profit.ItemBreakdown{}, s.fail("item profit", fmt.Errorf("load sale %d: %w", saleID, err), zap.Int64("sale_id", saleID))
	}
	snapshot, err := s.loadCatalog(ctx, true)
	if err != nil {
		return profit.ItemBreakdown{}, s.fail("item profit", err, zap.Int64("sale_id", saleID))
	}
	return profit.Attribute(*sale, productID, snapshot.products, snapshot.ingredientIndex(), snapshot.rates)
}

// HealthScore combines the lookback margin, low-stock ingredients and the
// average number of completed sales per active day.
func (s *Service) HealthScore(ctx context.Context) (health.Score, error) {
	from, now := s.lookbackWindow()
	sales, err := s.store.ListSalesBetween(ctx, from, now, domain.StatusCompleted)
	if err != nil {
		return health.Score{}, s.fail("health score", fmt.Errorf("load sales: %w", err))
	}
	snapshot, err := s.loadCatalog(ctx, true)
	if err != nil {
		return health.Score{}, s.fail("health score", err)
	}

	period := profit.Period(from, now, sales, snapshot.products, snapshot.ingredientIndex(), snapshot.rates)

	lowStock := 0
	for _, ing := range snapshot.ingredients {
		if ing.IsLowStock() {
			lowStock++
		}
	}

	avgDaily := 0.0
	if earliest, ok := forecast.EarliestCompleted(sales); ok {
		avgDaily = float64(forecast.CountCompleted(sales)) / float64(forecast.DaysActive(earliest, now))
	}

	return health.Compose(health.Input{
		MarginPercent:    period.MarginPercent,
		TargetMargin:     s.settings.TargetMargin,
		LowStockCount:    lowStock,
		TotalIngredients: len(snapshot.ingredients),
		AvgDailySales:    avgDaily,
		TargetDailySales: s.settings.TargetDailySales,
	}), nil
}
