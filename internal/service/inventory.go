package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"restobackend/internal/domain"
	"restobackend/internal/excel"

	"go.uber.org/zap"
)

// LogWaste writes off spoiled or discarded stock. The resulting stock is not
// clamped and may go negative.
func (s *Service) LogWaste(ctx context.Context, ingredientID int64, quantity float64, reason string) (domain.Ingredient, error) {
	if quantity <= 0 {
		return domain.Ingredient{}, fmt.Errorf("%w: waste quantity must be positive", ErrInvalidInput)
	}
	updated, err := s.store.AdjustIngredientStock(ctx, ingredientID, -quantity)
	if err != nil {
		return domain.Ingredient{}, s.fail("log waste", fmt.Errorf("adjust ingredient %d: %w", ingredientID, err),
			zap.Int64("ingredient_id", ingredientID))
	}
	s.logger.Info("waste logged",
		zap.Int64("ingredient_id", ingredientID),
		zap.Float64("quantity", quantity),
		zap.String("reason", strings.TrimSpace(reason)),
		zap.Float64("stock", updated.Stock))
	return *updated, nil
}

// ExportForecastWorkbook writes the depletion forecast and the lookback
// period profit as an xlsx workbook.
func (s *Service) ExportForecastWorkbook(ctx context.Context, w io.Writer) error {
	result, err := s.DepletionForecast(ctx)
	if err != nil {
		return err
	}
	from, to := s.lookbackWindow()
	summary, err := s.PeriodProfit(ctx, from, to)
	if err != nil {
		return err
	}
	if err := excel.WriteForecastWorkbook(w, result, &summary); err != nil {
		return s.fail("export forecast workbook", err)
	}
	return nil
}

// ImportIngredientStock applies a stock count, creating ingredients that do
// not exist yet.
func (s *Service) ImportIngredientStock(ctx context.Context, rows []domain.IngredientStockRow) (int, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no rows to import", ErrInvalidInput)
	}
	for idx, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			return 0, fmt.Errorf("%w: row %d: name is required", ErrInvalidInput, idx+1)
		}
		if row.MinStock != nil && *row.MinStock < 0 {
			return 0, fmt.Errorf("%w: row %d: min_stock cannot be negative", ErrInvalidInput, idx+1)
		}
		if row.CostPerUnit != nil && *row.CostPerUnit < 0 {
			return 0, fmt.Errorf("%w: row %d: cost_per_unit cannot be negative", ErrInvalidInput, idx+1)
		}
	}
	count, err := s.store.UpsertIngredients(ctx, rows)
	if err != nil {
		return 0, s.fail("import ingredient stock", err, zap.Int("rows", len(rows)))
	}
	s.logger.Info("ingredient stock imported", zap.Int("rows", count))
	return count, nil
}
