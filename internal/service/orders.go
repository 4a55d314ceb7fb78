package service

import (
	"context"
	"fmt"

	"restobackend/internal/domain"
	"restobackend/internal/kitchen"

	"go.uber.org/zap"
)

// KitchenOverview lists the orders waiting on the kitchen with the
// estimated wait for the whole queue.
func (s *Service) KitchenOverview(ctx context.Context) (domain.KitchenOverview, error) {
	orders, err := s.store.ListSalesByStatus(ctx, domain.StatusPending, domain.StatusInProgress)
	if err != nil {
		return domain.KitchenOverview{}, s.fail("kitchen overview", fmt.Errorf("load active orders: %w", err))
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return domain.KitchenOverview{}, s.fail("kitchen overview", fmt.Errorf("load products: %w", err))
	}
	return kitchen.Overview(s.now(), orders, domain.ProductIndex(products), s.settings.Estimator), nil
}

// AdvanceOrder moves an order one step forward on the kitchen board.
func (s *Service) AdvanceOrder(ctx context.Context, saleID int64) (domain.OrderStatus, error) {
	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return "", s.fail("advance order", fmt.Errorf("load sale %d: %w", saleID, err), zap.Int64("sale_id", saleID))
	}
	next, err := domain.Advance(sale.Status)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateSaleStatus(ctx, saleID, sale.Status, next); err != nil {
		return "", s.fail("advance order", fmt.Errorf("update sale %d: %w", saleID, err), zap.Int64("sale_id", saleID))
	}
	s.logger.Info("order advanced",
		zap.Int64("sale_id", saleID),
		zap.String("from", string(sale.Status)),
		zap.String("to", string(next)))
	return next, nil
}

// RefundSale marks a non-terminal sale as refunded.
func (s *Service) RefundSale(ctx context.Context, saleID int64) error {
	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return s.fail("refund sale", fmt.Errorf("load sale %d: %w", saleID, err), zap.Int64("sale_id", saleID))
	}
	if !domain.CanRefund(sale.Status) {
		return fmt.Errorf("sale %d in %s: %w", saleID, sale.Status, domain.ErrNotRefundable)
	}
	if err := s.store.UpdateSaleStatus(ctx, saleID, sale.Status, domain.StatusRefunded); err != nil {
		return s.fail("refund sale", fmt.Errorf("update sale %d: %w", saleID, err), zap.Int64("sale_id", saleID))
	}
	s.logger.Info("sale refunded", zap.Int64("sale_id", saleID), zap.String("from", string(sale.Status)))
	return nil
}

// RecordSale stores a checkout with its line items.
func (s *Service) RecordSale(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	if len(sale.Items) == 0 {
		return domain.Sale{}, fmt.Errorf("%w: sale requires at least one item", ErrInvalidInput)
	}
	for idx, item := range sale.Items {
		if err := item.Validate(); err != nil {
			return domain.Sale{}, fmt.Errorf("%w: item %d: %v", ErrInvalidInput, idx+1, err)
		}
	}
	if sale.Status == "" {
		sale.Status = domain.StatusPending
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = s.now()
	}
	if sale.Total == 0 {
		for _, item := range sale.Items {
			sale.Total += item.Revenue()
		}
	}
	created, err := s.store.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, s.fail("record sale", err)
	}
	return created, nil
}
