package kitchen

import (
	"sort"
	"time"

	"restobackend/internal/domain"
)

const UnknownProductLabel = "Unknown product"

// Estimator turns the active order queue into an expected wait in minutes.
type Estimator interface {
	EstimateMinutes(orders []domain.Sale) int
}

// SerialLine models one preparation line working orders one after the
// other: a fixed setup per order plus a cost per unit.
type SerialLine struct {
	SetupMinutes   int
	PerUnitMinutes int
}

func DefaultSerialLine() SerialLine {
	return SerialLine{SetupMinutes: 5, PerUnitMinutes: 2}
}

func (l SerialLine) EstimateMinutes(orders []domain.Sale) int {
	total := 0
	for _, order := range orders {
		total += l.SetupMinutes + l.PerUnitMinutes*order.Units()
	}
	return total
}

// ActiveOrders keeps the orders the kitchen still has to prepare.
func ActiveOrders(orders []domain.Sale) []domain.Sale {
	active := make([]domain.Sale, 0, len(orders))
	for _, order := range orders {
		if order.Status.Active() {
			active = append(active, order)
		}
	}
	return active
}

// Overview builds the kitchen board for the active orders, oldest first.
func Overview(now time.Time, orders []domain.Sale, products map[int64]domain.Product, estimator Estimator) domain.KitchenOverview {
	if estimator == nil {
		estimator = DefaultSerialLine()
	}
	active := ActiveOrders(orders)
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	board := make([]domain.KitchenOrder, 0, len(active))
	for _, order := range active {
		board = append(board, domain.KitchenOrder{
			SaleID:         order.ID,
			Status:         order.Status,
			ClientName:     order.ClientName,
			Channel:        domain.NormalizeChannel(order.Channel),
			CreatedAt:      order.CreatedAt,
			MinutesWaiting: MinutesWaiting(order.CreatedAt, now),
			Items:          resolveItems(order.Items, products),
		})
	}

	return domain.KitchenOverview{
		Orders:            board,
		ActiveOrders:      len(board),
		EstimatedWaitTime: estimator.EstimateMinutes(active),
	}
}

// MinutesWaiting is the whole number of minutes elapsed since creation.
func MinutesWaiting(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

func resolveItems(items []domain.SaleItem, products map[int64]domain.Product) []domain.KitchenItem {
	resolved := make([]domain.KitchenItem, 0, len(items))
	for _, item := range items {
		name := UnknownProductLabel
		if product, ok := products[item.ProductID]; ok && product.Name != "" {
			name = product.Name
		}
		resolved = append(resolved, domain.KitchenItem{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
		})
	}
	return resolved
}
