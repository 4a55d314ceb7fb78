package forecast

import (
	"time"

	"restobackend/internal/domain"
)

// AggregateConsumption sums the ingredient quantity implied by completed
// sales, keyed by ingredient id. Items whose product is missing from the
// snapshot or has no recipe contribute nothing.
func AggregateConsumption(sales []domain.Sale, products map[int64]domain.Product) map[int64]float64 {
	consumed := make(map[int64]float64)
	for _, sale := range sales {
		if sale.Status != domain.StatusCompleted {
			continue
		}
		for _, item := range sale.Items {
			product, ok := products[item.ProductID]
			if !ok {
				continue
			}
			for _, line := range product.Recipe {
				consumed[line.IngredientID] += line.Quantity * float64(item.Quantity)
			}
		}
	}
	return consumed
}

// EarliestCompleted returns the creation time of the oldest completed sale.
func EarliestCompleted(sales []domain.Sale) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, sale := range sales {
		if sale.Status != domain.StatusCompleted {
			continue
		}
		if !found || sale.CreatedAt.Before(earliest) {
			earliest = sale.CreatedAt
			found = true
		}
	}
	return earliest, found
}

// CountCompleted counts sales in the COMPLETED state.
func CountCompleted(sales []domain.Sale) int {
	count := 0
	for _, sale := range sales {
		if sale.Status == domain.StatusCompleted {
			count++
		}
	}
	return count
}

// DaysActive is the number of whole days (rounded up) between the earliest
// observed sale and now, never less than one.
func DaysActive(earliest, now time.Time) int {
	elapsed := now.Sub(earliest)
	if elapsed <= 0 {
		return 1
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}
