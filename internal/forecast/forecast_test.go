package forecast

import (
	"encoding/json"
	"testing"
	"time"

	"restobackend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const (
	cheddarID int64 = 1
	breadID   int64 = 2
	burgerID  int64 = 10
	sodaID    int64 = 11
)

func products() map[int64]domain.Product {
	return domain.ProductIndex([]domain.Product{
		{
			ID:   burgerID,
			Name: "Cheeseburger",
			Recipe: []domain.RecipeItem{
				{ProductID: burgerID, IngredientID: cheddarID, Quantity: 0.1},
				{ProductID: burgerID, IngredientID: breadID, Quantity: 1},
			},
		},
		{ID: sodaID, Name: "Soda"},
	})
}

func sale(id int64, status domain.OrderStatus, at time.Time, items ...domain.SaleItem) domain.Sale {
	return domain.Sale{ID: id, Status: status, CreatedAt: at, Items: items}
}

func item(productID int64, qty int) domain.SaleItem {
	return domain.SaleItem{ProductID: productID, Quantity: qty, UnitPrice: 10}
}

func TestAggregateConsumption(t *testing.T) {
	sales := []domain.Sale{
		sale(1, domain.StatusCompleted, now, item(burgerID, 2), item(sodaID, 5)),
		sale(2, domain.StatusCompleted, now, item(burgerID, 1)),
		sale(3, domain.StatusRefunded, now, item(burgerID, 10)),
		sale(4, domain.StatusPending, now, item(burgerID, 10)),
		sale(5, domain.StatusInProgress, now, item(burgerID, 10)),
		sale(6, domain.StatusReady, now, item(burgerID, 10)),
	}

	consumed := AggregateConsumption(sales, products())

	assert.InDelta(t, 0.3, consumed[cheddarID], 1e-9)
	assert.InDelta(t, 3.0, consumed[breadID], 1e-9)
	assert.Len(t, consumed, 2)
}

func TestAggregateConsumptionEmptyRecipeContributesNothing(t *testing.T) {
	sales := []domain.Sale{sale(1, domain.StatusCompleted, now, item(sodaID, 1000))}

	consumed := AggregateConsumption(sales, products())

	assert.Empty(t, consumed)
}

func TestAggregateConsumptionSkipsUnknownProducts(t *testing.T) {
	sales := []domain.Sale{sale(1, domain.StatusCompleted, now, item(999, 3), item(burgerID, 1))}

	consumed := AggregateConsumption(sales, products())

	assert.InDelta(t, 0.1, consumed[cheddarID], 1e-9)
}

func TestDaysActive(t *testing.T) {
	tests := []struct {
		name     string
		earliest time.Time
		expected int
	}{
		{"same instant", now, 1},
		{"future timestamp", now.Add(time.Hour), 1},
		{"one hour ago", now.Add(-time.Hour), 1},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"partial day rounds up", now.Add(-36 * time.Hour), 2},
		{"thirty days", now.AddDate(0, 0, -30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysActive(tt.earliest, now))
		})
	}
}

func TestPredictNoCompletedSalesIsInsufficient(t *testing.T) {
	result := Predict(PredictInput{
		Now:         now,
		WindowDays:  30,
		Sales:       []domain.Sale{sale(1, domain.StatusRefunded, now, item(burgerID, 1))},
		Products:    products(),
		Ingredients: []domain.Ingredient{{ID: cheddarID, Name: "Cheddar", Stock: 3}},
	})

	assert.True(t, result.InsufficientData)
	assert.Empty(t, result.Predictions)
	assert.NotNil(t, result.Predictions)
}

func TestPredictCheddarScenario(t *testing.T) {
	soldAt := now.Add(-(4*24 + 12) * time.Hour)
	result := Predict(PredictInput{
		Now:        now,
		WindowDays: 30,
		Sales:      []domain.Sale{sale(1, domain.StatusCompleted, soldAt, item(burgerID, 2))},
		Products:   products(),
		Ingredients: []domain.Ingredient{
			{ID: cheddarID, Name: "Cheddar", Unit: "kg", Stock: 3},
		},
	})

	require.False(t, result.InsufficientData)
	require.Len(t, result.Predictions, 1)
	p := result.Predictions[0]

	totalConsumed := 0.1 * 2
	daysActive := 5
	avgDaily := totalConsumed / float64(daysActive)
	daysRemaining := 3 / avgDaily

	assert.Equal(t, daysActive, result.DaysActive)
	assert.Equal(t, 1, result.CompletedSales)
	assert.InDelta(t, 0.2, p.TotalConsumed, 1e-12)
	assert.InDelta(t, avgDaily, p.AvgDailyConsumption, 1e-12)
	assert.InDelta(t, 0.04, p.AvgDailyConsumption, 1e-12)
	require.True(t, p.DaysRemaining.IsFinite())
	assert.InDelta(t, daysRemaining, p.DaysRemaining.Days, 1e-9)
	assert.InDelta(t, 75, p.DaysRemaining.Days, 1e-9)
	assert.Equal(t, StatusSafe, p.Status)
	require.NotNil(t, p.ProjectedDepletion)
	assert.WithinDuration(t, now.Add(75*24*time.Hour), *p.ProjectedDepletion, time.Second)
}

func TestPredictionStatuses(t *testing.T) {
	tests := []struct {
		name     string
		stock    float64
		consumed float64
		status   StockStatus
		kind     CoverageKind
	}{
		{"critical", 2.9, 1, StatusCritical, CoverageFinite},
		{"warning at three days", 3, 1, StatusWarning, CoverageFinite},
		{"warning", 6.9, 1, StatusWarning, CoverageFinite},
		{"safe at seven days", 7, 1, StatusSafe, CoverageFinite},
		{"negative stock is critical", -2, 1, StatusCritical, CoverageFinite},
		{"no usage with stock", 5, 0, StatusSafe, CoverageInfinite},
		{"no usage and no stock", 0, 0, StatusUnknown, CoverageInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PredictIngredient(now, domain.Ingredient{ID: 1, Stock: tt.stock}, tt.consumed, 1)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.kind, p.DaysRemaining.Kind)
			if tt.consumed == 0 {
				assert.Nil(t, p.ProjectedDepletion)
			} else {
				assert.NotNil(t, p.ProjectedDepletion)
			}
		})
	}
}

func TestCoverageIsCapped(t *testing.T) {
	c := ProjectCoverage(1_000_000, 0.001)
	assert.True(t, c.IsFinite())
	assert.Equal(t, MaxCoverageDays, c.Days)
}

func TestCoverageMonotonicity(t *testing.T) {
	rates := []float64{0, 0.01, 0.5, 1, 2, 10}
	stocks := []float64{-1, 0, 0.5, 1, 5, 100}

	for _, stock := range stocks {
		for i := 1; i < len(rates); i++ {
			prev := ProjectCoverage(stock, rates[i-1])
			next := ProjectCoverage(stock, rates[i])
			assert.False(t, prev.Less(next), "stock %v: rate %v -> %v increased coverage", stock, rates[i-1], rates[i])
		}
	}
	for _, rate := range rates {
		for i := 1; i < len(stocks); i++ {
			prev := ProjectCoverage(stocks[i-1], rate)
			next := ProjectCoverage(stocks[i], rate)
			assert.False(t, next.Less(prev), "rate %v: stock %v -> %v decreased coverage", rate, stocks[i-1], stocks[i])
		}
	}
}

func TestPredictSortsMostUrgentFirst(t *testing.T) {
	ingredients := []domain.Ingredient{
		{ID: 1, Name: "Cheddar", Stock: 100},
		{ID: 2, Name: "Bread", Stock: 1},
		{ID: 3, Name: "Salt", Stock: 50},
		{ID: 4, Name: "Truffle", Stock: 0},
		{ID: 5, Name: "Lettuce", Stock: 4},
	}
	catalog := domain.ProductIndex([]domain.Product{{
		ID: burgerID,
		Recipe: []domain.RecipeItem{
			{IngredientID: 1, Quantity: 1},
			{IngredientID: 2, Quantity: 1},
			{IngredientID: 5, Quantity: 1},
		},
	}})

	result := Predict(PredictInput{
		Now:         now,
		Sales:       []domain.Sale{sale(1, domain.StatusCompleted, now.Add(-time.Hour), item(burgerID, 1))},
		Products:    catalog,
		Ingredients: ingredients,
	})

	names := make([]string, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Bread", "Lettuce", "Cheddar", "Truffle", "Salt"}, names)
	assert.Equal(t, DefaultLookbackDays, result.WindowDays)

	for i := 1; i < len(result.Predictions); i++ {
		assert.False(t, result.Predictions[i].DaysRemaining.Less(result.Predictions[i-1].DaysRemaining))
	}
}

func TestCoverageJSON(t *testing.T) {
	raw, err := json.Marshal(Finite(12.3456))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"finite","days":12.35}`, string(raw))

	raw, err = json.Marshal(Infinite())
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"infinite"}`, string(raw))
}
