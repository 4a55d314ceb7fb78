package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"restobackend/internal/domain"
	"restobackend/internal/forecast"
	"restobackend/internal/profit"
	"restobackend/internal/service/servicetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const (
	cheddarID = int64(1)
	breadID   = int64(2)
	burgerID  = int64(10)
	friesID   = int64(11)
)

func newFixture(t *testing.T) (*Service, *servicetest.MemoryStore, *observer.ObservedLogs) {
	t.Helper()
	store := servicetest.NewMemoryStore()
	store.AddIngredients(
		domain.Ingredient{ID: cheddarID, Name: "Cheddar", Unit: "kg", CostPerUnit: 12, Stock: 3, MinStock: 1},
		domain.Ingredient{ID: breadID, Name: "Bread", Unit: "u", CostPerUnit: 0.5, Stock: 40, MinStock: 10},
	)
	store.AddProducts(
		domain.Product{ID: burgerID, Name: "Burger", Active: true, Price: 40, Recipe: []domain.RecipeItem{
			{ProductID: burgerID, IngredientID: cheddarID, Quantity: 0.2},
			{ProductID: burgerID, IngredientID: breadID, Quantity: 1},
		}},
		domain.Product{ID: friesID, Name: "Fries", Active: true, Price: 5},
	)
	store.SetCommission("Rappi", 20)

	core, logs := observer.New(zap.InfoLevel)
	svc := New(store, zap.New(core), WithClock(func() time.Time { return now }))
	return svc, store, logs
}

func completedSale(at time.Time, channel string, items ...domain.SaleItem) domain.Sale {
	sale := domain.Sale{CreatedAt: at, Channel: channel, Status: domain.StatusCompleted, Items: items}
	for _, item := range items {
		sale.Total += item.Revenue()
	}
	return sale
}

func TestNewAppliesDefaults(t *testing.T) {
	svc := New(servicetest.NewMemoryStore(), nil, WithSettings(Settings{LookbackDays: 14}))
	settings := svc.Settings()
	assert.Equal(t, 14, settings.LookbackDays)
	assert.Equal(t, 30.0, settings.TargetMargin)
	assert.Equal(t, 5.0, settings.TargetDailySales)
	require.NotNil(t, settings.Estimator)
	assert.Equal(t, 7, settings.Estimator.EstimateMinutes([]domain.Sale{{Items: []domain.SaleItem{{Quantity: 1}}}}))
}

func TestDepletionForecastUsesCompletedSalesInWindow(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.AddSale(completedSale(now.Add(-108*time.Hour), "LOCAL", domain.SaleItem{ProductID: burgerID, Quantity: 1, UnitPrice: 40}))
	store.AddSale(completedSale(now.AddDate(0, 0, -45), "LOCAL", domain.SaleItem{ProductID: burgerID, Quantity: 50, UnitPrice: 40}))
	store.AddSale(domain.Sale{CreatedAt: now.Add(-time.Hour), Status: domain.StatusPending,
		Items: []domain.SaleItem{{ProductID: burgerID, Quantity: 9, UnitPrice: 40}}})

	result, err := svc.DepletionForecast(context.Background())
	require.NoError(t, err)

	assert.False(t, result.InsufficientData)
	assert.Equal(t, 30, result.WindowDays)
	assert.Equal(t, 5, result.DaysActive)
	assert.Equal(t, 1, result.CompletedSales)
	require.Len(t, result.Predictions, 2)

	cheddar := result.Predictions[0]
	assert.Equal(t, "Cheddar", cheddar.Name)
	assert.InDelta(t, 0.04, cheddar.AvgDailyConsumption, 1e-9)
	assert.True(t, cheddar.DaysRemaining.IsFinite())
	assert.InDelta(t, 75, cheddar.DaysRemaining.Days, 1e-9)
	assert.Equal(t, forecast.StatusSafe, cheddar.Status)

	bread := result.Predictions[1]
	assert.InDelta(t, 200, bread.DaysRemaining.Days, 1e-9)
}

func TestDepletionForecastWithoutSalesIsInsufficient(t *testing.T) {
	svc, _, logs := newFixture(t)

	result, err := svc.DepletionForecast(context.Background())
	require.NoError(t, err)
	assert.True(t, result.InsufficientData)
	assert.Empty(t, result.Predictions)
	assert.Equal(t, 1, logs.FilterMessage("depletion forecast has no completed sales in window").Len())
}

func TestStoreFailuresAreLoggedAndReturned(t *testing.T) {
	svc, store, logs := newFixture(t)
	boom := errors.New("connection reset")
	store.Err = boom

	_, err := svc.DepletionForecast(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = svc.HealthScore(context.Background())
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterMessage("depletion forecast failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, 1, logs.FilterMessage("health score failed").Len())
}

func TestKitchenOverview(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.AddSale(domain.Sale{CreatedAt: now.Add(-12 * time.Minute), Status: domain.StatusInProgress,
		Items: []domain.SaleItem{{ProductID: burgerID, Quantity: 2, UnitPrice: 40}}})
	store.AddSale(domain.Sale{CreatedAt: now.Add(-3 * time.Minute), Status: domain.StatusPending,
		Items: []domain.SaleItem{{ProductID: 999, Quantity: 1, UnitPrice: 5}}})
	store.AddSale(domain.Sale{CreatedAt: now.Add(-30 * time.Minute), Status: domain.StatusReady,
		Items: []domain.SaleItem{{ProductID: friesID, Quantity: 4, UnitPrice: 5}}})

	overview, err := svc.KitchenOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.ActiveOrders)
	assert.Equal(t, 16, overview.EstimatedWaitTime)
	require.Len(t, overview.Orders, 2)
	assert.Equal(t, 12, overview.Orders[0].MinutesWaiting)
	assert.Equal(t, "Burger", overview.Orders[0].Items[0].ProductName)
	assert.Equal(t, "Unknown product", overview.Orders[1].Items[0].ProductName)
}

func TestAdvanceOrderWalksTheBoard(t *testing.T) {
	svc, store, _ := newFixture(t)
	sale := store.AddSale(domain.Sale{CreatedAt: now, Items: []domain.SaleItem{{ProductID: burgerID, Quantity: 1, UnitPrice: 40}}})
	ctx := context.Background()

	for _, want := range []domain.OrderStatus{domain.StatusInProgress, domain.StatusReady, domain.StatusCompleted} {
		got, err := svc.AdvanceOrder(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := svc.AdvanceOrder(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.AdvanceOrder(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefundSale(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()
	ready := store.AddSale(domain.Sale{Status: domain.StatusReady})
	done := store.AddSale(domain.Sale{Status: domain.StatusCompleted})

	require.NoError(t, svc.RefundSale(ctx, ready.ID))
	got, err := store.GetSale(ctx, ready.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, got.Status)

	assert.ErrorIs(t, svc.RefundSale(ctx, ready.ID), domain.ErrNotRefundable)
	assert.ErrorIs(t, svc.RefundSale(ctx, done.ID), domain.ErrNotRefundable)
	assert.ErrorIs(t, svc.RefundSale(ctx, 404), domain.ErrNotFound)
}

func TestItemProfitWithFrozenCommission(t *testing.T) {
	svc, store, _ := newFixture(t)
	sale := completedSale(now, "Rappi",
		domain.SaleItem{ProductID: burgerID, Quantity: 1, UnitPrice: 40},
		domain.SaleItem{ProductID: friesID, Quantity: 2, UnitPrice: 5},
	)
	sale.Discount = -20
	sale = store.AddSale(sale)

	breakdown, err := svc.ItemProfit(context.Background(), sale.ID, burgerID)
	require.NoError(t, err)

	assert.True(t, breakdown.Rate.Frozen)
	assert.True(t, breakdown.Revenue.Equal(decimal.NewFromInt(40)))
	assert.True(t, breakdown.SaleCommission.Equal(decimal.NewFromInt(10)), breakdown.SaleCommission.String())
	assert.True(t, breakdown.Commission.Equal(decimal.NewFromInt(8)), breakdown.Commission.String())
	assert.True(t, breakdown.Cost.Equal(decimal.RequireFromString("2.9")), breakdown.Cost.String())
	assert.True(t, breakdown.Profit.Equal(decimal.RequireFromString("29.1")), breakdown.Profit.String())

	_, err = svc.ItemProfit(context.Background(), sale.ID, 77)
	assert.ErrorIs(t, err, profit.ErrItemNotInSale)
}

func TestPeriodProfit(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.AddSale(completedSale(now.AddDate(0, 0, -1), "Rappi", domain.SaleItem{ProductID: burgerID, Quantity: 1, UnitPrice: 40}))
	store.AddSale(completedSale(now.AddDate(0, 0, -2), "efectivo", domain.SaleItem{ProductID: friesID, Quantity: 2, UnitPrice: 5}))
	store.AddSale(domain.Sale{CreatedAt: now.AddDate(0, 0, -1), Total: 500, Status: domain.StatusRefunded})

	summary, err := svc.PeriodProfit(context.Background(), now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sales)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(50)))
	assert.True(t, summary.Commission.Equal(decimal.NewFromInt(8)))
	assert.True(t, summary.Cost.Equal(decimal.RequireFromString("2.9")))
	assert.True(t, summary.NetProfit.Equal(summary.Revenue.Sub(summary.Cost).Sub(summary.Commission)))

	_, err = svc.PeriodProfit(context.Background(), now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHealthScore(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.AddIngredients(domain.Ingredient{ID: 3, Name: "Lettuce", Stock: 0, MinStock: 1})
	for day := 1; day <= 4; day++ {
		store.AddSale(completedSale(now.AddDate(0, 0, -day), "LOCAL", domain.SaleItem{ProductID: friesID, Quantity: 1, UnitPrice: 5}))
	}

	score, err := svc.HealthScore(context.Background())
	require.NoError(t, err)

	// fries have no recipe and LOCAL has no commission: 100% margin
	assert.Equal(t, 100.0, score.Margin.Value)
	assert.Equal(t, 40.0, score.Margin.Score)
	assert.Equal(t, 20.0, score.Inventory.Score)
	assert.InDelta(t, 1.0, score.Volume.Value, 1e-9)
	assert.Equal(t, 6.0, score.Volume.Score)
	assert.Equal(t, 66, score.Total)

	codes := []string{}
	for _, tip := range score.Tips {
		codes = append(codes, tip.Code)
	}
	assert.Equal(t, []string{"stock", "volume"}, codes)
}

func TestLogWaste(t *testing.T) {
	svc, store, logs := newFixture(t)
	ctx := context.Background()

	updated, err := svc.LogWaste(ctx, cheddarID, 5, "dropped tray")
	require.NoError(t, err)
	assert.Equal(t, -2.0, updated.Stock)

	stored, ok := store.Ingredient(cheddarID)
	require.True(t, ok)
	assert.Equal(t, -2.0, stored.Stock)
	assert.Equal(t, 1, logs.FilterMessage("waste logged").Len())

	_, err = svc.LogWaste(ctx, cheddarID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.LogWaste(ctx, 99, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportIngredientStock(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()

	count, err := svc.ImportIngredientStock(ctx, []domain.IngredientStockRow{
		{Name: "CHEDDAR", Stock: 9},
		{Name: "Tomato", Unit: "kg", Stock: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	cheddar, _ := store.Ingredient(cheddarID)
	assert.Equal(t, 9.0, cheddar.Stock)
	assert.Equal(t, 12.0, cheddar.CostPerUnit)

	negative := -1.0
	_, err = svc.ImportIngredientStock(ctx, []domain.IngredientStockRow{{Name: "Salt", MinStock: &negative}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ImportIngredientStock(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportForecastWorkbook(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.AddSale(completedSale(now.AddDate(0, 0, -1), "LOCAL", domain.SaleItem{ProductID: burgerID, Quantity: 1, UnitPrice: 40}))

	buf := &bytes.Buffer{}
	require.NoError(t, svc.ExportForecastWorkbook(context.Background(), buf))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Forecast", "Profit"}, f.GetSheetList())
}

func TestRecordSale(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, domain.Sale{
		Channel: "PedidosYa",
		Items: []domain.SaleItem{
			{ProductID: burgerID, Quantity: 2, UnitPrice: 40},
			{ProductID: friesID, Quantity: 1, UnitPrice: 5},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Equal(t, domain.StatusPending, sale.Status)
	assert.Equal(t, 85.0, sale.Total)
	assert.True(t, sale.CreatedAt.Equal(now))

	_, err = svc.RecordSale(ctx, domain.Sale{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordSale(ctx, domain.Sale{Items: []domain.SaleItem{{ProductID: burgerID, Quantity: -1}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
