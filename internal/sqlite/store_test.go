package sqlite

import (
	"context"
	"testing"
	"time"

	"restobackend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCatalog(t *testing.T, store *Store) {
	t.Helper()
	for _, stmt := range []string{
		`INSERT INTO ingredients (id, name, unit, cost_per_unit, stock, min_stock) VALUES
			(1, 'Cheddar', 'kg', 12, 3, 1),
			(2, 'Bread', 'u', 0.5, 40, 10)`,
		`INSERT INTO products (id, name, price) VALUES (10, 'Burger', 25), (11, 'Fries', 5)`,
		`INSERT INTO recipe_items (product_id, ingredient_id, quantity) VALUES (10, 1, 0.2), (10, 2, 1)`,
		`UPDATE platform_configs SET commission_percent = 20 WHERE channel = 'RAPPI'`,
	} {
		_, err := store.db.Exec(stmt)
		require.NoError(t, err)
	}
}

func TestDSNFromURL(t *testing.T) {
	assert.Equal(t, "resto.db", DSNFromURL("sqlite://resto.db"))
	assert.Equal(t, "file:resto.db?cache=shared", DSNFromURL("file:resto.db?cache=shared"))
	assert.Equal(t, ":memory:", DSNFromURL(" :memory: "))
}

func TestSaleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedCatalog(t, store)

	client := "Ana"
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	created, err := store.CreateSale(ctx, domain.Sale{
		CreatedAt:  at,
		Total:      55,
		Discount:   -15,
		Channel:    "Rappi",
		Status:     domain.StatusCompleted,
		ClientName: &client,
		Items: []domain.SaleItem{
			{ProductID: 10, Quantity: 2, UnitPrice: 25},
			{ProductID: 11, Quantity: 1, UnitPrice: 5},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Items, 2)
	assert.NotZero(t, created.Items[0].ID)

	got, err := store.GetSale(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.Equal(t, 55.0, got.Total)
	assert.Equal(t, -15.0, got.Discount)
	assert.Equal(t, "Rappi", got.Channel)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.ClientName)
	assert.Equal(t, "Ana", *got.ClientName)
	assert.Nil(t, got.CustomerID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(10), got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 25.0, got.Items[0].UnitPrice)
}

func TestCreateSaleRejectsInvalidItems(t *testing.T) {
	store := openTestStore(t)
	_, err := store.CreateSale(context.Background(), domain.Sale{
		Items: []domain.SaleItem{{ProductID: 10, Quantity: 0, UnitPrice: 1}},
	})
	assert.Error(t, err)
}

func TestListSalesFilters(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mk := func(at time.Time, status domain.OrderStatus) int64 {
		sale, err := store.CreateSale(ctx, domain.Sale{
			CreatedAt: at,
			Status:    status,
			Items:     []domain.SaleItem{{ProductID: 10, Quantity: 1, UnitPrice: 25}},
		})
		require.NoError(t, err)
		return sale.ID
	}
	old := mk(now.AddDate(0, 0, -40), domain.StatusCompleted)
	recent := mk(now.AddDate(0, 0, -2), domain.StatusCompleted)
	pending := mk(now.Add(-10*time.Minute), domain.StatusPending)
	cooking := mk(now.Add(-20*time.Minute), domain.StatusInProgress)

	between, err := store.ListSalesBetween(ctx, now.AddDate(0, 0, -30), now, domain.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, recent, between[0].ID)
	assert.Len(t, between[0].Items, 1)

	all, err := store.ListSalesBetween(ctx, now.AddDate(0, 0, -60), now)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, old, all[0].ID)

	active, err := store.ListSalesByStatus(ctx, domain.StatusPending, domain.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, cooking, active[0].ID)
	assert.Equal(t, pending, active[1].ID)
}

func TestUpdateSaleStatus(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	sale, err := store.CreateSale(ctx, domain.Sale{
		Items: []domain.SaleItem{{ProductID: 10, Quantity: 1, UnitPrice: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, sale.Status)

	require.NoError(t, store.UpdateSaleStatus(ctx, sale.ID, domain.StatusPending, domain.StatusInProgress))

	err = store.UpdateSaleStatus(ctx, sale.ID, domain.StatusPending, domain.StatusInProgress)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)

	err = store.UpdateSaleStatus(ctx, 9999, domain.StatusPending, domain.StatusInProgress)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestGetSaleNotFound(t *testing.T) {
	_, err := openTestStore(t).GetSale(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogQueries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedCatalog(t, store)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Burger", products[0].Name)
	assert.True(t, products[0].Active)
	require.Len(t, products[0].Recipe, 2)
	assert.Equal(t, 0.2, products[0].Recipe[0].Quantity)
	assert.Empty(t, products[1].Recipe)

	ingredients, err := store.ListIngredients(ctx)
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Bread", ingredients[0].Name)
	assert.Equal(t, 12.0, ingredients[1].CostPerUnit)

	configs, err := store.ListPlatformConfigs(ctx)
	require.NoError(t, err)
	rates := map[string]float64{}
	for _, cfg := range configs {
		rates[cfg.Channel] = cfg.CommissionPercent
	}
	assert.Equal(t, map[string]float64{"LOCAL": 0, "MERCADOPAGO": 0, "PEYA": 0, "RAPPI": 20}, rates)
}

func TestAdjustIngredientStockGoesNegative(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedCatalog(t, store)

	ing, err := store.AdjustIngredientStock(ctx, 1, -5)
	require.NoError(t, err)
	assert.Equal(t, -2.0, ing.Stock)

	_, err = store.AdjustIngredientStock(ctx, 99, -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertIngredients(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedCatalog(t, store)

	cost := 0.8
	count, err := store.UpsertIngredients(ctx, []domain.IngredientStockRow{
		{Name: "cheddar", Stock: 7},
		{Name: "Tomato", Unit: "kg", Stock: 4, CostPerUnit: &cost},
		{Name: "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ingredients, err := store.ListIngredients(ctx)
	require.NoError(t, err)
	byName := map[string]domain.Ingredient{}
	for _, ing := range ingredients {
		byName[ing.Name] = ing
	}
	require.Len(t, byName, 3)

	cheddar := byName["Cheddar"]
	assert.Equal(t, 7.0, cheddar.Stock)
	assert.Equal(t, "kg", cheddar.Unit)
	assert.Equal(t, 1.0, cheddar.MinStock)
	assert.Equal(t, 12.0, cheddar.CostPerUnit)

	tomato := byName["Tomato"]
	assert.Equal(t, 4.0, tomato.Stock)
	assert.Equal(t, 0.8, tomato.CostPerUnit)
	assert.Equal(t, 0.0, tomato.MinStock)
}
