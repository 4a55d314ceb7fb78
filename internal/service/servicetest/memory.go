// Package servicetest provides an in-memory service.Store for tests.
package servicetest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"restobackend/internal/domain"
)

// MemoryStore keeps everything in maps guarded by one mutex. Setting Err
// makes every call fail with it.
type MemoryStore struct {
	mu          sync.Mutex
	sales       map[int64]domain.Sale
	products    []domain.Product
	ingredients map[int64]domain.Ingredient
	configs     []domain.PlatformConfig
	nextSaleID  int64
	nextItemID  int64
	nextIngID   int64

	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sales:       map[int64]domain.Sale{},
		ingredients: map[int64]domain.Ingredient{},
	}
}

func (m *MemoryStore) AddProducts(products ...domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, products...)
}

func (m *MemoryStore) AddIngredients(ingredients ...domain.Ingredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ing := range ingredients {
		if ing.ID == 0 {
			m.nextIngID++
			ing.ID = m.nextIngID
		} else if ing.ID > m.nextIngID {
			m.nextIngID = ing.ID
		}
		m.ingredients[ing.ID] = ing
	}
}

func (m *MemoryStore) SetCommission(channel string, percent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = append(m.configs, domain.PlatformConfig{Channel: channel, CommissionPercent: percent})
}

// AddSale stores a sale directly, keeping any id it already carries.
func (m *MemoryStore) AddSale(sale domain.Sale) domain.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertSale(sale)
}

func (m *MemoryStore) insertSale(sale domain.Sale) domain.Sale {
	if sale.ID == 0 {
		m.nextSaleID++
		sale.ID = m.nextSaleID
	} else if sale.ID > m.nextSaleID {
		m.nextSaleID = sale.ID
	}
	if sale.Status == "" {
		sale.Status = domain.StatusPending
	}
	items := make([]domain.SaleItem, len(sale.Items))
	for idx, item := range sale.Items {
		if item.ID == 0 {
			m.nextItemID++
			item.ID = m.nextItemID
		}
		item.SaleID = sale.ID
		items[idx] = item
	}
	sale.Items = items
	m.sales[sale.ID] = sale
	return sale
}

func (m *MemoryStore) Ingredient(id int64) (domain.Ingredient, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ing, ok := m.ingredients[id]
	return ing, ok
}

func (m *MemoryStore) ListSalesBetween(_ context.Context, from, to time.Time, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	return m.filterSales(func(s domain.Sale) bool {
		return !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) && matchStatus(s.Status, statuses)
	})
}

func (m *MemoryStore) ListSalesByStatus(_ context.Context, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	return m.filterSales(func(s domain.Sale) bool { return matchStatus(s.Status, statuses) })
}

func (m *MemoryStore) filterSales(keep func(domain.Sale) bool) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []domain.Sale{}
	for _, sale := range m.sales {
		if keep(sale) {
			out = append(out, cloneSale(sale))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	sale, ok := m.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cloneSale(sale)
	return &clone, nil
}

func (m *MemoryStore) CreateSale(_ context.Context, sale domain.Sale) (domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.Sale{}, m.Err
	}
	for _, item := range sale.Items {
		if err := item.Validate(); err != nil {
			return domain.Sale{}, err
		}
	}
	sale.ID = 0
	return cloneSale(m.insertSale(sale)), nil
}

func (m *MemoryStore) UpdateSaleStatus(_ context.Context, id int64, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	sale, ok := m.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	if sale.Status != from {
		return domain.ErrStatusConflict
	}
	sale.Status = to
	m.sales[id] = sale
	return nil
}

func (m *MemoryStore) ListProducts(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.Product, len(m.products))
	for idx, p := range m.products {
		p.Recipe = slices.Clone(p.Recipe)
		out[idx] = p
	}
	return out, nil
}

func (m *MemoryStore) ListIngredients(context.Context) ([]domain.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.Ingredient, 0, len(m.ingredients))
	for _, ing := range m.ingredients {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListPlatformConfigs(context.Context) ([]domain.PlatformConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.configs), nil
}

func (m *MemoryStore) AdjustIngredientStock(_ context.Context, id int64, delta float64) (*domain.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ing, ok := m.ingredients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ing.Stock += delta
	m.ingredients[id] = ing
	return &ing, nil
}

func (m *MemoryStore) UpsertIngredients(_ context.Context, rows []domain.IngredientStockRow) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		var existing *domain.Ingredient
		for id, ing := range m.ingredients {
			if strings.EqualFold(ing.Name, name) {
				match := m.ingredients[id]
				existing = &match
				break
			}
		}
		if existing == nil {
			m.nextIngID++
			existing = &domain.Ingredient{ID: m.nextIngID, Name: name}
		}
		existing.Stock = row.Stock
		if unit := strings.TrimSpace(row.Unit); unit != "" {
			existing.Unit = unit
		}
		if row.MinStock != nil {
			existing.MinStock = *row.MinStock
		}
		if row.CostPerUnit != nil {
			existing.CostPerUnit = *row.CostPerUnit
		}
		m.ingredients[existing.ID] = *existing
		count++
	}
	return count, nil
}

func matchStatus(status domain.OrderStatus, statuses []domain.OrderStatus) bool {
	return len(statuses) == 0 || slices.Contains(statuses, status)
}

func cloneSale(sale domain.Sale) domain.Sale {
	sale.Items = slices.Clone(sale.Items)
	if sale.Items == nil {
		sale.Items = []domain.SaleItem{}
	}
	return sale
}
