package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

type Sale struct {
	ID         int64       `json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	Total      float64     `json:"total"`
	Discount   float64     `json:"discount"`
	Channel    string      `json:"channel"`
	Status     OrderStatus `json:"status"`
	ClientName *string     `json:"client_name,omitempty"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	Items      []SaleItem  `json:"items"`
}

// FrozenCommission reports whether the discount field carries a per-sale
// commission override (negative values, in percent).
func (s Sale) FrozenCommission() bool {
	return s.Discount < 0
}

// Units is the total item quantity across all lines.
func (s Sale) Units() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

type SaleItem struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"sale_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (i SaleItem) Revenue() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

func (i SaleItem) Validate() error {
	if i.Quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	if i.UnitPrice < 0 {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return nil
}

type Product struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	CategoryID *int64       `json:"category_id,omitempty"`
	Active     bool         `json:"active"`
	Public     bool         `json:"public"`
	Price      float64      `json:"price"`
	Recipe     []RecipeItem `json:"recipe,omitempty"`
}

type RecipeItem struct {
	ProductID    int64   `json:"product_id"`
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

func (r RecipeItem) Validate() error {
	if r.Quantity <= 0 {
		return fmt.Errorf("recipe quantity must be positive")
	}
	return nil
}

type Ingredient struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Stock       float64 `json:"stock"`
	MinStock    float64 `json:"min_stock"`
}

// IsLowStock is true for ingredients that are exhausted or under their
// alert threshold.
func (i Ingredient) IsLowStock() bool {
	return i.Stock <= 0 || i.Stock < i.MinStock
}

type PlatformConfig struct {
	Channel           string  `json:"channel"`
	CommissionPercent float64 `json:"commission_percent"`
}

type IngredientStockRow struct {
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	Stock       float64  `json:"stock"`
	MinStock    *float64 `json:"min_stock,omitempty"`
	CostPerUnit *float64 `json:"cost_per_unit,omitempty"`
}

// ProductIndex keys a product snapshot by id.
func ProductIndex(products []Product) map[int64]Product {
	index := make(map[int64]Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

// IngredientIndex keys an ingredient snapshot by id.
func IngredientIndex(ingredients []Ingredient) map[int64]Ingredient {
	index := make(map[int64]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		index[ing.ID] = ing
	}
	return index
}
