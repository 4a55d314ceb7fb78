package profit

import (
	"errors"
	"fmt"

	"restobackend/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotInSale = errors.New("product is not part of the sale")

	hundred = decimal.NewFromInt(100)
)

// RateTable holds commission rates as fractions (0.15 = 15%) per channel.
type RateTable map[domain.Channel]decimal.Decimal

// NewRateTable normalizes configured channel names and converts percentages
// to fractions. Percentages are clamped to 0-100; for duplicated channels the
// last row wins.
func NewRateTable(configs []domain.PlatformConfig) RateTable {
	table := make(RateTable, len(configs))
	for _, cfg := range configs {
		channel := domain.NormalizeChannel(cfg.Channel)
		if channel == domain.ChannelUnknown {
			continue
		}
		percent := decimal.NewFromFloat(cfg.CommissionPercent)
		if percent.IsNegative() {
			percent = decimal.Zero
		}
		if percent.GreaterThan(hundred) {
			percent = hundred
		}
		table[channel] = percent.Div(hundred)
	}
	return table
}

func (t RateTable) Rate(channel domain.Channel) decimal.Decimal {
	if rate, ok := t[channel]; ok {
		return rate
	}
	return decimal.Zero
}

type Rate struct {
	Channel domain.Channel  `json:"channel"`
	Value   decimal.Decimal `json:"value"`
	Frozen  bool            `json:"frozen"`
}

// CommissionRate resolves the rate applying to a sale. A negative discount
// freezes the rate at |discount|/100 regardless of the channel table.
func CommissionRate(sale domain.Sale, table RateTable) Rate {
	channel := domain.NormalizeChannel(sale.Channel)
	if sale.FrozenCommission() {
		return Rate{
			Channel: channel,
			Value:   decimal.NewFromFloat(sale.Discount).Abs().Div(hundred),
			Frozen:  true,
		}
	}
	return Rate{Channel: channel, Value: table.Rate(channel)}
}

// SaleCommission is the commission charged on the whole sale total.
func SaleCommission(sale domain.Sale, rate Rate) decimal.Decimal {
	return decimal.NewFromFloat(sale.Total).Mul(rate.Value)
}

// Apportion assigns a share of the sale commission proportional to the
// item's share of the sale total. A zero total yields no commission.
func Apportion(itemRevenue, saleCommission, saleTotal decimal.Decimal) decimal.Decimal {
	if saleTotal.IsZero() {
		return decimal.Zero
	}
	return itemRevenue.Mul(saleCommission).Div(saleTotal)
}

// UnitCost is the recipe cost of one unit at current ingredient prices.
// Recipe lines pointing at unknown ingredients cost nothing.
func UnitCost(product domain.Product, ingredients map[int64]domain.Ingredient) decimal.Decimal {
	cost := decimal.Zero
	for _, line := range product.Recipe {
		ing, ok := ingredients[line.IngredientID]
		if !ok {
			continue
		}
		cost = cost.Add(decimal.NewFromFloat(line.Quantity).Mul(decimal.NewFromFloat(ing.CostPerUnit)))
	}
	return cost
}

type ItemBreakdown struct {
	SaleID         int64           `json:"sale_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	Revenue        decimal.Decimal `json:"revenue"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Cost           decimal.Decimal `json:"cost"`
	Rate           Rate            `json:"rate"`
	SaleCommission decimal.Decimal `json:"sale_commission"`
	Commission     decimal.Decimal `json:"commission"`
	Profit         decimal.Decimal `json:"profit"`
}

// Attribute computes revenue, recipe cost, apportioned commission and
// profit of one product inside a sale. Costs use present-day ingredient
// prices, not the ones in effect when the sale happened.
func Attribute(
	sale domain.Sale,
	productID int64,
	products map[int64]domain.Product,
	ingredients map[int64]domain.Ingredient,
	table RateTable,
) (ItemBreakdown, error) {
	quantity := 0
	revenue := decimal.Zero
	for _, item := range sale.Items {
		if item.ProductID != productID {
			continue
		}
		quantity += item.Quantity
		revenue = revenue.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if quantity == 0 {
		return ItemBreakdown{}, fmt.Errorf("sale %d product %d: %w", sale.ID, productID, ErrItemNotInSale)
	}

	rate := CommissionRate(sale, table)
	saleCommission := SaleCommission(sale, rate)
	commission := Apportion(revenue, saleCommission, decimal.NewFromFloat(sale.Total))

	product := products[productID]
	unitCost := UnitCost(product, ingredients)
	cost := unitCost.Mul(decimal.NewFromInt(int64(quantity)))

	name := product.Name
	if name == "" {
		name = "Unknown product"
	}

	return ItemBreakdown{
		SaleID:         sale.ID,
		ProductID:      productID,
		ProductName:    name,
		Quantity:       quantity,
		Revenue:        revenue,
		UnitCost:       unitCost,
		Cost:           cost,
		Rate:           rate,
		SaleCommission: saleCommission,
		Commission:     commission,
		Profit:         revenue.Sub(cost).Sub(commission),
	}, nil
}
