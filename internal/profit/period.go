package profit

import (
	"sort"
	"time"

	"restobackend/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductProfit struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Units       int             `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Commission  decimal.Decimal `json:"commission"`
	Profit      decimal.Decimal `json:"profit"`
}

type ChannelTotal struct {
	Channel    domain.Channel  `json:"channel"`
	Sales      int             `json:"sales"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
}

type PeriodSummary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Sales         int             `json:"sales"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Commission    decimal.Decimal `json:"commission"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	MarginPercent float64         `json:"margin_percent"`
	Products      []ProductProfit `json:"products"`
	Channels      []ChannelTotal  `json:"channels"`
}

// Period sums the per-sale computation over completed sales:
// net profit = revenue - recipe cost - commission.
func Period(
	from, to time.Time,
	sales []domain.Sale,
	products map[int64]domain.Product,
	ingredients map[int64]domain.Ingredient,
	table RateTable,
) PeriodSummary {
	summary := PeriodSummary{
		From:       from,
		To:         to,
		Revenue:    decimal.Zero,
		Cost:       decimal.Zero,
		Commission: decimal.Zero,
		Products:   []ProductProfit{},
		Channels:   []ChannelTotal{},
	}

	byProduct := map[int64]*ProductProfit{}
	byChannel := map[domain.Channel]*ChannelTotal{}
	unitCosts := map[int64]decimal.Decimal{}

	for _, sale := range sales {
		if sale.Status != domain.StatusCompleted {
			continue
		}
		summary.Sales++

		total := decimal.NewFromFloat(sale.Total)
		rate := CommissionRate(sale, table)
		saleCommission := SaleCommission(sale, rate)
		summary.Revenue = summary.Revenue.Add(total)
		summary.Commission = summary.Commission.Add(saleCommission)

		channel := byChannel[rate.Channel]
		if channel == nil {
			channel = &ChannelTotal{Channel: rate.Channel, Revenue: decimal.Zero, Commission: decimal.Zero}
			byChannel[rate.Channel] = channel
		}
		channel.Sales++
		channel.Revenue = channel.Revenue.Add(total)
		channel.Commission = channel.Commission.Add(saleCommission)

		for _, item := range sale.Items {
			unitCost, ok := unitCosts[item.ProductID]
			if !ok {
				unitCost = UnitCost(products[item.ProductID], ingredients)
				unitCosts[item.ProductID] = unitCost
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			revenue := decimal.NewFromFloat(item.UnitPrice).Mul(qty)
			cost := unitCost.Mul(qty)
			commission := Apportion(revenue, saleCommission, total)
			summary.Cost = summary.Cost.Add(cost)

			row := byProduct[item.ProductID]
			if row == nil {
				name := products[item.ProductID].Name
				if name == "" {
					name = "Unknown product"
				}
				row = &ProductProfit{
					ProductID:   item.ProductID,
					ProductName: name,
					Revenue:     decimal.Zero,
					Cost:        decimal.Zero,
					Commission:  decimal.Zero,
					Profit:      decimal.Zero,
				}
				byProduct[item.ProductID] = row
			}
			row.Units += item.Quantity
			row.Revenue = row.Revenue.Add(revenue)
			row.Cost = row.Cost.Add(cost)
			row.Commission = row.Commission.Add(commission)
			row.Profit = row.Revenue.Sub(row.Cost).Sub(row.Commission)
		}
	}

	summary.NetProfit = summary.Revenue.Sub(summary.Cost).Sub(summary.Commission)
	if summary.Revenue.IsPositive() {
		summary.MarginPercent = summary.NetProfit.Div(summary.Revenue).Mul(hundred).Round(2).InexactFloat64()
	}

	for _, row := range byProduct {
		summary.Products = append(summary.Products, *row)
	}
	sort.SliceStable(summary.Products, func(i, j int) bool {
		a, b := summary.Products[i], summary.Products[j]
		if !a.Profit.Equal(b.Profit) {
			return a.Profit.GreaterThan(b.Profit)
		}
		return a.ProductID < b.ProductID
	})

	order := make([]domain.Channel, 0, len(domain.Channels)+1)
	order = append(order, domain.Channels...)
	order = append(order, domain.ChannelUnknown)
	for _, channel := range order {
		if total, ok := byChannel[channel]; ok {
			summary.Channels = append(summary.Channels, *total)
		}
	}
	return summary
}
