package domain

import "time"

type KitchenOverview struct {
	Orders            []KitchenOrder `json:"orders"`
	ActiveOrders      int            `json:"active_orders"`
	EstimatedWaitTime int            `json:"estimated_wait_time"`
}

type KitchenOrder struct {
	SaleID         int64         `json:"sale_id"`
	Status         OrderStatus   `json:"status"`
	ClientName     *string       `json:"client_name,omitempty"`
	Channel        Channel       `json:"channel"`
	CreatedAt      time.Time     `json:"created_at"`
	MinutesWaiting int           `json:"minutes_waiting"`
	Items          []KitchenItem `json:"items"`
}

type KitchenItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}
