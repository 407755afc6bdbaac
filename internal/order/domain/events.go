// internal/order/domain/events.go
package domain

import "time"

// OrderTimeoutEvent 是超时未支付事件的载荷，topic: order_timeout。
type OrderTimeoutEvent struct {
	OrderSn string `json:"orderSn"`
}

// RebackLine 标识退单事件中需要回滚库存的一行。
type RebackLine struct {
	GoodsID int64 `json:"goodsId"`
	Nums    int32 `json:"nums"`
}

// OrderRebackEvent 是主动退单/归还库存事件的载荷，topic: order_reback。
type OrderRebackEvent struct {
	OrderSn string       `json:"orderSn"`
	Items   []RebackLine `json:"items,omitempty"`
}

// OrderStatusEvent 在订单状态发生变化后发布，供推送网关等下游消费。
type OrderStatusEvent struct {
	OrderSn     string    `json:"orderSn"`
	UserID      int64     `json:"userId"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	At          time.Time `json:"at"`
}
