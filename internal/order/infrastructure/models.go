// internal/order/infrastructure/models.go
package infrastructure

import (
	"time"

	"mall/internal/order/domain"
)

// OrderModel 对应数据库中的 order_info 表。
type OrderModel struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       int64  `gorm:"index"`
	OrderSn      string `gorm:"uniqueIndex;size:64"`
	PayType      string `gorm:"size:16"`
	Status       string `gorm:"size:16;index"`
	TotalAmount  float64
	Address      string `gorm:"size:256"`
	SignerName   string `gorm:"size:64"`
	SignerMobile string `gorm:"size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OrderModel) TableName() string {
	return "order_info"
}

// OrderGoodsModel 对应 order_goods 表，字段是下单时刻的快照。
type OrderGoodsModel struct {
	ID         int64 `gorm:"primaryKey"`
	OrderID    int64 `gorm:"index"`
	GoodsID    int64
	GoodsName  string `gorm:"size:128"`
	GoodsImage string `gorm:"size:256"`
	GoodsPrice float64
	Nums       int32
}

func (OrderGoodsModel) TableName() string {
	return "order_goods"
}

// ShoppingCartModel 对应 shopping_cart 表。
type ShoppingCartModel struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"index:idx_user_goods,unique"`
	GoodsID   int64 `gorm:"index:idx_user_goods,unique"`
	Nums      int32
	Checked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ShoppingCartModel) TableName() string {
	return "shopping_cart"
}

func toDomainOrder(m *OrderModel, lines []OrderGoodsModel) *domain.Order {
	order := &domain.Order{
		ID:           m.ID,
		UserID:       m.UserID,
		OrderSn:      m.OrderSn,
		PayType:      m.PayType,
		Status:       domain.Status(m.Status),
		TotalAmount:  m.TotalAmount,
		Address:      m.Address,
		SignerName:   m.SignerName,
		SignerMobile: m.SignerMobile,
		CreatedAt:    m.CreatedAt,
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, toDomainLine(line))
	}
	return order
}

func toDomainLine(m OrderGoodsModel) domain.OrderLine {
	return domain.OrderLine{
		ID:         m.ID,
		OrderID:    m.OrderID,
		GoodsID:    m.GoodsID,
		GoodsName:  m.GoodsName,
		GoodsImage: m.GoodsImage,
		UnitPrice:  m.GoodsPrice,
		Nums:       m.Nums,
	}
}

func toOrderModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:           o.ID,
		UserID:       o.UserID,
		OrderSn:      o.OrderSn,
		PayType:      o.PayType,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount,
		Address:      o.Address,
		SignerName:   o.SignerName,
		SignerMobile: o.SignerMobile,
		CreatedAt:    o.CreatedAt,
	}
}

func toDomainCartItem(m *ShoppingCartModel) domain.CartItem {
	return domain.CartItem{
		ID:      m.ID,
		UserID:  m.UserID,
		GoodsID: m.GoodsID,
		Nums:    m.Nums,
		Checked: m.Checked,
	}
}
