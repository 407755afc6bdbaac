// internal/order/application/dto.go
package application

import (
	"mall/internal/order/domain"
)

// CreateOrderRequest 是下单入参。价格不由调用方传入，
// 一律以下单时刻商品服务的快照为准。
type CreateOrderRequest struct {
	UserID       int64  `json:"userId"`
	PayType      string `json:"payType"`
	Address      string `json:"address"`
	SignerName   string `json:"name"`
	SignerMobile string `json:"mobile"`
}

type OrderInfoResponse struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"userId"`
	OrderSn string  `json:"orderSn"`
	PayType string  `json:"payType"`
	Status  string  `json:"status"`
	Total   float64 `json:"total"`
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Mobile  string  `json:"mobile"`
	AddTime string  `json:"addTime"`
}

type OrderItemResponse struct {
	ID         int64   `json:"id"`
	GoodsID    int64   `json:"goodsId"`
	GoodsName  string  `json:"goodsName"`
	GoodsImage string  `json:"goodsImage"`
	GoodsPrice float64 `json:"goodsPrice"`
	Nums       int32   `json:"nums"`
}

type OrderDetailResponse struct {
	OrderInfo OrderInfoResponse   `json:"orderInfo"`
	Items     []OrderItemResponse `json:"data"`
}

type OrderListRequest struct {
	UserID      int64 `json:"userId"`
	Pages       int32 `json:"pages"`
	PagePerNums int32 `json:"pagePerNums"`
}

type OrderListResponse struct {
	Total int64               `json:"total"`
	Data  []OrderInfoResponse `json:"data"`
}

type CartItemRequest struct {
	UserID  int64 `json:"userId"`
	GoodsID int64 `json:"goodsId"`
	Nums    int32 `json:"nums"`
	Checked bool  `json:"checked"`
}

type ShopCartInfoResponse struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"userId"`
	GoodsID int64 `json:"goodsId"`
	Nums    int32 `json:"nums"`
	Checked bool  `json:"checked"`
}

type CartItemListResponse struct {
	Total int32                  `json:"total"`
	Data  []ShopCartInfoResponse `json:"data"`
}

const addTimeLayout = "2006-01-02 15:04:05"

func toOrderInfoResponse(o *domain.Order) OrderInfoResponse {
	return OrderInfoResponse{
		ID:      o.ID,
		UserID:  o.UserID,
		OrderSn: o.OrderSn,
		PayType: o.PayType,
		Status:  string(o.Status),
		Total:   o.TotalAmount,
		Address: o.Address,
		Name:    o.SignerName,
		Mobile:  o.SignerMobile,
		AddTime: o.CreatedAt.Format(addTimeLayout),
	}
}

func toOrderItemResponses(lines []domain.OrderLine) []OrderItemResponse {
	items := make([]OrderItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItemResponse{
			ID:         line.ID,
			GoodsID:    line.GoodsID,
			GoodsName:  line.GoodsName,
			GoodsImage: line.GoodsImage,
			GoodsPrice: line.UnitPrice,
			Nums:       line.Nums,
		})
	}
	return items
}

func toShopCartInfoResponse(item domain.CartItem) ShopCartInfoResponse {
	return ShopCartInfoResponse{
		ID:      item.ID,
		UserID:  item.UserID,
		GoodsID: item.GoodsID,
		Nums:    item.Nums,
		Checked: item.Checked,
	}
}
