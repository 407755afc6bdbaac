// internal/order/domain/port/catalog.go
package port

import "context"

// GoodsInfo 是商品服务返回的实时快照字段。
type GoodsInfo struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"goodsFrontImage"`
	Price float64 `json:"shopPrice"`
}

// CatalogService 包装商品服务的批量查询。
// 不存在的 id 不会出现在返回列表里，由调用方决定如何处理缺失。
type CatalogService interface {
	BatchGetGoods(ctx context.Context, ids []int64) ([]GoodsInfo, error)
}
