// internal/order/domain/port/inventory.go
package port

import "context"

// InventoryService 包装库存服务的扣减与归还。
// 两个操作在库存侧都以 (orderSn, goodsId) 去重，重复投递是幂等的。
type InventoryService interface {
	Reserve(ctx context.Context, orderSn string, goodsID int64, nums int32) error
	Reback(ctx context.Context, orderSn string, goodsID int64, nums int32) error
}
