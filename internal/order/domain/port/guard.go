// internal/order/domain/port/guard.go
package port

import "context"

// ReservationGuard 记录某个 (orderSn, goodsId) 的扣减请求是否已经发出过，
// 用来在进程重试时避免重复下发（库存侧本身幂等，这里只是减少重复流量）。
type ReservationGuard interface {
	// FirstDispatch 返回 true 表示这是第一次发出该扣减请求。
	FirstDispatch(ctx context.Context, orderSn string, goodsID int64) (bool, error)
}
