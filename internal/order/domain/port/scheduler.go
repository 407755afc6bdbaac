// internal/order/domain/port/scheduler.go
package port

import "context"

// DelayScheduler 安排未来的支付超时检查。
// 到期后事件会出现在 order_timeout 主题上，由补偿消费者处理。
type DelayScheduler interface {
	SchedulePaymentTimeout(ctx context.Context, orderSn string) error
}
