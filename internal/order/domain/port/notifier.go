// internal/order/domain/port/notifier.go
package port

import (
	"context"

	"mall/internal/order/domain"
)

// NotificationProducer 发布订单状态变化事件。
type NotificationProducer interface {
	OrderStatusChanged(ctx context.Context, event *domain.OrderStatusEvent) error
}
