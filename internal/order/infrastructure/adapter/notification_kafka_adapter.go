// internal/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"mall/internal/order/domain"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// NotificationKafkaAdapter 实现 port.NotificationProducer，
// 把订单状态变化事件发到通知主题，供推送网关消费。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (p *NotificationKafkaAdapter) OrderStatusChanged(ctx context.Context, event *domain.OrderStatusEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// 以 userId 为 key，同一用户的通知保持有序
	key := []byte(strconv.FormatInt(event.UserID, 10))
	if err := mq.ProduceMessage(ctx, p.writer, key, eventBytes); err != nil {
		logger.Ctx(ctx).Printf("ERROR: failed to produce order status event for %s: %v", event.OrderSn, err)
		return err
	}
	return nil
}
