// internal/order/infrastructure/adapter/scheduler_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"mall/internal/order/domain"
	"mall/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

const (
	// 支付窗口与延迟主题一一对应，延迟调度器按主题名决定延迟时长
	delayTopic       = "delay_topic_30m"
	timeoutRealTopic = "order_timeout"
	paymentDeadline  = 30 * time.Minute
)

// SchedulerKafkaAdapter 实现 port.DelayScheduler：
// 下单时把超时检查事件写入延迟主题，到期后由延迟调度器
// 搬运到 order_timeout，触发补偿流程。
type SchedulerKafkaAdapter struct {
	delayWriter *kafka.Writer
}

func NewSchedulerKafkaAdapter(brokers []string) *SchedulerKafkaAdapter {
	return &SchedulerKafkaAdapter{
		delayWriter: mq.NewKafkaWriter(brokers, delayTopic),
	}
}

func (a *SchedulerKafkaAdapter) SchedulePaymentTimeout(ctx context.Context, orderSn string) error {
	event := domain.OrderTimeoutEvent{OrderSn: orderSn}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	deliveryTime := time.Now().Add(paymentDeadline).Format(time.RFC3339)
	msg := kafka.Message{
		Key:   []byte(orderSn),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "real-topic", Value: []byte(timeoutRealTopic)},
			{Key: "delay-timestamp", Value: []byte(deliveryTime)},
		},
	}
	mq.InjectTraceContext(ctx, &msg.Headers)

	return a.delayWriter.WriteMessages(ctx, msg)
}

// Close 关闭底层的 Kafka writer。
func (a *SchedulerKafkaAdapter) Close() error {
	return a.delayWriter.Close()
}
