// internal/order/interfaces/compensation_consumer.go
package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"mall/internal/order/application"
	"mall/internal/order/domain"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// CompensationConsumer 是驱动适配器：监听一个补偿主题
// (order_timeout / order_reback) 并驱动 CompensationService。
// 处理成功才提交位点；失败的消息留在队列里等待重投，
// 补偿动作永远不会被静默丢弃。
type CompensationConsumer struct {
	reader  *kafka.Reader
	svc     *application.CompensationService
	trigger string // 主题名，也用作指标 label
	wg      sync.WaitGroup
	stopped bool
}

func NewCompensationConsumer(reader *kafka.Reader, svc *application.CompensationService) *CompensationConsumer {
	return &CompensationConsumer{
		reader:  reader,
		svc:     svc,
		trigger: reader.Config().Topic,
	}
}

// Start 开始消费。单个分区内顺序处理，同一 orderSn 的事件
// 以 orderSn 为 key 落在同一分区，天然串行。
func (c *CompensationConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Printf("✅ Compensation consumer started for topic '%s'.", c.trigger)
		for {
			if c.stopped {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，提交时机自己控制
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Printf("🛑 Compensation consumer for '%s' shutting down.", c.trigger)
					return
				}
				logger.Ctx(ctx).Printf("ERROR: could not read message from '%s': %v. Retrying...", c.trigger, err)
				time.Sleep(1 * time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			if err := c.processMessage(msgCtx, msg); err != nil {
				// 不提交位点，等待重投；CancelOrder 对重复投递幂等
				logger.Ctx(msgCtx).Printf("ERROR: compensation for message on '%s' failed: %v. Leaving unacknowledged.", c.trigger, err)
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(msgCtx).Printf("ERROR: failed to commit message on '%s': %v", c.trigger, err)
			}
		}
	}()
	return nil
}

// Stop 优雅地停止消费者。
func (c *CompensationConsumer) Stop(ctx context.Context) {
	c.stopped = true
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Printf("✅ Compensation consumer for '%s' stopped.", c.trigger)
}

// Run 以 bootstrap.Runner 的形态运行消费者。
func (c *CompensationConsumer) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	c.Stop(context.Background())
	return nil
}

func (c *CompensationConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	// order_timeout 和 order_reback 的载荷都以 orderSn 为主键，
	// reback 额外携带受影响的行，但补偿逻辑以订单行落库数据为准
	var event domain.OrderRebackEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 畸形消息重投多少次都不会成功，记录后消化掉
		logger.Ctx(ctx).Printf("ERROR: failed to unmarshal event on '%s': %v. Message will be skipped.", c.trigger, err)
		return nil
	}
	if event.OrderSn == "" {
		logger.Ctx(ctx).Printf("ERROR: event on '%s' has no orderSn. Message will be skipped.", c.trigger)
		return nil
	}

	return c.svc.CancelOrder(ctx, event.OrderSn, c.trigger)
}
