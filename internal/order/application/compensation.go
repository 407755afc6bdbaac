// internal/order/application/compensation.go
package application

import (
	"context"
	"fmt"
	"time"

	"mall/internal/order/domain"
	"mall/internal/order/domain/port"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/metrics"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRebackAttempts = 4
	defaultRebackBackoff  = 200 * time.Millisecond
)

// CompensationService 处理 order_timeout / order_reback 事件：
// 受保护地把未支付订单流转到 CANCELLED，并逐行归还库存。
// 返回非 nil 错误时调用方不得提交消息位点，等待重投。
type CompensationService struct {
	orders    domain.OrderRepository
	inventory port.InventoryService
	notifier  port.NotificationProducer
	tracer    trace.Tracer

	maxAttempts int
	baseBackoff time.Duration
}

func NewCompensationService(
	orders domain.OrderRepository,
	inventory port.InventoryService,
	notifier port.NotificationProducer,
	tracer trace.Tracer,
) *CompensationService {
	return &CompensationService{
		orders: orders, inventory: inventory,
		notifier: notifier, tracer: tracer,
		maxAttempts: defaultRebackAttempts,
		baseBackoff: defaultRebackBackoff,
	}
}

// CancelOrder 对一个 orderSn 应用补偿。消息至少投递一次，
// 所以这里必须对重复投递幂等：
//   - PAID/COMPLETED: 合法支付赢得了竞争，纯 no-op；
//   - UNPAID: 用条件 UPDATE 做"检查即流转"，与并发的支付确认互斥；
//   - CANCELLED: 上一次投递可能死在流转之后、归还之前，
//     继续归还（库存侧按 orderSn 幂等，不会二次加库存）。
func (s *CompensationService) CancelOrder(ctx context.Context, orderSn, trigger string) error {
	ctx, span := s.tracer.Start(ctx, "app.CancelOrder", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("order.sn", orderSn),
		attribute.String("compensation.trigger", trigger),
	)

	order, err := s.orders.FindBySn(ctx, orderSn)
	if errors.Is(err, domain.ErrNotFound) {
		// 没有可补偿的对象（下单可能根本没落库），直接消化掉
		logger.Ctx(ctx).Printf("WARN: compensation event for unknown order %s, ignoring", orderSn)
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return err
	}

	switch order.Status {
	case domain.StatusPaid, domain.StatusCompleted:
		span.AddEvent("Order already terminal, compensation is a no-op.")
		return nil

	case domain.StatusUnpaid:
		transitioned, err := s.orders.CancelIfUnpaid(ctx, orderSn)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if !transitioned {
			// 条件更新没命中，说明状态刚被并发修改，重读确认
			order, err = s.orders.FindBySn(ctx, orderSn)
			if err != nil {
				span.RecordError(err)
				return err
			}
			if order.Status != domain.StatusCancelled {
				span.AddEvent("Lost race to a legitimate payment update, no-op.")
				return nil
			}
		} else {
			metrics.OrdersCancelled.WithLabelValues(trigger).Inc()
			logger.Ctx(ctx).Printf("INFO: [Order: %s] cancelled via %s", orderSn, trigger)
		}

	case domain.StatusCancelled:
		span.AddEvent("Order already cancelled, re-issuing idempotent restores.")
	}

	for _, line := range order.Lines {
		if err := s.rebackWithRetry(ctx, orderSn, line); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory restore exhausted retries")
			return err
		}
	}

	s.notifyCancelled(ctx, order)
	return nil
}

// rebackWithRetry 带指数退避地重试单行库存归还。
// 重试耗尽后向上返回错误，消息留在队列里等待重投，补偿不会被静默丢弃。
func (s *CompensationService) rebackWithRetry(ctx context.Context, orderSn string, line domain.OrderLine) error {
	backoff := s.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.inventory.Reback(ctx, orderSn, line.GoodsID, line.Nums)
		if lastErr == nil {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}
		metrics.CompensationRetries.Inc()
		logger.Ctx(ctx).Printf("WARN: [Order: %s] reback goods %d failed (attempt %d/%d): %v",
			orderSn, line.GoodsID, attempt, s.maxAttempts, lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("reback goods %d for order %s: %w", line.GoodsID, orderSn, lastErr)
}

func (s *CompensationService) notifyCancelled(ctx context.Context, order *domain.Order) {
	event := &domain.OrderStatusEvent{
		OrderSn:     order.OrderSn,
		UserID:      order.UserID,
		Status:      domain.StatusCancelled,
		TotalAmount: order.TotalAmount,
		At:          time.Now(),
	}
	if err := s.notifier.OrderStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Printf("WARN: [Order: %s] failed to publish cancel event: %v", order.OrderSn, err)
	}
}
