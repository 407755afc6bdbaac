// internal/order/application/service.go
package application

import (
	"context"
	"fmt"
	"time"

	"mall/internal/order/domain"
	"mall/internal/order/domain/port"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 10

// OrderApplicationService 编排下单 Saga 和订单/购物车的查询与维护。
// 它不关心传输层和存储细节，只依赖领域仓储和出站端口。
type OrderApplicationService struct {
	orders    domain.OrderRepository
	carts     domain.CartRepository
	catalog   port.CatalogService
	inventory port.InventoryService
	notifier  port.NotificationProducer
	guard     port.ReservationGuard
	scheduler port.DelayScheduler
	tracer    trace.Tracer

	reserveTimeout time.Duration
}

func NewOrderApplicationService(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	catalog port.CatalogService,
	inventory port.InventoryService,
	notifier port.NotificationProducer,
	guard port.ReservationGuard,
	scheduler port.DelayScheduler,
	tracer trace.Tracer,
	reserveTimeout time.Duration,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders: orders, carts: carts,
		catalog: catalog, inventory: inventory,
		notifier: notifier, guard: guard,
		scheduler:      scheduler,
		tracer:         tracer,
		reserveTimeout: reserveTimeout,
	}
}

// CreateOrder 是下单 Saga 的本地部分：
// 读勾选的购物车 → 解析商品服务 → 批量拉价格快照 → 本地事务落库，
// 提交之后异步请求扣减库存，不等待确认（最终一致，由超时补偿兜底）。
// 提交之前任何依赖失败都会让整个操作原子地失败，不留半个订单。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderInfoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", req.UserID))

	cartItems, err := s.carts.ListChecked(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, domain.ErrEmptyCart
	}

	ids := make([]int64, 0, len(cartItems))
	for _, item := range cartItems {
		ids = append(ids, item.GoodsID)
	}

	goods, err := s.catalog.BatchGetGoods(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch get goods failed")
		return nil, err
	}
	goodsByID := make(map[int64]port.GoodsInfo, len(goods))
	for _, g := range goods {
		goodsByID[g.ID] = g
	}

	// 快照字段一律取商品服务的实时值，绝不用购物车里的陈旧数据。
	// 商品服务没返回的 id 让整个下单失败，不静默丢行。
	lines := make([]domain.OrderLine, 0, len(cartItems))
	for _, item := range cartItems {
		info, ok := goodsByID[item.GoodsID]
		if !ok {
			err := fmt.Errorf("%w: goods %d missing from catalog response", domain.ErrNotFound, item.GoodsID)
			span.RecordError(err)
			return nil, err
		}
		lines = append(lines, domain.OrderLine{
			GoodsID:    info.ID,
			GoodsName:  info.Name,
			GoodsImage: info.Image,
			UnitPrice:  info.Price,
			Nums:       item.Nums,
		})
	}

	order, err := domain.NewOrder(req.UserID, req.PayType, req.Address, req.SignerName, req.SignerMobile, lines)
	if err != nil {
		return nil, err
	}

	// 订单头 + 订单行 + 购物车取消勾选，一个事务内落库
	if err := s.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order failed")
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	span.AddEvent("Order persisted with UNPAID state.")

	// 安排支付超时检查；失败只告警，订单不会因此回滚，
	// 但该订单将失去超时自动取消的保护
	if err := s.scheduler.SchedulePaymentTimeout(ctx, order.OrderSn); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Printf("WARN: [Order: %s] failed to schedule payment timeout: %v", order.OrderSn, err)
	}

	// 扣减库存走后台，不阻塞响应；只继承 trace 信息，不继承请求的超时
	bgCtx := trace.ContextWithRemoteSpanContext(context.Background(), trace.SpanContextFromContext(ctx))
	go s.dispatchReservations(bgCtx, order)
	go s.publishStatus(bgCtx, order)

	logger.Ctx(ctx).Printf("INFO: [Order: %s] created for user %d, total %.2f", order.OrderSn, order.UserID, order.TotalAmount)
	rsp := toOrderInfoResponse(order)
	return &rsp, nil
}

// dispatchReservations 为每个订单行发出一次扣减请求。
// 以 (orderSn, goodsId) 为键，重复投递在库存侧是 no-op；
// 发送失败不回滚订单，超时补偿流程会把未支付订单的库存收回来。
func (s *OrderApplicationService) dispatchReservations(ctx context.Context, order *domain.Order) {
	ctx, cancel := context.WithTimeout(ctx, s.reserveTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "app.DispatchReservations")
	defer span.End()
	span.SetAttributes(attribute.String("order.sn", order.OrderSn))

	g, gctx := errgroup.WithContext(ctx)
	for _, line := range order.Lines {
		line := line
		g.Go(func() error {
			first, err := s.guard.FirstDispatch(gctx, order.OrderSn, line.GoodsID)
			if err != nil {
				// guard 只是去重优化，失败时照常下发，库存侧幂等
				logger.Ctx(gctx).Printf("WARN: reservation guard failed for %s/%d: %v", order.OrderSn, line.GoodsID, err)
			} else if !first {
				return nil
			}
			if err := s.inventory.Reserve(gctx, order.OrderSn, line.GoodsID, line.Nums); err != nil {
				metrics.ReservationDispatchFailures.Inc()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation dispatch incomplete")
		logger.Ctx(ctx).Printf("WARN: [Order: %s] reservation dispatch incomplete: %v. Timeout compensation will reconcile.", order.OrderSn, err)
	}
}

func (s *OrderApplicationService) publishStatus(ctx context.Context, order *domain.Order) {
	event := &domain.OrderStatusEvent{
		OrderSn:     order.OrderSn,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		At:          time.Now(),
	}
	if err := s.notifier.OrderStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Printf("WARN: [Order: %s] failed to publish status event: %v", order.OrderSn, err)
	}
}

// OrderDetail 返回订单及其快照订单行。userID > 0 时限定归属。
func (s *OrderApplicationService) OrderDetail(ctx context.Context, id, userID int64) (*OrderDetailResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.OrderDetail")
	defer span.End()

	order, err := s.orders.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &OrderDetailResponse{
		OrderInfo: toOrderInfoResponse(order),
		Items:     toOrderItemResponses(order.Lines),
	}, nil
}

// OrderList 按创建时间倒序分页；pageSize 缺省为 10。
func (s *OrderApplicationService) OrderList(ctx context.Context, req *OrderListRequest) (*OrderListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.OrderList")
	defer span.End()

	page := req.Pages
	if page <= 0 {
		page = 1
	}
	pageSize := req.PagePerNums
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	orders, total, err := s.orders.List(ctx, req.UserID, page, pageSize)
	if err != nil {
		return nil, err
	}

	rsp := &OrderListResponse{Total: total}
	for i := range orders {
		rsp.Data = append(rsp.Data, toOrderInfoResponse(&orders[i]))
	}
	return rsp, nil
}

// UpdateOrderStatus 是管理通道的直接状态写入。
// 只校验订单存在，不执行状态机——调用方必须是可信的内部系统。
func (s *OrderApplicationService) UpdateOrderStatus(ctx context.Context, orderSn string, status domain.Status) error {
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrderStatus")
	defer span.End()

	if err := s.orders.UpdateStatusBySn(ctx, orderSn, status); err != nil {
		return err
	}
	logger.Ctx(ctx).Printf("INFO: [Order: %s] status set to %s via admin channel", orderSn, status)
	return nil
}

func (s *OrderApplicationService) CartItemList(ctx context.Context, userID int64) (*CartItemListResponse, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rsp := &CartItemListResponse{Total: int32(len(items))}
	for _, item := range items {
		rsp.Data = append(rsp.Data, toShopCartInfoResponse(item))
	}
	return rsp, nil
}

func (s *OrderApplicationService) CreateCartItem(ctx context.Context, req *CartItemRequest) (*ShopCartInfoResponse, error) {
	item, err := s.carts.Upsert(ctx, &domain.CartItem{
		UserID:  req.UserID,
		GoodsID: req.GoodsID,
		Nums:    req.Nums,
		Checked: req.Checked,
	})
	if err != nil {
		return nil, err
	}
	rsp := toShopCartInfoResponse(*item)
	return &rsp, nil
}

func (s *OrderApplicationService) UpdateCartItem(ctx context.Context, req *CartItemRequest) error {
	return s.carts.Update(ctx, req.UserID, req.GoodsID, req.Nums, req.Checked)
}

func (s *OrderApplicationService) DeleteCartItem(ctx context.Context, userID, goodsID int64) error {
	return s.carts.Delete(ctx, userID, goodsID)
}
