package application

import (
	"context"
	"testing"
	"time"

	"mall/internal/order/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newCompensationFixture() (*fakeOrderRepo, *fakeInventory, *fakeNotifier, *CompensationService) {
	orders := newFakeOrderRepo()
	inventory := &fakeInventory{}
	notifier := &fakeNotifier{}
	svc := NewCompensationService(orders, inventory, notifier, noop.NewTracerProvider().Tracer("test"))
	svc.baseBackoff = time.Millisecond
	return orders, inventory, notifier, svc
}

func unpaidOrder(sn string) *domain.Order {
	return &domain.Order{
		ID: 1, UserID: 7, OrderSn: sn, Status: domain.StatusUnpaid, TotalAmount: 37.0,
		Lines: []domain.OrderLine{
			{GoodsID: 1, Nums: 2},
			{GoodsID: 2, Nums: 4},
		},
	}
}

func TestCancelOrderUnknownOrderIsSwallowed(t *testing.T) {
	_, inventory, _, svc := newCompensationFixture()

	err := svc.CancelOrder(context.Background(), "no-such-sn", "order_timeout")
	assert.NoError(t, err, "unknown order must be acknowledged, not retried forever")
	assert.Empty(t, inventory.rebacks)
}

func TestCancelOrderPaidIsNoOp(t *testing.T) {
	orders, inventory, notifier, svc := newCompensationFixture()
	o := unpaidOrder("sn-1")
	o.Status = domain.StatusPaid
	orders.bySn["sn-1"] = o

	err := svc.CancelOrder(context.Background(), "sn-1", "order_timeout")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, orders.bySn["sn-1"].Status)
	assert.Empty(t, inventory.rebacks)
	assert.Zero(t, notifier.count())
}

func TestCancelOrderUnpaidTransitionsAndRestores(t *testing.T) {
	orders, inventory, notifier, svc := newCompensationFixture()
	orders.bySn["sn-1"] = unpaidOrder("sn-1")

	err := svc.CancelOrder(context.Background(), "sn-1", "order_timeout")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, orders.bySn["sn-1"].Status)
	require.Len(t, inventory.rebacks, 2)
	assert.Equal(t, invCall{"sn-1", 1, 2}, inventory.rebacks[0])
	assert.Equal(t, invCall{"sn-1", 2, 4}, inventory.rebacks[1])
	assert.Equal(t, 1, notifier.count())
}

func TestCancelOrderLostRaceToPayment(t *testing.T) {
	orders, inventory, notifier, svc := newCompensationFixture()
	orders.bySn["sn-1"] = unpaidOrder("sn-1")
	orders.raceToPaid = true

	err := svc.CancelOrder(context.Background(), "sn-1", "order_timeout")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaid, orders.bySn["sn-1"].Status)
	assert.Empty(t, inventory.rebacks, "a paid order keeps its inventory")
	assert.Zero(t, notifier.count())
}

func TestCancelOrderRedeliveryReissuesRestores(t *testing.T) {
	orders, inventory, _, svc := newCompensationFixture()
	o := unpaidOrder("sn-1")
	o.Status = domain.StatusCancelled
	orders.bySn["sn-1"] = o

	// 上一次投递可能死在流转之后、归还之前；重投必须补齐归还
	err := svc.CancelOrder(context.Background(), "sn-1", "order_reback")
	require.NoError(t, err)
	assert.Len(t, inventory.rebacks, 2)
}

func TestCancelOrderRetriesTransientRebackFailures(t *testing.T) {
	orders, inventory, _, svc := newCompensationFixture()
	orders.bySn["sn-1"] = unpaidOrder("sn-1")
	inventory.failRebacks = 2

	err := svc.CancelOrder(context.Background(), "sn-1", "order_timeout")
	require.NoError(t, err)
	assert.Len(t, inventory.rebacks, 2)
	assert.Equal(t, 4, inventory.rebackCalls, "two failures then two lines succeed")
}

func TestCancelOrderExhaustedRetriesSurfaceError(t *testing.T) {
	orders, inventory, notifier, svc := newCompensationFixture()
	orders.bySn["sn-1"] = unpaidOrder("sn-1")
	inventory.failRebacks = 1000 // 永远失败

	err := svc.CancelOrder(context.Background(), "sn-1", "order_timeout")
	require.Error(t, err, "exhausted restores must leave the message unacknowledged")
	assert.Equal(t, svc.maxAttempts, inventory.rebackCalls)
	assert.Zero(t, notifier.count())

	// 订单已流转到 CANCELLED，重投会走重发归还的分支
	assert.Equal(t, domain.StatusCancelled, orders.bySn["sn-1"].Status)
}
