package domain

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderComputesTotal(t *testing.T) {
	lines := []OrderLine{
		{GoodsID: 1, GoodsName: "apple", UnitPrice: 12.5, Nums: 2},
		{GoodsID: 2, GoodsName: "pear", UnitPrice: 3.0, Nums: 4},
	}

	order, err := NewOrder(42, "alipay", "addr", "tom", "13800000000", lines)
	require.NoError(t, err)

	assert.Equal(t, StatusUnpaid, order.Status)
	assert.InDelta(t, 37.0, order.TotalAmount, 1e-9)
	assert.Equal(t, int64(42), order.UserID)
	assert.Len(t, order.Lines, 2)
	assert.NotEmpty(t, order.OrderSn)
}

func TestNewOrderRejectsEmptyLines(t *testing.T) {
	_, err := NewOrder(42, "alipay", "addr", "tom", "13800000000", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestNewOrderSn(t *testing.T) {
	sn := NewOrderSn(7)

	// 时间前缀 + userID + 8 位随机段
	assert.True(t, strings.HasPrefix(sn, time.Now().Format("20060102")))
	assert.Contains(t, sn, strconv.Itoa(7))
	assert.Len(t, sn, len("20060102150405")+1+8)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewOrderSn(7)
		assert.False(t, seen[s], "order sn must be unique")
		seen[s] = true
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusUnpaid.Terminal())
	assert.False(t, StatusPaid.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(StatusUnpaid))
	assert.True(t, Valid(StatusCancelled))
	assert.False(t, Valid(Status("SHIPPED")))
	assert.False(t, Valid(Status("")))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusUnpaid, StatusPaid, true},
		{StatusUnpaid, StatusCancelled, true},
		{StatusPaid, StatusCompleted, true},
		{StatusPaid, StatusCancelled, false},
		{StatusCancelled, StatusUnpaid, false},
		{StatusCompleted, StatusPaid, false},
		{StatusUnpaid, StatusCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
