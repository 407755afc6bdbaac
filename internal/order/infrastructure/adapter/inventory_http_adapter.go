// internal/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"mall/internal/pkg/httpclient"
)

const (
	inventoryReservePath = "/sell"
	inventoryRebackPath  = "/reback"
)

// InventoryHTTPAdapter 实现 port.InventoryService。
// 扣减和归还都带上 orderSn，库存侧据此幂等。
type InventoryHTTPAdapter struct {
	client      *httpclient.Client
	serviceName string
	timeout     time.Duration
}

func NewInventoryHTTPAdapter(client *httpclient.Client, serviceName string, timeout time.Duration) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, serviceName: serviceName, timeout: timeout}
}

func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, orderSn string, goodsID int64, nums int32) error {
	return a.call(ctx, inventoryReservePath, orderSn, goodsID, nums)
}

func (a *InventoryHTTPAdapter) Reback(ctx context.Context, orderSn string, goodsID int64, nums int32) error {
	return a.call(ctx, inventoryRebackPath, orderSn, goodsID, nums)
}

func (a *InventoryHTTPAdapter) call(ctx context.Context, path, orderSn string, goodsID int64, nums int32) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("orderSn", orderSn)
	params.Set("goodsId", strconv.FormatInt(goodsID, 10))
	params.Set("nums", strconv.FormatInt(int64(nums), 10))

	if err := a.client.CallService(ctx, a.serviceName, path, params, nil); err != nil {
		return translateCallError(err)
	}
	return nil
}
