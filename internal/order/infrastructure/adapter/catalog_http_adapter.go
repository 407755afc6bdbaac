// internal/order/infrastructure/adapter/catalog_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mall/internal/order/domain/port"
	"mall/internal/pkg/httpclient"
)

const batchGetGoodsPath = "/batch_get_goods"

// CatalogHTTPAdapter 实现 port.CatalogService。
// 地址在每次调用时通过注册中心解析，不做本地缓存。
type CatalogHTTPAdapter struct {
	client      *httpclient.Client
	serviceName string
	timeout     time.Duration
}

func NewCatalogHTTPAdapter(client *httpclient.Client, serviceName string, timeout time.Duration) *CatalogHTTPAdapter {
	return &CatalogHTTPAdapter{client: client, serviceName: serviceName, timeout: timeout}
}

type batchGoodsResponse struct {
	Total int32            `json:"total"`
	Data  []port.GoodsInfo `json:"data"`
}

// BatchGetGoods 批量查询商品快照。不存在的 id 不会出现在结果中。
func (a *CatalogHTTPAdapter) BatchGetGoods(ctx context.Context, ids []int64) ([]port.GoodsInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	idStrs := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrs = append(idStrs, strconv.FormatInt(id, 10))
	}
	params := url.Values{}
	params.Set("ids", strings.Join(idStrs, ","))

	var rsp batchGoodsResponse
	if err := a.client.CallService(ctx, a.serviceName, batchGetGoodsPath, params, &rsp); err != nil {
		return nil, translateCallError(err)
	}
	return rsp.Data, nil
}
