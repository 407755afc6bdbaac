package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mall/internal/order/application"
	"mall/internal/order/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeAPI 按需注入每个方法的返回值。
type fakeAPI struct {
	createOrderRsp *application.OrderInfoResponse
	createOrderErr error
	detailRsp      *application.OrderDetailResponse
	detailErr      error
	listRsp        *application.OrderListResponse
	listErr        error
	updateErr      error
	cartListRsp    *application.CartItemListResponse
	cartCreateRsp  *application.ShopCartInfoResponse
	cartCreateErr  error
	cartUpdateErr  error
	cartDeleteErr  error

	lastStatus domain.Status
	lastSn     string
}

func (f *fakeAPI) CreateOrder(ctx context.Context, req *application.CreateOrderRequest) (*application.OrderInfoResponse, error) {
	return f.createOrderRsp, f.createOrderErr
}

func (f *fakeAPI) OrderDetail(ctx context.Context, id, userID int64) (*application.OrderDetailResponse, error) {
	return f.detailRsp, f.detailErr
}

func (f *fakeAPI) OrderList(ctx context.Context, req *application.OrderListRequest) (*application.OrderListResponse, error) {
	return f.listRsp, f.listErr
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, orderSn string, status domain.Status) error {
	f.lastSn, f.lastStatus = orderSn, status
	return f.updateErr
}

func (f *fakeAPI) CartItemList(ctx context.Context, userID int64) (*application.CartItemListResponse, error) {
	return f.cartListRsp, nil
}

func (f *fakeAPI) CreateCartItem(ctx context.Context, req *application.CartItemRequest) (*application.ShopCartInfoResponse, error) {
	return f.cartCreateRsp, f.cartCreateErr
}

func (f *fakeAPI) UpdateCartItem(ctx context.Context, req *application.CartItemRequest) error {
	return f.cartUpdateErr
}

func (f *fakeAPI) DeleteCartItem(ctx context.Context, userID, goodsID int64) error {
	return f.cartDeleteErr
}

func newTestServer(api OrderAPI) *httptest.Server {
	h := NewOrderHandler(api, noop.NewTracerProvider().Tracer("test"))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rsp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return rsp
}

func decodeError(t *testing.T, rsp *http.Response) errorBody {
	t.Helper()
	defer rsp.Body.Close()
	var body errorBody
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&body))
	return body
}

func TestCreateOrderEndpoint(t *testing.T) {
	api := &fakeAPI{createOrderRsp: &application.OrderInfoResponse{OrderSn: "sn-1", Status: "UNPAID", Total: 37.0}}
	srv := newTestServer(api)
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/create_order", map[string]interface{}{"userId": 1, "payType": "alipay"})
	defer rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	var out application.OrderInfoResponse
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&out))
	assert.Equal(t, "sn-1", out.OrderSn)
	assert.Equal(t, "UNPAID", out.Status)
}

func TestCreateOrderRequiresUserID(t *testing.T) {
	srv := newTestServer(&fakeAPI{})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/create_order", map[string]interface{}{"payType": "alipay"})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	assert.Equal(t, codeInvalidArgument, decodeError(t, rsp).Code)
}

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty cart", domain.ErrEmptyCart, http.StatusBadRequest, codeInvalidArgument},
		{"not found", domain.ErrNotFound, http.StatusNotFound, codeNotFound},
		{"unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable, codeUnavailable},
		{"timeout", domain.ErrTimeout, http.StatusServiceUnavailable, codeUnavailable},
		{"internal", domain.ErrInternal, http.StatusInternalServerError, codeInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := newTestServer(&fakeAPI{createOrderErr: c.err})
			defer srv.Close()

			rsp := postJSON(t, srv.URL+"/create_order", map[string]interface{}{"userId": 1})
			assert.Equal(t, c.wantStatus, rsp.StatusCode)
			assert.Equal(t, c.wantCode, decodeError(t, rsp).Code)
		})
	}
}

func TestOrderDetailEndpoint(t *testing.T) {
	api := &fakeAPI{detailRsp: &application.OrderDetailResponse{
		OrderInfo: application.OrderInfoResponse{OrderSn: "sn-1"},
		Items:     []application.OrderItemResponse{{GoodsID: 1, Nums: 2}},
	}}
	srv := newTestServer(api)
	defer srv.Close()

	rsp, err := http.Get(srv.URL + "/order_detail?id=1&userId=7")
	require.NoError(t, err)
	defer rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	var out application.OrderDetailResponse
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&out))
	assert.Equal(t, "sn-1", out.OrderInfo.OrderSn)
	assert.Len(t, out.Items, 1)
}

func TestOrderDetailRequiresID(t *testing.T) {
	srv := newTestServer(&fakeAPI{})
	defer srv.Close()

	rsp, err := http.Get(srv.URL + "/order_detail")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	assert.Equal(t, codeInvalidArgument, decodeError(t, rsp).Code)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	api := &fakeAPI{}
	srv := newTestServer(api)
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/update_order_status", map[string]string{"orderSn": "sn-1", "status": "PAID"})
	defer rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Equal(t, "sn-1", api.lastSn)
	assert.Equal(t, domain.StatusPaid, api.lastStatus)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	srv := newTestServer(&fakeAPI{})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/update_order_status", map[string]string{"orderSn": "sn-1", "status": "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	assert.Equal(t, codeInvalidArgument, decodeError(t, rsp).Code)
}

func TestCartEndpointsValidateIdentity(t *testing.T) {
	srv := newTestServer(&fakeAPI{})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/create_cart_item", map[string]interface{}{"userId": 1, "goodsId": 0, "nums": 2})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rsp = postJSON(t, srv.URL+"/create_cart_item", map[string]interface{}{"userId": 1, "goodsId": 2, "nums": 0})
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode)

	rspGet, err := http.Get(srv.URL + "/cart_item_list")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rspGet.StatusCode)
}

func TestDeleteCartItemNotFoundMapsTo404(t *testing.T) {
	srv := newTestServer(&fakeAPI{cartDeleteErr: domain.ErrNotFound})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/delete_cart_item", map[string]interface{}{"userId": 1, "goodsId": 2})
	assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
	assert.Equal(t, codeNotFound, decodeError(t, rsp).Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeAPI{})
	defer srv.Close()

	rsp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
}
