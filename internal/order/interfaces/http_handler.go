// internal/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mall/internal/order/application"
	"mall/internal/order/domain"
	"mall/internal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// OrderAPI 是订单服务对外 RPC 面的封闭接口，
// 由 application.OrderApplicationService 实现。
type OrderAPI interface {
	CreateOrder(ctx context.Context, req *application.CreateOrderRequest) (*application.OrderInfoResponse, error)
	OrderDetail(ctx context.Context, id, userID int64) (*application.OrderDetailResponse, error)
	OrderList(ctx context.Context, req *application.OrderListRequest) (*application.OrderListResponse, error)
	UpdateOrderStatus(ctx context.Context, orderSn string, status domain.Status) error
	CartItemList(ctx context.Context, userID int64) (*application.CartItemListResponse, error)
	CreateCartItem(ctx context.Context, req *application.CartItemRequest) (*application.ShopCartInfoResponse, error)
	UpdateCartItem(ctx context.Context, req *application.CartItemRequest) error
	DeleteCartItem(ctx context.Context, userID, goodsID int64) error
}

// 对外错误码词表，固定不扩展。
const (
	codeNotFound        = "NOT_FOUND"
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeInternal        = "INTERNAL"
	codeUnavailable     = "UNAVAILABLE"
)

type errorBody struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// OrderHandler 把 HTTP 请求翻译成 OrderAPI 调用。
type OrderHandler struct {
	api    OrderAPI
	tracer trace.Tracer
}

func NewOrderHandler(api OrderAPI, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{api: api, tracer: tracer}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/create_order", h.createOrder)
	mux.HandleFunc("/order_detail", h.orderDetail)
	mux.HandleFunc("/order_list", h.orderList)
	mux.HandleFunc("/update_order_status", h.updateOrderStatus)
	mux.HandleFunc("/cart_item_list", h.cartItemList)
	mux.HandleFunc("/create_cart_item", h.createCartItem)
	mux.HandleFunc("/update_cart_item", h.updateCartItem)
	mux.HandleFunc("/delete_cart_item", h.deleteCartItem)
}

func (h *OrderHandler) start(r *http.Request, name string) (context.Context, trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return h.tracer.Start(ctx, name)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "malformed request body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "userId is required")
		return
	}

	rsp, err := h.api.CreateOrder(ctx, &req)
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, rsp)
}

func (h *OrderHandler) orderDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.OrderDetail")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "id is required")
		return
	}
	userID, _ := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)

	rsp, err := h.api.OrderDetail(ctx, id, userID)
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, rsp)
}

func (h *OrderHandler) orderList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.OrderList")
	defer span.End()

	userID, _ := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	pages, _ := strconv.ParseInt(r.URL.Query().Get("pages"), 10, 32)
	perNums, _ := strconv.ParseInt(r.URL.Query().Get("pagePerNums"), 10, 32)

	rsp, err := h.api.OrderList(ctx, &application.OrderListRequest{
		UserID:      userID,
		Pages:       int32(pages),
		PagePerNums: int32(perNums),
	})
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, rsp)
}

func (h *OrderHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.UpdateOrderStatus")
	defer span.End()

	var req struct {
		OrderSn string `json:"orderSn"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "malformed request body")
		return
	}
	if req.OrderSn == "" || !domain.Valid(domain.Status(req.Status)) {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "orderSn and a valid status are required")
		return
	}

	if err := h.api.UpdateOrderStatus(ctx, req.OrderSn, domain.Status(req.Status)); err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, map[string]string{"result": "ok"})
}

func (h *OrderHandler) cartItemList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.CartItemList")
	defer span.End()

	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "userId is required")
		return
	}

	rsp, err := h.api.CartItemList(ctx, userID)
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, rsp)
}

func (h *OrderHandler) createCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.CreateCartItem")
	defer span.End()

	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}
	if req.Nums <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "nums must be positive")
		return
	}

	rsp, err := h.api.CreateCartItem(ctx, req)
	if err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, rsp)
}

func (h *OrderHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.UpdateCartItem")
	defer span.End()

	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}

	if err := h.api.UpdateCartItem(ctx, req); err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, map[string]string{"result": "ok"})
}

func (h *OrderHandler) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.start(r, "api.DeleteCartItem")
	defer span.End()

	req, ok := decodeCartRequest(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteCartItem(ctx, req.UserID, req.GoodsID); err != nil {
		h.writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, map[string]string{"result": "ok"})
}

func decodeCartRequest(w http.ResponseWriter, r *http.Request) (*application.CartItemRequest, bool) {
	var req application.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "malformed request body")
		return nil, false
	}
	if req.UserID <= 0 || req.GoodsID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "userId and goodsId are required")
		return nil, false
	}
	return &req, true
}

// writeDomainError 把领域错误映射到固定错误码词表。
func (h *OrderHandler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable), errors.Is(err, domain.ErrTimeout):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
	default:
		logger.Ctx(ctx).Printf("ERROR: unhandled error on rpc surface: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Code: code, Details: details})
}
