// internal/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义订单聚合的持久化接口，由基础设施层实现。
// 查不到记录统一返回 ErrNotFound，调用方用 errors.Is 分支，
// 不依赖异常式控制流。
type OrderRepository interface {
	// Create 在一个本地事务里持久化订单头 + 全部订单行，
	// 并把该用户已勾选的购物车条目置为未勾选。
	// 三者要么全部生效，要么全部回滚。
	Create(ctx context.Context, order *Order) error

	// FindByID 返回订单及其订单行。userID > 0 时限定归属用户。
	FindByID(ctx context.Context, id int64, userID int64) (*Order, error)

	// FindBySn 按订单号返回订单及其订单行。
	FindBySn(ctx context.Context, orderSn string) (*Order, error)

	// List 按创建时间倒序分页。userID > 0 时过滤用户，
	// 同时返回过滤集上的总数。
	List(ctx context.Context, userID int64, page, pageSize int32) ([]Order, int64, error)

	// UpdateStatusBySn 是管理通道的直接状态写入，只校验订单存在。
	UpdateStatusBySn(ctx context.Context, orderSn string, status Status) error

	// CancelIfUnpaid 执行受保护的条件流转:
	// UPDATE ... SET status=CANCELLED WHERE order_sn=? AND status=UNPAID。
	// 返回本次调用是否真的完成了流转。
	CancelIfUnpaid(ctx context.Context, orderSn string) (bool, error)
}

// CartRepository 定义购物车的持久化接口。
type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]CartItem, error)

	// ListChecked 返回用户所有 checked=true 的条目。
	ListChecked(ctx context.Context, userID int64) ([]CartItem, error)

	// Upsert 新增条目；(userID, goodsID) 已存在时叠加数量。
	Upsert(ctx context.Context, item *CartItem) (*CartItem, error)

	// Update 更新勾选状态，nums > 0 时同时更新数量。
	Update(ctx context.Context, userID, goodsID int64, nums int32, checked bool) error

	Delete(ctx context.Context, userID, goodsID int64) error
}
