// internal/order/domain/cart.go
package domain

// CartItem 是购物车条目。下单只消费 checked=true 的条目，
// 价格永远以商品服务的实时值为准，购物车里不缓存价格。
type CartItem struct {
	ID      int64
	UserID  int64
	GoodsID int64
	Nums    int32
	Checked bool
}
