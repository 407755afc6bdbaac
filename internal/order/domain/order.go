// internal/order/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order 是订单聚合的根实体。订单一经创建永不物理删除。
type Order struct {
	ID           int64
	UserID       int64
	OrderSn      string // 全局唯一，创建时生成一次，之后不变
	PayType      string
	Status       Status
	TotalAmount  float64
	Address      string
	SignerName   string
	SignerMobile string
	CreatedAt    time.Time

	Lines []OrderLine
}

// OrderLine 是订单行。goodsName/goodsImage/unitPrice 是下单时刻
// 从商品服务抓取的快照，创建之后不再跟随商品的实时值变化。
type OrderLine struct {
	ID         int64
	OrderID    int64
	GoodsID    int64
	GoodsName  string
	GoodsImage string
	UnitPrice  float64
	Nums       int32
}

// NewOrderSn 生成订单号: 时间戳 + 用户 ID + 随机后缀。
// 可读（时间前缀便于排查），同时由随机段保证唯一。
func NewOrderSn(userID int64) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s%d%s", time.Now().Format("20060102150405"), userID, suffix)
}

// NewOrder 组装一个待持久化的新订单，初始状态 UNPAID。
// 订单不允许没有订单行。
func NewOrder(userID int64, payType, address, signerName, signerMobile string, lines []OrderLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total float64
	for _, line := range lines {
		total += line.UnitPrice * float64(line.Nums)
	}

	return &Order{
		UserID:       userID,
		OrderSn:      NewOrderSn(userID),
		PayType:      payType,
		Status:       StatusUnpaid,
		TotalAmount:  total,
		Address:      address,
		SignerName:   signerName,
		SignerMobile: signerMobile,
		CreatedAt:    time.Now(),
		Lines:        lines,
	}, nil
}
