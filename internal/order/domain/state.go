// internal/order/domain/state.go
package domain

// Status 定义订单的生命周期状态。
// 流转只允许: UNPAID → PAID → COMPLETED, UNPAID → CANCELLED。
// CANCELLED 和 COMPLETED 是终态。
type Status string

const (
	StatusUnpaid    Status = "UNPAID"    // 已创建，等待支付
	StatusPaid      Status = "PAID"      // 已支付
	StatusCompleted Status = "COMPLETED" // 已完成
	StatusCancelled Status = "CANCELLED" // 已取消（超时或主动退单）
)

// Terminal 报告该状态是否为终态。
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Valid 报告该状态是否是合法的枚举值。
func Valid(s Status) bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition 报告 from → to 是否是合法的状态流转。
func CanTransition(from, to Status) bool {
	switch from {
	case StatusUnpaid:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid:
		return to == StatusCompleted
	}
	return false
}
