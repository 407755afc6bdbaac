// internal/order/domain/errors.go
package domain

import "errors"

// 错误分类是对外 RPC 错误码的唯一来源，
// 接口层只依赖 errors.Is 做映射，不解析错误文本。
var (
	ErrNotFound           = errors.New("record not found")
	ErrEmptyCart          = errors.New("no checked item in shopping cart")
	ErrServiceUnavailable = errors.New("dependent service unavailable")
	ErrTimeout            = errors.New("dependent service call timed out")
	ErrInternal           = errors.New("internal error")
)
