// internal/order/infrastructure/adapter/errors.go
package adapter

import (
	"context"
	"errors"
	"fmt"

	"mall/internal/order/domain"
	"mall/internal/pkg/httpclient"
)

// translateCallError 把传输层错误归入领域错误分类，
// 上层只需要对 domain.Err* 做 errors.Is 判断。
func translateCallError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	case errors.Is(err, httpclient.ErrNoInstance):
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
}
