package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mall/internal/order/domain"
	"mall/internal/pkg/httpclient"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCallError(t *testing.T) {
	assert.NoError(t, translateCallError(nil))

	err := translateCallError(fmt.Errorf("call goods-srv: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrTimeout)

	err = translateCallError(httpclient.ErrNoInstance)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)

	err = translateCallError(errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}
