// internal/order/infrastructure/adapter/reservation_guard_redis.go
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationGuardTTL = 24 * time.Hour

// RedisReservationGuard 实现 port.ReservationGuard。
// 用 SETNX 标记 (orderSn, goodsId) 的扣减请求已发出，
// 进程内重试不会重复下发；key 带 TTL，不需要清理任务。
type RedisReservationGuard struct {
	client *redis.Client
}

func NewRedisReservationGuard(client *redis.Client) *RedisReservationGuard {
	return &RedisReservationGuard{client: client}
}

func (g *RedisReservationGuard) FirstDispatch(ctx context.Context, orderSn string, goodsID int64) (bool, error) {
	key := fmt.Sprintf("order:reserve:%s:%d", orderSn, goodsID)
	ok, err := g.client.SetNX(ctx, key, 1, reservationGuardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reservation guard setnx %s: %w", key, err)
	}
	return ok, nil
}
