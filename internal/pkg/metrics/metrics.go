// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mall_orders_created_total",
		Help: "Number of orders successfully created.",
	})

	OrdersCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mall_orders_cancelled_total",
		Help: "Number of orders cancelled, by trigger topic.",
	}, []string{"trigger"})

	CompensationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mall_compensation_retries_total",
		Help: "Number of retried inventory restore calls.",
	})

	ReservationDispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mall_reservation_dispatch_failures_total",
		Help: "Number of inventory reservation requests that failed to dispatch.",
	})
)
