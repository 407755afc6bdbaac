// cmd/order-service/main.go
package main

import (
	"context"
	"os"

	"mall/internal/order/application"
	"mall/internal/order/infrastructure"
	"mall/internal/order/infrastructure/adapter"
	"mall/internal/order/interfaces"
	"mall/internal/pkg/bootstrap"
	"mall/internal/pkg/config"
	"mall/internal/pkg/httpclient"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/mq"
	"mall/internal/pkg/nacos"
	"mall/internal/pkg/redis"

	"go.opentelemetry.io/otel"
)

const (
	orderTimeoutTopic  = "order_timeout"
	orderRebackTopic   = "order_reback"
	notificationsTopic = "order_notifications"
)

// main 是应用的"组装根" (Composition Root)：
// 创建并组装所有依赖项，然后交给 bootstrap 启动。
func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "configs/order-service.yaml"))
	if err != nil {
		l := logger.Ctx(context.Background())
		l.Fatal().Err(err).Msg("failed to load config")
	}

	bootstrap.StartService(cfg, bootstrap.AppInfo{
		ServiceName: cfg.Server.Name,
		Port:        cfg.Server.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			log := logger.Ctx(context.Background())
			tracer := otel.Tracer(cfg.Server.Name)

			db, err := infrastructure.OpenMysql(cfg.Mysql)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to open mysql")
			}

			redisClient, err := redis.NewClient(cfg.Redis.Addr)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to connect to redis")
			}

			var predicate *nacos.Predicate
			if cfg.App.DiscoverTag != "" {
				predicate, err = nacos.NewPredicate(cfg.App.DiscoverTag)
				if err != nil {
					log.Fatal().Err(err).Msg("invalid discover predicate")
				}
			}
			rpcClient := httpclient.NewClient(tracer, appCtx.Nacos, predicate)

			catalog := adapter.NewCatalogHTTPAdapter(rpcClient, cfg.App.GoodsSrvName, cfg.App.RPCTimeout())
			inventory := adapter.NewInventoryHTTPAdapter(rpcClient, cfg.App.InventorySrvName, cfg.App.RPCTimeout())

			notificationWriter := mq.NewKafkaWriter(cfg.Kafka.Brokers, notificationsTopic)
			notifier := adapter.NewNotificationKafkaAdapter(notificationWriter)

			orderRepo := infrastructure.NewMysqlOrderRepository(db)
			cartRepo := infrastructure.NewMysqlCartRepository(db)
			guard := adapter.NewRedisReservationGuard(redisClient)
			scheduler := adapter.NewSchedulerKafkaAdapter(cfg.Kafka.Brokers)

			orderSvc := application.NewOrderApplicationService(
				orderRepo, cartRepo, catalog, inventory, notifier, guard, scheduler,
				tracer, cfg.App.ReserveTimeout(),
			)
			compSvc := application.NewCompensationService(orderRepo, inventory, notifier, tracer)

			handler := interfaces.NewOrderHandler(orderSvc, tracer)
			handler.RegisterRoutes(appCtx.Mux)

			// 两个补偿主题各一个消费者，随服务生命周期启停
			timeoutConsumer := interfaces.NewCompensationConsumer(
				mq.NewKafkaReader(cfg.Kafka.Brokers, orderTimeoutTopic, cfg.Kafka.GroupID), compSvc)
			rebackConsumer := interfaces.NewCompensationConsumer(
				mq.NewKafkaReader(cfg.Kafka.Brokers, orderRebackTopic, cfg.Kafka.GroupID), compSvc)
			appCtx.AddRunner(timeoutConsumer.Run)
			appCtx.AddRunner(rebackConsumer.Run)
		},
	})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
