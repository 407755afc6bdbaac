// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mall/internal/pkg/config"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/nacos"
	"mall/internal/pkg/tracing"
	"mall/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Runner 是一个长期运行的后台任务（例如 Kafka 消费者）。
// 它必须在 ctx 取消后尽快返回。
type Runner func(ctx context.Context) error

// AppCtx 在组装阶段暴露给业务代码。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client

	runners *[]Runner
}

// AddRunner 注册一个随服务生命周期启停的后台任务。
func (a AppCtx) AddRunner(r Runner) {
	*a.runners = append(*a.runners, r)
}

// AppInfo 描述一个微服务启动所需的信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
}

// StartService 封装所有微服务的通用启动和优雅关停逻辑：
// tracer → nacos 注册 → HTTP server + runners → 信号 → 注销 → 限时排水。
func StartService(cfg *config.Config, info AppInfo) {
	logger.Init(info.ServiceName)
	log := logger.Ctx(context.Background())

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	namingClient, err := nacos.NewClient(cfg.Nacos.Addrs, cfg.Nacos.Namespace, cfg.Nacos.Group)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := utils.GetOutboundIP()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get outbound IP address")
	}

	if err := namingClient.Register(info.ServiceName, ip, info.Port, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to register service with nacos")
	}

	mux := http.NewServeMux()
	var runners []Runner
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient, runners: &runners})
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		log.Printf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	for _, r := range runners {
		r := r
		g.Go(func() error { return r(gctx) })
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Printf("Shutting down service %s...", info.ServiceName)
	case <-gctx.Done():
		log.Printf("Background task failed, shutting down service %s...", info.ServiceName)
	}

	// 先从注册中心摘除，让新流量不再进来，再限时排干在途请求
	if err := namingClient.Deregister(info.ServiceName, ip, info.Port); err != nil {
		log.Error().Err(err).Msg("error deregistering from nacos")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}

	cancel() // 通知所有 runner 退出
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("background task exited with error")
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer provider")
	}

	log.Printf("Service %s gracefully shut down.", info.ServiceName)
}
