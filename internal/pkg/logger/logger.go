// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 在服务启动时设置服务名和日志级别。
func Init(serviceName string) {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	root = zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 在 zerolog.Logger 之上保留 Printf 风格的入口，
// 旧代码里大量的 Printf 调用不需要一次性迁移。
type Logger struct {
	zerolog.Logger
}

func (l Logger) Printf(format string, v ...interface{}) {
	l.Info().Msgf(format, v...)
}

// Ctx 返回一个携带当前 trace 信息的 Logger。
// 所有业务日志都应该通过它输出，方便在日志平台按 traceId 聚合。
func Ctx(ctx context.Context) Logger {
	l := root
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("traceId", sc.TraceID().String()).
			Str("spanId", sc.SpanID().String()).
			Logger()
	}
	return Logger{l}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
