// cmd/delay-scheduler/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"mall/internal/pkg/logger"
	"mall/internal/pkg/mq"
	"mall/internal/pkg/tracing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "delay-scheduler"

// 支持的延迟级别。delay_topic_30m 承载支付超时检查：
// 下单时写入，到期后搬运到 order_timeout
var delayLevels = map[string]time.Duration{
	"delay_topic_5s":  5 * time.Second,
	"delay_topic_1m":  1 * time.Minute,
	"delay_topic_30m": 30 * time.Minute,
}

var (
	jaegerEndpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	kafkaBrokers   = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	tracer         = otel.Tracer(serviceName)
)

// Scheduler 负责单个延迟级别的轮询与搬运。
// 同一延迟主题内消息按写入时间有序，队头未到期则整个主题都未到期。
type Scheduler struct {
	level       string
	delay       time.Duration
	kafkaReader *kafka.Reader
	// 每个目标主题一个独立的 writer
	kafkaWriters map[string]*kafka.Writer
	writerLock   sync.Mutex
}

func NewScheduler(level string, delay time.Duration) *Scheduler {
	reader := mq.NewKafkaReader(kafkaBrokers, level, serviceName+"-group-"+level)
	return &Scheduler{
		level:        level,
		delay:        delay,
		kafkaReader:  reader,
		kafkaWriters: make(map[string]*kafka.Writer),
	}
}

// StartPolling 启动定时轮询器。
func (s *Scheduler) StartPolling(ctx context.Context, interval time.Duration) {
	logger.Ctx(ctx).Printf("✅ Polling scheduler for level '%s' started, checking every %v", s.level, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer s.kafkaReader.Close()
	defer s.closeWriters()

	for {
		select {
		case <-ticker.C:
			s.checkAndPublish(ctx)
		case <-ctx.Done():
			logger.Ctx(ctx).Printf("🛑 Shutting down polling for level '%s'", s.level)
			return
		}
	}
}

func (s *Scheduler) checkAndPublish(parentCtx context.Context) {
	for {
		fetchCtx, cancel := context.WithTimeout(parentCtx, 500*time.Millisecond)
		msg, err := s.kafkaReader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			// 没有新消息或正在退出，等待下一次 tick
			return
		}

		spanCtx := mq.ExtractTraceContext(parentCtx, msg.Headers)
		now := time.Now().UTC()
		ctx, span := tracer.Start(spanCtx, "scheduler.CheckAndPublish", trace.WithAttributes(
			attribute.String("delay.level", s.level),
		))

		// 消息的 Time 字段是其进入延迟主题的时间戳
		deliveryTime := msg.Time.Add(s.delay)
		if now.Before(deliveryTime) {
			// 队头消息未到期，后面的更不会到期
			span.AddEvent("HeadMessageNotDue")
			span.End()
			return
		}

		realTopic := getHeader(msg.Headers, "real-topic")
		if realTopic == "" {
			logger.Ctx(ctx).Printf("ERROR: 'real-topic' header missing in message from '%s'. Skipping.", s.level)
			// 畸形消息必须提交，否则会一直重复消费
			if err := s.kafkaReader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Printf("ERROR: failed to commit message after skipping: %v", err)
			}
			span.End()
			continue
		}

		if err := s.publish(ctx, realTopic, msg); err != nil {
			logger.Ctx(ctx).Printf("ERROR: failed to publish message to real topic '%s': %v", realTopic, err)
			// 投递失败不能提交位点，等待下次轮询重试
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to publish to real topic")
			span.End()
			return
		}

		if err := s.kafkaReader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Printf("ERROR: failed to commit message for '%s' after publish: %v", s.level, err)
			span.RecordError(err)
			span.End()
			return
		}
		logger.Ctx(ctx).Printf("INFO: message from '%s' published to '%s' and committed.", s.level, realTopic)
		span.AddEvent("MessagePublishedAndCommitted", trace.WithAttributes(attribute.String("real.topic", realTopic)))
		span.End()
	}
}

// publish 把到期消息搬运到真实业务主题，保留 key 和追踪上下文。
func (s *Scheduler) publish(ctx context.Context, realTopic string, msg kafka.Message) error {
	s.writerLock.Lock()
	writer, exists := s.kafkaWriters[realTopic]
	if !exists {
		writer = mq.NewKafkaWriter(kafkaBrokers, realTopic)
		s.kafkaWriters[realTopic] = writer
	}
	s.writerLock.Unlock()

	publishMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
	}
	traceCtx := mq.ExtractTraceContext(ctx, msg.Headers)
	mq.InjectTraceContext(traceCtx, &publishMsg.Headers)

	return writer.WriteMessages(ctx, publishMsg)
}

func (s *Scheduler) closeWriters() {
	s.writerLock.Lock()
	defer s.writerLock.Unlock()
	for topic, writer := range s.kafkaWriters {
		if err := writer.Close(); err != nil {
			logger.Ctx(context.Background()).Printf("ERROR: failed to close writer for topic %s: %v", topic, err)
		}
	}
}

func getHeader(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func main() {
	logger.Init(serviceName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracerProvider(serviceName, jaegerEndpoint)
	if err != nil {
		l := logger.Ctx(ctx)
		l.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}
	defer tp.Shutdown(context.Background())

	var wg sync.WaitGroup
	for level, delay := range delayLevels {
		wg.Add(1)
		scheduler := NewScheduler(level, delay)
		go func() {
			defer wg.Done()
			scheduler.StartPolling(ctx, 1*time.Second)
		}()
	}
	logger.Ctx(ctx).Printf("✅ All polling schedulers are running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	wg.Wait()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
