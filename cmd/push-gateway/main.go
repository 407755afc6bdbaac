package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"mall/internal/order/domain"
	"mall/internal/pkg/logger"
	"mall/internal/pkg/mq"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
)

var (
	kafkaBrokers = getEnv("KAFKA_BROKERS", "localhost:9092")
	listenAddr   = getEnv("PUSH_GATEWAY_ADDR", ":8088")
	topic        = getEnv("NOTIFICATIONS_TOPIC", "order_notifications")
	groupID      = getEnv("PUSH_GATEWAY_GROUP", "push-gateway-group")

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
			return true
		},
	}
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub 维护所有活跃的连接，按 userID 路由订单状态推送
type Hub struct {
	clients    map[int64]*Client
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			// 同一用户重连时顶掉旧连接
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			h.lock.Unlock()
			logger.Ctx(context.Background()).Printf("✅ Client %d registered.", client.userID)
		case client := <-h.unregister:
			h.lock.Lock()
			if cur, ok := h.clients[client.userID]; ok && cur == client {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.lock.Unlock()
			logger.Ctx(context.Background()).Printf("Client %d unregistered.", client.userID)
		}
	}
}

// push 把消息投给在线用户；不在线直接丢弃（推送是尽力而为的）
func (h *Hub) push(userID int64, message []byte) bool {
	h.lock.RLock()
	client, ok := h.clients[userID]
	h.lock.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// 客户端只发心跳，读到任何错误即视为断线
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Printf("ERROR: websocket upgrade failed: %v", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), userID: userID}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// consumeNotifications 订阅订单状态事件并推送给对应的在线用户。
// 推送失败不重试：这条流水线是通知性的，落库状态才是事实来源。
func consumeNotifications(ctx context.Context, reader *kafka.Reader, hub *Hub) {
	logger.Ctx(ctx).Printf("✅ Notification consumer started for topic '%s'.", topic)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Ctx(ctx).Printf("🛑 Notification consumer shutting down.")
				return
			}
			logger.Ctx(ctx).Printf("ERROR: could not read message: %v. Retrying...", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var event domain.OrderStatusEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(ctx).Printf("ERROR: failed to unmarshal status event: %v. Skipping.", err)
			continue
		}

		if hub.push(event.UserID, msg.Value) {
			logger.Ctx(ctx).Printf("INFO: [Order: %s] pushed %s to user %d", event.OrderSn, event.Status, event.UserID)
		}
	}
}

func main() {
	logger.Init("push-gateway")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newHub()
	go hub.run()

	reader := mq.NewKafkaReader([]string{kafkaBrokers}, topic, groupID)
	defer reader.Close()
	go consumeNotifications(ctx, reader, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})

	server := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		logger.Ctx(ctx).Printf("✅ Push gateway started on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l := logger.Ctx(ctx)
			l.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Ctx(ctx).Printf("🛑 Shutting down push gateway...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
