// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient 表示一个已连接的观测端
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    int32 // 原子操作标志，0=开启，1=关闭
	lastPing  int64 // UnixNano，pong 处理协程和清理协程并发访问，只走原子操作
	createdAt time.Time
}

// touchPing 记录最近一次 pong 到达时刻
func (client *wsClient) touchPing() {
	atomic.StoreInt64(&client.lastPing, time.Now().UnixNano())
}

// pingExpired 判断最近一次 pong 是否超时
func (client *wsClient) pingExpired(timeout time.Duration) bool {
	last := atomic.LoadInt64(&client.lastPing)
	return time.Since(time.Unix(0, last)) > timeout
}

// Close 安全关闭客户端连接
//
// send 通道不关闭，由 GC 回收；广播侧可能仍持有引用。
func (client *wsClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (client *wsClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// Hub 评估事件的 WebSocket 广播器
//
// 每条评估结论和净化事件推送给全部已连接观测端。
// 服务本身单会话，不做按场景分组。
type Hub struct {
	mu          sync.RWMutex
	clients     map[*wsClient]struct{}
	broadcast   chan []byte
	register    chan *wsClient
	unregister  chan *wsClient
	done        chan struct{}
	pingTimeout time.Duration
	logger      *zap.SugaredLogger
}

// NewHub 创建并启动广播器
func NewHub(logger *zap.SugaredLogger) *Hub {
	hub := &Hub{
		clients:     make(map[*wsClient]struct{}),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *wsClient, 16),
		unregister:  make(chan *wsClient, 16),
		done:        make(chan struct{}),
		pingTimeout: 60 * time.Second,
		logger:      logger,
	}
	go hub.run()
	return hub
}

// run 广播器主循环
func (h *Hub) run() {
	cleanupTicker := time.NewTicker(30 * time.Second)
	defer cleanupTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Infow("websocket client connected", "clients", h.ClientCount())

		case client := <-h.unregister:
			h.removeClient(client)

		case <-cleanupTicker.C:
			h.cleanupExpired()

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

// Broadcast 向全部观测端推送一条事件
func (h *Hub) Broadcast(event string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"type":      event,
		"payload":   payload,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warnw("failed to marshal websocket event", "event", event, "error", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warnw("websocket broadcast queue full, event dropped", "event", event)
	}
}

// deliver 把消息放入各客户端的发送队列
func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		if !client.IsClosed() {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// 队列满的客户端直接断开
			client.Close()
		}
	}
}

// removeClient 注销客户端
func (h *Hub) removeClient(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	if !client.IsClosed() {
		client.Close()
	}
}

// cleanupExpired 清理超时连接
func (h *Hub) cleanupExpired() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.IsClosed() || client.pingExpired(h.pingTimeout) {
			delete(h.clients, client)
			client.Close()
		}
	}
}

// shutdown 关闭全部连接
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*wsClient]struct{})
}

// Stop 停止广播器
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS 处理 WebSocket 升级请求
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn:      conn,
		send:      make(chan []byte, 64),
		createdAt: time.Now(),
	}
	client.touchPing()

	h.register <- client

	go h.writeLoop(client)
	go h.readLoop(client)
}

// writeLoop 客户端写循环
func (h *Hub) writeLoop(client *wsClient) {
	pingTicker := time.NewTicker(30 * time.Second)
	defer func() {
		pingTicker.Stop()
		client.Close()
	}()

	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pingTicker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 客户端读循环（只消费 pong 和关闭帧）
func (h *Hub) readLoop(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client:
		default:
			h.removeClient(client)
		}
	}()

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.touchPing()
		client.conn.SetReadDeadline(time.Now().Add(h.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
