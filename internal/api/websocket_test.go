// internal/api/websocket_test.go
package api

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// pong 处理协程和清理协程并发访问 lastPing，-race 下不得报警
func TestHubCleanupConcurrentWithPong(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	defer hub.Stop()

	client := &wsClient{send: make(chan []byte, 1), createdAt: time.Now()}
	client.touchPing()

	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	hub.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			client.touchPing()
		}
	}()
	for i := 0; i < 500; i++ {
		hub.cleanupExpired()
	}
	wg.Wait()

	// pong 持续到达期间不应被清理
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubCleanupRemovesExpiredClient(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	defer hub.Stop()
	hub.pingTimeout = time.Millisecond

	client := &wsClient{send: make(chan []byte, 1), createdAt: time.Now()}
	client.touchPing()

	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	hub.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	hub.cleanupExpired()

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, client.IsClosed())
}

func TestWSClientPingExpired(t *testing.T) {
	client := &wsClient{send: make(chan []byte, 1)}
	client.touchPing()

	assert.False(t, client.pingExpired(time.Minute))
	assert.True(t, client.pingExpired(0))
}
