// Package notify pushes order-status transitions to subscribed dashboard
// clients over WebSocket, so they can refresh without guessing when the
// payment processor finished.
package notify

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is a single order-status transition.
type Event struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	ProcessedAt int64  `json:"processed_at"`
}

// Hub fans order events out to per-merchant subscribers.
type Hub struct {
	lg *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty Hub.
func NewHub(lg *zap.Logger) *Hub {
	return &Hub{
		lg:   lg,
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Publish delivers the event to every subscriber of its merchant. Slow
// subscribers drop events instead of blocking the publisher.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[e.MerchantID] {
		select {
		case ch <- e:
		default:
			h.lg.Warn("dropping order event for slow subscriber",
				zap.String("merchant_id", e.MerchantID),
				zap.String("order_id", e.OrderID),
			)
		}
	}
}

// Subscribe registers a new subscriber for the merchant. The returned cancel
// function must be called to release the subscription.
func (h *Hub) Subscribe(merchantID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.subs[merchantID] == nil {
		h.subs[merchantID] = make(map[chan Event]struct{})
	}
	h.subs[merchantID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs[merchantID], ch)
		if len(h.subs[merchantID]) == 0 {
			delete(h.subs, merchantID)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already filtered by the CORS middleware in front.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the request to a WebSocket and streams the merchant's
// order events until the client disconnects or ctx is cancelled.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request, merchantID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lg.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	events, cancel := h.Subscribe(merchantID)
	defer cancel()

	// Reader goroutine: drains control frames and signals client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case e := <-events:
			if err := conn.WriteJSON(e); err != nil {
				h.lg.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
