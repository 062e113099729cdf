package dashboard

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// OrderEvent is a pushed order-status transition.
type OrderEvent struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	ProcessedAt int64  `json:"processed_at"`
}

// WatchOrders connects to the order-event WebSocket and invokes fn for every
// pushed transition until ctx is cancelled or the connection drops. It
// replaces guessing when the payment processor finished with an actual
// notification; callers that need resilience reconnect around it.
func (c *Client) WatchOrders(ctx context.Context, merchantID string, fn func(OrderEvent)) error {
	wsURL, err := c.eventsURL(merchantID)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return errors.Wrap(err, "dial order events")
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	// Close the connection when ctx is cancelled so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var e OrderEvent
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read order event")
		}
		fn(e)
	}
}

// eventsURL derives the ws:// endpoint from the API base URL. The token
// travels as a query parameter because WebSocket clients cannot always set
// headers.
func (c *Client) eventsURL(merchantID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse base URL")
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		if !strings.HasPrefix(u.Scheme, "ws") {
			return "", errors.Errorf("unsupported scheme %q", u.Scheme)
		}
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/ws/orders/" + url.PathEscape(merchantID)

	q := u.Query()
	if token := c.Token(); token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// watchOrdersLoop reconnects WatchOrders with a doubling backoff capped at
// 30s, resetting after a healthy connection. Used by App for background push.
func watchOrdersLoop(ctx context.Context, c *Client, merchantID string, lg *zap.Logger, fn func(OrderEvent)) {
	const maxBackoff = 30 * time.Second
	backoff := time.Second

	for {
		start := time.Now()
		err := c.WatchOrders(ctx, merchantID, fn)
		if ctx.Err() != nil {
			return
		}
		if time.Since(start) > time.Minute {
			backoff = time.Second
		}

		lg.Debug("order event stream dropped, reconnecting",
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
