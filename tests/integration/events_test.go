//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type orderEvent struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	ProcessedAt int64  `json:"processed_at"`
}

func TestOrderEvents_PushedOnSettlement(t *testing.T) {
	wsURL := strings.Replace(baseURL, "http://", "ws://", 1) +
		"/api/ws/orders/m1?token=" + merchantToken

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	o := createOrder(t, map[string]any{"total": 25.00})

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	for {
		var e orderEvent
		if err := conn.ReadJSON(&e); err != nil {
			t.Fatalf("read event: %v", err)
		}
		// Other tests settle orders concurrently; wait for ours.
		if e.OrderID != o.ID {
			continue
		}
		if e.MerchantID != "m1" {
			t.Errorf("merchant_id: got %q, want m1", e.MerchantID)
		}
		if e.Status != "paid" && e.Status != "failed" {
			t.Errorf("status: got %q, want paid or failed", e.Status)
		}
		if e.ProcessedAt == 0 {
			t.Error("processed_at not set")
		}
		return
	}
}

func TestOrderEvents_RequiresToken(t *testing.T) {
	wsURL := strings.Replace(baseURL, "http://", "ws://", 1) + "/api/ws/orders/m1"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected dial to fail without a token")
	}
	if resp == nil {
		t.Fatalf("dial failed without HTTP response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
