package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	h := NewHub(zap.NewNop())

	ch, cancel := h.Subscribe("m1")
	defer cancel()

	h.Publish(Event{MerchantID: "m1", OrderID: "o1", Status: "paid", ProcessedAt: 42})

	e := receive(t, ch)
	assert.Equal(t, "o1", e.OrderID)
	assert.Equal(t, "paid", e.Status)
	assert.Equal(t, int64(42), e.ProcessedAt)
}

func TestHub_EventsAreMerchantScoped(t *testing.T) {
	h := NewHub(zap.NewNop())

	ch1, cancel1 := h.Subscribe("m1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("m2")
	defer cancel2()

	h.Publish(Event{MerchantID: "m1", OrderID: "o1", Status: "paid"})

	assert.Equal(t, "o1", receive(t, ch1).OrderID)
	select {
	case e := <-ch2:
		t.Fatalf("event leaked to another merchant: %+v", e)
	default:
	}
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := NewHub(zap.NewNop())

	ch, cancel := h.Subscribe("m1")
	cancel()

	h.Publish(Event{MerchantID: "m1", OrderID: "o1", Status: "paid"})

	select {
	case e := <-ch:
		t.Fatalf("event delivered after unsubscribe: %+v", e)
	default:
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(zap.NewNop())

	ch, cancel := h.Subscribe("m1")
	defer cancel()

	// Overflow the subscriber buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 100 {
			h.Publish(Event{MerchantID: "m1", OrderID: "o", Status: "paid", ProcessedAt: int64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The earliest events survive in order; the overflow was dropped.
	first := receive(t, ch)
	require.Equal(t, int64(0), first.ProcessedAt)
}
