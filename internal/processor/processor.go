// Package processor simulates asynchronous payment processing: enqueued
// orders transition from pending to paid or failed after a configurable
// delay, the way a real payment provider would settle out of band.
package processor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/notify"
)

// Config controls payment simulation timing and outcome.
type Config struct {
	// Delay is how long processing takes before the status flips.
	Delay time.Duration
	// FailureRate is the probability in [0,1] that processing fails.
	FailureRate float64
}

// Publisher receives status-transition events. *notify.Hub satisfies it.
type Publisher interface {
	Publish(e notify.Event)
}

// Processor runs simulated payment processing in background goroutines.
type Processor struct {
	cfg    Config
	orders order.Repository
	events Publisher
	lg     *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	wg     sync.WaitGroup
	closed bool
}

// New creates a Processor. Start must be called before Enqueue has any effect.
func New(cfg Config, orders order.Repository, events Publisher, lg *zap.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		orders: orders,
		events: events,
		lg:     lg,
	}
}

// Start binds the processor to ctx. Pending work is abandoned when ctx is
// cancelled; orders stay pending and can be re-submitted.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
}

// Stop waits for in-flight processing goroutines to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Enqueue schedules payment processing for the order. Calls before Start or
// after Stop are dropped with a warning rather than panicking.
func (p *Processor) Enqueue(merchantID, orderID string) {
	p.mu.Lock()
	ctx, closed := p.ctx, p.closed
	if ctx != nil && !closed {
		p.wg.Add(1)
	}
	p.mu.Unlock()

	if ctx == nil || closed {
		p.lg.Warn("payment processor not running, dropping order",
			zap.String("order_id", orderID),
		)
		return
	}

	go func() {
		defer p.wg.Done()
		p.process(ctx, merchantID, orderID)
	}()
}

func (p *Processor) process(ctx context.Context, merchantID, orderID string) {
	timer := time.NewTimer(p.cfg.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	status := order.StatusPaid
	if rand.Float64() < p.cfg.FailureRate {
		status = order.StatusFailed
	}
	processedAt := time.Now().Unix()

	if err := p.orders.UpdateStatus(ctx, merchantID, orderID, status, processedAt); err != nil {
		p.lg.Error("payment status update failed",
			zap.String("merchant_id", merchantID),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	p.lg.Info("payment processed",
		zap.String("order_id", orderID),
		zap.String("status", string(status)),
	)

	p.events.Publish(notify.Event{
		MerchantID:  merchantID,
		OrderID:     orderID,
		Status:      string(status),
		ProcessedAt: processedAt,
	})
}
