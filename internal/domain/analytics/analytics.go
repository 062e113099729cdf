// Package analytics aggregates merchant orders into the chart-ready series
// served by the analytics endpoints: a day-bucketed time series of order
// counts and paid revenue, and percentage distributions over payment methods
// and order statuses.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
)

// DefaultDays is the time-series window used when a request does not specify one.
const DefaultDays = 30

// dateLayout is the bucket key format for daily series.
const dateLayout = "2006-01-02"

// Series is the parallel-array time series consumed by line/bar charts.
// Dates, OrderCounts and Revenue always have equal length.
type Series struct {
	Dates       []string
	OrderCounts []int
	Revenue     []decimal.Decimal
}

// Distribution maps a fixed category set to a percentage share, rounded to
// one decimal place. Empty inputs yield all-zero distributions rather than
// missing keys so chart legends stay stable.
type Distribution map[string]float64

// Summary bundles every analytics shape for the combined endpoint.
type Summary struct {
	Series
	PaymentMethods Distribution
	Statuses       Distribution
}

// DailySeries buckets orders into the last `days` calendar days ending at
// `end`. Each bucket counts the orders created that day and sums the totals
// of the paid ones. Orders outside the window are ignored.
func DailySeries(orders []order.Order, days int, end time.Time) Series {
	if days <= 0 {
		days = DefaultDays
	}

	s := Series{
		Dates:       make([]string, days),
		OrderCounts: make([]int, days),
		Revenue:     make([]decimal.Decimal, days),
	}

	// The window covers `days` calendar days with `end` in the last bucket.
	start := end.AddDate(0, 0, -(days - 1))
	index := make(map[string]int, days)
	for day := range days {
		key := start.AddDate(0, 0, day).Format(dateLayout)
		s.Dates[day] = key
		s.Revenue[day] = decimal.Zero
		index[key] = day
	}

	for _, o := range orders {
		key := time.Unix(o.CreatedAt, 0).Format(dateLayout)
		day, ok := index[key]
		if !ok {
			continue
		}
		s.OrderCounts[day]++
		if o.Status == order.StatusPaid {
			s.Revenue[day] = s.Revenue[day].Add(o.Total)
		}
	}

	return s
}

// MethodDistribution computes the percentage share of orders per payment
// channel.
func MethodDistribution(orders []order.Order) Distribution {
	d := Distribution{
		string(payment.MethodMobile): 0,
		string(payment.MethodCard):   0,
		string(payment.MethodBank):   0,
	}
	if len(orders) == 0 {
		return d
	}

	counts := make(map[string]int, len(d))
	for _, o := range orders {
		counts[o.PaymentMethod]++
	}
	for category := range d {
		d[category] = percent(counts[category], len(orders))
	}
	return d
}

// StatusDistribution computes the percentage share of orders per outcome.
func StatusDistribution(orders []order.Order) Distribution {
	d := Distribution{
		string(order.StatusPaid):    0,
		string(order.StatusPending): 0,
		string(order.StatusFailed):  0,
	}
	if len(orders) == 0 {
		return d
	}

	counts := make(map[string]int, len(d))
	for _, o := range orders {
		counts[string(o.Status)]++
	}
	for category := range d {
		d[category] = percent(counts[category], len(orders))
	}
	return d
}

// percent returns part/total as a percentage rounded to one decimal place.
func percent(part, total int) float64 {
	return float64(int(float64(part)/float64(total)*1000+0.5)) / 10
}

// Service computes analytics over the merchant's order history.
type Service struct {
	orders order.Repository
	now    func() time.Time
}

// NewService creates an analytics Service.
func NewService(orders order.Repository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// Daily returns the day-bucketed series for the merchant.
func (s *Service) Daily(ctx context.Context, merchantID string, days int) (Series, error) {
	orders, err := s.orders.List(ctx, merchantID)
	if err != nil {
		return Series{}, fmt.Errorf("list orders: %w", err)
	}
	return DailySeries(orders, days, s.now()), nil
}

// Methods returns the payment-method distribution for the merchant.
func (s *Service) Methods(ctx context.Context, merchantID string) (Distribution, error) {
	orders, err := s.orders.List(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return MethodDistribution(orders), nil
}

// Statuses returns the status distribution for the merchant.
func (s *Service) Statuses(ctx context.Context, merchantID string) (Distribution, error) {
	orders, err := s.orders.List(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return StatusDistribution(orders), nil
}

// Summarize returns all analytics shapes over a single order fetch.
func (s *Service) Summarize(ctx context.Context, merchantID string, days int) (*Summary, error) {
	orders, err := s.orders.List(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &Summary{
		Series:         DailySeries(orders, days, s.now()),
		PaymentMethods: MethodDistribution(orders),
		Statuses:       StatusDistribution(orders),
	}, nil
}
