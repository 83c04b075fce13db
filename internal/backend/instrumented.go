package backend

import (
	"context"
	"time"

	"mpsite/internal/metrics"
)

type instrumented struct {
	next Client
}

// WithMetrics оборачивает клиент счетчиками Prometheus
func WithMetrics(c Client) Client {
	return &instrumented{next: c}
}

func (i *instrumented) Query(ctx context.Context, q Query) ([]Row, error) {
	start := time.Now()
	rows, err := i.next.Query(ctx, q)
	observe(q.Source, "select", start, err)
	return rows, err
}

func (i *instrumented) Insert(ctx context.Context, source string, rows []Row) error {
	start := time.Now()
	err := i.next.Insert(ctx, source, rows)
	observe(source, "insert", start, err)
	return err
}

func (i *instrumented) Close() {
	if closer, ok := i.next.(interface{ Close() }); ok {
		closer.Close()
	}
}

func observe(source, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(source, op, outcome).Inc()
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
