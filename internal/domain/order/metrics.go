package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/xenking/joki-boost/internal/domain/order"

// Metrics counts successful order mutations. A nil *Metrics records nothing.
type Metrics struct {
	added   metric.Int64Counter
	removed metric.Int64Counter
	updated metric.Int64Counter
	revenue metric.Int64Counter
}

// NewMetrics registers the order counters on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	added, err := meter.Int64Counter("joki.orders.added",
		metric.WithDescription("Number of orders stored"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders added counter")
	}
	removed, err := meter.Int64Counter("joki.orders.removed",
		metric.WithDescription("Number of orders deleted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders removed counter")
	}
	updated, err := meter.Int64Counter("joki.orders.updated",
		metric.WithDescription("Number of orders updated"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders updated counter")
	}
	revenue, err := meter.Int64Counter("joki.revenue.added",
		metric.WithDescription("Revenue of stored orders in the smallest currency unit"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "revenue counter")
	}

	return &Metrics{
		added:   added,
		removed: removed,
		updated: updated,
		revenue: revenue,
	}, nil
}

func (m *Metrics) orderAdded(ctx context.Context, o *Order) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("game", o.game))
	m.added.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, o.totalPrice, attrs)
}

func (m *Metrics) orderRemoved(ctx context.Context) {
	if m == nil {
		return
	}
	m.removed.Add(ctx, 1)
}

func (m *Metrics) orderUpdated(ctx context.Context) {
	if m == nil {
		return
	}
	m.updated.Add(ctx, 1)
}
