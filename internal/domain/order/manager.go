package order

import (
	"context"
	"slices"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/joki-boost/internal/domain/pricing"
)

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records successful mutations on m.
func WithMetrics(m *Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// Manager keeps a cache of every stored order and mediates mutations.
//
// The cache is rebuilt wholesale from the repository after every successful
// mutation. A Manager is not safe for concurrent use; build one per request.
type Manager struct {
	repo    Repository
	engine  *pricing.Engine
	metrics *Metrics
	orders  []*Order
}

// NewManager creates a Manager and loads the cache once.
func NewManager(ctx context.Context, repo Repository, engine *pricing.Engine, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		engine: engine,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Refresh(ctx)
	return m
}

// Refresh replaces the cache with the repository contents. A failed listing
// leaves the cache empty.
func (m *Manager) Refresh(ctx context.Context) {
	recs, err := m.repo.ListAll(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Refresh orders", zap.Error(err))
		m.orders = nil
		return
	}

	orders := make([]*Order, 0, len(recs))
	for _, r := range recs {
		orders = append(orders, FromRecord(r))
	}
	m.orders = orders
}

// AddOrder persists o and reloads the cache. It reports false for a nil
// order or a storage failure, in which case the cache is unchanged.
func (m *Manager) AddOrder(ctx context.Context, o *Order) bool {
	if o == nil {
		return false
	}
	lg := zctx.From(ctx)
	for _, w := range o.Warnings() {
		lg.Warn("Order field corrected",
			zap.String("field", w.Field),
			zap.String("reason", w.Message),
		)
	}

	id, err := m.repo.Insert(ctx, o.Record())
	if err != nil {
		lg.Error("Insert order", zap.Error(err))
		return false
	}
	if id == 0 {
		return false
	}

	m.metrics.orderAdded(ctx, o)
	m.Refresh(ctx)
	return true
}

// RemoveOrder deletes the order with id. It reports whether a row was
// removed; the cache is reloaded only then.
func (m *Manager) RemoveOrder(ctx context.Context, id int64) bool {
	ok, err := m.repo.DeleteByID(ctx, id)
	if err != nil {
		zctx.From(ctx).Error("Delete order", zap.Int64("id", id), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	m.metrics.orderRemoved(ctx)
	m.Refresh(ctx)
	return true
}

// UpdateOrder applies the allow-listed columns of patch to order id. It
// reports false when nothing applicable was given, no row matched or the
// store failed. Corrections made while normalizing patch are logged.
func (m *Manager) UpdateOrder(ctx context.Context, id int64, patch Patch) bool {
	lg := zctx.From(ctx)
	patch, warnings := patch.Normalize()
	for _, w := range warnings {
		lg.Warn("Update field corrected",
			zap.Int64("id", id),
			zap.String("field", w.Field),
			zap.String("reason", w.Message),
		)
	}
	if len(patch) == 0 {
		return false
	}

	ok, err := m.repo.Update(ctx, id, patch)
	if err != nil {
		lg.Error("Update order", zap.Int64("id", id), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	m.metrics.orderUpdated(ctx)
	m.Refresh(ctx)
	return true
}

// ListOrders returns the cached orders, most recent first.
func (m *Manager) ListOrders() []*Order {
	return slices.Clone(m.orders)
}

// Find returns the cached order with id.
func (m *Manager) Find(id int64) (*Order, bool) {
	for _, o := range m.orders {
		if o.id == id {
			return o, true
		}
	}
	return nil, false
}

// TotalRevenue sums the price of every cached order.
func (m *Manager) TotalRevenue() int64 {
	return sumPrices(m.orders)
}

// Table returns the cached orders as flat records.
func (m *Manager) Table() []Record {
	out := make([]Record, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.Record())
	}
	return out
}

// ComputePrice prices a request with the manager's engine.
func (m *Manager) ComputePrice(game, startRank, endRank string) int64 {
	if m.engine == nil {
		return 0
	}
	return m.engine.Compute(game, startRank, endRank)
}

func sumPrices(orders []*Order) int64 {
	var total int64
	for _, o := range orders {
		total += o.totalPrice
	}
	return total
}
