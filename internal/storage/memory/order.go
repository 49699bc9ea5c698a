// Package memory provides an in-process order store used when no database
// is configured and as a test double.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/xenking/joki-boost/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order persistence adapter. Contents are
// lost when the process exits.
type OrderRepository struct {
	mu     sync.RWMutex
	rows   map[int64]order.Record
	nextID int64
	now    func() time.Time
}

// NewOrderRepository returns an empty store. Identities start at 1.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		rows: map[int64]order.Record{},
		now:  time.Now,
	}
}

// Insert stores rec under the next identity. A zero OrderedAt is replaced by
// the current time; timestamps are kept to whole seconds like the database.
func (r *OrderRepository) Insert(_ context.Context, rec order.Record) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	if rec.OrderedAt.IsZero() {
		rec.OrderedAt = r.now()
	}
	rec.OrderedAt = rec.OrderedAt.Truncate(time.Second)
	r.rows[rec.ID] = rec
	return rec.ID, nil
}

// ListAll returns every order, most recent first.
func (r *OrderRepository) ListAll(_ context.Context) ([]order.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]order.Record, 0, len(r.rows))
	for _, rec := range r.rows {
		list = append(list, rec)
	}
	slices.SortFunc(list, func(a, b order.Record) int {
		if c := b.OrderedAt.Compare(a.OrderedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return list, nil
}

// DeleteByID reports whether an order with id was removed.
func (r *OrderRepository) DeleteByID(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// Update applies the allow-listed columns of patch to the order with id.
func (r *OrderRepository) Update(_ context.Context, id int64, patch order.Patch) (bool, error) {
	patch, _ = patch.Normalize()
	if len(patch) == 0 {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	for _, col := range patch.Columns() {
		rec.Set(col, patch[col])
	}
	r.rows[id] = rec
	return true, nil
}
