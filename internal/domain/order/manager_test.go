package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/joki-boost/internal/domain/ladder"
	"github.com/xenking/joki-boost/internal/domain/pricing"
)

// --- Mock implementations ---

type mockRepo struct {
	rows   []Record
	nextID int64

	listErr   error
	insertErr error
	deleteErr error
	updateErr error

	listCalls   int
	updateCalls int
}

var _ Repository = (*mockRepo)(nil)

func (m *mockRepo) Insert(_ context.Context, rec Record) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	rec.ID = m.nextID
	if rec.OrderedAt.IsZero() {
		rec.OrderedAt = fixedNow
	}
	m.rows = append([]Record{rec}, m.rows...)
	return rec.ID, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]Record, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]Record(nil), m.rows...), nil
}

func (m *mockRepo) DeleteByID(_ context.Context, id int64) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, patch Patch) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	patch, _ = patch.Normalize()
	if len(patch) == 0 {
		return false, nil
	}
	m.updateCalls++
	for i := range m.rows {
		if m.rows[i].ID == id {
			for _, col := range patch.Columns() {
				m.rows[i].Set(col, patch[col])
			}
			return true, nil
		}
	}
	return false, nil
}

// --- Helpers ---

func newTestManager(t *testing.T, repo *mockRepo) *Manager {
	t.Helper()
	return NewManager(context.Background(), repo, pricing.NewEngine(ladder.Default()))
}

func newTestOrder(t *testing.T, game, start, end string, price any) *Order {
	t.Helper()
	f := validFields()
	f.Game, f.StartRank, f.EndRank, f.TotalPrice = game, start, end, price
	o, err := build(f, nil, fixedNow)
	require.NoError(t, err)
	return o
}

// --- Tests ---

func TestManager_ConstructorRefreshes(t *testing.T) {
	repo := &mockRepo{rows: []Record{{ID: 1, Game: ladder.FreeFire, TotalPrice: 18000, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)

	assert.Equal(t, 1, repo.listCalls)
	require.Len(t, m.ListOrders(), 1)
	assert.EqualValues(t, 1, m.ListOrders()[0].ID())
}

func TestManager_AddOrder(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	m := newTestManager(t, repo)

	price := m.ComputePrice(ladder.MobileLegends, "Warrior", "Master")
	require.EqualValues(t, 69000, price)

	ok := m.AddOrder(ctx, newTestOrder(t, ladder.MobileLegends, "Warrior", "Master", price))
	require.True(t, ok)

	orders := m.ListOrders()
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Persisted())
	assert.EqualValues(t, 69000, m.TotalRevenue())
}

func TestManager_AddOrderNegativePrice(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &mockRepo{})

	require.True(t, m.AddOrder(ctx, newTestOrder(t, ladder.FreeFire, "Bronze", "Silver", -50)))
	require.Len(t, m.ListOrders(), 1)
	assert.Zero(t, m.ListOrders()[0].TotalPrice())
}

func TestManager_AddOrderRejectsNil(t *testing.T) {
	repo := &mockRepo{}
	m := newTestManager(t, repo)

	assert.False(t, m.AddOrder(context.Background(), nil))
	assert.Equal(t, 1, repo.listCalls)
}

func TestManager_AddOrderStorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{rows: []Record{{ID: 1, Game: ladder.FreeFire, TotalPrice: 18000, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)
	before := m.ListOrders()

	repo.insertErr = errors.New("connection refused")
	assert.False(t, m.AddOrder(ctx, newTestOrder(t, ladder.FreeFire, "Bronze", "Gold", 54000)))
	assert.Equal(t, before, m.ListOrders())
	assert.Equal(t, 1, repo.listCalls)
}

func TestManager_RevenueIncreasesByPrice(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &mockRepo{})

	prices := []int64{27000, 42000, 0, 600000}
	for _, p := range prices {
		before := m.TotalRevenue()
		require.True(t, m.AddOrder(ctx, newTestOrder(t, ladder.MobileLegends, "Warrior", "Elite", p)))
		assert.Equal(t, before+p, m.TotalRevenue())
	}
}

func TestManager_RemoveOrder(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	m := newTestManager(t, repo)
	require.True(t, m.AddOrder(ctx, newTestOrder(t, ladder.FreeFire, "Bronze", "Silver", 18000)))
	id := m.ListOrders()[0].ID()

	assert.False(t, m.RemoveOrder(ctx, 9999))
	assert.Len(t, m.ListOrders(), 1)

	assert.True(t, m.RemoveOrder(ctx, id))
	assert.Empty(t, m.ListOrders())
	_, found := m.Find(id)
	assert.False(t, found)

	assert.False(t, m.RemoveOrder(ctx, id))
}

func TestManager_RemoveOrderStorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{rows: []Record{{ID: 1, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)

	repo.deleteErr = errors.New("timeout")
	assert.False(t, m.RemoveOrder(ctx, 1))
	assert.Len(t, m.ListOrders(), 1)
}

func TestManager_UpdateOrder(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	m := newTestManager(t, repo)
	require.True(t, m.AddOrder(ctx, newTestOrder(t, ladder.FreeFire, "Bronze", "Silver", 18000)))
	id := m.ListOrders()[0].ID()

	ok := m.UpdateOrder(ctx, id, Patch{ColumnEndRank: "Gold", ColumnTotalPrice: 54000})
	require.True(t, ok)

	o, found := m.Find(id)
	require.True(t, found)
	assert.Equal(t, "Gold", o.EndRank())
	assert.EqualValues(t, 54000, o.TotalPrice())
}

func TestManager_UpdateOrderLogsCorrections(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))
	repo := &mockRepo{}
	m := newTestManager(t, repo)
	require.True(t, m.AddOrder(ctx, newTestOrder(t, ladder.FreeFire, "Bronze", "Silver", 18000)))
	id := m.ListOrders()[0].ID()

	ok := m.UpdateOrder(ctx, id, Patch{
		ColumnTotalPrice:   json.Number("54000.9"),
		ColumnCustomerName: nil,
		ColumnEmail:        " ",
	})
	require.True(t, ok)

	o, found := m.Find(id)
	require.True(t, found)
	assert.EqualValues(t, 54000, o.TotalPrice())
	assert.Equal(t, validFields().CustomerName, o.CustomerName())
	assert.Equal(t, validFields().Email, o.Email())

	var fields []string
	for _, e := range logs.FilterMessage("Update field corrected").All() {
		fields = append(fields, e.ContextMap()["field"].(string))
	}
	assert.ElementsMatch(t, []string{ColumnCustomerName, ColumnEmail}, fields)
}

func TestManager_UpdateOrderNothingApplicable(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{rows: []Record{{ID: 1, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)

	assert.False(t, m.UpdateOrder(ctx, 1, Patch{"unknown_field": "x"}))
	assert.False(t, m.UpdateOrder(ctx, 1, Patch{ColumnOrderedAt: "2020-01-01"}))
	assert.Zero(t, repo.updateCalls)
	assert.Equal(t, 1, repo.listCalls)
}

func TestManager_UpdateOrderMissingRow(t *testing.T) {
	m := newTestManager(t, &mockRepo{})
	assert.False(t, m.UpdateOrder(context.Background(), 9999, Patch{ColumnGame: ladder.FreeFire}))
}

func TestManager_RefreshIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{rows: []Record{
		{ID: 2, Game: ladder.PUBGMobile, TotalPrice: 30000, OrderedAt: fixedNow},
		{ID: 1, Game: ladder.FreeFire, TotalPrice: 18000, OrderedAt: fixedNow.Add(-time.Hour)},
	}}
	m := newTestManager(t, repo)

	first := m.Table()
	m.Refresh(ctx)
	assert.Equal(t, first, m.Table())
}

func TestManager_RefreshFailureEmptiesCache(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{rows: []Record{{ID: 1, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)
	require.Len(t, m.ListOrders(), 1)

	repo.listErr = errors.New("connection reset")
	m.Refresh(ctx)
	assert.Empty(t, m.ListOrders())
	assert.Zero(t, m.TotalRevenue())
}

func TestManager_ListOrdersReturnsCopy(t *testing.T) {
	repo := &mockRepo{rows: []Record{{ID: 1, OrderedAt: fixedNow}}}
	m := newTestManager(t, repo)

	orders := m.ListOrders()
	orders[0] = nil
	assert.NotNil(t, m.ListOrders()[0])
}

func TestManager_NilEngine(t *testing.T) {
	m := NewManager(context.Background(), &mockRepo{}, nil)
	assert.Zero(t, m.ComputePrice(ladder.MobileLegends, "Warrior", "Elite"))
}
