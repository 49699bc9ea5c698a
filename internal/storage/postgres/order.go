package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/joki-boost/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders_joki
		(nama_pelanggan, email, password, no_hp, game, rank_awal, rank_tujuan,
		 harga_total, metode_pembayaran, tanggal_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamp, LOCALTIMESTAMP(0)))
		RETURNING id`

	listOrdersSQL = `SELECT id, nama_pelanggan, email, password, no_hp, game, rank_awal,
		rank_tujuan, harga_total, metode_pembayaran, tanggal_order
		FROM orders_joki ORDER BY tanggal_order DESC, id DESC`

	deleteOrderSQL = `DELETE FROM orders_joki WHERE id = $1`

	revenueByGameSQL = `SELECT game, COUNT(*), SUM(harga_total)::numeric
		FROM orders_joki
		WHERE ($1::date IS NULL OR tanggal_order::date >= $1::date)
		  AND ($2::date IS NULL OR tanggal_order::date <= $2::date)
		GROUP BY game ORDER BY 3 DESC, game`
)

const tracerName = "github.com/xenking/joki-boost/internal/storage/postgres"

var _ order.Repository = (*OrderRepository)(nil)

// Option configures an OrderRepository.
type Option func(*OrderRepository)

// WithTracerProvider traces every store call with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *OrderRepository) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// OrderRepository implements order.Repository backed by PostgreSQL. Each
// call acquires its own pooled connection and commits on its own.
type OrderRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool, opts ...Option) *OrderRepository {
	r := &OrderRepository{
		pool:   pool,
		tracer: noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores rec and returns the assigned id. A zero OrderedAt is
// replaced by the database's current time.
func (r *OrderRepository) Insert(ctx context.Context, rec order.Record) (_ int64, rerr error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Insert",
		trace.WithAttributes(attribute.String("order.game", rec.Game)))
	defer func() { r.end(ctx, span, "insert order", rerr) }()

	var orderedAt *time.Time
	if !rec.OrderedAt.IsZero() {
		t := rec.OrderedAt.Truncate(time.Second)
		orderedAt = &t
	}

	var id int64
	err := r.pool.QueryRow(ctx, insertOrderSQL,
		rec.CustomerName, rec.Email, rec.Password, rec.Phone, rec.Game,
		rec.StartRank, rec.EndRank, rec.TotalPrice, rec.PaymentMethod, orderedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	span.SetAttributes(attribute.Int64("order.id", id))
	return id, nil
}

// ListAll returns every order, most recent first.
func (r *OrderRepository) ListAll(ctx context.Context) (_ []order.Record, rerr error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListAll")
	defer func() { r.end(ctx, span, "list orders", rerr) }()

	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	recs, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	if recs == nil {
		recs = []order.Record{}
	}

	span.SetAttributes(attribute.Int("order.count", len(recs)))
	return recs, nil
}

// DeleteByID reports whether the order with id was removed.
func (r *OrderRepository) DeleteByID(ctx context.Context, id int64) (_ bool, rerr error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.DeleteByID",
		trace.WithAttributes(attribute.Int64("order.id", id)))
	defer func() { r.end(ctx, span, "delete order", rerr) }()

	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return false, fmt.Errorf("deleting order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Update applies the allow-listed columns of patch to the order with id.
// Nothing is sent to the database when no column is applicable.
func (r *OrderRepository) Update(ctx context.Context, id int64, patch order.Patch) (_ bool, rerr error) {
	patch, _ = patch.Normalize()
	if len(patch) == 0 {
		return false, nil
	}

	ctx, span := r.tracer.Start(ctx, "OrderRepository.Update",
		trace.WithAttributes(attribute.Int64("order.id", id)))
	defer func() { r.end(ctx, span, "update order", rerr) }()

	sql, args := updateStatement(id, patch)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("updating order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GameTotal is a per-game aggregate computed by the database.
type GameTotal struct {
	Game    string
	Count   int64
	Revenue decimal.Decimal
}

// RevenueByGame sums order prices per game, highest revenue first. Only
// orders whose calendar date lies within [from, to] are counted; a zero
// bound is open.
func (r *OrderRepository) RevenueByGame(ctx context.Context, from, to time.Time) (_ []GameTotal, rerr error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.RevenueByGame")
	defer func() { r.end(ctx, span, "revenue by game", rerr) }()

	rows, err := r.pool.Query(ctx, revenueByGameSQL, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("aggregating revenue: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (GameTotal, error) {
		var g GameTotal
		err := row.Scan(&g.Game, &g.Count, &g.Revenue)
		return g, err
	})
}

// end logs a failed call at the store boundary and closes its span.
func (r *OrderRepository) end(ctx context.Context, span trace.Span, op string, err error) {
	if err != nil {
		zctx.From(ctx).Error("Order store failure", zap.String("op", op), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
	}
	span.End()
}

func updateStatement(id int64, patch order.Patch) (string, []any) {
	cols := patch.Columns()
	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), i+1))
		args = append(args, patch[col])
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE orders_joki SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))
	return sql, args
}

func scanRecord(row pgx.CollectableRow) (order.Record, error) {
	var (
		rec order.Record
		at  time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.CustomerName, &rec.Email, &rec.Password, &rec.Phone,
		&rec.Game, &rec.StartRank, &rec.EndRank, &rec.TotalPrice,
		&rec.PaymentMethod, &at,
	)
	rec.OrderedAt = localWallClock(at)
	return rec, err
}

// dateArg returns the calendar date of t as a DATE parameter, or nil for a
// zero t.
func dateArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// localWallClock reinterprets a TIMESTAMP value, which pgx returns in UTC,
// as local wall-clock time.
func localWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}
