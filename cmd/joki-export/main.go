package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/joki-boost/internal/domain/order"
	"github.com/xenking/joki-boost/internal/storage/postgres"
)

const gzipBlockSize = 1 << 20

func main() {
	var (
		databaseURL string
		outFile     string
		from, to    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outFile, "out", "orders.ndjson.gz", "path of the gzip-compressed NDJSON backup")
	flag.StringVar(&from, "from", "", "export orders on or after this date (YYYY-MM-DD)")
	flag.StringVar(&to, "to", "", "export orders on or before this date (YYYY-MM-DD)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	window, err := parseWindow(from, to)
	if err != nil {
		slog.Error("invalid date range", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, outFile, window); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("export completed successfully", slog.String("path", outFile))
}

// dateWindow is an inclusive calendar-date range. Zero bounds are open.
type dateWindow struct {
	from, to time.Time
}

func (w dateWindow) contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	if !w.from.IsZero() && day.Before(w.from) {
		return false
	}
	if !w.to.IsZero() && day.After(w.to) {
		return false
	}
	return true
}

func parseWindow(from, to string) (dateWindow, error) {
	var w dateWindow
	if from != "" {
		t, err := time.ParseInLocation(order.DateLayout, from, time.Local)
		if err != nil {
			return w, errors.Wrap(err, "parse from")
		}
		w.from = t
	}
	if to != "" {
		t, err := time.ParseInLocation(order.DateLayout, to, time.Local)
		if err != nil {
			return w, errors.Wrap(err, "parse to")
		}
		w.to = t
	}
	if !w.from.IsZero() && !w.to.IsZero() && w.to.Before(w.from) {
		return w, errors.New("to is before from")
	}
	return w, nil
}

func run(ctx context.Context, databaseURL, outFile string, window dateWindow) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	repo := postgres.NewOrderRepository(pool)
	recs, err := repo.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}

	f, err := os.Create(outFile)
	if err != nil {
		return errors.Wrapf(err, "create %s", outFile)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)
	if err := gz.SetConcurrency(gzipBlockSize, 4); err != nil {
		return errors.Wrap(err, "configure gzip writer")
	}

	n, err := writeNDJSON(gz, recs, window)
	if err != nil {
		return errors.Wrap(err, "write orders")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip")
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", outFile)
	}
	slog.Info("orders exported", slog.Int("count", n), slog.Int("total", len(recs)))

	totals, err := repo.RevenueByGame(ctx, window.from, window.to)
	if err != nil {
		return errors.Wrap(err, "summarize revenue")
	}
	for _, g := range totals {
		slog.Info("revenue",
			slog.String("game", g.Game),
			slog.Int64("orders", g.Count),
			slog.String("revenue", g.Revenue.String()),
		)
	}

	return nil
}

// writeNDJSON writes every record inside window as one JSON object per line
// and returns how many were written.
func writeNDJSON(w io.Writer, recs []order.Record, window dateWindow) (int, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	var n int
	for _, rec := range recs {
		if !window.contains(rec.OrderedAt) {
			continue
		}
		e.Reset()
		rec.Encode(e)
		if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
			return n, errors.Wrapf(err, "write order %d", rec.ID)
		}
		n++
	}
	return n, nil
}
