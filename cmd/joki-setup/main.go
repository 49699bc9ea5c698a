package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/joki-boost/internal/domain/ladder"
	"github.com/xenking/joki-boost/internal/domain/order"
	"github.com/xenking/joki-boost/internal/domain/pricing"
	"github.com/xenking/joki-boost/internal/storage/postgres"
)

// demoOrder is a sample order placed with -demo.
type demoOrder struct {
	name, game, start, end, payment string
}

var demoOrders = []demoOrder{
	{name: "Budi", game: ladder.MobileLegends, start: "Warrior", end: "Master", payment: "DANA"},
	{name: "Sari", game: ladder.FreeFire, start: "Bronze", end: "Gold", payment: "GoPay"},
	{name: "", game: ladder.PUBGMobile, start: "Bronze", end: "Silver", payment: "OVO"},
}

func main() {
	var (
		databaseURL string
		strict      bool
		demo        bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&strict, "strict", false, "fail when the pricing catalog has defects")
	flag.BoolVar(&demo, "demo", false, "place sample orders after migrating")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, strict, demo); err != nil {
		slog.Error("setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("setup completed successfully")
}

func run(ctx context.Context, databaseURL string, strict, demo bool) error {
	catalog := ladder.Default()
	if n := reportCatalog(catalog); n > 0 && strict {
		return errors.Errorf("pricing catalog has %d defects", n)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if demo {
		repo := postgres.NewOrderRepository(pool)
		if err := placeDemoOrders(ctx, repo, catalog); err != nil {
			return errors.Wrap(err, "place demo orders")
		}
	}

	return nil
}

// reportCatalog logs the ladders and every defect. It returns the number of
// defects found.
func reportCatalog(catalog *ladder.Catalog) int {
	for _, game := range catalog.Games {
		ranks, _ := catalog.Ladder(game)
		slog.Info("ladder", slog.String("game", game), slog.Int("ranks", len(ranks)))
	}

	defects := catalog.Defects()
	for _, d := range defects {
		slog.Warn("catalog defect",
			slog.String("game", d.Game),
			slog.String("kind", string(d.Kind)),
			slog.String("detail", d.String()),
		)
	}
	return len(defects)
}

func placeDemoOrders(ctx context.Context, repo order.Repository, catalog *ladder.Catalog) error {
	m := order.NewManager(ctx, repo, pricing.NewEngine(catalog))

	for _, d := range demoOrders {
		o, err := order.New(order.Fields{
			CustomerName:  d.name,
			Email:         "demo@example.com",
			Password:      "demo",
			Phone:         "0800000000",
			Game:          d.game,
			StartRank:     d.start,
			EndRank:       d.end,
			PaymentMethod: d.payment,
			TotalPrice:    m.ComputePrice(d.game, d.start, d.end),
		}, catalog)
		if err != nil {
			return errors.Wrapf(err, "build order for %s", d.game)
		}
		if !m.AddOrder(ctx, o) {
			return errors.Errorf("order for %s was not stored", d.game)
		}
		slog.Info("placed demo order",
			slog.String("customer", o.CustomerName()),
			slog.String("game", o.Game()),
			slog.Int64("price", o.TotalPrice()),
		)
	}

	slog.Info("demo revenue", slog.Int64("total", m.TotalRevenue()))
	return nil
}
