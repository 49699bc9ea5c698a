// Package pricing converts a rank-boost request into a price by walking the
// game's ladder and summing the configured step prices.
package pricing

import "github.com/xenking/joki-boost/internal/domain/ladder"

// StepCost is the price contribution of one ladder step.
type StepCost struct {
	From  string
	To    string
	Price int64
	// Priced is false when the catalog has no price for the step. Such a
	// step contributes 0 to the total.
	Priced bool
}

// Quote is the itemised result of pricing one request.
type Quote struct {
	Game      string
	StartRank string
	EndRank   string
	Steps     []StepCost
	Total     int64
}

// Complete reports whether every step of the quote had a configured price.
func (q Quote) Complete() bool {
	for _, s := range q.Steps {
		if !s.Priced {
			return false
		}
	}
	return true
}

// Engine prices requests against a read-only catalog.
type Engine struct {
	catalog *ladder.Catalog
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(catalog *ladder.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the catalog the engine prices against.
func (e *Engine) Catalog() *ladder.Catalog {
	return e.catalog
}

// Compute returns the total price for boosting from startRank to endRank.
//
// A result of 0 means "cannot be priced": unknown game, a rank outside the
// ladder, or a request that does not move up the ladder. It never fails.
func (e *Engine) Compute(game, startRank, endRank string) int64 {
	return e.Quote(game, startRank, endRank).Total
}

// Quote returns the per-step breakdown for a request. Steps is empty whenever
// Compute would return 0 for policy reasons.
func (e *Engine) Quote(game, startRank, endRank string) Quote {
	q := Quote{Game: game, StartRank: startRank, EndRank: endRank}
	if e.catalog == nil {
		return q
	}

	ranks, ok := e.catalog.Ladder(game)
	if !ok {
		return q
	}
	from := e.catalog.RankIndex(game, startRank)
	to := e.catalog.RankIndex(game, endRank)
	if from < 0 || to < 0 || from >= to {
		return q
	}

	q.Steps = make([]StepCost, 0, to-from)
	for i := from; i < to; i++ {
		step := ladder.Step{From: ranks[i], To: ranks[i+1]}
		price, priced := e.catalog.StepPrice(game, step)
		q.Steps = append(q.Steps, StepCost{
			From:   step.From,
			To:     step.To,
			Price:  price,
			Priced: priced,
		})
		q.Total += price
	}
	return q
}
