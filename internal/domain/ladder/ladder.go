// Package ladder holds the static rank-boost configuration: supported games,
// their ordered rank ladders, per-step prices and accepted payment methods.
package ladder

import (
	"fmt"
	"slices"
)

// Step identifies an advance between two ranks of one game's ladder.
type Step struct {
	From string
	To   string
}

func (s Step) String() string {
	return s.From + " -> " + s.To
}

// Catalog is the complete pricing configuration. It is plain data; the
// pricing engine and the order entity only read from it.
type Catalog struct {
	// Games lists supported games in display order.
	Games []string
	// Ladders maps a game to its ranks in ascending order.
	Ladders map[string][]string
	// Prices maps a game to the cost of each adjacent step, in the
	// smallest currency unit.
	Prices map[string]map[Step]int64
	// PaymentMethods lists accepted payment method labels.
	PaymentMethods []string
}

// Ladder returns the ordered ranks of game.
func (c *Catalog) Ladder(game string) ([]string, bool) {
	ranks, ok := c.Ladders[game]
	if !ok || len(ranks) == 0 {
		return nil, false
	}
	return ranks, true
}

// HasGame reports whether game has a ladder.
func (c *Catalog) HasGame(game string) bool {
	_, ok := c.Ladder(game)
	return ok
}

// RankIndex returns the position of rank in game's ladder, or -1.
func (c *Catalog) RankIndex(game, rank string) int {
	ranks, ok := c.Ladder(game)
	if !ok {
		return -1
	}
	return slices.Index(ranks, rank)
}

// StepPrice returns the configured price for advancing from one rank to
// another. The boolean is false when no price is configured for the pair.
func (c *Catalog) StepPrice(game string, s Step) (int64, bool) {
	prices, ok := c.Prices[game]
	if !ok {
		return 0, false
	}
	p, ok := prices[s]
	return p, ok
}

// AcceptsPayment reports whether method is an accepted payment label.
func (c *Catalog) AcceptsPayment(method string) bool {
	return slices.Contains(c.PaymentMethods, method)
}

// DefectKind classifies a configuration defect.
type DefectKind string

const (
	DefectMissingLadder  DefectKind = "missing_ladder"
	DefectDuplicateRank  DefectKind = "duplicate_rank"
	DefectUnknownRank    DefectKind = "unknown_rank"
	DefectNonAdjacent    DefectKind = "non_adjacent_step"
	DefectUnpricedStep   DefectKind = "unpriced_step"
	DefectNegativePrice  DefectKind = "negative_price"
	DefectPricesNoLadder DefectKind = "prices_without_ladder"
)

// Defect describes one data-completeness problem in a Catalog. Defects never
// stop the engine: an unpriced step simply costs 0.
type Defect struct {
	Game string
	Kind DefectKind
	Step Step
	Rank string
}

func (d Defect) String() string {
	switch d.Kind {
	case DefectDuplicateRank:
		return fmt.Sprintf("%s: rank %q listed more than once", d.Game, d.Rank)
	case DefectMissingLadder:
		return fmt.Sprintf("%s: game has no ladder", d.Game)
	case DefectPricesNoLadder:
		return fmt.Sprintf("%s: prices configured for a game without a ladder", d.Game)
	default:
		return fmt.Sprintf("%s: %s (%s)", d.Game, d.Kind, d.Step)
	}
}

// Defects inspects the catalog and reports every inconsistency between the
// ladders and the step price tables. Results are ordered by game (catalog
// order first) and then by ladder position.
func (c *Catalog) Defects() []Defect {
	var out []Defect

	games := slices.Clone(c.Games)
	for g := range c.Prices {
		if !slices.Contains(games, g) {
			games = append(games, g)
		}
	}
	slices.Sort(games[len(c.Games):])

	for _, game := range games {
		ranks, ok := c.Ladder(game)
		if !ok {
			if slices.Contains(c.Games, game) {
				out = append(out, Defect{Game: game, Kind: DefectMissingLadder})
			} else {
				out = append(out, Defect{Game: game, Kind: DefectPricesNoLadder})
			}
			continue
		}

		seen := make(map[string]struct{}, len(ranks))
		for _, r := range ranks {
			if _, dup := seen[r]; dup {
				out = append(out, Defect{Game: game, Kind: DefectDuplicateRank, Rank: r})
			}
			seen[r] = struct{}{}
		}

		prices := c.Prices[game]
		for i := 0; i+1 < len(ranks); i++ {
			s := Step{From: ranks[i], To: ranks[i+1]}
			p, ok := prices[s]
			switch {
			case !ok:
				out = append(out, Defect{Game: game, Kind: DefectUnpricedStep, Step: s})
			case p < 0:
				out = append(out, Defect{Game: game, Kind: DefectNegativePrice, Step: s})
			}
		}

		var stray []Step
		for s := range prices {
			from, to := slices.Index(ranks, s.From), slices.Index(ranks, s.To)
			switch {
			case from < 0 || to < 0:
				stray = append(stray, s)
			case to != from+1:
				stray = append(stray, s)
			}
		}
		slices.SortFunc(stray, func(a, b Step) int {
			if a.From != b.From {
				if a.From < b.From {
					return -1
				}
				return 1
			}
			if a.To < b.To {
				return -1
			}
			if a.To > b.To {
				return 1
			}
			return 0
		})
		for _, s := range stray {
			kind := DefectNonAdjacent
			if !slices.Contains(ranks, s.From) || !slices.Contains(ranks, s.To) {
				kind = DefectUnknownRank
			}
			out = append(out, Defect{Game: game, Kind: kind, Step: s})
		}
	}
	return out
}
