package order

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// GameRevenue aggregates the orders of one game.
type GameRevenue struct {
	Game    string
	Count   int
	Revenue int64
	// Average is Revenue / Count rounded to 2 places.
	Average decimal.Decimal
}

// Summary is the revenue report for a date range.
type Summary struct {
	From    time.Time
	To      time.Time
	Orders  []*Order
	Total   int64
	PerGame []GameRevenue
}

// DateBounds returns the earliest and latest order date in the cache. ok is
// false when the cache is empty.
func (m *Manager) DateBounds() (from, to time.Time, ok bool) {
	if len(m.orders) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to = m.orders[0].orderedAt, m.orders[0].orderedAt
	for _, o := range m.orders[1:] {
		if o.orderedAt.Before(from) {
			from = o.orderedAt
		}
		if o.orderedAt.After(to) {
			to = o.orderedAt
		}
	}
	return from, to, true
}

// Between returns cached orders whose calendar date lies within [from, to].
// Only the date part of from and to is considered.
func (m *Manager) Between(from, to time.Time) []*Order {
	lo, hi := calendarDay(from), calendarDay(to)
	var out []*Order
	for _, o := range m.orders {
		d := calendarDay(o.orderedAt)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Summarize filters the cache by date range and aggregates the result.
func (m *Manager) Summarize(from, to time.Time) Summary {
	orders := m.Between(from, to)
	return Summary{
		From:    from,
		To:      to,
		Orders:  orders,
		Total:   sumPrices(orders),
		PerGame: RevenueByGame(orders),
	}
}

// RevenueByGame groups orders by game, highest revenue first. Ties are
// broken by game name.
func RevenueByGame(orders []*Order) []GameRevenue {
	idx := make(map[string]int)
	var out []GameRevenue
	for _, o := range orders {
		i, ok := idx[o.game]
		if !ok {
			i = len(out)
			idx[o.game] = i
			out = append(out, GameRevenue{Game: o.game})
		}
		out[i].Count++
		out[i].Revenue += o.totalPrice
	}

	for i := range out {
		out[i].Average = decimal.NewFromInt(out[i].Revenue).
			Div(decimal.NewFromInt(int64(out[i].Count))).
			Round(2)
	}
	slices.SortFunc(out, func(a, b GameRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Game, b.Game)
	})
	return out
}

func calendarDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
