package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/xenking/joki-boost/internal/domain/ladder"
)

func TestEngine_Compute(t *testing.T) {
	e := NewEngine(ladder.Default())

	tests := []struct {
		name  string
		game  string
		start string
		end   string
		want  int64
	}{
		{name: "single step", game: ladder.MobileLegends, start: "Warrior", end: "Elite", want: 27000},
		{name: "two steps", game: ladder.MobileLegends, start: "Warrior", end: "Master", want: 69000},
		{
			name: "full ladder", game: ladder.MobileLegends, start: "Warrior", end: "Mythical Immortal",
			want: 27000 + 42000 + 64000 + 125000 + 150000 + 175000 + 200000 + 225000 + 600000,
		},
		{name: "same rank", game: ladder.FreeFire, start: "Gold", end: "Gold", want: 0},
		{name: "regression", game: ladder.FreeFire, start: "Diamond", end: "Bronze", want: 0},
		{name: "unknown game", game: "Valorant", start: "Iron", end: "Gold", want: 0},
		{name: "unknown start rank", game: ladder.FreeFire, start: "Iron", end: "Gold", want: 0},
		{name: "unknown end rank", game: ladder.FreeFire, start: "Bronze", end: "Conqueror", want: 0},
		{name: "empty ranks", game: ladder.FreeFire, start: "", end: "", want: 0},
		{name: "typo step prices at zero", game: ladder.PUBGMobile, start: "Silver", end: "Gold", want: 0},
		{name: "range spanning typo step", game: ladder.PUBGMobile, start: "Bronze", end: "Platinum", want: 30000 + 75000},
		{name: "rank name is case sensitive", game: ladder.MobileLegends, start: "warrior", end: "Elite", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Compute(tt.game, tt.start, tt.end))
		})
	}
}

func TestEngine_QuoteBreakdown(t *testing.T) {
	e := NewEngine(ladder.Default())

	q := e.Quote(ladder.PUBGMobile, "Bronze", "Platinum")
	require.Len(t, q.Steps, 3)
	assert.Equal(t, StepCost{From: "Bronze", To: "Silver", Price: 30000, Priced: true}, q.Steps[0])
	assert.Equal(t, StepCost{From: "Silver", To: "Gold", Price: 0, Priced: false}, q.Steps[1])
	assert.Equal(t, StepCost{From: "Gold", To: "Platinum", Price: 75000, Priced: true}, q.Steps[2])
	assert.EqualValues(t, 105000, q.Total)
	assert.False(t, q.Complete())

	q = e.Quote(ladder.FreeFire, "Heroic", "Bronze")
	assert.Empty(t, q.Steps)
	assert.Zero(t, q.Total)
}

func TestEngine_NilCatalog(t *testing.T) {
	e := NewEngine(nil)
	assert.Zero(t, e.Compute(ladder.MobileLegends, "Warrior", "Elite"))
}

func TestEngine_ScenarioLadder(t *testing.T) {
	c := &ladder.Catalog{
		Games:   []string{"g"},
		Ladders: map[string][]string{"g": {"Warrior", "Elite", "Master"}},
		Prices: map[string]map[ladder.Step]int64{
			"g": {
				{From: "Warrior", To: "Elite"}: 27000,
				{From: "Elite", To: "Master"}:  42000,
			},
		},
	}
	assert.EqualValues(t, 69000, NewEngine(c).Compute("g", "Warrior", "Master"))
}

func TestEngine_PropertySumOfSteps(t *testing.T) {
	c := ladder.Default()
	e := NewEngine(c)

	rapid.Check(t, func(t *rapid.T) {
		game := rapid.SampledFrom(c.Games).Draw(t, "game")
		ranks, _ := c.Ladder(game)
		a := rapid.IntRange(0, len(ranks)-1).Draw(t, "a")
		b := rapid.IntRange(0, len(ranks)-1).Draw(t, "b")

		got := e.Compute(game, ranks[a], ranks[b])

		if a >= b {
			if got != 0 {
				t.Fatalf("%s %s -> %s: want 0 for non-progression, got %d", game, ranks[a], ranks[b], got)
			}
			return
		}

		var want int64
		for i := a; i < b; i++ {
			p, _ := c.StepPrice(game, ladder.Step{From: ranks[i], To: ranks[i+1]})
			want += p
		}
		if got != want {
			t.Fatalf("%s %s -> %s: want %d, got %d", game, ranks[a], ranks[b], want, got)
		}
		if got < 0 {
			t.Fatalf("negative price %d", got)
		}
	})
}

func TestEngine_PropertyUnknownInputsNeverPrice(t *testing.T) {
	c := ladder.Default()
	e := NewEngine(c)

	rapid.Check(t, func(t *rapid.T) {
		game := rapid.String().Draw(t, "game")
		start := rapid.String().Draw(t, "start")
		end := rapid.String().Draw(t, "end")

		if c.HasGame(game) && c.RankIndex(game, start) >= 0 && c.RankIndex(game, end) >= 0 {
			return
		}
		if got := e.Compute(game, start, end); got != 0 {
			t.Fatalf("unconfigured request %q %q -> %q priced at %d", game, start, end, got)
		}
	})
}
