package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/pkg/arena"
)

// ArenaConfig configures a single local self-play game.
type ArenaConfig struct {
	Width    float64 // default 1000
	Height   float64 // default 1000
	MaxTurns int     // default 1000

	Items        int     // items placed at the start, default 60, negative for none
	ItemRadius   float64 // default 5
	PlayerRadius float64 // default 10

	// Seats names the strategy of each player, in seat order.
	Seats []string
	// Search tunes every "search" seat. Zero value means DefaultSearchConfig.
	Search *SearchConfig

	Seed int64 // 0 = random
}

func (c *ArenaConfig) applyDefaults() {
	if c.Width <= 0 {
		c.Width = 1000
	}
	if c.Height <= 0 {
		c.Height = 1000
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 1000
	}
	if c.Items == 0 {
		c.Items = 60
	}
	if c.ItemRadius <= 0 {
		c.ItemRadius = 5
	}
	if c.PlayerRadius <= 0 {
		c.PlayerRadius = 10
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// ArenaSeat is one player's outcome.
type ArenaSeat struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// ArenaResult describes the outcome of a completed arena game.
type ArenaResult struct {
	GameID  string           `json:"game_id"`
	Seed    int64            `json:"seed"`
	Turns   int              `json:"turns"`
	Seats   []ArenaSeat      `json:"seats"` // seat order
	Final   *arena.GameState `json:"-"`
	Elapsed time.Duration    `json:"elapsed_ns"`
}

// Winner returns the seat ranked first. Ties go to the lower seat.
func (r *ArenaResult) Winner() ArenaSeat {
	for _, s := range r.Seats {
		if s.Rank == 1 {
			return s
		}
	}
	return ArenaSeat{}
}

// NewArenaState generates the opening snapshot for cfg. Players start at
// rest, placed and named by seat; the same seed yields the same arena.
func NewArenaState(cfg ArenaConfig) *arena.GameState {
	cfg.applyDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	gs := &arena.GameState{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Turn:     1,
		MaxTurns: cfg.MaxTurns,
		GameID:   uuid.NewString(),
		Players:  make([]arena.Player, len(cfg.Seats)),
		Items:    make([]arena.Item, max(cfg.Items, 0)),
	}
	for i, name := range cfg.Seats {
		pos := arena.Point{
			X: uniform(cfg.PlayerRadius, cfg.Width-cfg.PlayerRadius),
			Y: uniform(cfg.PlayerRadius, cfg.Height-cfg.PlayerRadius),
		}
		gs.Players[i] = arena.Player{
			Name:   fmt.Sprintf("seat%d-%s", i, name),
			Pos:    pos,
			Target: pos,
			Radius: cfg.PlayerRadius,
		}
	}
	for i := range gs.Items {
		gs.Items[i] = arena.Item{
			Pos: arena.Point{
				X: uniform(cfg.ItemRadius, cfg.Width-cfg.ItemRadius),
				Y: uniform(cfg.ItemRadius, cfg.Height-cfg.ItemRadius),
			},
			Radius: cfg.ItemRadius,
		}
	}
	return gs
}

// RunGame plays one game between the configured seats until the last turn
// or until every item is taken. Each turn, every seat decides concurrently
// on its own rotated view of the same snapshot.
func RunGame(ctx context.Context, cfg ArenaConfig) (*ArenaResult, error) {
	if len(cfg.Seats) == 0 {
		return nil, fmt.Errorf("arena needs at least one seat")
	}
	cfg.applyDefaults()
	start := time.Now()

	strategies := make([]Strategy, len(cfg.Seats))
	for i, name := range cfg.Seats {
		if name == "search" && cfg.Search != nil {
			strategies[i] = NewSearchStrategy(*cfg.Search)
			continue
		}
		strategies[i] = StrategyForName(name)
	}

	gs := NewArenaState(cfg)
	l := log.With().Str("gameId", gs.GameID).Int64("seed", cfg.Seed).Logger()
	l.Info().Strs("seats", cfg.Seats).Int("items", len(gs.Items)).Msg("Arena game started")

	targets := make([]arena.Point, len(strategies))
	for !gs.Terminal() && len(gs.Items) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var wg sync.WaitGroup
		for i, s := range strategies {
			wg.Add(1)
			go func(i int, s Strategy) {
				defer wg.Done()
				targets[i] = s.BestTarget(gs.RotatedFor(i))
			}(i, s)
		}
		wg.Wait()

		next := gs.Clone()
		for i, t := range targets {
			next.SetTarget(i, t)
		}
		gs = next.NextTurn()
		if gs.Turn%100 == 0 {
			l.Debug().Int("turn", gs.Turn).Int("items", len(gs.Items)).Msg("Arena progress")
		}
	}

	ranking := gs.Results()
	res := &ArenaResult{
		GameID:  gs.GameID,
		Seed:    cfg.Seed,
		Turns:   gs.Turn - 1,
		Seats:   make([]ArenaSeat, len(gs.Players)),
		Final:   gs,
		Elapsed: time.Since(start),
	}
	for i, p := range gs.Players {
		res.Seats[i] = ArenaSeat{
			Name:     p.Name,
			Strategy: cfg.Seats[i],
			Score:    p.Score,
			Rank:     ranking.Rank(p.Name),
		}
	}
	l.Info().Int("turns", res.Turns).Str("winner", res.Winner().Name).Dur("elapsed", res.Elapsed).Msg("Arena game finished")
	return res, nil
}
