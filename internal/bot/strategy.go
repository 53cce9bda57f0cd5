package bot

import (
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/pkg/arena"
)

// Strategy chooses the steering target for the controlled player,
// gs.Players[0], once per tick. Implementations must not modify gs and must
// be safe for concurrent use on different snapshots.
type Strategy interface {
	Name() string
	BestTarget(gs *arena.GameState) arena.Point
}

// StrategyForName returns the strategy registered under name. Unknown names
// fall back to the search strategy with default tuning.
func StrategyForName(name string) Strategy {
	switch name {
	case "forward":
		return ForwardStrategy{}
	case "greedy":
		return GreedyStrategy{}
	case "random":
		return RandomStrategy{}
	case "search", "":
		return NewSearchStrategy(DefaultSearchConfig())
	default:
		log.Warn().Str("strategy", name).Msg("Unknown strategy, falling back to search")
		return NewSearchStrategy(DefaultSearchConfig())
	}
}

// --- ForwardStrategy ---

// ForwardStrategy keeps going in the current direction. It is also the
// search's fallback answer.
type ForwardStrategy struct{}

func (ForwardStrategy) Name() string { return "forward" }

func (ForwardStrategy) BestTarget(gs *arena.GameState) arena.Point {
	me := gs.Me()
	if me == nil {
		return arena.Zero
	}
	return forwardTarget(me)
}

// --- GreedyStrategy ---

// GreedyStrategy steers straight at the nearest remaining item.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (GreedyStrategy) BestTarget(gs *arena.GameState) arena.Point {
	me := gs.Me()
	if me == nil {
		return arena.Zero
	}
	best := -1
	bestDist := 0.0
	for i, it := range gs.Items {
		d := it.Pos.Dist2(me.Pos)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return forwardTarget(me)
	}
	// Subtracting the velocity cancels drift; otherwise the player orbits.
	return gs.Items[best].Pos.Sub(me.Speed)
}

// --- RandomStrategy ---

// RandomStrategy steers toward a uniformly random point of the arena.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) BestTarget(gs *arena.GameState) arena.Point {
	return arena.Point{X: botFloat64() * gs.Width, Y: botFloat64() * gs.Height}
}
