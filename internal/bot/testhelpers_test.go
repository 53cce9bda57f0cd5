package bot

import (
	"math/rand"

	"github.com/freeeve/arena-agent/pkg/arena"
)

// newTestState builds a 1000x1000 snapshot with the given players and items.
func newTestState(players []arena.Player, items []arena.Item) *arena.GameState {
	return &arena.GameState{
		Width:    1000,
		Height:   1000,
		Turn:     1,
		MaxTurns: 1000,
		GameID:   "test-game",
		Players:  players,
		Items:    items,
	}
}

func restingPlayer(name string, x, y float64) arena.Player {
	pos := arena.Point{X: x, Y: y}
	return arena.Player{Name: name, Pos: pos, Target: pos, Radius: 10}
}

// randomState returns a reproducible busy snapshot.
func randomState(seed int64, players, items int) *arena.GameState {
	rng := rand.New(rand.NewSource(seed))
	gs := newTestState(nil, nil)
	for i := 0; i < players; i++ {
		p := arena.Player{
			Name:   "p" + string(rune('a'+i)),
			Pos:    arena.Point{X: 20 + rng.Float64()*960, Y: 20 + rng.Float64()*960},
			Speed:  arena.Point{X: rng.Float64()*40 - 20, Y: rng.Float64()*40 - 20},
			Target: arena.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
			Radius: 10,
		}
		gs.Players = append(gs.Players, p)
	}
	for i := 0; i < items; i++ {
		gs.Items = append(gs.Items, arena.Item{
			Pos:    arena.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
			Radius: 5,
		})
	}
	return gs
}

// smallSearchConfig keeps tests fast while exercising every depth kind.
func smallSearchConfig() SearchConfig {
	cfg := DefaultSearchConfig()
	cfg.Branches = []int{12, 4, 2, 1, 1}
	cfg.Blow = []float64{2, 1}
	cfg.Budget = 0
	return cfg
}
