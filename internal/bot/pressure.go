package bot

import (
	"github.com/freeeve/arena-agent/pkg/arena"
)

// contactDiscount is applied to an item's value at depth d when an opponent
// already touched it at depth d-1: most likely gone, but not certainly.
const contactDiscount = 10.0

// Pressure estimates, per item and search depth, the fraction of the item's
// value still expected to be available to the controlled player. It is built
// from one snapshot and is read-only afterward.
//
// Opponents are projected forward with the real motion model, each keeping
// its last known target. Items are not removed during the projection; every
// opponent contact at every step counts.
type Pressure struct {
	horizon int
	items   int
	value   []float64 // value[depth*items+item]
}

// NewPressure projects the opponents of gs (every player but Players[0]) for
// horizon ticks and converts their item contacts into value multipliers.
func NewPressure(gs *arena.GameState, grid *arena.Grid, horizon int) *Pressure {
	n := grid.Len()
	p := &Pressure{
		horizon: horizon,
		items:   n,
		value:   make([]float64, horizon*n),
	}
	if horizon == 0 || n == 0 {
		return p
	}

	contacts := make([]float64, horizon*n)
	opponents := append([]arena.Player(nil), gs.Opponents()...)
	var touched []int
	for d := 0; d < horizon; d++ {
		for i := range opponents {
			opponents[i] = arena.Advance(opponents[i], gs.Width, gs.Height)
		}
		row := contacts[d*n : (d+1)*n]
		for i := range opponents {
			touched = grid.QueryPlayer(&opponents[i], touched[:0])
			for _, it := range touched {
				row[it]++
			}
		}
	}

	for it := 0; it < n; it++ {
		p.value[it] = 1 / (1 + contacts[it])
	}
	for d := 1; d < horizon; d++ {
		prev := p.value[(d-1)*n : d*n]
		prevContacts := contacts[(d-1)*n : d*n]
		row := p.value[d*n : (d+1)*n]
		here := contacts[d*n : (d+1)*n]
		for it := 0; it < n; it++ {
			if prevContacts[it] > 0 {
				row[it] = prev[it] / contactDiscount
			} else {
				row[it] = prev[it] / (1 + here[it])
			}
		}
	}
	return p
}

// Value returns the multiplier for item at depth. Depths past the horizon
// reuse the last row; an empty table values everything at 1.
func (p *Pressure) Value(item, depth int) float64 {
	if p.horizon == 0 {
		return 1
	}
	if depth >= p.horizon {
		depth = p.horizon - 1
	}
	return p.value[depth*p.items+item]
}

// Horizon returns the number of projected ticks.
func (p *Pressure) Horizon() int { return p.horizon }
