// Package arena models the item-collection arena: circular players moving
// under bounded acceleration on a walled plane, picking up circular items.
//
// The package is pure: every operation is deterministic, nothing logs and
// nothing blocks. Snapshots are treated as values; NextTurn and Clone return
// fresh copies so search branches can diverge from a shared parent safely.
package arena

import (
	"sort"
)

// Motion limits applied on every transition.
const (
	MaxAcc   = 20.0
	MaxSpeed = 100.0
)

// Player is a single disk on the arena.
type Player struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Pos    Point   `json:"pos"`
	Speed  Point   `json:"speed"`
	Target Point   `json:"target"`
	Radius float64 `json:"radius"`
}

// Item is a collectible disk. Items never move; they disappear when claimed.
type Item struct {
	Pos    Point   `json:"pos"`
	Radius float64 `json:"radius"`
}

// Intersects reports whether the item's disk overlaps a disk of the given
// center and radius. Touching counts.
func (it Item) Intersects(pos Point, radius float64) bool {
	reach := it.Radius + radius
	return it.Pos.Dist2(pos) <= reach*reach
}

// Touches reports whether p's disk overlaps the item.
func (it Item) Touches(p *Player) bool {
	return it.Intersects(p.Pos, p.Radius)
}

// GameState is one snapshot of a game. By convention of the game server the
// controlled player is Players[0].
type GameState struct {
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Turn     int      `json:"turn"`
	MaxTurns int      `json:"max_turns"`
	GameID   string   `json:"game_id"`
	Players  []Player `json:"players"`
	Items    []Item   `json:"items"`
}

// Clone returns a deep copy of gs.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Players = append([]Player(nil), gs.Players...)
	c.Items = append([]Item(nil), gs.Items...)
	return &c
}

// Me returns the controlled player, or nil for an empty snapshot.
func (gs *GameState) Me() *Player {
	if len(gs.Players) == 0 {
		return nil
	}
	return &gs.Players[0]
}

// Opponents returns every player except the controlled one.
func (gs *GameState) Opponents() []Player {
	if len(gs.Players) < 2 {
		return nil
	}
	return gs.Players[1:]
}

// Terminal reports whether the game has run past its last turn.
func (gs *GameState) Terminal() bool {
	return gs.Turn > gs.MaxTurns
}

// SetTarget sets the steering target of player i.
func (gs *GameState) SetTarget(i int, target Point) {
	gs.Players[i].Target = target
}

// RotatedFor returns a copy of gs in which player i is Players[0] and the
// others keep their relative order. Strategies always plan for Players[0].
func (gs *GameState) RotatedFor(i int) *GameState {
	c := gs.Clone()
	n := len(c.Players)
	if i <= 0 || i >= n {
		return c
	}
	rotated := make([]Player, 0, n)
	rotated = append(rotated, gs.Players[i:]...)
	rotated = append(rotated, gs.Players[:i]...)
	c.Players = rotated
	return c
}

// GameResults is the final ranking of a finished game.
type GameResults struct {
	GameID  string   `json:"game_id"`
	Players []Player `json:"players"`
}

// Results ranks the players of gs by descending score. Equal scores keep
// their snapshot order.
func (gs *GameState) Results() GameResults {
	players := append([]Player(nil), gs.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return GameResults{GameID: gs.GameID, Players: players}
}

// Rank returns the 1-based finishing position of the named player, or 0
// when the name is not present.
func (r GameResults) Rank(name string) int {
	for i, p := range r.Players {
		if p.Name == name {
			return i + 1
		}
	}
	return 0
}
