package arena

import (
	"math"
	"math/rand"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAdvance_CappedAcceleration(t *testing.T) {
	p := Player{
		Pos:    Point{X: 100, Y: 100},
		Speed:  Point{X: 10, Y: 0},
		Target: Point{X: 150, Y: 200},
		Radius: 1,
	}
	got := Advance(p, 1000, 1000)

	// (50,100) scaled to length 20 is about (8.94, 17.89).
	if !near(got.Speed.X, 19, 0.5) || !near(got.Speed.Y, 18, 0.5) {
		t.Errorf("speed: got %v, want about (19, 18)", got.Speed)
	}
	if !near(got.Pos.X, 119, 0.5) || !near(got.Pos.Y, 118, 0.5) {
		t.Errorf("pos: got %v, want about (119, 118)", got.Pos)
	}
	if p.Pos.X != 100 {
		t.Error("Advance must not modify its argument")
	}
}

func TestAdvance_SmallAccelerationNotNormalized(t *testing.T) {
	p := Player{Pos: Point{X: 500, Y: 500}, Target: Point{X: 503, Y: 504}, Radius: 5}
	got := Advance(p, 1000, 1000)
	if got.Speed != (Point{X: 3, Y: 4}) {
		t.Errorf("speed: got %v, want (3, 4)", got.Speed)
	}
}

func TestAdvance_ZeroAccelerationKeepsVelocity(t *testing.T) {
	p := Player{Pos: Point{X: 500, Y: 500}, Speed: Point{X: 7, Y: -3}, Target: Point{X: 500, Y: 500}, Radius: 5}
	got := Advance(p, 1000, 1000)
	if got.Speed != (Point{X: 7, Y: -3}) {
		t.Errorf("speed: got %v, want (7, -3)", got.Speed)
	}
	if got.Pos != (Point{X: 507, Y: 497}) {
		t.Errorf("pos: got %v, want (507, 497)", got.Pos)
	}
}

func TestAdvance_SpeedCap(t *testing.T) {
	p := Player{Pos: Point{X: 500, Y: 500}, Speed: Point{X: 99, Y: 0}, Target: Point{X: 2000, Y: 500}, Radius: 5}
	got := Advance(p, 10000, 10000)
	if !near(got.Speed.Len(), MaxSpeed, 1e-9) {
		t.Errorf("speed length: got %v, want %v", got.Speed.Len(), MaxSpeed)
	}
}

func TestAdvance_BounceMirrorsOnlyOffendingAxis(t *testing.T) {
	// Moving right and down into the right wall.
	p := Player{Pos: Point{X: 985, Y: 500}, Speed: Point{X: 20, Y: 5}, Target: Point{X: 985, Y: 500}, Radius: 10}
	got := Advance(p, 1000, 1000)

	// 985+20 = 1005 > 990, mirrored to 2*990-1005 = 975.
	if got.Pos.X != 975 {
		t.Errorf("x: got %v, want 975", got.Pos.X)
	}
	if got.Speed.X != -20 {
		t.Errorf("vx: got %v, want -20", got.Speed.X)
	}
	if got.Speed.Y != 5 {
		t.Errorf("vy must be untouched: got %v, want 5", got.Speed.Y)
	}
	if got.Pos.Y != 505 {
		t.Errorf("y: got %v, want 505", got.Pos.Y)
	}
}

func TestAdvance_BounceLowWall(t *testing.T) {
	p := Player{Pos: Point{X: 500, Y: 12}, Speed: Point{X: 0, Y: -10}, Radius: 10}
	p.Target = p.Pos
	got := Advance(p, 1000, 1000)
	// 12-10 = 2 < 10, mirrored to 18.
	if got.Pos.Y != 18 || got.Speed.Y != 10 {
		t.Errorf("got pos %v speed %v, want y=18 vy=10", got.Pos, got.Speed)
	}
	if got.Speed.X != 0 {
		t.Errorf("vx: got %v, want 0", got.Speed.X)
	}
}

func TestAdvance_InvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const w, h = 800.0, 600.0
	for i := 0; i < 5000; i++ {
		r := 1 + rng.Float64()*40
		p := Player{
			Pos:    Point{X: r + rng.Float64()*(w-2*r), Y: r + rng.Float64()*(h-2*r)},
			Speed:  Point{X: (rng.Float64()*2 - 1) * MaxSpeed, Y: (rng.Float64()*2 - 1) * MaxSpeed}.Scale(rng.Float64() * MaxSpeed),
			Target: Point{X: rng.Float64()*3000 - 1000, Y: rng.Float64()*3000 - 1000},
			Radius: r,
		}
		got := Advance(p, w, h)
		if got.Speed.Len() > MaxSpeed+1e-9 {
			t.Fatalf("case %d: speed %v exceeds cap", i, got.Speed.Len())
		}
		if got.Pos.X < r || got.Pos.X > w-r || got.Pos.Y < r || got.Pos.Y > h-r {
			t.Fatalf("case %d: pos %v outside [%v, %v]x[%v, %v]", i, got.Pos, r, w-r, r, h-r)
		}
	}
}

func TestNextTurn_PickupRemovesItem(t *testing.T) {
	gs := &GameState{
		Width: 1000, Height: 1000, Turn: 1, MaxTurns: 10, GameID: "g1",
		Players: []Player{
			{Name: "me", Pos: Point{X: 100, Y: 100}, Target: Point{X: 100, Y: 100}, Radius: 10},
		},
		Items: []Item{
			{Pos: Point{X: 105, Y: 100}, Radius: 3},
			{Pos: Point{X: 500, Y: 500}, Radius: 3},
		},
	}
	next := gs.NextTurn()
	if next.Players[0].Score != 1 {
		t.Errorf("score: got %d, want 1", next.Players[0].Score)
	}
	if len(next.Items) != 1 || next.Items[0].Pos != (Point{X: 500, Y: 500}) {
		t.Errorf("items: got %v, want only the far item", next.Items)
	}
	if next.Turn != 2 {
		t.Errorf("turn: got %d, want 2", next.Turn)
	}
	if len(gs.Items) != 2 || gs.Players[0].Score != 0 {
		t.Error("NextTurn must not modify the receiver")
	}

	again := next.NextTurn()
	if again.Players[0].Score != 1 || len(again.Items) != 1 {
		t.Errorf("consumed item reappeared: score %d items %d", again.Players[0].Score, len(again.Items))
	}
}

func TestNextTurn_SingleClaimPerTick(t *testing.T) {
	gs := &GameState{
		Width: 1000, Height: 1000, MaxTurns: 10,
		Players: []Player{
			{Name: "a", Pos: Point{X: 100, Y: 100}, Target: Point{X: 100, Y: 100}, Radius: 10},
			{Name: "b", Pos: Point{X: 110, Y: 100}, Target: Point{X: 110, Y: 100}, Radius: 10},
		},
		Items: []Item{{Pos: Point{X: 105, Y: 100}, Radius: 2}},
	}
	next := gs.NextTurn()
	if next.Players[0].Score != 1 || next.Players[1].Score != 0 {
		t.Errorf("scores: got a=%d b=%d, want a=1 b=0", next.Players[0].Score, next.Players[1].Score)
	}
	if len(next.Items) != 0 {
		t.Errorf("items: got %d, want 0", len(next.Items))
	}
}

func TestNextTurn_TerminalIsNoop(t *testing.T) {
	gs := &GameState{
		Width: 1000, Height: 1000, Turn: 11, MaxTurns: 10,
		Players: []Player{{Pos: Point{X: 100, Y: 100}, Speed: Point{X: 5, Y: 5}, Radius: 10}},
		Items:   []Item{{Pos: Point{X: 100, Y: 100}, Radius: 3}},
	}
	next := gs.NextTurn()
	if next.Turn != 11 || next.Players[0].Pos != gs.Players[0].Pos || len(next.Items) != 1 {
		t.Errorf("terminal transition changed state: %+v", next)
	}
}

func TestNextTurn_MonotoneDepletion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	gs := &GameState{Width: 600, Height: 600, MaxTurns: 200}
	for i := 0; i < 4; i++ {
		gs.Players = append(gs.Players, Player{
			Pos:    Point{X: 50 + rng.Float64()*500, Y: 50 + rng.Float64()*500},
			Target: Point{X: rng.Float64() * 600, Y: rng.Float64() * 600},
			Radius: 15,
		})
	}
	for i := 0; i < 60; i++ {
		gs.Items = append(gs.Items, Item{Pos: Point{X: rng.Float64() * 600, Y: rng.Float64() * 600}, Radius: 4})
	}
	total := len(gs.Items)
	for !gs.Terminal() {
		prev := len(gs.Items)
		gs = gs.NextTurn()
		if len(gs.Items) > prev {
			t.Fatalf("turn %d: items grew from %d to %d", gs.Turn, prev, len(gs.Items))
		}
		score := 0
		for _, p := range gs.Players {
			score += p.Score
		}
		if score+len(gs.Items) != total {
			t.Fatalf("turn %d: scores %d + items %d != %d", gs.Turn, score, len(gs.Items), total)
		}
	}
}

func TestResults_RanksByScore(t *testing.T) {
	gs := &GameState{GameID: "g", Players: []Player{
		{Name: "a", Score: 2}, {Name: "b", Score: 5}, {Name: "c", Score: 2},
	}}
	r := gs.Results()
	if r.Players[0].Name != "b" || r.Players[1].Name != "a" || r.Players[2].Name != "c" {
		t.Errorf("ranking: got %v", r.Players)
	}
	if r.Rank("a") != 2 || r.Rank("zzz") != 0 {
		t.Errorf("rank: a=%d zzz=%d", r.Rank("a"), r.Rank("zzz"))
	}
}

func TestRotatedFor(t *testing.T) {
	gs := &GameState{Players: []Player{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	r := gs.RotatedFor(2)
	if r.Players[0].Name != "c" || r.Players[1].Name != "a" || r.Players[2].Name != "b" {
		t.Errorf("rotation: got %v", r.Players)
	}
	if gs.Players[0].Name != "a" {
		t.Error("RotatedFor must not modify the receiver")
	}
}

func TestPointScaleZero(t *testing.T) {
	if got := Zero.Scale(10); got != Zero {
		t.Errorf("Scale(zero): got %v, want zero", got)
	}
	got := Point{X: 3, Y: 4}.Scale(10)
	if !near(got.X, 6, 1e-12) || !near(got.Y, 8, 1e-12) {
		t.Errorf("Scale: got %v, want (6, 8)", got)
	}
}
