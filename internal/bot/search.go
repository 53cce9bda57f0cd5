package bot

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/pkg/arena"
)

// SearchConfig tunes the move search. Branches and Blow are index-aligned by
// depth: Branches[d] is how many headings are tried at depth d (1 means
// continue straight along the current velocity), Blow[d] inflates the
// player's pickup radius at that depth. The search depth is len(Branches).
type SearchConfig struct {
	Branches []int
	Blow     []float64

	// Decay weighs a child's score against the current step's increment.
	Decay float64
	// Throw is the distance of candidate targets from the player.
	Throw float64
	// ForwardWeighted packs candidate headings around the current heading
	// instead of spreading them evenly over the circle.
	ForwardWeighted bool

	// SpeedBonus is awarded per node in proportion to speed/MaxSpeed.
	SpeedBonus float64
	// BoundaryBonus is awarded per node in proportion to the clearance from
	// the nearest wall, saturating at BoundaryMargin.
	BoundaryBonus  float64
	BoundaryMargin float64

	// Workers evaluate root headings in parallel. 0 means runtime.NumCPU().
	Workers int
	// Budget is the expected wall time per search; overruns are logged.
	Budget time.Duration
}

// DefaultSearchConfig returns the tuning used by the live agent.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Branches:       []int{36, 8, 4, 1, 1, 1, 1, 1, 1, 1},
		Blow:           []float64{2, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		Decay:          0.9,
		Throw:          1000,
		SpeedBonus:     0.05,
		BoundaryBonus:  0.05,
		BoundaryMargin: 100,
		Budget:         100 * time.Millisecond,
	}
}

// SearchResult is the outcome of one search.
type SearchResult struct {
	Target arena.Point
	Score  float64
	// Direction is the index of the winning root heading, -1 for the
	// continue-forward fallback.
	Direction int
	Nodes     int
	Elapsed   time.Duration
}

// SearchStrategy picks the target whose depth-limited lookahead collects the
// most pressure-discounted item value.
type SearchStrategy struct {
	cfg     SearchConfig
	offsets [][]float64
}

// NewSearchStrategy creates a SearchStrategy. Missing Blow entries count as 0
// and non-positive branch counts as 1.
func NewSearchStrategy(cfg SearchConfig) *SearchStrategy {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	s := &SearchStrategy{cfg: cfg, offsets: make([][]float64, len(cfg.Branches))}
	for d, n := range cfg.Branches {
		s.offsets[d] = headingOffsets(max(n, 1), cfg.ForwardWeighted)
	}
	return s
}

func (s *SearchStrategy) Name() string { return "search" }

// Config returns the strategy's tuning.
func (s *SearchStrategy) Config() SearchConfig { return s.cfg }

// BestTarget returns the target point to steer Players[0] toward.
func (s *SearchStrategy) BestTarget(gs *arena.GameState) arena.Point {
	return s.Search(gs).Target
}

// headingOffsets returns n angular offsets relative to the current heading.
// Offset 0 (straight ahead) always comes first so it wins ties.
func headingOffsets(n int, forwardWeighted bool) []float64 {
	out := make([]float64, n)
	if !forwardWeighted || n < 2 {
		for i := range out {
			out[i] = 2 * math.Pi * float64(i) / float64(n)
		}
		return out
	}
	// Alternate left/right with quadratically growing spread.
	m := (n + 1) / 2
	for i := 1; i < n; i++ {
		k := (i + 1) / 2
		frac := math.Min(1, float64(k)/float64(m))
		off := math.Pi * frac * frac
		if i%2 == 0 {
			off = -off
		}
		out[i] = off
	}
	return out
}

// forwardTarget continues along the current velocity, at most MaxAcc ahead.
func forwardTarget(me *arena.Player) arena.Point {
	return me.Pos.Add(me.Speed.Scale(arena.MaxAcc))
}

// Search runs the lookahead for gs.Players[0]. It never fails: with nothing
// better to do it returns the continue-forward target.
func (s *SearchStrategy) Search(gs *arena.GameState) SearchResult {
	start := time.Now()
	me := gs.Me()
	if me == nil {
		return SearchResult{Direction: -1}
	}
	res := SearchResult{Target: forwardTarget(me), Direction: -1}

	depth := len(s.cfg.Branches)
	if remaining := gs.MaxTurns - gs.Turn + 1; remaining < depth {
		depth = max(remaining, 0)
	}
	if depth == 0 {
		res.Elapsed = time.Since(start)
		return res
	}

	grid := arena.GridFor(gs)
	pl := &planner{
		cfg:      &s.cfg,
		offsets:  s.offsets,
		depth:    depth,
		width:    gs.Width,
		height:   gs.Height,
		grid:     grid,
		pressure: NewPressure(gs, grid, depth),
	}
	root := fullItemSet(grid.Len())

	roots := s.offsets[0]
	scores := make([]float64, len(roots))
	targets := make([]arena.Point, len(roots))
	nodes := make([]int, s.cfg.Workers)

	jobs := make(chan int, len(roots))
	for i := range roots {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < min(s.cfg.Workers, len(roots)); w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sr := &searcher{planner: pl}
			for i := range jobs {
				targets[i] = pl.target(me, 0, i)
				scores[i] = sr.branch(*me, root, 0, targets[i])
			}
			nodes[w] = sr.nodes
		}(w)
	}
	wg.Wait()

	for i, score := range scores {
		if score > res.Score {
			res.Score = score
			res.Target = targets[i]
			res.Direction = i
		}
	}
	for _, n := range nodes {
		res.Nodes += n
	}
	res.Elapsed = time.Since(start)

	ev := log.Debug()
	if s.cfg.Budget > 0 && res.Elapsed > s.cfg.Budget {
		ev = log.Warn().Dur("budget", s.cfg.Budget)
	}
	ev.Int("turn", gs.Turn).
		Int("items", grid.Len()).
		Int("direction", res.Direction).
		Float64("score", res.Score).
		Int("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Msg("Search finished")
	return res
}

// planner holds the per-tick read-only inputs shared by every branch.
type planner struct {
	cfg      *SearchConfig
	offsets  [][]float64
	depth    int
	width    float64
	height   float64
	grid     *arena.Grid
	pressure *Pressure
}

// target returns the i-th candidate target for me at depth d.
func (pl *planner) target(me *arena.Player, d, i int) arena.Point {
	heading := me.Speed.Angle() + pl.offsets[d][i]
	return me.Pos.Add(arena.Heading(heading).Mul(pl.cfg.Throw))
}

// bonus is the shaping reward for being in state p.
func (pl *planner) bonus(p *arena.Player) float64 {
	b := pl.cfg.SpeedBonus * p.Speed.Len() / arena.MaxSpeed
	if pl.cfg.BoundaryMargin > 0 {
		clearance := math.Min(
			math.Min(p.Pos.X-p.Radius, pl.width-p.Radius-p.Pos.X),
			math.Min(p.Pos.Y-p.Radius, pl.height-p.Radius-p.Pos.Y),
		)
		clearance = math.Max(0, math.Min(clearance, pl.cfg.BoundaryMargin))
		b += pl.cfg.BoundaryBonus * clearance / pl.cfg.BoundaryMargin
	}
	return b
}

// searcher is one worker's recursion state. The scratch buffer is reused
// across calls since recursion within a branch is sequential.
type searcher struct {
	*planner
	scratch []int
	nodes   int
}

// step advances me toward target and scores the move at depth d. Items
// claimed are cleared from the returned set; avail itself is left intact and
// is returned as is when nothing was claimed.
func (sr *searcher) step(me arena.Player, avail itemSet, d int, target arena.Point) (arena.Player, itemSet, float64) {
	sr.nodes++
	me.Target = target
	me = arena.Advance(me, sr.width, sr.height)

	radius := me.Radius
	if d < len(sr.cfg.Blow) {
		radius += sr.cfg.Blow[d]
	}
	score := 0.0
	owned := false
	sr.scratch = sr.grid.Query(me.Pos, radius, sr.scratch[:0])
	for _, it := range sr.scratch {
		if !avail.has(it) {
			continue
		}
		if !owned {
			avail = avail.clone()
			owned = true
		}
		avail.clear(it)
		score += sr.pressure.Value(it, d)
	}
	return me, avail, score + sr.bonus(&me)
}

// branch scores steering me toward target at depth d, including the best
// continuation below it.
func (sr *searcher) branch(me arena.Player, avail itemSet, d int, target arena.Point) float64 {
	next, left, inc := sr.step(me, avail, d, target)
	return inc + sr.cfg.Decay*sr.best(next, left, d+1)
}

// best returns the highest score reachable from me at depth d.
func (sr *searcher) best(me arena.Player, avail itemSet, d int) float64 {
	if d >= sr.depth {
		return 0
	}
	best := math.Inf(-1)
	for i := range sr.offsets[d] {
		score := sr.branch(me, avail, d, sr.target(&me, d, i))
		if score > best {
			best = score
		}
	}
	return best
}
