package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/logger"
	"github.com/freeeve/arena-agent/internal/model"
	"github.com/freeeve/arena-agent/pkg/arena"
)

// Recorder receives the runner's decisions and finished games. Implemented
// by service.Recorder.
type Recorder interface {
	GameStarted(ctx context.Context, gameID string, players, maxTurns int)
	RecordTick(ctx context.Context, rec *model.TickRecord)
	RecordGame(ctx context.Context, res *model.GameResult)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) GameStarted(context.Context, string, int, int) {}
func (NoopRecorder) RecordTick(context.Context, *model.TickRecord) {}
func (NoopRecorder) RecordGame(context.Context, *model.GameResult) {}

// RunnerConfig holds the connection settings of the live agent.
type RunnerConfig struct {
	Addr           string
	Login          string
	Password       string
	ReconnectDelay time.Duration
}

// Runner plays on the game server with one strategy, reconnecting whenever
// the session drops. A Runner is driven by a single goroutine.
type Runner struct {
	cfg      RunnerConfig
	strategy Strategy
	recorder Recorder
	scores   *PastScores
	dial     func(ctx context.Context, addr string) (*Session, error)

	// last is the most recent snapshot of the current game.
	last *arena.GameState
	glog zerolog.Logger
}

// NewRunner creates a Runner. A nil recorder discards records.
func NewRunner(cfg RunnerConfig, strategy Strategy, recorder Recorder) *Runner {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 100 * time.Millisecond
	}
	return &Runner{
		cfg:      cfg,
		strategy: strategy,
		recorder: recorder,
		scores:   NewPastScores(),
		dial:     Dial,
		glog:     log.Logger,
	}
}

// Scores returns the score history. Only safe to read from the goroutine
// driving the runner, or after Run returns.
func (r *Runner) Scores() *PastScores { return r.scores }

// Run connects, plays until the connection fails, waits ReconnectDelay and
// repeats. It returns only when ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	for {
		err := r.connectAndPlay(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Str("addr", r.cfg.Addr).Dur("retryIn", r.cfg.ReconnectDelay).Msg("Session ended, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.ReconnectDelay):
		}
	}
}

func (r *Runner) connectAndPlay(ctx context.Context) error {
	s, err := r.dial(ctx, r.cfg.Addr)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Info().Str("addr", r.cfg.Addr).Str("login", r.cfg.Login).Msg("Connected to game server")
	return r.Play(ctx, s)
}

// Play logs in on s and answers every snapshot with a target until the
// session fails or ctx is done. Malformed snapshots are skipped.
func (r *Runner) Play(ctx context.Context, s *Session) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	if err := s.Login(r.cfg.Login, r.cfg.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	for {
		gs, err := s.ReadState()
		if errors.Is(err, arena.ErrMalformedState) {
			r.glog.Warn().Err(err).Msg("Skipping malformed snapshot")
			continue
		}
		if err != nil {
			return err
		}
		if err := r.tick(ctx, s, gs); err != nil {
			return err
		}
	}
}

func (r *Runner) tick(ctx context.Context, s *Session, gs *arena.GameState) error {
	r.observe(ctx, gs)

	rec := r.decide(gs)
	if err := s.SendTarget(arena.Point{X: rec.TargetX, Y: rec.TargetY}); err != nil {
		return err
	}

	if me := gs.Me(); me != nil {
		r.scores.Push(me.Score, gs.GameID)
	}
	rec.Scores = r.scores.Scores()
	r.glog.Debug().
		Int("turn", gs.Turn).
		Int("score", rec.Score).
		Stringer("history", r.scores).
		Msg("Tick")
	r.recorder.RecordTick(ctx, rec)
	return nil
}

// observe detects game boundaries: a different game id or a turn counter that
// went backwards means the previous game is over.
func (r *Runner) observe(ctx context.Context, gs *arena.GameState) {
	prev := r.last
	r.last = gs
	if prev != nil && prev.GameID == gs.GameID && gs.Turn >= prev.Turn {
		return
	}
	if prev != nil {
		r.finishGame(ctx, prev)
	}
	r.glog = logger.ForGame(gs.GameID)
	r.glog.Info().
		Int("players", len(gs.Players)).
		Int("items", len(gs.Items)).
		Int("maxTurns", gs.MaxTurns).
		Float64("width", gs.Width).
		Float64("height", gs.Height).
		Msg("Game started")
	r.recorder.GameStarted(ctx, gs.GameID, len(gs.Players), gs.MaxTurns)
}

func (r *Runner) finishGame(ctx context.Context, last *arena.GameState) {
	me := last.Me()
	if me == nil {
		return
	}
	ranking := last.Results()
	res := &model.GameResult{
		GameID:     last.GameID,
		Player:     me.Name,
		Strategy:   r.strategy.Name(),
		Score:      me.Score,
		Rank:       ranking.Rank(me.Name),
		NumPlayers: len(last.Players),
		Turns:      last.Turn,
		Source:     "live",
	}
	r.glog.Info().
		Int("score", res.Score).
		Int("rank", res.Rank).
		Int("players", res.NumPlayers).
		Stringer("history", r.scores).
		Msg("Game finished")
	r.recorder.RecordGame(ctx, res)
}

// decide runs the strategy on gs and describes the decision.
func (r *Runner) decide(gs *arena.GameState) *model.TickRecord {
	rec := &model.TickRecord{
		GameID:    gs.GameID,
		Turn:      gs.Turn,
		MaxTurns:  gs.MaxTurns,
		Items:     len(gs.Items),
		Strategy:  r.strategy.Name(),
		Direction: -1,
		At:        time.Now().UTC(),
	}
	if me := gs.Me(); me != nil {
		rec.Score = me.Score
	}

	var target arena.Point
	if ss, ok := r.strategy.(*SearchStrategy); ok {
		res := ss.Search(gs)
		target = res.Target
		rec.Value = res.Score
		rec.Direction = res.Direction
		rec.Nodes = res.Nodes
		rec.Elapsed = res.Elapsed
	} else {
		start := time.Now()
		target = r.strategy.BestTarget(gs)
		rec.Elapsed = time.Since(start)
	}
	rec.TargetX, rec.TargetY = target.X, target.Y
	return rec
}
