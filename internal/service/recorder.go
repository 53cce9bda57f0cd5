package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/model"
	"github.com/freeeve/arena-agent/internal/repository"
)

// Recorder fans the agent's decisions and finished games out to the tick
// cache, the result store and spectators. Every collaborator is optional;
// storage failures are logged and never interrupt play.
type Recorder struct {
	player      string
	strategy    string
	results     repository.ResultRepository
	ticks       repository.TickCache
	broadcaster Broadcaster

	mu     sync.RWMutex
	latest *model.TickRecord
}

// NewRecorder creates a Recorder for the controlled player. results and ticks
// may be nil.
func NewRecorder(
	player, strategy string,
	results repository.ResultRepository,
	ticks repository.TickCache,
	broadcaster Broadcaster,
) *Recorder {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &Recorder{
		player:      player,
		strategy:    strategy,
		results:     results,
		ticks:       ticks,
		broadcaster: broadcaster,
	}
}

// GameStarted announces a newly detected game.
func (r *Recorder) GameStarted(_ context.Context, gameID string, players, maxTurns int) {
	r.broadcaster.BroadcastGameEvent(gameID, "game_started", map[string]any{
		"players":   players,
		"max_turns": maxTurns,
	})
}

// RecordTick stores and broadcasts one decision.
func (r *Recorder) RecordTick(ctx context.Context, rec *model.TickRecord) {
	r.mu.Lock()
	r.latest = rec
	r.mu.Unlock()

	if r.ticks != nil {
		if err := r.ticks.SetTick(ctx, rec); err != nil {
			log.Warn().Err(err).Str("gameId", rec.GameID).Int("turn", rec.Turn).Msg("Failed to cache tick")
		}
	}
	r.broadcaster.BroadcastGameEvent(rec.GameID, "tick", rec)
}

// RecordGame persists a finished game and announces it.
func (r *Recorder) RecordGame(ctx context.Context, res *model.GameResult) {
	if r.results != nil {
		if err := r.results.SaveResult(ctx, res); err != nil {
			log.Error().Err(err).Str("gameId", res.GameID).Msg("Failed to save game result")
		}
	}
	if r.ticks != nil {
		if err := r.ticks.PushFinalScore(ctx, res.Player, res.Score); err != nil {
			log.Warn().Err(err).Str("gameId", res.GameID).Msg("Failed to push final score")
		}
	}
	r.broadcaster.BroadcastGameEvent(res.GameID, "game_ended", res)
}

// Latest returns the most recent decision, or nil before the first tick.
func (r *Recorder) Latest() *model.TickRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Status reports the latest decision and, when a result store is configured,
// the player's aggregate record.
func (r *Recorder) Status(ctx context.Context) (*model.AgentStatus, error) {
	st := &model.AgentStatus{
		Player:   r.player,
		Strategy: r.strategy,
		Latest:   r.Latest(),
	}
	if r.results != nil {
		summary, err := r.results.PlayerSummary(ctx, r.player)
		if err != nil {
			return nil, err
		}
		st.Summary = summary
	}
	return st, nil
}
