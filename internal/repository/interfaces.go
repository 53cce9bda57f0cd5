package repository

import (
	"context"

	"github.com/freeeve/arena-agent/internal/model"
)

// ResultRepository persists finished games (Postgres).
type ResultRepository interface {
	SaveResult(ctx context.Context, r *model.GameResult) error
	RecentResults(ctx context.Context, player string, limit int) ([]model.GameResult, error)
	PlayerSummary(ctx context.Context, player string) (*model.PlayerSummary, error)
}

// TickCache holds short-lived live data (Redis).
type TickCache interface {
	SetTick(ctx context.Context, rec *model.TickRecord) error
	LatestTick(ctx context.Context, gameID string) (*model.TickRecord, error)
	PushFinalScore(ctx context.Context, player string, score int) error
	RecentScores(ctx context.Context, player string) ([]int, error)
}
