package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/arena-agent/internal/model"
)

// ResultRepo handles game_results database operations.
type ResultRepo struct {
	db *sql.DB
}

// NewResultRepo creates a ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// SaveResult inserts a finished game. Saving the same (game_id, player,
// source) twice keeps the later score.
func (r *ResultRepo) SaveResult(ctx context.Context, g *model.GameResult) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO game_results (game_id, player, strategy, score, rank, num_players, turns, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (game_id, player, source) DO UPDATE
		   SET score = EXCLUDED.score, rank = EXCLUDED.rank, num_players = EXCLUDED.num_players,
		       turns = EXCLUDED.turns, strategy = EXCLUDED.strategy, finished_at = now()
		 RETURNING id, finished_at`,
		g.GameID, g.Player, g.Strategy, g.Score, g.Rank, g.NumPlayers, g.Turns, g.Source,
	).Scan(&g.ID, &g.FinishedAt)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// RecentResults returns the player's latest results, newest first.
func (r *ResultRepo) RecentResults(ctx context.Context, player string, limit int) ([]model.GameResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, player, strategy, score, rank, num_players, turns, source, finished_at
		 FROM game_results WHERE player = $1
		 ORDER BY finished_at DESC, id DESC LIMIT $2`, player, limit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	defer rows.Close()

	var results []model.GameResult
	for rows.Next() {
		var g model.GameResult
		if err := rows.Scan(&g.ID, &g.GameID, &g.Player, &g.Strategy, &g.Score, &g.Rank,
			&g.NumPlayers, &g.Turns, &g.Source, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// PlayerSummary aggregates all of the player's results. A player with no
// games gets a zero summary, not an error.
func (r *ResultRepo) PlayerSummary(ctx context.Context, player string) (*model.PlayerSummary, error) {
	s := &model.PlayerSummary{Player: player}
	var avgScore, avgRank sql.NullFloat64
	var best sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE rank = 1), avg(score), max(score), avg(rank)
		 FROM game_results WHERE player = $1`, player,
	).Scan(&s.Games, &s.Wins, &avgScore, &best, &avgRank)
	if err != nil {
		return nil, fmt.Errorf("player summary: %w", err)
	}
	s.AvgScore = avgScore.Float64
	s.BestScore = int(best.Int64)
	s.AvgRank = avgRank.Float64
	return s, nil
}
