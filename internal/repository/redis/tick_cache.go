package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/freeeve/arena-agent/internal/model"
)

const (
	// TickTTL bounds how long the latest tick of a game stays visible after
	// the agent stops updating it.
	TickTTL = 10 * time.Minute

	maxRecentScores = 10
)

func tickKey(gameID string) string   { return "tick:" + gameID }
func scoresKey(player string) string { return "scores:" + player }

// SetTick stores the latest decision for the record's game, msgpack encoded.
func (c *Client) SetTick(ctx context.Context, rec *model.TickRecord) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode tick: %w", err)
	}
	if err := c.rdb.Set(ctx, tickKey(rec.GameID), data, TickTTL).Err(); err != nil {
		return fmt.Errorf("set tick: %w", err)
	}
	return nil
}

// LatestTick returns the last stored decision for gameID, or nil if none.
func (c *Client) LatestTick(ctx context.Context, gameID string) (*model.TickRecord, error) {
	data, err := c.rdb.Get(ctx, tickKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tick: %w", err)
	}
	var rec model.TickRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode tick: %w", err)
	}
	return &rec, nil
}

// PushFinalScore prepends a finished game's score to the player's list and
// trims it to the most recent entries.
func (c *Client) PushFinalScore(ctx context.Context, player string, score int) error {
	key := scoresKey(player)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, score)
	pipe.LTrim(ctx, key, 0, maxRecentScores-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push score: %w", err)
	}
	return nil
}

// RecentScores returns the player's stored scores, oldest first.
func (c *Client) RecentScores(ctx context.Context, player string) ([]int, error) {
	vals, err := c.rdb.LRange(ctx, scoresKey(player), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("recent scores: %w", err)
	}
	scores := make([]int, len(vals))
	for i, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse score %q: %w", v, err)
		}
		scores[len(vals)-1-i] = n
	}
	return scores, nil
}
