package service

import (
	"context"
	"errors"
	"sync"

	"github.com/freeeve/arena-agent/internal/model"
)

type mockResultRepo struct {
	saved   []model.GameResult
	failErr error
}

func (m *mockResultRepo) SaveResult(_ context.Context, r *model.GameResult) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saved = append(m.saved, *r)
	return nil
}

func (m *mockResultRepo) RecentResults(_ context.Context, player string, limit int) ([]model.GameResult, error) {
	var out []model.GameResult
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if m.saved[i].Player == player {
			out = append(out, m.saved[i])
		}
	}
	return out, nil
}

func (m *mockResultRepo) PlayerSummary(_ context.Context, player string) (*model.PlayerSummary, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	s := &model.PlayerSummary{Player: player}
	total := 0
	for _, r := range m.saved {
		if r.Player != player {
			continue
		}
		s.Games++
		if r.Rank == 1 {
			s.Wins++
		}
		total += r.Score
		s.BestScore = max(s.BestScore, r.Score)
	}
	if s.Games > 0 {
		s.AvgScore = float64(total) / float64(s.Games)
	}
	return s, nil
}

type mockTickCache struct {
	ticks   map[string]*model.TickRecord
	scores  map[string][]int
	failErr error
}

func newMockTickCache() *mockTickCache {
	return &mockTickCache{
		ticks:  make(map[string]*model.TickRecord),
		scores: make(map[string][]int),
	}
}

func (m *mockTickCache) SetTick(_ context.Context, rec *model.TickRecord) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.ticks[rec.GameID] = rec
	return nil
}

func (m *mockTickCache) LatestTick(_ context.Context, gameID string) (*model.TickRecord, error) {
	return m.ticks[gameID], nil
}

func (m *mockTickCache) PushFinalScore(_ context.Context, player string, score int) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.scores[player] = append(m.scores[player], score)
	return nil
}

func (m *mockTickCache) RecentScores(_ context.Context, player string) ([]int, error) {
	return m.scores[player], nil
}

type broadcastEvent struct {
	gameID    string
	eventType string
	data      any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (m *mockBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, broadcastEvent{gameID, eventType, data})
}

var errStorage = errors.New("storage down")
