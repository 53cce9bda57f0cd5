package model

import (
	"time"
)

// GameResult is the controlled player's outcome of one finished game.
type GameResult struct {
	ID         int64     `json:"id"`
	GameID     string    `json:"game_id"`
	Player     string    `json:"player"`
	Strategy   string    `json:"strategy"`
	Score      int       `json:"score"`
	Rank       int       `json:"rank"`        // 1-based
	NumPlayers int       `json:"num_players"` // including the controlled player
	Turns      int       `json:"turns"`
	Source     string    `json:"source"` // "live" or "arena"
	FinishedAt time.Time `json:"finished_at"`
}

// PlayerSummary aggregates a player's finished games.
type PlayerSummary struct {
	Player    string  `json:"player"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	AvgScore  float64 `json:"avg_score"`
	BestScore int     `json:"best_score"`
	AvgRank   float64 `json:"avg_rank"`
}

// TickRecord describes one decision of the agent.
type TickRecord struct {
	GameID   string  `json:"game_id" msgpack:"g"`
	Turn     int     `json:"turn" msgpack:"t"`
	MaxTurns int     `json:"max_turns" msgpack:"m"`
	Score    int     `json:"score" msgpack:"s"`
	Items    int     `json:"items" msgpack:"i"`
	TargetX  float64 `json:"target_x" msgpack:"x"`
	TargetY  float64 `json:"target_y" msgpack:"y"`
	Strategy string  `json:"strategy" msgpack:"st"`
	// Value is the search score of the chosen branch.
	Value float64 `json:"value" msgpack:"v"`
	// Direction is the winning root heading, -1 for the forward fallback.
	Direction int           `json:"direction" msgpack:"d"`
	Nodes     int           `json:"nodes" msgpack:"n"`
	Elapsed   time.Duration `json:"elapsed_ns" msgpack:"e"`
	// Scores is the controlled player's recent game scores, oldest first,
	// the current game last.
	Scores []int     `json:"scores" msgpack:"h"`
	At     time.Time `json:"at" msgpack:"at"`
}

// AgentStatus is what the status endpoint reports.
type AgentStatus struct {
	Player   string         `json:"player"`
	Strategy string         `json:"strategy"`
	Latest   *TickRecord    `json:"latest,omitempty"`
	Summary  *PlayerSummary `json:"summary,omitempty"`
}
