package bot

import (
	"strconv"
	"strings"
)

// MaxPastScores is how many finished games PastScores remembers.
const MaxPastScores = 10

// PastScores keeps the controlled player's score for the most recent games,
// keyed by game id. It is owned by the caller and is not safe for concurrent
// use.
type PastScores struct {
	scores     []int
	lastGameID string
}

// NewPastScores creates an empty history.
func NewPastScores() *PastScores {
	return &PastScores{scores: make([]int, 0, MaxPastScores)}
}

// Push records score for gameID. Repeated pushes for the same game replace
// its entry; a new game appends, evicting the oldest when full.
func (ps *PastScores) Push(score int, gameID string) {
	if len(ps.scores) > 0 && ps.lastGameID == gameID {
		ps.scores[len(ps.scores)-1] = score
		return
	}
	ps.lastGameID = gameID
	if len(ps.scores) == MaxPastScores {
		copy(ps.scores, ps.scores[1:])
		ps.scores = ps.scores[:MaxPastScores-1]
	}
	ps.scores = append(ps.scores, score)
}

// Scores returns a copy of the history, oldest first.
func (ps *PastScores) Scores() []int {
	return append([]int(nil), ps.scores...)
}

// LastGameID returns the id of the most recently pushed game.
func (ps *PastScores) LastGameID() string { return ps.lastGameID }

func (ps *PastScores) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range ps.scores {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(s))
	}
	b.WriteByte(']')
	return b.String()
}
