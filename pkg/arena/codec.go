package arena

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Markers framing a snapshot on the wire.
const (
	TurnToken = "TURN"
	EndToken  = "END_STATE"
)

// ErrMalformedState is wrapped by every snapshot parse failure.
var ErrMalformedState = errors.New("malformed game state")

// String serializes gs in the server's whitespace token format:
//
//	TURN <turn> <max_turns> <width> <height> <game_id>
//	<player count>
//	<name> <score> <x> <y> <r> <vx> <vy> <target_x> <target_y>   (per player)
//	<item count>
//	<x> <y> <r>                                                  (per item)
//	END_STATE
func (gs *GameState) String() string {
	var b strings.Builder
	b.Grow(64 + 64*len(gs.Players) + 24*len(gs.Items))

	fmt.Fprintf(&b, "%s %d %d %s %s %s\n", TurnToken, gs.Turn, gs.MaxTurns,
		formatFloat(gs.Width), formatFloat(gs.Height), gs.GameID)

	b.WriteString(strconv.Itoa(len(gs.Players)))
	b.WriteByte('\n')
	for _, p := range gs.Players {
		fmt.Fprintf(&b, "%s %d %s %s %s %s\n", p.Name, p.Score,
			p.Pos, formatFloat(p.Radius), p.Speed, p.Target)
	}

	b.WriteString(strconv.Itoa(len(gs.Items)))
	b.WriteByte('\n')
	for _, it := range gs.Items {
		fmt.Fprintf(&b, "%s %s\n", it.Pos, formatFloat(it.Radius))
	}

	b.WriteString(EndToken)
	b.WriteByte('\n')
	return b.String()
}

// ParseState parses one snapshot from its token form. Any missing or
// unparseable token, or a wrong frame marker, yields an error wrapping
// ErrMalformedState.
func ParseState(s string) (*GameState, error) {
	return ParseTokens(strings.Fields(s))
}

// ParseTokens parses a snapshot that has already been split into tokens.
func ParseTokens(tokens []string) (*GameState, error) {
	r := &tokenReader{tokens: tokens}

	r.expect(TurnToken)
	gs := &GameState{
		Turn:     r.readInt("turn"),
		MaxTurns: r.readInt("max_turns"),
		Width:    r.readFloat("width"),
		Height:   r.readFloat("height"),
		GameID:   r.word("game_id"),
	}

	numPlayers := r.count("num_players")
	if r.err == nil {
		gs.Players = make([]Player, 0, min(numPlayers, r.remaining()))
	}
	for i := 0; i < numPlayers && r.err == nil; i++ {
		var p Player
		p.Name = r.word("player name")
		p.Score = r.readInt("player score")
		p.Pos.X = r.readFloat("player x")
		p.Pos.Y = r.readFloat("player y")
		p.Radius = r.readFloat("player r")
		p.Speed.X = r.readFloat("player vx")
		p.Speed.Y = r.readFloat("player vy")
		p.Target.X = r.readFloat("player target_x")
		p.Target.Y = r.readFloat("player target_y")
		gs.Players = append(gs.Players, p)
	}

	numItems := r.count("num_items")
	if r.err == nil {
		gs.Items = make([]Item, 0, min(numItems, r.remaining()))
	}
	for i := 0; i < numItems && r.err == nil; i++ {
		var it Item
		it.Pos.X = r.readFloat("item x")
		it.Pos.Y = r.readFloat("item y")
		it.Radius = r.readFloat("item r")
		gs.Items = append(gs.Items, it)
	}

	r.expect(EndToken)
	if r.err != nil {
		return nil, r.err
	}
	return gs, nil
}

// tokenReader consumes tokens and remembers the first failure; later reads
// after a failure are no-ops returning zero values.
type tokenReader struct {
	tokens []string
	pos    int
	err    error
}

func (r *tokenReader) next(what string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	if r.pos >= len(r.tokens) {
		r.err = fmt.Errorf("%w: missing %s", ErrMalformedState, what)
		return "", false
	}
	tok := r.tokens[r.pos]
	r.pos++
	return tok, true
}

func (r *tokenReader) remaining() int { return len(r.tokens) - r.pos }

func (r *tokenReader) word(what string) string {
	tok, _ := r.next(what)
	return tok
}

func (r *tokenReader) expect(want string) {
	tok, ok := r.next(want)
	if ok && tok != want {
		r.err = fmt.Errorf("%w: expected %s, got %q", ErrMalformedState, want, tok)
	}
}

func (r *tokenReader) readInt(what string) int {
	tok, ok := r.next(what)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		r.err = fmt.Errorf("%w: parse %s %q: %v", ErrMalformedState, what, tok, err)
	}
	return v
}

func (r *tokenReader) count(what string) int {
	n := r.readInt(what)
	if r.err == nil && n < 0 {
		r.err = fmt.Errorf("%w: negative %s %d", ErrMalformedState, what, n)
		return 0
	}
	return n
}

func (r *tokenReader) readFloat(what string) float64 {
	tok, ok := r.next(what)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		r.err = fmt.Errorf("%w: parse %s %q: %v", ErrMalformedState, what, tok, err)
	}
	return v
}
