package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/pkg/arena"
)

// Protocol words of the game server.
const (
	helloToken = "HELLO"
	playToken  = "PLAY"
	goToken    = "GO"
)

// ErrUnexpectedToken is returned when the server sends something other than
// what the protocol requires at that point.
var ErrUnexpectedToken = errors.New("unexpected token")

// Session is one TCP connection to the game server speaking the
// line-based token protocol.
type Session struct {
	conn   net.Conn
	addr   string
	r      *bufio.Reader
	w      *bufio.Writer
	tokens []string
}

// Dial connects to the game server at addr.
func Dial(ctx context.Context, addr string) (*Session, error) {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewSession(conn), nil
}

// NewSession wraps an established connection.
func NewSession(conn net.Conn) *Session {
	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Session{
		conn: conn,
		addr: addr,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

// Close closes the connection. Blocked reads return with an error.
func (s *Session) Close() error {
	return s.conn.Close()
}

// ReadToken returns the next whitespace-separated token.
func (s *Session) ReadToken() (string, error) {
	for len(s.tokens) == 0 {
		line, err := s.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return "", fmt.Errorf("read from %s: end of stream", s.addr)
			}
			return "", fmt.Errorf("read from %s: %w", s.addr, err)
		}
		s.tokens = strings.Fields(line)
	}
	tok := s.tokens[0]
	s.tokens = s.tokens[1:]
	return tok, nil
}

// Expect reads one token and fails unless it equals want.
func (s *Session) Expect(want string) error {
	tok, err := s.ReadToken()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("%w: expected %s, found %q", ErrUnexpectedToken, want, tok)
	}
	return nil
}

// WriteLine sends one newline-terminated line and flushes it.
func (s *Session) WriteLine(line string) error {
	log.Debug().Str("addr", s.addr).Str("line", line).Msg("Sending")
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("write to %s: %w", s.addr, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write to %s: %w", s.addr, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush to %s: %w", s.addr, err)
	}
	return nil
}

// Login performs the handshake: HELLO from the server, then PLAY and the
// credentials line from the client.
func (s *Session) Login(login, password string) error {
	if err := s.Expect(helloToken); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if err := s.WriteLine(playToken); err != nil {
		return err
	}
	return s.WriteLine(login + " " + password)
}

// ReadState reads tokens through the next END_STATE marker and parses them.
// A parse failure wraps arena.ErrMalformedState; the stream is still
// positioned after the marker, so the caller may skip the tick and continue.
func (s *Session) ReadState() (*arena.GameState, error) {
	var tokens []string
	for {
		tok, err := s.ReadToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok == arena.EndToken {
			break
		}
	}
	return arena.ParseTokens(tokens)
}

// SendTarget tells the server where the controlled player should steer.
func (s *Session) SendTarget(p arena.Point) error {
	return s.WriteLine(goToken + " " + formatCoord(p.X) + " " + formatCoord(p.Y))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
