package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// DefaultViewerTTL is the lifetime of a spectator token when none is given.
const DefaultViewerTTL = 24 * time.Hour

// Claims holds the JWT payload of a spectator token.
type Claims struct {
	Viewer string `json:"viewer"`
	// Games restricts which game ids the viewer may subscribe to; empty
	// means any game.
	Games []string `json:"games,omitempty"`
	jwt.RegisteredClaims
}

// CanWatch reports whether the token grants access to gameID.
func (c *Claims) CanWatch(gameID string) bool {
	return len(c.Games) == 0 || slices.Contains(c.Games, gameID)
}

// JWTManager handles token creation and validation.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret), now: time.Now}
}

// GenerateViewerToken signs a token for viewer valid for ttl. A non-positive
// ttl uses DefaultViewerTTL.
func (m *JWTManager) GenerateViewerToken(viewer string, ttl time.Duration, games ...string) (string, error) {
	if ttl <= 0 {
		ttl = DefaultViewerTTL
	}
	now := m.now()
	claims := &Claims{
		Viewer: viewer,
		Games:  games,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   viewer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT string, returning the claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
