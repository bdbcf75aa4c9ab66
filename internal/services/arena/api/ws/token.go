package ws

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
)

const (
	sessionIssuer = "ironarena"
	sessionTTL    = 24 * time.Hour
	keyFileName   = "jwt.key"
	minKeyBytes   = 32
)

// Sessions mints and verifies HS256 session tokens whose subject is the
// player identity.
type Sessions struct {
	key   []byte
	clock func() time.Time
}

// NewSessions creates a session signer from a raw key.
func NewSessions(key []byte) (*Sessions, error) {
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("session key must be at least %d bytes", minKeyBytes)
	}
	return &Sessions{key: key, clock: time.Now}, nil
}

// LoadSessions reads the signing key from the data directory, generating one
// on first boot.
func LoadSessions(dataDir string) (*Sessions, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	keyPath := filepath.Join(dataDir, keyFileName)
	key, err := os.ReadFile(keyPath)
	if err != nil || len(key) < minKeyBytes {
		key = make([]byte, minKeyBytes)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, fmt.Errorf("persist session key: %w", err)
		}
	}
	return NewSessions(key)
}

// WithClock overrides the session clock. Tests use it to expire tokens.
func (s *Sessions) WithClock(clock func() time.Time) *Sessions {
	if s == nil {
		return nil
	}
	s.clock = clock
	return s
}

// Issue signs a token for the given identity.
func (s *Sessions) Issue(id record.Identity) (string, error) {
	now := s.clock()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the identity it was issued for.
func (s *Sessions) Verify(tokenString string) (record.Identity, error) {
	if tokenString == "" {
		return record.Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "missing session token")
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil || !token.Valid {
		return record.Identity{}, apperrors.Wrap(apperrors.CodeSessionInvalid, "invalid session token", err)
	}
	id, ok := record.ParseIdentity(claims.Subject)
	if !ok {
		return record.Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "malformed session subject")
	}
	return id, nil
}
