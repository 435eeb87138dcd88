package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// Ensure Session implements the interfaces.
var (
	_ driven.AuthContext  = (*Session)(nil)
	_ driven.TokenService = (*Session)(nil)
)

// Config keys owned by the session.
const (
	keySecret = "auth.secret"
	keyToken  = "auth.token"
)

const (
	issuer      = "sitenav"
	secretBytes = 32
)

// Claims are the JWT claims of a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session issues HS256 tokens and keeps the local session token in config.
// The signing secret is generated on first use and persisted alongside it.
type Session struct {
	config driven.ConfigStore
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	secret []byte
}

// NewSession creates a session backed by config. A ttl of zero uses
// domain.DefaultTokenTTL.
func NewSession(config driven.ConfigStore, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = domain.DefaultTokenTTL
	}
	return &Session{
		config: config,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Current returns the request-scoped user if present, else the user of the
// stored session token. Returns nil without error when nobody is logged in.
func (s *Session) Current(ctx context.Context) (*domain.User, error) {
	if user := domain.UserFromContext(ctx); user != nil {
		return user, nil
	}

	token := s.config.GetString(keyToken)
	if token == "" {
		return nil, nil
	}
	return s.Verify(token)
}

// Login issues a token for user and stores it as the local session.
func (s *Session) Login(_ context.Context, user domain.User) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}

	token, err := s.Issue(user)
	if err != nil {
		return "", err
	}
	if err := s.config.Set(keyToken, token); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Logout removes the stored session token.
func (s *Session) Logout(_ context.Context) error {
	if s.config.GetString(keyToken) == "" {
		return nil
	}
	if err := s.config.Delete(keyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Issue signs a token for user without touching the stored session.
func (s *Session) Issue(user domain.User) (string, error) {
	secret, err := s.signingKey()
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns the user it was issued for.
func (s *Session) Verify(token string) (*domain.User, error) {
	secret, err := s.signingKey()
	if err != nil {
		return nil, err
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	}

	return &domain.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// signingKey loads the secret from config, generating and storing one
// the first time.
func (s *Session) signingKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secret != nil {
		return s.secret, nil
	}

	if stored := s.config.GetString(keySecret); stored != "" {
		secret, err := hex.DecodeString(stored)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keySecret, err)
		}
		s.secret = secret
		return secret, nil
	}

	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if err := s.config.Set(keySecret, hex.EncodeToString(secret)); err != nil {
		return nil, fmt.Errorf("save %s: %w", keySecret, err)
	}
	s.secret = secret
	return secret, nil
}
