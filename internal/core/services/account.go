package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// Ensure AccountService implements the interface.
var _ driving.AccountService = (*AccountService)(nil)

// AccountService manages the local login session on top of an AuthContext
// and hands out bearer tokens for remote callers.
type AccountService struct {
	auth   driven.AuthContext
	tokens driven.TokenService
}

// NewAccountService creates an account service. Either dependency may be nil,
// in which case the operations needing it return domain.ErrNotImplemented.
func NewAccountService(auth driven.AuthContext, tokens driven.TokenService) *AccountService {
	return &AccountService{auth: auth, tokens: tokens}
}

// Login starts a session for email and returns its bearer token.
func (s *AccountService) Login(ctx context.Context, email, name string) (string, error) {
	if s.auth == nil {
		return "", domain.ErrNotImplemented
	}

	user, err := newUser(email, name)
	if err != nil {
		return "", err
	}

	token, err := s.auth.Login(ctx, user)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Logout ends the session.
func (s *AccountService) Logout(ctx context.Context) error {
	if s.auth == nil {
		return domain.ErrNotImplemented
	}
	return s.auth.Logout(ctx)
}

// Current returns the logged-in user, or nil when anonymous.
func (s *AccountService) Current(ctx context.Context) (*domain.User, error) {
	if s.auth == nil {
		return nil, nil
	}
	return s.auth.Current(ctx)
}

// IssueToken returns a bearer token for email without touching the local session.
func (s *AccountService) IssueToken(_ context.Context, email, name string) (string, error) {
	if s.tokens == nil {
		return "", domain.ErrNotImplemented
	}

	user, err := newUser(email, name)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AccountService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if s.tokens == nil {
		return nil, domain.ErrNotImplemented
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.tokens.Verify(token)
}

// newUser builds a validated user. The id is derived from the email so it
// is stable across logins.
func newUser(email, name string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user := domain.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email: email,
		Name:  strings.TrimSpace(name),
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
