package driving

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// AccountService manages the local login session.
type AccountService interface {
	// Login starts a session and returns its bearer token.
	Login(ctx context.Context, email, name string) (string, error)

	// Logout ends the session.
	Logout(ctx context.Context) error

	// Current returns the logged-in user, or nil when anonymous.
	Current(ctx context.Context) (*domain.User, error)

	// IssueToken validates the user and returns a bearer token for a remote
	// caller. The local session is left untouched.
	IssueToken(ctx context.Context, email, name string) (string, error)

	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
