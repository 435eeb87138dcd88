package driven

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// AuthContext exposes the current user to the orchestrator.
// It is passed in at construction; there is no package-level session.
type AuthContext interface {
	// Current returns the authenticated user, or nil for anonymous use.
	// A request-scoped user on ctx takes precedence over a stored session.
	Current(ctx context.Context) (*domain.User, error)

	// Login starts a session for the user and returns its bearer token.
	Login(ctx context.Context, user domain.User) (string, error)

	// Logout ends the stored session. Logging out when anonymous is not an error.
	Logout(ctx context.Context) error
}

// TokenService issues and validates bearer tokens for remote callers.
type TokenService interface {
	// Issue signs a token for user without starting a local session.
	Issue(user domain.User) (string, error)

	// Verify parses a token and returns the user it was issued for.
	Verify(token string) (*domain.User, error)
}
