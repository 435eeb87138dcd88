package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// User is the identity exposed by the auth context.
type User struct {
	// ID is a stable identifier, derived from the email when not supplied.
	ID string `json:"id"`

	// Email is the login identity.
	Email string `json:"email"`

	// Name is the display name.
	Name string `json:"name,omitempty"`
}

// Validate checks that the user carries a usable email address.
func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: email %q is malformed", ErrInvalidInput, u.Email)
	}
	return nil
}

// DisplayName returns the name, or the email when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
