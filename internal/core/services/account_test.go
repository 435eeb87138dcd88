package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

func TestAccountService_Login(t *testing.T) {
	auth := &mockAuth{token: "tok"}
	svc := NewAccountService(auth, nil)

	token, err := svc.Login(context.Background(), "  Ada@Example.com ", " Ada ")

	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NotNil(t, auth.loggedIn)
	assert.Equal(t, "ada@example.com", auth.loggedIn.Email)
	assert.Equal(t, "Ada", auth.loggedIn.Name)
	assert.NotEmpty(t, auth.loggedIn.ID)

	// The id is stable for the same email.
	first := auth.loggedIn.ID
	_, err = svc.Login(context.Background(), "ada@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, first, auth.loggedIn.ID)
}

func TestAccountService_Login_InvalidEmail(t *testing.T) {
	auth := &mockAuth{}
	svc := NewAccountService(auth, nil)

	_, err := svc.Login(context.Background(), "nobody", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, auth.loggedIn)
}

func TestAccountService_LogoutAndCurrent(t *testing.T) {
	auth := &mockAuth{user: &domain.User{Email: "ada@example.com"}}
	svc := NewAccountService(auth, nil)

	user, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, auth.loggedOut)
}

func TestAccountService_NoAuth(t *testing.T) {
	svc := NewAccountService(nil, nil)

	user, err := svc.Current(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.Login(context.Background(), "ada@example.com", "")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, svc.Logout(context.Background()), domain.ErrNotImplemented)
}

func TestAccountService_IssueToken(t *testing.T) {
	tokens := &mockTokens{token: "remote"}
	auth := &mockAuth{}
	svc := NewAccountService(auth, tokens)

	token, err := svc.IssueToken(context.Background(), "Grace@Example.com", "Grace")

	require.NoError(t, err)
	assert.Equal(t, "remote", token)
	require.NotNil(t, tokens.issued)
	assert.Equal(t, "grace@example.com", tokens.issued.Email)
	assert.Nil(t, auth.loggedIn, "local session untouched")

	_, err = svc.IssueToken(context.Background(), "bad", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAccountService_Authenticate(t *testing.T) {
	grace := &domain.User{Email: "grace@example.com"}
	svc := NewAccountService(nil, &mockTokens{user: grace})

	user, err := svc.Authenticate(context.Background(), " tok ")
	require.NoError(t, err)
	assert.Same(t, grace, user)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = NewAccountService(nil, nil).Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
