package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	provider := auth.NewIdentityProvider("test-secret", 1)
	userID := uuid.New()

	token, err := provider.IssueToken(userID, "owner@acme.test")
	require.NoError(t, err)

	identity, err := provider.GetIdentity(token)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
	require.Equal(t, "owner@acme.test", identity.Email)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	issuer := auth.NewIdentityProvider("secret-one", 1)
	verifier := auth.NewIdentityProvider("secret-two", 1)

	token, err := issuer.IssueToken(uuid.New(), "owner@acme.test")
	require.NoError(t, err)

	_, err = verifier.GetIdentity(token)
	require.Error(t, err)
}

func TestEmptySecretFailsClosed(t *testing.T) {
	provider := auth.NewIdentityProvider("", 1)

	_, err := provider.IssueToken(uuid.New(), "owner@acme.test")
	require.Error(t, err)

	_, err = provider.GetIdentity("whatever")
	require.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	provider := auth.NewIdentityProvider("test-secret", 1)

	_, err := provider.GetIdentity("not.a.jwt")
	require.Error(t, err)
}
