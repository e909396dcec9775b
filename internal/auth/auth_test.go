package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTProviderRoundTrip(t *testing.T) {
	provider, err := NewJWTProvider("secret", "dinelog", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := provider.Issue(Claims{UserID: "u1", Email: "a@example.com", Name: "alice", Admin: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := provider.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Claims{UserID: "u1", Email: "a@example.com", Name: "alice", Admin: true}, claims)
}

func TestJWTProviderRejectsForeignAndExpiredTokens(t *testing.T) {
	provider, err := NewJWTProvider("secret", "dinelog", time.Hour)
	require.NoError(t, err)
	other, err := NewJWTProvider("other-secret", "dinelog", time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)
	_, err = provider.Verify(context.Background(), foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, _, err := provider.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)
	provider.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = provider.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = provider.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "abc", "Basic abc", "Bearer a b"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestCredentialServiceSignIn(t *testing.T) {
	dsn := fmt.Sprintf("file:auth-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, nil)
	require.NoError(t, err)

	provider, err := NewJWTProvider("secret", "dinelog", time.Hour)
	require.NoError(t, err)
	svc := NewCredentialService(repository.New(gdb, "app"), provider)
	ctx := context.Background()

	created, err := svc.EnsureCredential(ctx, "admin", "s3cret", "admin@example.com", true)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureCredential(ctx, "admin", "other", "", false)
	require.NoError(t, err)
	assert.False(t, created, "existing accounts are left untouched")

	_, err = svc.SignIn(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.SignIn(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrBadCredentials)

	result, err := svc.SignIn(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, result.Admin)

	claims, err := provider.Verify(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.UserID, claims.UserID)
	assert.True(t, claims.Admin)
}
