package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	uid := activeUser(t, st, "keeper@example.com")

	tokens := []domain.RefreshToken{
		{ID: "expired", TokenHash: "h-expired", ExpiresAt: time.Now().Add(-time.Hour)},
		{ID: "revoked", TokenHash: "h-revoked", ExpiresAt: time.Now().Add(time.Hour), Revoked: true},
		{ID: "live", TokenHash: "h-live", ExpiresAt: time.Now().Add(time.Hour)},
	}
	for _, tok := range tokens {
		tok.UserID = uid
		require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, tok))
	}

	stale := time.Now().Add(-time.Minute)
	fresh := time.Now().Add(time.Hour)
	for name, expiry := range map[string]*time.Time{"stale": &stale, "fresh": &fresh} {
		_, err := st.Users().CreateUser(ctx, domain.User{
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "x",
			OTPSecret:    "SECRET",
			OTPExpiry:    expiry,
		})
		require.NoError(t, err)
	}

	svc := NewHousekeepingService(st, slogx.Discard(), time.Hour)
	svc.Cleanup(ctx)

	for _, tc := range []struct {
		hash string
		gone bool
	}{{"h-expired", true}, {"h-revoked", true}, {"h-live", false}} {
		_, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, tc.hash)
		if tc.gone {
			require.ErrorIs(t, err, store.ErrNotFound, tc.hash)
		} else {
			require.NoError(t, err, tc.hash)
		}
	}

	_, err := st.Users().GetUserByEmail(ctx, "stale@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Users().GetUserByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
	_, err = st.Users().GetUserByEmail(ctx, "keeper@example.com")
	require.NoError(t, err, "active users are never swept")
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	svc := NewHousekeepingService(newTestStore(t), slogx.Discard(), 0)
	require.Equal(t, time.Hour, svc.Interval)
	svc.Start()
	svc.Stop()
}
