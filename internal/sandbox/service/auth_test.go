package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestAuth(t, st)

	reg, err := svc.Register(ctx, "alice", " Alice@Example.com ", "password123")
	require.NoError(t, err)
	require.Len(t, reg.Code, 6)
	require.Equal(t, "alice@example.com", reg.User.Email)

	t.Run("pending accounts cannot log in", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "password123")
		require.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("repeat registration issues a fresh code", func(t *testing.T) {
		again, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, reg.User.ID, again.User.ID)
		reg = again
	})

	require.ErrorIs(t, svc.VerifyOTP(ctx, "alice@example.com", "12345x"), ErrInvalidOTP)
	require.NoError(t, svc.VerifyOTP(ctx, "alice@example.com", reg.Code))

	_, err = svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.ErrorIs(t, err, ErrUserExists)

	sess, err := svc.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	require.Equal(t, time.Hour, sess.RefreshTTL)

	verifier := jwtx.NewVerifierEdDSA(DefaultIssuer, svc.Signer.(*jwtx.EdDSASigner))
	claims, err := verifier.Verify(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)
	require.False(t, claims.Admin)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "nope-nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestOTPExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestAuth(t, st)

	start := time.Now()
	svc.Now = func() time.Time { return start }
	reg, err := svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	svc.Now = func() time.Time { return start.Add(DefaultOTPTTL + time.Minute) }
	require.ErrorIs(t, svc.VerifyOTP(ctx, "bob@example.com", reg.Code), ErrInvalidOTP)

	t.Run("housekeeping removes the stale registration", func(t *testing.T) {
		n, err := st.Users().DeleteExpiredPendingUsers(ctx, start.Add(DefaultOTPTTL+time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestAuth(t, st)
	activeUser(t, st, "carol@example.com")

	first, err := svc.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEmpty(t, second.AccessToken)

	t.Run("rotated token is dead", func(t *testing.T) {
		_, err := svc.Refresh(ctx, first.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("empty and unknown tokens", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, err = svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired token", func(t *testing.T) {
		later := *svc
		later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Refresh(ctx, second.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	require.NoError(t, svc.Logout(ctx, second.RefreshToken))
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestAuth(t, st)

	u, err := svc.EnsureAdmin(ctx, "root@example.com", "Admin123!")
	require.NoError(t, err)
	require.True(t, u.IsAdmin)
	require.True(t, u.Active)

	again, err := svc.EnsureAdmin(ctx, "root@example.com", "ignored-password")
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)

	_, err = svc.Login(ctx, "root@example.com", "Admin123!")
	require.NoError(t, err, "existing admin keeps its password")

	t.Run("promotes an existing customer", func(t *testing.T) {
		id := activeUser(t, st, "dan@example.com")
		promoted, err := svc.EnsureAdmin(ctx, "dan@example.com", "whatever1")
		require.NoError(t, err)
		require.Equal(t, id, promoted.ID)
		require.True(t, promoted.IsAdmin)
	})
}
