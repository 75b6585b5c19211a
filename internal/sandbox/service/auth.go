package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultOTPPeriod is how long one registration code stays valid.
	DefaultOTPPeriod = 300 * time.Second

	// DefaultOTPTTL is how long an unverified registration is kept.
	DefaultOTPTTL = 10 * time.Minute
)

type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	OTPPeriod  time.Duration
	OTPTTL     time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Registration is the outcome of Register. Code is the current OTP; the
// HTTP layer only reveals it when configured to.
type Registration struct {
	User domain.User
	Code string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) otpOpts() totp.ValidateOpts {
	period := s.OTPPeriod
	if period <= 0 {
		period = DefaultOTPPeriod
	}
	return totp.ValidateOpts{
		Period:    uint(period / time.Second),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// DefaultIssuer names the sandbox in tokens and OTP secrets.
const DefaultIssuer = "storefront-sandbox"

func (s *AuthService) issuer() string {
	if s.Issuer != "" {
		return s.Issuer
	}
	return DefaultIssuer
}

func (s *AuthService) otpTTL() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// Register creates an inactive account and issues an OTP for it. A
// repeated registration for an unverified email replaces the pending
// account and issues a fresh code.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (Registration, error) {
	now := s.now()
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return Registration{}, fmt.Errorf("hash password: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer(),
		AccountName: email,
		Period:      s.otpOpts().Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Registration{}, fmt.Errorf("generate otp secret: %w", err)
	}
	expiry := now.Add(s.otpTTL())

	u := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		OTPSecret:    key.Secret(),
		OTPExpiry:    &expiry,
	}

	existing, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		id, err := s.Store.Users().CreateUser(ctx, u)
		if errors.Is(err, store.ErrAlreadyExists) {
			return Registration{}, ErrUserExists
		}
		if err != nil {
			return Registration{}, err
		}
		u.ID = id
	case err != nil:
		return Registration{}, err
	case existing.Active:
		return Registration{}, ErrUserExists
	default:
		u.ID = existing.ID
		err := s.Store.Users().ReplacePendingUser(ctx, u)
		if errors.Is(err, store.ErrAlreadyExists) {
			return Registration{}, ErrUserExists
		}
		if err != nil {
			return Registration{}, err
		}
	}

	code, err := totp.GenerateCodeCustom(u.OTPSecret, now, s.otpOpts())
	if err != nil {
		return Registration{}, fmt.Errorf("generate otp: %w", err)
	}

	slogx.FromContext(ctx).Info("registration pending verification", "user_id", u.ID)
	return Registration{User: u, Code: code}, nil
}

// VerifyOTP activates the account when code matches its pending OTP.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	now := s.now()
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if u.Active {
		return nil
	}
	if u.OTPSecret == "" || (u.OTPExpiry != nil && now.After(*u.OTPExpiry)) {
		return ErrInvalidOTP
	}

	ok, err := totp.ValidateCustom(strings.TrimSpace(code), u.OTPSecret, now, s.otpOpts())
	if err != nil || !ok {
		return ErrInvalidOTP
	}
	return s.Store.Users().ActivateUser(ctx, u.ID)
}

// Login checks the password and opens a new refresh token family.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		// Burn the same time as a real check.
		_ = cryptox.VerifyPassword(password, dummyHash)
		return domain.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", "user_id", u.ID)
		return domain.Session{}, ErrInvalidCredentials
	}
	if !u.Active {
		return domain.Session{}, ErrAccountInactive
	}

	refresh, rt, err := s.newRefreshToken(u.ID)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return domain.Session{}, err
	}
	return s.session(u, refresh)
}

// Refresh rotates the refresh token: the presented one is revoked and a
// new access/refresh pair is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (domain.Session, error) {
	if refreshOpaque == "" {
		return domain.Session{}, ErrInvalidRefresh
	}
	now := s.now()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrInvalidRefresh
	}
	if err != nil {
		return domain.Session{}, err
	}
	if rt.Revoked || now.After(rt.ExpiresAt) {
		return domain.Session{}, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrInvalidRefresh
	}
	if err != nil {
		return domain.Session{}, err
	}

	next, nextRT, err := s.newRefreshToken(u.ID)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, nextRT)
	}); err != nil {
		return domain.Session{}, err
	}
	return s.session(u, next)
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshOpaque string) error {
	if refreshOpaque == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// EnsureAdmin creates an active admin account for email unless one
// already exists. An existing account is promoted and keeps its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.IsAdmin {
			if err := s.Store.Users().SetAdmin(ctx, u.ID, true); err != nil {
				return domain.User{}, err
			}
			u.IsAdmin = true
		}
		return u, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u = domain.User{
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		Active:       true,
	}
	if u.ID, err = s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) newRefreshToken(userID int64) (string, domain.RefreshToken, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.RefreshToken{}, err
	}
	return opaque, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: s.now().Add(s.refreshTTL()),
	}, nil
}

func (s *AuthService) session(u domain.User, refresh string) (domain.Session, error) {
	access, err := s.signAccess(u)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.refreshTTL(),
		User:         u,
	}, nil
}

func (s *AuthService) signAccess(u domain.User) (string, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	claims := jwtx.NewAccessClaims(
		strconv.FormatInt(u.ID, 10),
		u.Username,
		u.Email,
		u.IsAdmin,
		s.issuer(),
		ttl,
		s.now(),
	)
	return s.Signer.Sign(claims)
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dummyHash is verified against when the email is unknown.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$c2FuZGJveHNhbmRib3g$6Qk8tq9WQ2bS7cMx1qj0yq3b8c3xT0n8cKQm1fVd9hA"
