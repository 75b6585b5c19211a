package storesdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	pathLogin     = "/api/auth/login/"
	pathLogout    = "/api/auth/logout/"
	pathRegister  = "/api/auth/register/"
	pathVerifyOTP = "/api/auth/verify-otp/"
	pathProfile   = "/api/auth/profile/"
)

// Login exchanges credentials for a session. The refresh cookie set by the
// server is kept in the client's cookie jar. A rejected password is
// KindServerRejected, never a refresh trigger.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := check(req.Validate()); err != nil {
		return Session{}, err
	}

	var lr LoginResponse
	err := c.call(ctx, request{
		method:    http.MethodPost,
		path:      pathLogin,
		body:      req,
		noAuth:    true,
		noRefresh: true,
	}, &lr)
	if err != nil {
		return Session{}, err
	}
	if lr.Access == "" {
		return Session{}, &APIError{Kind: KindServerRejected, Message: "login response has no access token", Err: errEmptyBody}
	}

	s := c.setSession(lr.Access, lr.User)
	c.logger(ctx).Info("logged in", "user_id", lr.User.ID)
	return s, nil
}

// Logout tells the server to revoke the refresh token, then clears the
// local session and cookies regardless of the outcome.
func (c *Client) Logout(ctx context.Context) {
	token, _ := c.credentials()
	if token != "" {
		_, err := c.exchange(ctx, request{method: http.MethodPost, path: pathLogout, noRefresh: true})
		if err != nil {
			c.logger(ctx).Warn("logout request failed, clearing local session anyway", "err", err)
		}
	}

	c.mu.Lock()
	c.clearSessionLocked()
	c.mu.Unlock()
	if c.jar != nil {
		c.jar.reset()
	}
}

// Register creates an account awaiting OTP verification.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := check(req.Validate()); err != nil {
		return nil, err
	}

	var out RegisterResponse
	err := c.call(ctx, request{
		method:    http.MethodPost,
		path:      pathRegister,
		body:      req,
		noAuth:    true,
		noRefresh: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP activates a registered account.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*MessageResponse, error) {
	req := VerifyOTPRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if err := check(req.Validate()); err != nil {
		return nil, err
	}

	var out MessageResponse
	err := c.call(ctx, request{
		method:    http.MethodPost,
		path:      pathVerifyOTP,
		body:      req,
		noAuth:    true,
		noRefresh: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the signed in user and records it on the session.
// Called without a token it attempts a refresh from the cookie jar, which
// restores a session persisted in cookies.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, pathProfile, &u); err != nil {
		return nil, err
	}
	c.setUser(u)
	return &u, nil
}

// Restore tries to resume a session from the refresh cookie alone.
func (c *Client) Restore(ctx context.Context) (Session, error) {
	if _, err := c.Profile(ctx); err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return Session{}, Unauthenticated(ErrNotAuthenticated)
		}
		return Session{}, err
	}
	return c.Session(), nil
}
