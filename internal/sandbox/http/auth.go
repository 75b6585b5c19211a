package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

const (
	// RefreshCookie holds the opaque refresh token. It is scoped to the
	// auth routes so other requests never carry it.
	RefreshCookie     = "refresh_token"
	refreshCookiePath = "/api/auth/"
)

type AuthHandler struct {
	AuthService *service.AuthService

	// ExposeOTP returns the registration code in the response body. Only
	// for development and tests; the sandbox sends no email.
	ExposeOTP bool

	CookieSecure bool
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, s domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    s.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(s.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token. The refresh token is set as an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	storesdk.LoginResponse
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		401		{object}	storesdk.ErrorResponse	"Invalid credentials"
//	@Failure		403		{object}	storesdk.ErrorResponse	"Account not verified"
//	@Router			/api/auth/login/ [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req storesdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	sess, err := h.AuthService.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteDetail(w, http.StatusUnauthorized, "invalid_credentials",
			"No active account found with the given credentials")
		return
	case errors.Is(err, service.ErrAccountInactive):
		httpx.WriteDetail(w, http.StatusForbidden, "account_inactive",
			"Please verify your email before logging in.")
		return
	case err != nil:
		writeServiceError(w, r, err)
		return
	}

	h.setRefreshCookie(w, sess)
	slogx.FromContext(ctx).Info("user logged in", "user_id", sess.User.ID)
	httpx.WriteJSON(w, http.StatusOK, storesdk.LoginResponse{
		Access: sess.AccessToken,
		User:   toUser(sess.User),
	})
}

// HandleRefresh godoc
//
//	@Summary		Refresh access token
//	@Description	Rotates the refresh token cookie and returns a new access token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	storesdk.RefreshResponse
//	@Failure		401	{object}	storesdk.ErrorResponse	"Missing, expired or revoked refresh token"
//	@Router			/api/auth/token/refresh/ [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var opaque string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		opaque = c.Value
	}

	sess, err := h.AuthService.Refresh(ctx, opaque)
	if errors.Is(err, service.ErrInvalidRefresh) {
		h.clearRefreshCookie(w)
		httpx.WriteDetail(w, http.StatusUnauthorized, httpx.CodeTokenNotValid, "Token is invalid or expired")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setRefreshCookie(w, sess)
	httpx.WriteJSON(w, http.StatusOK, storesdk.RefreshResponse{Access: sess.AccessToken})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh token cookie. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	storesdk.MessageResponse
//	@Router			/api/auth/logout/ [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c, err := r.Cookie(RefreshCookie); err == nil {
		if err := h.AuthService.Logout(ctx, c.Value); err != nil {
			slogx.FromContext(ctx).Warn("failed to revoke refresh token", "error", err)
		}
	}

	h.clearRefreshCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an unverified account and issues a one time code for it.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	storesdk.RegisterResponse
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Router			/api/auth/register/ [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req storesdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	reg, err := h.AuthService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := storesdk.RegisterResponse{
		Message: "Registration successful. Please verify your email with the OTP sent.",
		Email:   reg.User.Email,
	}
	if h.ExposeOTP {
		resp.DebugOTP = reg.Code
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify registration code
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.VerifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	storesdk.MessageResponse
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Router			/api/auth/verify-otp/ [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req storesdk.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	if err := h.AuthService.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			writeErrorMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Email verified successfully. You can now log in.")
}

// HandleProfile godoc
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	storesdk.User
//	@Failure		401	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/auth/profile/ [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}
	u, err := h.AuthService.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
