package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token. Missing, malformed
// and expired tokens all answer 401 so clients know a refresh may help.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, CodeNotAuthenticated, "Authentication credentials were not provided.")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug("jwt verify failed", "err", err)
				writeBearerError(w, CodeTokenNotValid, "Given token not valid for any token type")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin answers 403 unless the token carries the admin claim. It must
// run after AuthnMiddleware.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok || !c.Admin {
				WriteDetail(w, http.StatusForbidden, CodePermissionDenied,
					"You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeBearerError(w http.ResponseWriter, code, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteDetail(w, http.StatusUnauthorized, code, detail)
}
