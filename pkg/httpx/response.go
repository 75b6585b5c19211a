package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by the middleware in this package.
const (
	CodeTokenNotValid    = "token_not_valid"
	CodeNotAuthenticated = "not_authenticated"
	CodePermissionDenied = "permission_denied"
	CodeThrottled        = "throttled"
)

// WriteJSON writes v as JSON with the given status and no-cache headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes the {"detail", "code"} error body used across the API.
func WriteDetail(w http.ResponseWriter, status int, code, detail string) {
	body := map[string]string{"detail": detail}
	if code != "" {
		body["code"] = code
	}
	WriteJSON(w, status, body)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
