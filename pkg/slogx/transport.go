package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/idx"
)

// Transport is the client side twin of HTTPMiddleware. It stamps every
// outbound request with an X-Request-ID and logs the exchange at debug.
type Transport struct {
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Logger defaults to the context logger of each request.
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	reqID := req.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = RequestID(req.Context())
	}
	if reqID == "" {
		reqID = idx.New().String()
	}

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, reqID)

	log := t.Logger
	if log == nil {
		log = FromContext(req.Context())
	}
	log = log.With("req_id", reqID, "method", req.Method, "path", req.URL.Path)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Debug("http_call failed", "duration_ms", time.Since(start).Milliseconds(), "err", err)
		return nil, err
	}

	log.Debug("http_call",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
