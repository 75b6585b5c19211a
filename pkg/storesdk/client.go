package storesdk

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every single HTTP exchange.
	DefaultTimeout = 30 * time.Second

	// DefaultRefreshTimeout bounds a refresh cycle. Requests queued behind a
	// refresh that overruns it fail as unauthenticated.
	DefaultRefreshTimeout = 10 * time.Second

	// DefaultRefreshBuffer triggers a refresh before sending when a JWT
	// access token expires within this window.
	DefaultRefreshBuffer = 30 * time.Second
)

// Client is the authenticated storefront API client. It owns exactly one
// session and is safe for concurrent use. Expired access tokens are
// refreshed transparently: callers only ever observe the final outcome.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Logger receives refresh and logout events. Defaults to the context
	// logger of the triggering call.
	Logger *slog.Logger

	// StaleTokenStatus is the status meaning "access token stale, refresh
	// and retry". It must differ from the status used for forbidden.
	StaleTokenStatus int

	RefreshTimeout time.Duration

	// RefreshBuffer enables refreshing ahead of expiry. Zero disables it.
	RefreshBuffer time.Duration

	// Limiter, when set, paces outbound requests.
	Limiter *rate.Limiter

	// OnSessionExpired runs after a refresh fails and clears a session that
	// held an access token. A failed refresh from an already empty session
	// does not call it again. It runs on the refresh goroutine and must not
	// block.
	OnSessionExpired func()

	jar *sessionJar

	mu      sync.Mutex
	sess    session
	refresh refresher
}

// NewClient returns a client for the API rooted at baseURL with defaults
// suitable for a browser-like session: a cookie jar for the refresh
// cookie, a 30s timeout and request id propagation.
func NewClient(baseURL string) *Client {
	jar := newSessionJar()
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   DefaultTimeout,
			Jar:       jar,
			Transport: &slogx.Transport{},
		},
		StaleTokenStatus: http.StatusUnauthorized,
		RefreshTimeout:   DefaultRefreshTimeout,
		RefreshBuffer:    DefaultRefreshBuffer,
		jar:              jar,
	}
}

func (c *Client) logger(ctx context.Context) *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slogx.FromContext(ctx)
}

func (c *Client) staleStatus() int {
	if c.StaleTokenStatus == 0 {
		return http.StatusUnauthorized
	}
	return c.StaleTokenStatus
}

func (c *Client) refreshTimeout() time.Duration {
	if c.RefreshTimeout <= 0 {
		return DefaultRefreshTimeout
	}
	return c.RefreshTimeout
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// sessionJar is a cookie jar that can be emptied on logout while requests
// are in flight.
type sessionJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newSessionJar() *sessionJar {
	j := &sessionJar{}
	j.reset()
	return j
}

func (j *sessionJar) reset() {
	// cookiejar.New only fails on a bad PublicSuffixList option.
	inner, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}
