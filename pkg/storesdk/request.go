package storesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBody caps how much of a response is buffered.
const maxResponseBody = 8 << 20

// request describes one logical API call. It is replayed at most once.
type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// noAuth omits the Authorization header (login, register, refresh).
	noAuth bool

	// noRefresh returns a stale token status as is instead of refreshing.
	noRefresh bool
}

// Response is a fully buffered API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &APIError{
			Kind:       KindServerRejected,
			StatusCode: r.StatusCode,
			Message:    "malformed response body",
			Body:       r.Body,
			Err:        err,
		}
	}
	return nil
}

func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return &APIError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("path %q must be a relative API route", path),
			Fields:  map[string]string{"path": "must start with a single /"},
		}
	}
	if strings.ContainsAny(path, "?#") {
		return &APIError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("path %q must not carry a query or fragment", path),
			Fields:  map[string]string{"path": "query and fragment are not allowed"},
		}
	}
	return nil
}

// Do issues an authenticated call and returns the response. Non-2xx
// answers become *APIError. body is nil, a JSON serialisable value or a
// MultipartBody.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.exchange(ctx, request{method: method, path: path, body: body})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, parseErrorResponse(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// exchange runs the refresh protocol around a single call. It returns the
// final response whatever its status, or an error when there is none to
// return.
func (c *Client) exchange(ctx context.Context, req request) (*Response, error) {
	if err := validatePath(req.path); err != nil {
		return nil, err
	}
	pl, err := encodeBody(req.body)
	if err != nil {
		return nil, err
	}

	var (
		token string
		gen   uint64
	)
	if !req.noAuth {
		token, gen = c.credentials()
		if !req.noRefresh && token != "" {
			if exp, ok := c.tokenExpiry(); ok && c.expiresSoon(exp, time.Now()) {
				c.logger(ctx).Debug("access token close to expiry, refreshing first", "expires_at", exp)
				if token, gen, err = c.awaitRefresh(ctx, gen); err != nil {
					return nil, err
				}
			}
		}
	}

	resp, err := c.attempt(ctx, req, pl, token)
	if err != nil {
		return nil, err
	}
	if req.noAuth || req.noRefresh || resp.StatusCode != c.staleStatus() {
		return resp, nil
	}

	// Stale token. Wait for (or start) the refresh, then replay once.
	token, _, err = c.awaitRefresh(ctx, gen)
	if err != nil {
		return nil, err
	}
	resp, err = c.attempt(ctx, req, pl, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == c.staleStatus() {
		apiErr := parseErrorResponse(resp.StatusCode, resp.Body)
		apiErr.Kind = KindUnauthenticated
		apiErr.Err = ErrSessionExpired
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) tokenExpiry() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.expiresAt, !c.sess.expiresAt.IsZero()
}

// attempt sends the request once with the given token.
func (c *Client) attempt(ctx context.Context, req request, pl payload, token string) (*Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, networkError(err)
		}
	}

	u := c.BaseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if pl.data != nil {
		body = bytes.NewReader(pl.data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, &APIError{Kind: KindValidation, Message: "cannot build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if pl.contentType != "" {
		httpReq.Header.Set("Content-Type", pl.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, networkError(fmt.Errorf("read response: %w", err))
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// call runs req and decodes a 2xx body into out, which may be nil.
func (c *Client) call(ctx context.Context, req request, out any) error {
	resp, err := c.exchange(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return parseErrorResponse(resp.StatusCode, resp.Body)
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, request{method: http.MethodGet, path: path}, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.call(ctx, request{method: method, path: path, body: body}, out)
}

var errEmptyBody = errors.New("empty response body")
