package storesdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const pathRefresh = "/api/auth/token/refresh/"

type refreshState int

const (
	refreshIdle refreshState = iota
	refreshInFlight
)

func (s refreshState) String() string {
	if s == refreshInFlight {
		return "refreshing"
	}
	return "idle"
}

// refreshOutcome is delivered to every request parked behind a refresh.
type refreshOutcome struct {
	token      string
	generation uint64
	err        error
}

// refresher is the single-flight state. It is guarded by Client.mu together
// with the session. pending is non-empty only while state is
// refreshInFlight and is drained in the same critical section that returns
// state to idle.
type refresher struct {
	state   refreshState
	pending []chan refreshOutcome

	// cycles counts refresh calls issued, for diagnostics.
	cycles uint64
}

// RefreshCycles returns how many refresh calls this client has issued.
func (c *Client) RefreshCycles() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh.cycles
}

// awaitRefresh returns a token newer than generation seen. If the session
// already moved on it returns the current token without a network call.
// Otherwise the caller is queued; the first caller to queue while idle
// starts the one refresh for this episode.
func (c *Client) awaitRefresh(ctx context.Context, seen uint64) (string, uint64, error) {
	c.mu.Lock()
	if c.sess.generation != seen {
		token, gen := c.sess.token, c.sess.generation
		c.mu.Unlock()
		if token == "" {
			return "", gen, Unauthenticated(ErrSessionExpired)
		}
		return token, gen, nil
	}

	wait := make(chan refreshOutcome, 1)
	c.refresh.pending = append(c.refresh.pending, wait)
	lead := c.refresh.state == refreshIdle
	if lead {
		c.refresh.state = refreshInFlight
		c.refresh.cycles++
	}
	c.mu.Unlock()

	if lead {
		go c.runRefresh(ctx, seen)
	}

	select {
	case out := <-wait:
		return out.token, out.generation, out.err
	case <-ctx.Done():
		return "", seen, networkError(ctx.Err())
	}
}

// runRefresh performs the refresh call and settles every queued request.
// The call is detached from the caller's cancellation so one abandoned
// request cannot fail the whole queue, but is bounded by RefreshTimeout.
func (c *Client) runRefresh(parent context.Context, seen uint64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.refreshTimeout())
	defer cancel()

	log := c.logger(parent)
	log.Info("access token refresh started")

	token, err := c.postRefresh(ctx)

	c.mu.Lock()
	superseded := c.sess.generation != seen
	held := c.sess.token != ""
	switch {
	case superseded:
		// A login or logout landed while refreshing; it wins.
		err = nil
	case err != nil:
		c.clearSessionLocked()
	default:
		c.installTokenLocked(token)
	}
	out := refreshOutcome{token: c.sess.token, generation: c.sess.generation}
	if err != nil {
		out.err = Unauthenticated(fmt.Errorf("%w: %w", ErrSessionExpired, err))
	} else if out.token == "" {
		out.err = Unauthenticated(ErrSessionExpired)
	}
	waiters := c.refresh.pending
	c.refresh.pending = nil
	c.refresh.state = refreshIdle
	c.mu.Unlock()

	for _, w := range waiters {
		w <- out
	}

	if superseded {
		log.Info("access token refresh superseded by a session change", "queued", len(waiters))
		return
	}
	if err != nil {
		log.Warn("access token refresh failed, session cleared", "queued", len(waiters), "err", err)
		// Only a session that held a token can expire.
		if held && c.OnSessionExpired != nil {
			c.OnSessionExpired()
		}
		return
	}
	log.Info("access token refreshed", "queued", len(waiters))
}

// postRefresh exchanges the refresh cookie for a new access token.
func (c *Client) postRefresh(ctx context.Context) (string, error) {
	resp, err := c.attempt(ctx, request{method: http.MethodPost, path: pathRefresh}, payload{}, "")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", parseErrorResponse(resp.StatusCode, resp.Body)
	}

	var rr RefreshResponse
	if err := resp.Decode(&rr); err != nil {
		return "", err
	}
	if rr.Access == "" {
		return "", errors.New("storesdk: refresh response has no access token")
	}
	return rr.Access, nil
}
