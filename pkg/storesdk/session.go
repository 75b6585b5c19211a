package storesdk

import (
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// session is the client's only shared credential. generation increases on
// every change (login, refresh, clear) so a request can tell whether the
// token it was rejected with is still the current one.
type session struct {
	token      string
	user       *User
	expiresAt  time.Time
	generation uint64
}

// Session is a read-only snapshot of the current credentials.
type Session struct {
	AccessToken string
	User        *User

	// ExpiresAt is zero when the token is opaque.
	ExpiresAt time.Time
}

func (s Session) IsAuthenticated() bool { return s.AccessToken != "" }

// Session returns a snapshot of the current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// IsAuthenticated reports whether an access token is held.
func (c *Client) IsAuthenticated() bool {
	return c.Session().IsAuthenticated()
}

func (c *Client) snapshotLocked() Session {
	s := Session{AccessToken: c.sess.token, ExpiresAt: c.sess.expiresAt}
	if c.sess.user != nil {
		u := *c.sess.user
		s.User = &u
	}
	return s
}

// credentials returns the token to attach and the generation it belongs to.
func (c *Client) credentials() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.token, c.sess.generation
}

// installTokenLocked replaces the access token, keeping the user.
func (c *Client) installTokenLocked(token string) {
	c.sess.token = token
	c.sess.expiresAt, _ = jwtx.PeekExpiry(token)
	c.sess.generation++
}

func (c *Client) setSession(token string, user User) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installTokenLocked(token)
	c.sess.user = &user
	return c.snapshotLocked()
}

func (c *Client) setUser(user User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.token != "" {
		c.sess.user = &user
	}
}

func (c *Client) clearSessionLocked() {
	c.sess = session{generation: c.sess.generation + 1}
}

// expiresSoon reports whether a proactive refresh is due for exp.
func (c *Client) expiresSoon(exp time.Time, now time.Time) bool {
	if c.RefreshBuffer <= 0 || exp.IsZero() {
		return false
	}
	return exp.Sub(now) < c.RefreshBuffer
}
