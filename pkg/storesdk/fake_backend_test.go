package storesdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "correct-horse"
)

// fakeBackend is a minimal storefront used to observe the client's wire
// behaviour: which routes were hit, how often, with which token.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	valid    string
	issued   int
	hits     map[string]int
	lastAuth map[string]string
	stale    int
	cart     Cart
	nextItem int64

	// refreshStatus, when non-zero, makes refresh fail with it.
	refreshStatus int

	// holdRefreshUntilStale delays the refresh answer until that many
	// stale token answers have been served.
	holdRefreshUntilStale int
	staleCh               chan struct{}

	// refreshGate, when set, blocks refresh until it is closed or the
	// client gives up on the request.
	refreshGate chan struct{}

	// tokenFn, when set, mints access tokens.
	tokenFn func(n int) string

	// routes overrides handlers by "METHOD path".
	routes map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{
		t:        t,
		hits:     make(map[string]int),
		lastAuth: make(map[string]string),
		routes:   make(map[string]http.HandlerFunc),
		staleCh:  make(chan struct{}, 64),
		cart:     Cart{CartID: 7, Items: []CartItem{}},
	}
	f.srv = httptest.NewServer(f)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBackend) client() *Client {
	c := NewClient(f.srv.URL)
	c.Logger = slogx.Discard()
	c.HTTPClient.Transport = &slogx.Transport{Base: f.srv.Client().Transport, Logger: slogx.Discard()}
	return c
}

func (f *fakeBackend) loggedIn(t *testing.T) *Client {
	t.Helper()
	c := f.client()
	_, err := c.Login(t.Context(), testEmail, testPassword)
	require.NoError(t, err)
	return c
}

// expire invalidates the token the client holds, as if it timed out.
func (f *fakeBackend) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = "expired"
}

func (f *fakeBackend) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeBackend) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeBackend) authFor(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth[route]
}

func (f *fakeBackend) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid
}

func (f *fakeBackend) mint() string {
	f.issued++
	if f.tokenFn != nil {
		f.valid = f.tokenFn(f.issued)
	} else {
		f.valid = "access-" + strconv.Itoa(f.issued)
	}
	return f.valid
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[route]++
	f.lastAuth[route] = r.Header.Get("Authorization")
	override := f.routes[route]
	f.mu.Unlock()

	switch route {
	case "POST " + pathLogin:
		f.login(w, r)
		return
	case "POST " + pathRefresh:
		f.refresh(w, r)
		return
	}

	if !f.authorized(r) {
		f.mu.Lock()
		f.stale++
		f.mu.Unlock()
		select {
		case f.staleCh <- struct{}{}:
		default:
		}
		writeTestJSON(w, http.StatusUnauthorized, ErrorResponse{Detail: "Given token not valid for any token type", Code: "token_not_valid"})
		return
	}

	if override != nil {
		override(w, r)
		return
	}

	switch {
	case route == "POST "+pathLogout:
		w.WriteHeader(http.StatusOK)
	case route == "GET "+pathCart:
		f.mu.Lock()
		cart := f.cart
		f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, cart)
	case route == "POST "+pathCartAdd:
		var req AddToCartRequest
		if !decodeTestJSON(w, r, &req) {
			return
		}
		writeTestJSON(w, http.StatusOK, f.addItem(req.ProductID, req.Quantity))
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/orders/cart/update/"):
		var req UpdateCartItemRequest
		if !decodeTestJSON(w, r, &req) {
			return
		}
		writeTestJSON(w, http.StatusOK, f.setQuantity(itemIDFromPath(r.URL.Path), req.Quantity))
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/orders/cart/remove/"):
		writeTestJSON(w, http.StatusOK, f.setQuantity(itemIDFromPath(r.URL.Path), 0))
	default:
		writeTestJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not found."})
	}
}

func (f *fakeBackend) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid != "" && r.Header.Get("Authorization") == "Bearer "+f.valid
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeTestJSON(w, r, &req) {
		return
	}
	if req.Email != testEmail || req.Password != testPassword {
		writeTestJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	f.mu.Lock()
	token := f.mint()
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r-1", Path: "/api/auth/", HttpOnly: true})
	writeTestJSON(w, http.StatusOK, LoginResponse{
		Access: token,
		User:   User{ID: 1, Username: "jane", Email: testEmail},
	})
}

func (f *fakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	hold := f.holdRefreshUntilStale
	status := f.refreshStatus
	gate := f.refreshGate
	f.mu.Unlock()

	if hold > 0 {
		f.waitForStale(hold)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		writeTestJSON(w, status, ErrorResponse{Detail: "Token is invalid or expired", Code: "token_not_valid"})
		return
	}
	if _, err := r.Cookie("refresh_token"); err != nil {
		writeTestJSON(w, http.StatusUnauthorized, ErrorResponse{Detail: "Refresh token not found"})
		return
	}

	f.mu.Lock()
	token := f.mint()
	f.mu.Unlock()
	writeTestJSON(w, http.StatusOK, RefreshResponse{Access: token})
}

func (f *fakeBackend) waitForStale(n int) {
	deadline := time.After(5 * time.Second)
	for {
		f.mu.Lock()
		got := f.stale
		f.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-f.staleCh:
		case <-deadline:
			f.t.Errorf("refresh held: only %d of %d stale answers served", got, n)
			return
		}
	}
}

func (f *fakeBackend) addItem(product int64, qty int) Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart.Items {
		if f.cart.Items[i].Product == product {
			f.cart.Items[i].Quantity += qty
			return f.snapshotLocked()
		}
	}
	f.nextItem++
	f.cart.Items = append(f.cart.Items, CartItem{
		ID:           f.nextItem,
		Product:      product,
		ProductName:  fmt.Sprintf("Product %d", product),
		ProductPrice: decimal.RequireFromString("9.99"),
		Quantity:     qty,
	})
	return f.snapshotLocked()
}

func (f *fakeBackend) setQuantity(item int64, qty int) Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.cart.Items[:0]
	for _, it := range f.cart.Items {
		if it.ID == item {
			if qty <= 0 {
				continue
			}
			it.Quantity = qty
		}
		items = append(items, it)
	}
	f.cart.Items = items
	return f.snapshotLocked()
}

func (f *fakeBackend) snapshotLocked() Cart {
	total := decimal.Zero
	items := make([]CartItem, len(f.cart.Items))
	for i, it := range f.cart.Items {
		it.TotalPrice = it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.TotalPrice)
		items[i] = it
	}
	f.cart.TotalItems = len(items)
	f.cart.TotalPrice = total
	return Cart{CartID: f.cart.CartID, TotalItems: len(items), TotalPrice: total, Items: items}
}

func itemIDFromPath(p string) int64 {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	id, _ := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	return id
}

func decodeTestJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeTestJSON(w, http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return false
	}
	return true
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// set mutates backend knobs while the server may be running.
func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}
