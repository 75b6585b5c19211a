package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/sandbox/http"
	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	userPassword  = "password123"
)

// pngBytes is enough for content sniffing to report image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// clock lets a test mint tokens that are already expired.
type clock struct{ offset atomic.Int64 }

func (c *clock) Now() time.Time { return time.Now().Add(time.Duration(c.offset.Load())) }

func (c *clock) Shift(d time.Duration) { c.offset.Store(int64(d)) }

type testEnv struct {
	srv   *httptest.Server
	store *sqlite.Store
	auth  *service.AuthService
	clock *clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	cryptox.SetPepper("test-pepper")

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "sandbox.db") + "?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierEdDSA(service.DefaultIssuer, signer)

	clk := &clock{}
	auth := &service.AuthService{
		Store:      st,
		Signer:     signer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Now:        clk.Now,
	}

	catalog := &service.CatalogService{Store: st}
	_, err = catalog.Seed(ctx, service.DefaultSeed)
	require.NoError(t, err)
	_, err = auth.EnsureAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(verifier, "test", st, logger)
	router.AuthService = auth
	router.CatalogService = catalog
	router.AddressService = &service.AddressService{Store: st}
	router.CartService = &service.CartService{Store: st}
	router.OrderService = &service.OrderService{Store: st}
	router.PaymentService = &service.PaymentService{Store: st}
	router.AdminService = &service.AdminService{Store: st}
	router.ExposeOTP = true
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, auth: auth, clock: clk}
}

func (e *testEnv) client() *storesdk.Client {
	c := storesdk.NewClient(e.srv.URL)
	c.RefreshBuffer = 0
	return c
}

// customer registers, verifies and logs in a fresh account.
func (e *testEnv) customer(t *testing.T, email string) *storesdk.Client {
	t.Helper()
	ctx := t.Context()
	c := e.client()

	reg, err := c.Register(ctx, storesdk.RegisterRequest{Username: email, Email: email, Password: userPassword})
	require.NoError(t, err)
	require.Len(t, reg.DebugOTP, 6)

	_, err = c.VerifyOTP(ctx, email, reg.DebugOTP)
	require.NoError(t, err)

	_, err = c.Login(ctx, email, userPassword)
	require.NoError(t, err)
	return c
}

func (e *testEnv) admin(t *testing.T) *storesdk.Client {
	t.Helper()
	c := e.client()
	s, err := c.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, s.User.IsAdmin)
	return c
}

func addAddress(t *testing.T, c *storesdk.Client) int64 {
	t.Helper()
	a, err := c.CreateAddress(t.Context(), storesdk.Address{
		Phone:       "9999999999",
		AddressType: storesdk.AddressHome,
		Street:      "1 Test Street",
		City:        "Sydney",
		State:       "NSW",
		ZipCode:     "2000",
	})
	require.NoError(t, err)
	require.NotZero(t, a.ID)
	return a.ID
}

func productNamed(t *testing.T, c *storesdk.Client, name string) storesdk.Product {
	t.Helper()
	products, err := c.ListProducts(t.Context())
	require.NoError(t, err)
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return storesdk.Product{}
}

func requireStatus(t *testing.T, err error, status int) *storesdk.APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *storesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	return apiErr
}

func decimalOf(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
