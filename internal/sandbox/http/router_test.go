package http_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/sandbox/http"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	c := env.client()

	h, err := c.Health(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", h.Status)
	require.Equal(t, "test", h.Version)

	resp, err := http.Get(env.srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouteTable(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		httpapi.NewRouter(nil, "test", nil, slogx.Discard()).ApplyRoutes()
	})

	env := newTestEnv(t)
	tests := []struct {
		method, path string
		status       int
	}{
		// Literal order routes are reachable next to the {number} ones.
		{http.MethodPost, "/api/orders/order/create/", http.StatusUnauthorized},
		{http.MethodPost, "/api/orders/order/direct-purchase/", http.StatusUnauthorized},
		{http.MethodPost, "/api/orders/order/ORD1/cancel/", http.StatusUnauthorized},
		{http.MethodGet, "/api/orders/order/ORD1/status/", http.StatusUnauthorized},

		// Leaf routes do not swallow deeper paths.
		{http.MethodPost, "/api/orders/order/create/extra/", http.StatusNotFound},
		{http.MethodGet, "/api/orders/cart/extra/", http.StatusNotFound},
		{http.MethodGet, "/api/products/1/extra/", http.StatusNotFound},

		{http.MethodPatch, "/api/products/1/", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/products/", http.StatusUnauthorized},
		{http.MethodGet, "/api/products/categories/", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequestWithContext(t.Context(), tt.method, env.srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCatalogAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()
	admin := env.admin(t)
	customer := env.customer(t, "ivan@example.com")

	input := storesdk.ProductInput{Name: "Notebook", Price: decimalOf(120), StockQuantity: 8}

	t.Run("customers cannot write", func(t *testing.T) {
		_, err := customer.AdminCreateProduct(ctx, input)
		requireStatus(t, err, http.StatusForbidden)
		_, err = customer.AdminCreateCategory(ctx, storesdk.CategoryInput{Name: "Stationery"})
		requireStatus(t, err, http.StatusForbidden)
	})

	cat, err := admin.AdminCreateCategory(ctx, storesdk.CategoryInput{Name: "Stationery"})
	require.NoError(t, err)
	require.NotZero(t, cat.ID)

	t.Run("duplicate category", func(t *testing.T) {
		_, err := admin.AdminCreateCategory(ctx, storesdk.CategoryInput{Name: "Books"})
		apiErr := requireStatus(t, err, http.StatusBadRequest)
		require.Contains(t, apiErr.Fields, "name")
	})

	input.CategoryID = &cat.ID
	p, err := admin.AdminCreateProduct(ctx, input)
	require.NoError(t, err)
	require.Equal(t, "Notebook", p.Name)
	require.NotNil(t, p.Category)
	require.Equal(t, "Stationery", p.Category.Name)

	t.Run("unknown category", func(t *testing.T) {
		missing := int64(9999)
		bad := input
		bad.CategoryID = &missing
		_, err := admin.AdminCreateProduct(ctx, bad)
		apiErr := requireStatus(t, err, http.StatusBadRequest)
		require.Contains(t, apiErr.Fields, "category_id")
	})

	input.StockQuantity = 2
	p, err = admin.AdminUpdateProduct(ctx, p.ID, input)
	require.NoError(t, err)
	require.Equal(t, 2, p.StockQuantity)
	require.Equal(t, 2, productNamed(t, customer, "Notebook").StockQuantity)

	_, err = customer.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)

	updated, err := admin.AdminUpdateCategory(ctx, cat.ID, storesdk.CategoryInput{Name: "Paper"})
	require.NoError(t, err)
	require.Equal(t, "Paper", updated.Name)

	require.NoError(t, admin.AdminDeleteCategory(ctx, cat.ID))
	got, err := customer.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Nil(t, got.Category)

	require.NoError(t, admin.AdminDeleteProduct(ctx, p.ID))
	_, err = customer.GetProduct(ctx, p.ID)
	requireStatus(t, err, http.StatusNotFound)

	cart, err := customer.GetCart(ctx)
	require.NoError(t, err)
	require.Empty(t, cart.Items, "deleted products leave carts")

	requireStatus(t, admin.AdminDeleteProduct(ctx, p.ID), http.StatusNotFound)
}

func TestCatalogIsPublic(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	c := env.client()
	ctx := t.Context()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 7)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)

	t.Run("filter by category", func(t *testing.T) {
		var books storesdk.Category
		for _, cat := range categories {
			if cat.Name == "Books" {
				books = cat
			}
		}
		require.NotZero(t, books.ID)

		resp, err := http.Get(env.srv.URL + "/api/products/?category=" + strconv.FormatInt(books.ID, 10))
		require.NoError(t, err)
		defer resp.Body.Close()

		var filtered []storesdk.Product
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&filtered))
		require.Len(t, filtered, 2)
		for _, p := range filtered {
			require.Equal(t, "Books", p.Category.Name)
		}
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		_, err := c.GetProduct(ctx, 9999)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestRegistration(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()
	c := env.client()

	reg, err := c.Register(ctx, storesdk.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: userPassword})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", reg.Email)

	t.Run("login before verification is refused", func(t *testing.T) {
		_, err := c.Login(ctx, "alice@example.com", userPassword)
		apiErr := requireStatus(t, err, http.StatusForbidden)
		require.Equal(t, "account_inactive", apiErr.Code)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		wrong := "000000"
		if reg.DebugOTP == wrong {
			wrong = "111111"
		}
		_, err := c.VerifyOTP(ctx, "alice@example.com", wrong)
		requireStatus(t, err, http.StatusBadRequest)
	})

	_, err = c.VerifyOTP(ctx, "alice@example.com", reg.DebugOTP)
	require.NoError(t, err)

	s, err := c.Login(ctx, "alice@example.com", userPassword)
	require.NoError(t, err)
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "alice", s.User.Username)
	require.False(t, s.User.IsAdmin)

	t.Run("verified email cannot register again", func(t *testing.T) {
		_, err := env.client().Register(ctx, storesdk.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: userPassword})
		apiErr := requireStatus(t, err, http.StatusBadRequest)
		require.Contains(t, apiErr.Fields, "email")
	})

	t.Run("bad password is 401 without refresh", func(t *testing.T) {
		fresh := env.client()
		_, err := fresh.Login(ctx, "alice@example.com", "not-the-password")
		apiErr := requireStatus(t, err, http.StatusUnauthorized)
		require.Equal(t, "invalid_credentials", apiErr.Code)
		require.Zero(t, fresh.RefreshCycles())
	})
}

func refreshCookie(t *testing.T, env *testEnv, c *storesdk.Client) string {
	t.Helper()
	u, err := url.Parse(env.srv.URL + "/api/auth/token/refresh/")
	require.NoError(t, err)
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == httpapi.RefreshCookie {
			return ck.Value
		}
	}
	return ""
}

func TestExpiredAccessTokenIsRefreshedAndReplayed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()

	// Tokens minted now are already past their expiry.
	env.clock.Shift(-10 * time.Minute)
	c := env.customer(t, "bob@example.com")
	env.clock.Shift(0)

	before := refreshCookie(t, env, c)
	require.NotEmpty(t, before)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetCart(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, c.RefreshCycles())

	after := refreshCookie(t, env, c)
	require.NotEmpty(t, after)
	require.NotEqual(t, before, after, "refresh must rotate the cookie")
}

func TestRestoreAndLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()

	c := env.customer(t, "carol@example.com")

	// A second client sharing the cookie jar resumes the session.
	resumed := env.client()
	resumed.HTTPClient = c.HTTPClient
	s, err := resumed.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", s.User.Email)

	resumed.Logout(ctx)
	require.False(t, resumed.IsAuthenticated())

	t.Run("revoked cookie cannot be restored", func(t *testing.T) {
		again := env.client()
		again.HTTPClient = c.HTTPClient
		_, err := again.Restore(ctx)
		require.True(t, storesdk.IsKind(err, storesdk.KindUnauthenticated), "got %v", err)
	})
}

func TestCartLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()
	c := env.customer(t, "dave@example.com")

	mug := productNamed(t, c, "Ceramic Mug")
	lamp := productNamed(t, c, "Desk Lamp")

	cart, err := c.AddToCart(ctx, mug.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, cart.TotalItems)

	cart, err = c.AddToCart(ctx, mug.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product merges into one line")
	require.Equal(t, 3, cart.Items[0].Quantity)
	require.True(t, mug.Price.Mul(decimalOf(3)).Equal(cart.TotalPrice))

	t.Run("out of stock", func(t *testing.T) {
		_, err := c.AddToCart(ctx, lamp.ID, 1)
		requireStatus(t, err, http.StatusBadRequest)
	})

	line := cart.Items[0]
	cart, err = c.UpdateCartItem(ctx, line.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, cart.TotalItems)

	cart, err = c.RemoveCartItem(ctx, line.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	t.Run("another user's line is not found", func(t *testing.T) {
		other := env.customer(t, "eve@example.com")
		_, err := other.UpdateCartItem(ctx, line.ID, 1)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestOrderConflictAndCancel(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()
	c := env.customer(t, "frank@example.com")
	addr := addAddress(t, c)

	kb := productNamed(t, c, "Mechanical Keyboard")
	_, err := c.AddToCart(ctx, kb.ID, 2)
	require.NoError(t, err)

	res, err := c.CreateOrder(ctx, addr, storesdk.PaymentUPI)
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	require.Nil(t, res.Conflict)

	order := res.Created.Order
	require.Regexp(t, `^ORD\d{8}\d{4}$`, order.OrderNumber)
	require.Equal(t, storesdk.StatusPendingPayment, order.Status)
	require.NotNil(t, res.Created.Payment)
	require.True(t, kb.Price.Mul(decimalOf(2)).Equal(order.TotalAmount))

	cart, err := c.GetCart(ctx)
	require.NoError(t, err)
	require.Empty(t, cart.Items, "checkout empties the cart")
	require.Equal(t, kb.StockQuantity-2, productNamed(t, c, kb.Name).StockQuantity)

	t.Run("second order while one awaits payment", func(t *testing.T) {
		_, err := c.AddToCart(ctx, kb.ID, 1)
		require.NoError(t, err)

		res, err := c.CreateOrder(ctx, addr, storesdk.PaymentUPI)
		require.NoError(t, err)
		require.Nil(t, res.Created)
		require.NotNil(t, res.Conflict)
		require.Equal(t, order.OrderNumber, res.Conflict.ExistingOrderNumber)
		require.NotEmpty(t, res.Conflict.Reason)
	})

	require.NoError(t, c.CancelOrder(ctx, order.OrderNumber))
	require.Equal(t, kb.StockQuantity, productNamed(t, c, kb.Name).StockQuantity, "cancel restocks")

	st, err := c.GetOrderStatus(ctx, order.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, storesdk.StatusCancelled, st.Status)

	t.Run("cancelled order cannot be cancelled again", func(t *testing.T) {
		requireStatus(t, c.CancelOrder(ctx, order.OrderNumber), http.StatusBadRequest)
	})

	res, err = c.CreateOrder(ctx, addr, storesdk.PaymentBankTransfer)
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	require.NotEqual(t, order.OrderNumber, res.Created.Order.OrderNumber)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, res.Created.Order.OrderNumber, orders[0].OrderNumber, "newest first")

	t.Run("orders are private", func(t *testing.T) {
		other := env.customer(t, "grace@example.com")
		_, err := other.GetOrder(ctx, order.OrderNumber)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestPaymentProofAndReview(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := t.Context()
	c := env.customer(t, "heidi@example.com")
	addr := addAddress(t, c)
	earbuds := productNamed(t, c, "Wireless Earbuds")

	res, err := c.DirectPurchase(ctx, storesdk.DirectPurchaseRequest{
		ProductID:     earbuds.ID,
		Quantity:      1,
		AddressID:     addr,
		PaymentMethod: storesdk.PaymentUPI,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	number := res.Created.Order.OrderNumber

	err = c.SubmitPaymentProof(ctx, number, storesdk.PaymentProof{
		ReferenceID: "UTR123456789",
		Screenshot:  pngBytes,
		Filename:    "proof.png",
		PaidAt:      time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	o, err := c.GetOrder(ctx, number)
	require.NoError(t, err)
	require.Equal(t, storesdk.StatusPaymentSubmitted, o.Status)
	require.Equal(t, "submitted", o.Payment.Status)
	require.Equal(t, "UTR123456789", o.Payment.UTRNumber)

	t.Run("proof is accepted once", func(t *testing.T) {
		err := c.SubmitPaymentProof(ctx, number, storesdk.PaymentProof{ReferenceID: "UTR999", Screenshot: pngBytes})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("customers cannot review", func(t *testing.T) {
		_, err := c.AdminPendingOrders(ctx)
		requireStatus(t, err, http.StatusForbidden)
		require.Zero(t, c.RefreshCycles(), "403 never triggers a refresh")
	})

	admin := env.admin(t)

	pending, err := admin.AdminPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, number, pending[0].OrderNumber)

	t.Run("screenshot is served to admins", func(t *testing.T) {
		internal, err := env.store.Orders().GetOrderByNumber(ctx, number)
		require.NoError(t, err)
		require.NotNil(t, internal.Payment)
		require.NotEmpty(t, internal.Payment.ScreenshotID)

		resp, err := admin.Do(ctx, http.MethodGet, "/api/admin/payments/screenshots/"+internal.Payment.ScreenshotID+"/", nil)
		require.NoError(t, err)
		require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		require.Equal(t, pngBytes, resp.Body)
	})

	t.Run("illegal transition", func(t *testing.T) {
		_, err := admin.AdminUpdateOrderStatus(ctx, number, storesdk.StatusDelivered)
		requireStatus(t, err, http.StatusBadRequest)
	})

	confirmed, err := admin.AdminUpdateOrderStatus(ctx, number, storesdk.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, storesdk.StatusConfirmed, confirmed.Status)
	require.Equal(t, "verified", confirmed.Payment.Status)

	t.Run("reference numbers are unique", func(t *testing.T) {
		res, err := c.DirectPurchase(ctx, storesdk.DirectPurchaseRequest{
			ProductID:     earbuds.ID,
			Quantity:      1,
			AddressID:     addr,
			PaymentMethod: storesdk.PaymentBankTransfer,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Created)

		err = c.SubmitPaymentProof(ctx, res.Created.Order.OrderNumber, storesdk.PaymentProof{
			ReferenceID: "UTR123456789",
			Screenshot:  pngBytes,
		})
		apiErr := requireStatus(t, err, http.StatusBadRequest)
		require.Contains(t, apiErr.Fields, storesdk.FieldUTRNumber)
	})
}
