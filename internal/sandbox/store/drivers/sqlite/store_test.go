package sqlite_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store/drivers/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedProduct(t *testing.T, st *sqlite.Store, name string, stock int) int64 {
	t.Helper()
	id, err := st.Catalog().CreateProduct(context.Background(), domain.Product{
		Name:          name,
		Price:         decimal.RequireFromString("10.50"),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, st *sqlite.Store, name string) int64 {
	t.Helper()
	id, err := st.Users().CreateUser(context.Background(), domain.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Active:       true,
	})
	require.NoError(t, err)
	return id
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	id := seedUser(t, st, "alice")

	_, err := st.Users().CreateUser(ctx, domain.User{Username: "alice2", Email: "ALICE@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, store.ErrAlreadyExists, "emails compare case-insensitively")

	u, err := st.Users().GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	_, err = st.Users().GetUserByID(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	id := seedProduct(t, st, "Widget", 5)

	require.NoError(t, st.Catalog().AdjustStock(ctx, id, -5))
	require.ErrorIs(t, st.Catalog().AdjustStock(ctx, id, -1), store.ErrInsufficientStock)
	require.NoError(t, st.Catalog().AdjustStock(ctx, id, 3))

	p, err := st.Catalog().GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 3, p.StockQuantity)
	require.True(t, decimal.RequireFromString("10.5").Equal(p.Price))

	require.ErrorIs(t, st.Catalog().AdjustStock(ctx, 999, 1), store.ErrNotFound)
}

func TestCatalogWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	cat := st.Catalog()

	books, err := cat.CreateCategory(ctx, domain.Category{Name: "Books"})
	require.NoError(t, err)
	toys, err := cat.CreateCategory(ctx, domain.Category{Name: "Toys"})
	require.NoError(t, err)

	t.Run("category names are unique", func(t *testing.T) {
		err := cat.UpdateCategory(ctx, domain.Category{ID: toys, Name: "Books"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
		require.ErrorIs(t, cat.UpdateCategory(ctx, domain.Category{ID: 999, Name: "Games"}), store.ErrNotFound)
	})

	pid := seedProduct(t, st, "Primer", 3)
	err = cat.UpdateProduct(ctx, domain.Product{
		ID:            pid,
		Name:          "Go Primer",
		Price:         decimal.RequireFromString("12.00"),
		StockQuantity: 4,
		CategoryID:    &books,
	})
	require.NoError(t, err)

	p, err := cat.GetProduct(ctx, pid)
	require.NoError(t, err)
	require.Equal(t, "Go Primer", p.Name)
	require.Equal(t, 4, p.StockQuantity)
	require.NotNil(t, p.Category)
	require.Equal(t, "Books", p.Category.Name)

	require.NoError(t, cat.DeleteCategory(ctx, books))
	p, err = cat.GetProduct(ctx, pid)
	require.NoError(t, err)
	require.Nil(t, p.CategoryID, "products outlive their category")
	require.ErrorIs(t, cat.DeleteCategory(ctx, books), store.ErrNotFound)

	uid := seedUser(t, st, "dave")
	cart, err := st.Carts().GetOrCreateCart(ctx, uid)
	require.NoError(t, err)
	item, err := st.Carts().UpsertItem(ctx, cart.ID, pid, 1)
	require.NoError(t, err)

	require.NoError(t, cat.DeleteProduct(ctx, pid))
	_, err = cat.GetProduct(ctx, pid)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Carts().GetItem(ctx, cart.ID, item)
	require.ErrorIs(t, err, store.ErrNotFound, "cart lines go with the product")
	require.ErrorIs(t, cat.DeleteProduct(ctx, pid), store.ErrNotFound)
	require.ErrorIs(t, cat.UpdateProduct(ctx, domain.Product{ID: pid, Name: "x", Price: decimal.NewFromInt(1)}), store.ErrNotFound)
}

func TestCartUpsertMerges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	uid := seedUser(t, st, "bob")
	pid := seedProduct(t, st, "Widget", 5)

	cart, err := st.Carts().GetOrCreateCart(ctx, uid)
	require.NoError(t, err)
	again, err := st.Carts().GetOrCreateCart(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, cart.ID, again.ID)

	first, err := st.Carts().UpsertItem(ctx, cart.ID, pid, 2)
	require.NoError(t, err)
	second, err := st.Carts().UpsertItem(ctx, cart.ID, pid, 3)
	require.NoError(t, err)
	require.Equal(t, first, second)

	it, err := st.Carts().GetItem(ctx, cart.ID, first)
	require.NoError(t, err)
	require.Equal(t, 5, it.Quantity)
	require.Equal(t, "Widget", it.ProductName)

	require.NoError(t, st.Carts().ClearCart(ctx, cart.ID))
	_, err = st.Carts().GetItem(ctx, cart.ID, first)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, st.Carts().DeleteItem(ctx, cart.ID, first), store.ErrNotFound)
}

func TestOrdersAndPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	uid := seedUser(t, st, "carol")
	pid := seedProduct(t, st, "Widget", 5)

	create := func(number string) (int64, int64) {
		t.Helper()
		oid, err := st.Orders().CreateOrder(ctx, domain.Order{
			OrderNumber:     number,
			UserID:          uid,
			TotalAmount:     decimal.RequireFromString("21"),
			Status:          domain.OrderPendingPayment,
			ShippingAddress: "1 Test St",
			Items: []domain.OrderItem{{
				ProductID:    &pid,
				ProductName:  "Widget",
				ProductPrice: decimal.RequireFromString("10.50"),
				Quantity:     2,
			}},
		})
		require.NoError(t, err)
		payID, err := st.Payments().CreatePayment(ctx, domain.Payment{
			OrderID:       oid,
			PaymentMethod: domain.MethodUPI,
			Amount:        decimal.RequireFromString("21"),
			Status:        domain.PaymentPending,
		})
		require.NoError(t, err)
		return oid, payID
	}

	last, err := st.Orders().LastOrderNumber(ctx, "ORD20260101")
	require.NoError(t, err)
	require.Empty(t, last)

	firstID, firstPay := create("ORD202601010001")
	create("ORD202601010002")
	create("ORD202601020001")

	last, err = st.Orders().LastOrderNumber(ctx, "ORD20260101")
	require.NoError(t, err)
	require.Equal(t, "ORD202601010002", last)

	o, err := st.Orders().GetOrderByNumber(ctx, "ORD202601010001")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	require.NotNil(t, o.Payment)
	require.Equal(t, firstPay, o.Payment.ID)

	pending, err := st.Orders().FindPendingOrder(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "ORD202601020001", pending.OrderNumber, "newest pending order wins")

	list, err := st.Orders().ListUserOrders(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 3)

	shot := domain.Screenshot{ID: "shot-1", Filename: "a.png", ContentType: "image/png", Data: []byte{1, 2, 3}}
	require.NoError(t, st.Payments().SubmitProof(ctx, firstPay, "UTR-1", nil, shot))

	got, err := st.Payments().GetPaymentByOrder(ctx, firstID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentSubmitted, got.Status)
	require.Equal(t, "UTR-1", got.UTRNumber)
	require.Equal(t, "shot-1", got.ScreenshotID)
	require.Nil(t, got.PaidAt)

	stored, err := st.Payments().GetScreenshot(ctx, "shot-1")
	require.NoError(t, err)
	require.Equal(t, shot.Data, stored.Data)

	second, err := st.Orders().GetOrderByNumber(ctx, "ORD202601010002")
	require.NoError(t, err)
	shot.ID = "shot-2"
	err = st.Payments().SubmitProof(ctx, second.Payment.ID, "UTR-1", nil, shot)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, st.Orders().UpdateOrderStatus(ctx, firstID, domain.OrderPaymentSubmitted))
	submitted, err := st.Orders().ListOrders(ctx, domain.OrderPaymentSubmitted)
	require.NoError(t, err)
	require.Len(t, submitted, 1)

	require.ErrorIs(t, st.Orders().UpdateOrderStatus(ctx, 999, domain.OrderConfirmed), store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	id := seedProduct(t, st, "Widget", 5)

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Catalog().AdjustStock(ctx, id, -2); err != nil {
			return err
		}
		return tx.Catalog().AdjustStock(ctx, id, -10)
	})
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	p, err := st.Catalog().GetProduct(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 5, p.StockQuantity)
}
