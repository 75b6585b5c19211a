package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Repositories hang off it so a
// transaction scoped Store exposes exactly the same surface.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Catalog() Catalog
	Addresses() Addresses
	Carts() Carts
	Orders() Orders
	Payments() Payments

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns the assigned id. A duplicate email
	// or username is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// ActivateUser marks the account verified and clears its OTP secret.
	ActivateUser(ctx context.Context, id int64) error

	// ReplacePendingUser rewrites an unverified account so a repeated
	// registration can issue a fresh OTP.
	ReplacePendingUser(ctx context.Context, u domain.User) error

	SetAdmin(ctx context.Context, id int64, admin bool) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// DeleteExpiredPendingUsers drops unverified accounts whose OTP expired.
	DeleteExpiredPendingUsers(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	RevokeRefreshToken(ctx context.Context, hash string) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID int64) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type Catalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (int64, error)
	UpdateCategory(ctx context.Context, c domain.Category) error
	// DeleteCategory leaves its products uncategorised.
	DeleteCategory(ctx context.Context, id int64) error

	// ListProducts returns products with their category, optionally
	// restricted to one category.
	ListProducts(ctx context.Context, categoryID *int64) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (int64, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	// DeleteProduct drops the product from carts. Order lines keep their
	// name and price snapshot.
	DeleteProduct(ctx context.Context, id int64) error

	// AdjustStock adds delta to the product stock. A change that would
	// take stock below zero fails with ErrInsufficientStock.
	AdjustStock(ctx context.Context, productID int64, delta int) error

	CountProducts(ctx context.Context) (int, error)
}

// ErrInsufficientStock is returned by Catalog.AdjustStock.
var ErrInsufficientStock = errors.New("store: insufficient stock")

type Addresses interface {
	ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error)
	GetAddress(ctx context.Context, userID, id int64) (domain.Address, error)
	CreateAddress(ctx context.Context, a domain.Address) (int64, error)
	UpdateAddress(ctx context.Context, a domain.Address) error
	DeleteAddress(ctx context.Context, userID, id int64) error

	// ClearDefault unsets is_default on every address of the user.
	ClearDefault(ctx context.Context, userID int64) error
}

type Carts interface {
	// GetOrCreateCart returns the user's cart with its lines.
	GetOrCreateCart(ctx context.Context, userID int64) (domain.Cart, error)

	GetItem(ctx context.Context, cartID, itemID int64) (domain.CartItem, error)

	// UpsertItem adds quantity to the product's line, creating it when
	// missing, and returns the resulting line id.
	UpsertItem(ctx context.Context, cartID, productID int64, quantity int) (int64, error)

	SetItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

type Orders interface {
	// CreateOrder inserts the order and its items and returns its id.
	CreateOrder(ctx context.Context, o domain.Order) (int64, error)

	GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error)

	// ListUserOrders returns the user's orders newest first, without items.
	ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListOrders returns all orders newest first; an empty status matches any.
	ListOrders(ctx context.Context, status string) ([]domain.Order, error)

	// FindPendingOrder returns the user's newest order awaiting payment.
	FindPendingOrder(ctx context.Context, userID int64) (domain.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error

	// LastOrderNumber returns the highest order number with prefix, or ""
	// when there is none.
	LastOrderNumber(ctx context.Context, prefix string) (string, error)
}

type Payments interface {
	CreatePayment(ctx context.Context, p domain.Payment) (int64, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (domain.Payment, error)

	// SubmitProof records the reference number and screenshot and moves the
	// payment to submitted. A reused reference number is ErrAlreadyExists.
	SubmitProof(ctx context.Context, paymentID int64, utr string, paidAt *time.Time, shot domain.Screenshot) error

	UpdatePaymentStatus(ctx context.Context, paymentID int64, status string) error
	GetScreenshot(ctx context.Context, id string) (domain.Screenshot, error)
}
