package storesdk

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Identity
// ============================================================================

// User is the identity returned by login and the profile endpoint.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginRequest is the body of POST /api/auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the access token. The refresh token is only ever
// delivered as an HttpOnly cookie.
type LoginResponse struct {
	Access string `json:"access"`
	User   User   `json:"user"`
}

// RefreshResponse is the body of a successful token refresh.
type RefreshResponse struct {
	Access string `json:"access"`
}

// RegisterRequest is the body of POST /api/auth/register/.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse acknowledges a registration awaiting OTP verification.
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`

	// DebugOTP is only filled by development backends.
	DebugOTP string `json:"debug_otp,omitempty"`
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp/.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Catalog
// ============================================================================

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      *Category       `json:"category,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InStock reports whether at least qty units are available.
func (p Product) InStock(qty int) bool { return p.StockQuantity >= qty }

// ProductInput is the admin create and replace body for a product.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
}

// CategoryInput is the admin create and replace body for a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ============================================================================
// Addresses
// ============================================================================

const (
	AddressHome  = "home"
	AddressWork  = "work"
	AddressOther = "other"
)

type Address struct {
	ID          int64     `json:"id,omitempty"`
	Phone       string    `json:"phone"`
	AddressType string    `json:"address_type"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// FullAddress renders the address on one line.
func (a Address) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ============================================================================
// Cart
// ============================================================================

// CartItem is one line of the server side cart. Prices are snapshots the
// server computed; clients display them and never recompute totals.
type CartItem struct {
	ID           int64           `json:"id"`
	Product      int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// Cart is the body of GET /api/orders/cart/.
type Cart struct {
	CartID     int64           `json:"cart_id"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []CartItem      `json:"items"`
}

// Item finds a line by id.
func (c Cart) Item(id int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return CartItem{}, false
}

// ItemForProduct finds the line holding product.
func (c Cart) ItemForProduct(product int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.Product == product {
			return it, true
		}
	}
	return CartItem{}, false
}

// AddToCartRequest is the body of POST /api/orders/cart/add/.
type AddToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest is the body of PUT /api/orders/cart/update/{id}/.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ============================================================================
// Orders
// ============================================================================

// Order statuses as they appear on the wire.
const (
	StatusPendingPayment   = "pending_payment"
	StatusPaymentSubmitted = "payment_submitted"
	StatusConfirmed        = "confirmed"
	StatusProcessing       = "processing"
	StatusShipped          = "shipped"
	StatusDelivered        = "delivered"
	StatusCancelled        = "cancelled"
	StatusRefunded         = "refunded"
)

// Payment methods accepted by order creation.
const (
	PaymentUPI          = "upi"
	PaymentBankTransfer = "bank_transfer"
)

// OrderItem is an immutable snapshot of a cart line taken at order time.
type OrderItem struct {
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// OrderSummary is a row of the order list.
type OrderSummary struct {
	OrderNumber   string          `json:"order_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	StatusDisplay string          `json:"status_display"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Payment is the payment record attached to an order.
type Payment struct {
	ID            int64           `json:"id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	UTRNumber     string          `json:"utr_number,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Order is the full order detail.
type Order struct {
	OrderNumber     string          `json:"order_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	StatusDisplay   string          `json:"status_display"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	Payment         *Payment        `json:"payment,omitempty"`
}

// AwaitingPayment reports whether payment proof can still be submitted.
func (o Order) AwaitingPayment() bool { return o.Status == StatusPendingPayment }

// CreateOrderRequest is the body of POST /api/orders/order/create/.
type CreateOrderRequest struct {
	AddressID     int64  `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

// DirectPurchaseRequest buys one product without touching the cart.
type DirectPurchaseRequest struct {
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	AddressID     int64  `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

// OrderCreated is the success body of order creation.
type OrderCreated struct {
	Message string   `json:"message,omitempty"`
	Order   Order    `json:"order"`
	Payment *Payment `json:"payment,omitempty"`
}

// OrderConflict is returned instead of an order when the user already has
// an order awaiting payment. Callers either resume that order or cancel it
// and try again.
type OrderConflict struct {
	ExistingOrderNumber string
	Reason              string
}

// CreateOrderResult holds exactly one of Created or Conflict.
type CreateOrderResult struct {
	Created  *OrderCreated
	Conflict *OrderConflict
}

// OrderStatus is the body of GET /api/orders/order/{n}/status/.
type OrderStatus struct {
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	LastUpdated   time.Time `json:"last_updated"`
}

// PaymentMethod is one entry of GET /api/orders/payment/methods/.
type PaymentMethod struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// UpdateOrderStatusRequest is the admin status change body.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// ============================================================================
// Errors and health
// ============================================================================

// ErrorResponse is the error body backends send. Different endpoints
// populate different fields.
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ConflictResponse is the 409 body of order creation.
type ConflictResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// HealthResponse is the body of GET /livez.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
