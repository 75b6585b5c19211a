package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. The values match the wire format.
const (
	OrderPendingPayment   = "pending_payment"
	OrderPaymentSubmitted = "payment_submitted"
	OrderConfirmed        = "confirmed"
	OrderProcessing       = "processing"
	OrderShipped          = "shipped"
	OrderDelivered        = "delivered"
	OrderCancelled        = "cancelled"
	OrderRefunded         = "refunded"
)

var statusDisplay = map[string]string{
	OrderPendingPayment:   "Pending Payment",
	OrderPaymentSubmitted: "Payment Submitted",
	OrderConfirmed:        "Confirmed",
	OrderProcessing:       "Processing",
	OrderShipped:          "Shipped",
	OrderDelivered:        "Delivered",
	OrderCancelled:        "Cancelled",
	OrderRefunded:         "Refunded",
}

// StatusDisplay returns the human label of an order status.
func StatusDisplay(status string) string {
	if s, ok := statusDisplay[status]; ok {
		return s
	}
	return status
}

// ValidOrderStatus reports whether status is a known order status.
func ValidOrderStatus(status string) bool {
	_, ok := statusDisplay[status]
	return ok
}

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentSubmitted = "submitted"
	PaymentVerified  = "verified"
	PaymentRejected  = "rejected"
)

// Payment methods.
const (
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
)

type Order struct {
	ID              int64
	OrderNumber     string
	UserID          int64
	TotalAmount     decimal.Decimal
	Status          string
	ShippingAddress string
	Items           []OrderItem
	Payment         *Payment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a snapshot of a cart line. ProductID survives only while the
// product exists; name and price never change.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    *int64
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
}

func (i OrderItem) Total() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID            int64
	OrderID       int64
	PaymentMethod string
	Amount        decimal.Decimal
	Status        string
	UTRNumber     string
	ScreenshotID  string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Screenshot is an uploaded payment proof image.
type Screenshot struct {
	ID          string
	PaymentID   int64
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
