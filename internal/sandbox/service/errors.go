package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrUserExists         = errors.New("user_exists")
	ErrUserNotFound       = errors.New("user_not_found")

	ErrProductNotFound   = errors.New("product_not_found")
	ErrCategoryNotFound  = errors.New("category_not_found")
	ErrCategoryExists    = errors.New("category_exists")
	ErrUnknownCategory   = errors.New("unknown_category")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrInvalidQuantity   = errors.New("invalid_quantity")

	ErrAddressNotFound  = errors.New("address_not_found")
	ErrCartItemNotFound = errors.New("cart_item_not_found")
	ErrCartEmpty        = errors.New("cart_empty")

	ErrOrderNotFound        = errors.New("order_not_found")
	ErrPendingOrderExists   = errors.New("pending_order_exists")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrStatusTransition     = errors.New("status_transition_not_allowed")

	ErrPaymentNotAllowed  = errors.New("payment_not_allowed")
	ErrMissingReference   = errors.New("missing_utr_number")
	ErrInvalidScreenshot  = errors.New("invalid_screenshot")
	ErrDuplicateUTR       = errors.New("duplicate_utr_number")
	ErrScreenshotNotFound = errors.New("screenshot_not_found")
)

// PendingOrderError reports the order that blocks a new one. It matches
// ErrPendingOrderExists under errors.Is.
type PendingOrderError struct {
	OrderNumber string
}

func (e *PendingOrderError) Error() string {
	return fmt.Sprintf("order %s is awaiting payment", e.OrderNumber)
}

func (e *PendingOrderError) Is(target error) bool { return target == ErrPendingOrderExists }
