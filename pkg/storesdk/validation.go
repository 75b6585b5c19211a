package storesdk

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validate performs client side checks so obviously bad input never costs
// a round trip. Each Validate returns a map of field to message; empty
// means valid.

func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)

	username := strings.TrimSpace(r.Username)
	switch {
	case username == "":
		errs["username"] = "username is required"
	case utf8.RuneCountInString(username) > 150:
		errs["username"] = "username must be at most 150 characters"
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs["email"] = "enter a valid email address"
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		errs["password"] = "password must be at least 8 characters"
	}
	return errs
}

func (r VerifyOTPRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	}
	if len(strings.TrimSpace(r.OTP)) != 6 {
		errs["otp"] = "otp must be 6 digits"
	}
	return errs
}

func (r AddToCartRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.ProductID <= 0 {
		errs["product_id"] = "product is required"
	}
	if r.Quantity < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	return errs
}

func (r CreateOrderRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.AddressID <= 0 {
		errs["address_id"] = "address is required"
	}
	if !validPaymentMethod(r.PaymentMethod) {
		errs["payment_method"] = "payment method must be upi or bank_transfer"
	}
	return errs
}

func (r DirectPurchaseRequest) Validate() map[string]string {
	errs := CreateOrderRequest{AddressID: r.AddressID, PaymentMethod: r.PaymentMethod}.Validate()
	if r.ProductID <= 0 {
		errs["product_id"] = "product is required"
	}
	if r.Quantity < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	return errs
}

func (a Address) Validate() map[string]string {
	errs := make(map[string]string)
	for field, v := range map[string]string{
		"phone":    a.Phone,
		"street":   a.Street,
		"city":     a.City,
		"state":    a.State,
		"zip_code": a.ZipCode,
	} {
		if strings.TrimSpace(v) == "" {
			errs[field] = field + " is required"
		}
	}
	switch a.AddressType {
	case AddressHome, AddressWork, AddressOther:
	default:
		errs["address_type"] = "address type must be home, work or other"
	}
	return errs
}

func (r UpdateOrderStatusRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if !ValidOrderStatus(r.Status) {
		errs["status"] = "unknown order status"
	}
	return errs
}

func validPaymentMethod(m string) bool {
	return m == PaymentUPI || m == PaymentBankTransfer
}

// ValidOrderStatus reports whether s is a known wire status.
func ValidOrderStatus(s string) bool {
	switch s {
	case StatusPendingPayment, StatusPaymentSubmitted, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// check converts a Validate result into an error.
func check(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return ValidationError(errs)
}

func (r ProductInput) Validate() map[string]string {
	errs := make(map[string]string)
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) > 200:
		errs["name"] = "name must be at most 200 characters"
	}
	if !r.Price.IsPositive() {
		errs["price"] = "price must be greater than zero"
	}
	if r.StockQuantity < 0 {
		errs["stock_quantity"] = "stock cannot be negative"
	}
	if r.CategoryID != nil && *r.CategoryID <= 0 {
		errs["category_id"] = "category id must be positive"
	}
	return errs
}

func (r CategoryInput) Validate() map[string]string {
	errs := make(map[string]string)
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) > 100:
		errs["name"] = "name must be at most 100 characters"
	}
	return errs
}
