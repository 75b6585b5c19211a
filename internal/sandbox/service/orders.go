package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/shopspring/decimal"
)

// PaymentMethod describes one accepted payment method.
type PaymentMethod struct {
	Value       string
	Label       string
	Description string
}

// PaymentMethods are the methods order creation accepts.
var PaymentMethods = []PaymentMethod{
	{Value: domain.MethodUPI, Label: "UPI", Description: "Pay with any UPI app and upload the confirmation screenshot."},
	{Value: domain.MethodBankTransfer, Label: "Bank Transfer", Description: "NEFT/IMPS/RTGS transfer followed by the reference number and receipt."},
}

func validMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm.Value == m {
			return true
		}
	}
	return false
}

// OrderService turns carts into orders. A user holds at most one order
// awaiting payment; creating another reports the existing one.
type OrderService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateFromCart places an order for everything in the user's cart,
// reserving stock and emptying the cart.
func (s *OrderService) CreateFromCart(ctx context.Context, userID, addressID int64, method string) (domain.Order, error) {
	var number string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.precheck(ctx, tx, userID, method); err != nil {
			return err
		}
		cart, err := tx.Carts().GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		lines := make([]domain.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			pid := it.ProductID
			lines = append(lines, domain.OrderItem{
				ProductID:    &pid,
				ProductName:  it.ProductName,
				ProductPrice: it.ProductPrice,
				Quantity:     it.Quantity,
			})
		}

		number, err = s.place(ctx, tx, userID, addressID, method, lines)
		if err != nil {
			return err
		}
		return tx.Carts().ClearCart(ctx, cart.ID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("order created", "order_number", number, "user_id", userID)
	return s.Store.Orders().GetOrderByNumber(ctx, number)
}

// DirectPurchase places an order for a single product, leaving the cart
// untouched.
func (s *OrderService) DirectPurchase(
	ctx context.Context,
	userID, productID int64,
	quantity int,
	addressID int64,
	method string,
) (domain.Order, error) {
	if quantity < 1 {
		return domain.Order{}, ErrInvalidQuantity
	}

	var number string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.precheck(ctx, tx, userID, method); err != nil {
			return err
		}
		p, err := tx.Catalog().GetProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		number, err = s.place(ctx, tx, userID, addressID, method, []domain.OrderItem{{
			ProductID:    &p.ID,
			ProductName:  p.Name,
			ProductPrice: p.Price,
			Quantity:     quantity,
		}})
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("direct purchase created", "order_number", number, "user_id", userID)
	return s.Store.Orders().GetOrderByNumber(ctx, number)
}

func (s *OrderService) precheck(ctx context.Context, tx store.Tx, userID int64, method string) error {
	if !validMethod(method) {
		return ErrInvalidPaymentMethod
	}
	pending, err := tx.Orders().FindPendingOrder(ctx, userID)
	switch {
	case err == nil:
		return &PendingOrderError{OrderNumber: pending.OrderNumber}
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	return nil
}

// place reserves stock and writes the order with its payment record.
func (s *OrderService) place(
	ctx context.Context,
	tx store.Tx,
	userID, addressID int64,
	method string,
	lines []domain.OrderItem,
) (string, error) {
	addr, err := tx.Addresses().GetAddress(ctx, userID, addressID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrAddressNotFound
	}
	if err != nil {
		return "", err
	}

	total := decimal.Zero
	for _, line := range lines {
		if err := tx.Catalog().AdjustStock(ctx, *line.ProductID, -line.Quantity); err != nil {
			if errors.Is(err, store.ErrInsufficientStock) {
				return "", fmt.Errorf("%w: %s", ErrInsufficientStock, line.ProductName)
			}
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrProductNotFound
			}
			return "", err
		}
		total = total.Add(line.Total())
	}

	number, err := s.nextOrderNumber(ctx, tx)
	if err != nil {
		return "", err
	}

	orderID, err := tx.Orders().CreateOrder(ctx, domain.Order{
		OrderNumber:     number,
		UserID:          userID,
		TotalAmount:     total,
		Status:          domain.OrderPendingPayment,
		ShippingAddress: formatAddress(addr),
		Items:           lines,
	})
	if err != nil {
		return "", err
	}

	_, err = tx.Payments().CreatePayment(ctx, domain.Payment{
		OrderID:       orderID,
		PaymentMethod: method,
		Amount:        total,
		Status:        domain.PaymentPending,
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// nextOrderNumber returns ORD<yyyymmdd><seq4>, numbering from 0001 each day.
func (s *OrderService) nextOrderNumber(ctx context.Context, tx store.Tx) (string, error) {
	prefix := "ORD" + s.now().UTC().Format("20060102")
	last, err := tx.Orders().LastOrderNumber(ctx, prefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (s *OrderService) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.Store.Orders().ListUserOrders(ctx, userID)
}

// Get returns the order when it belongs to userID.
func (s *OrderService) Get(ctx context.Context, userID int64, number string) (domain.Order, error) {
	o, err := s.Store.Orders().GetOrderByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, err
}

// Cancel cancels an order still awaiting payment and puts its stock back.
func (s *OrderService) Cancel(ctx context.Context, userID int64, number string) (domain.Order, error) {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.Orders().GetOrderByNumber(ctx, number)
		if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPendingPayment {
			return fmt.Errorf("%w: order is %s", ErrStatusTransition, o.Status)
		}
		return cancelOrder(ctx, tx, o, domain.PaymentRejected)
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("order cancelled", "order_number", number, "user_id", userID)
	return s.Store.Orders().GetOrderByNumber(ctx, number)
}

// cancelOrder restocks every line that still points at a product.
func cancelOrder(ctx context.Context, tx store.Tx, o domain.Order, paymentStatus string) error {
	for _, it := range o.Items {
		if it.ProductID == nil {
			continue
		}
		err := tx.Catalog().AdjustStock(ctx, *it.ProductID, it.Quantity)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	if err := tx.Orders().UpdateOrderStatus(ctx, o.ID, domain.OrderCancelled); err != nil {
		return err
	}
	if o.Payment != nil {
		return tx.Payments().UpdatePaymentStatus(ctx, o.Payment.ID, paymentStatus)
	}
	return nil
}

func formatAddress(a domain.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	out := strings.Join(parts, ", ")
	if a.Phone != "" {
		out += " (" + a.Phone + ")"
	}
	return out
}
