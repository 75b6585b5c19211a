package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// CreateOrder turns the cart into an order. When the user already has an
// order awaiting payment the result carries a Conflict and the coordinator
// enters the Conflict state; resolve it with ResumePendingOrder or
// CancelAndRetry.
func (c *Coordinator) CreateOrder(ctx context.Context, addressID int64, paymentMethod string) (storesdk.CreateOrderResult, error) {
	if err := c.requireSession(); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	if err := validateCreate(addressID, paymentMethod); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	if _, err := c.begin(ctx, Creating, ""); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	return c.create(ctx, addressID, paymentMethod)
}

// ResumePendingOrder loads an existing order so payment can continue.
func (c *Coordinator) ResumePendingOrder(ctx context.Context, orderNumber string) (*storesdk.Order, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, storesdk.ValidationError(map[string]string{"order_number": "order number is required"})
	}

	from, err := c.begin(ctx, ResumingPending, orderNumber)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	ticket := c.orderSeq.next()
	c.mu.Unlock()

	order, err := c.backend.GetOrder(ctx, orderNumber)
	if err != nil {
		back := NoOrder
		if from == Conflict {
			back = Conflict
		}
		c.settle(ctx, back, orderNumber)
		return nil, err
	}

	c.mu.Lock()
	if c.orderSeq.apply(ticket) {
		c.order = order
	}
	c.conflict = nil
	c.recordLocked(ctx, Created, orderNumber)
	c.mu.Unlock()

	c.logger(ctx).Info("resumed pending order", "order", orderNumber, "status", order.Status)
	return order, nil
}

// CancelAndRetry cancels the conflicting order and creates a new one with
// the same arguments. It may also start from NoOrder when the caller
// already knows the pending order number. A failed cancellation is returned
// as is and no order is created.
func (c *Coordinator) CancelAndRetry(ctx context.Context, orderNumber string, addressID int64, paymentMethod string) (storesdk.CreateOrderResult, error) {
	if err := c.requireSession(); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return storesdk.CreateOrderResult{}, storesdk.ValidationError(map[string]string{"order_number": "order number is required"})
	}
	if err := validateCreate(addressID, paymentMethod); err != nil {
		return storesdk.CreateOrderResult{}, err
	}
	from, err := c.begin(ctx, CancellingThenRetrying, orderNumber)
	if err != nil {
		return storesdk.CreateOrderResult{}, err
	}

	if err := c.backend.CancelOrder(ctx, orderNumber); err != nil {
		back := NoOrder
		if from == Conflict {
			back = Conflict
		}
		c.settle(ctx, back, orderNumber)
		c.logger(ctx).Warn("cancel of pending order failed", "order", orderNumber, "err", err)
		return storesdk.CreateOrderResult{}, fmt.Errorf("cancel order %s: %w", orderNumber, err)
	}
	c.logger(ctx).Info("cancelled pending order", "order", orderNumber)

	return c.create(ctx, addressID, paymentMethod)
}

// create issues the order call and settles the state from Creating or
// CancellingThenRetrying.
func (c *Coordinator) create(ctx context.Context, addressID int64, paymentMethod string) (storesdk.CreateOrderResult, error) {
	c.mu.Lock()
	ticket := c.orderSeq.next()
	c.mu.Unlock()

	res, err := c.backend.CreateOrder(ctx, addressID, paymentMethod)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err != nil:
		c.recordLocked(ctx, NoOrder, "")
		return res, err

	case res.Conflict != nil:
		oc := *res.Conflict
		c.conflict = &oc
		c.recordLocked(ctx, Conflict, oc.ExistingOrderNumber)
		c.logger(ctx).Info("order creation blocked by pending order", "order", oc.ExistingOrderNumber, "reason", oc.Reason)
		return res, nil

	case res.Created != nil:
		created := *res.Created
		if c.orderSeq.apply(ticket) {
			o := created.Order
			c.order = &o
		}
		c.conflict = nil
		c.handoffs.prune(c.now())
		c.handoffs.put(created, c.now().Add(c.handoffTTL()))

		// The server emptied the cart; drop the snapshot and anything in flight.
		c.cart = nil
		c.cartSeq.apply(c.cartSeq.next())

		c.recordLocked(ctx, Created, created.Order.OrderNumber)
		c.logger(ctx).Info("order created", "order", created.Order.OrderNumber, "total", created.Order.TotalAmount)
		return res, nil
	}

	c.recordLocked(ctx, NoOrder, "")
	return res, errors.New("checkout: empty order result")
}

// RefreshOrder reloads the order being checked out without changing state.
// It may run alongside other calls; an older answer never replaces a newer
// one.
func (c *Coordinator) RefreshOrder(ctx context.Context) (*storesdk.Order, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.order == nil {
		c.mu.Unlock()
		return nil, storesdk.ValidationError(map[string]string{"order_number": "no order is being checked out"})
	}
	orderNumber := c.order.OrderNumber
	ticket := c.orderSeq.next()
	c.mu.Unlock()

	order, err := c.backend.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orderSeq.apply(ticket) && c.order != nil && c.order.OrderNumber == orderNumber {
		c.order = order
	}
	return order, nil
}

// TakeHandoff returns the creation result of orderNumber once, if it was
// created by this coordinator within HandoffTTL.
func (c *Coordinator) TakeHandoff(orderNumber string) (*storesdk.OrderCreated, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	created, ok := c.handoffs.take(orderNumber, c.now())
	if !ok {
		return nil, false
	}
	return &created, true
}

func (c *Coordinator) handoffTTL() time.Duration {
	if c.HandoffTTL <= 0 {
		return DefaultHandoffTTL
	}
	return c.HandoffTTL
}

func validateCreate(addressID int64, paymentMethod string) error {
	errs := storesdk.CreateOrderRequest{AddressID: addressID, PaymentMethod: paymentMethod}.Validate()
	if len(errs) == 0 {
		return nil
	}
	return storesdk.ValidationError(errs)
}
