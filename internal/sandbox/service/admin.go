package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// adminTransitions lists the statuses an admin may move an order to.
var adminTransitions = map[string][]string{
	domain.OrderPendingPayment:   {domain.OrderCancelled},
	domain.OrderPaymentSubmitted: {domain.OrderConfirmed, domain.OrderCancelled},
	domain.OrderConfirmed:        {domain.OrderProcessing, domain.OrderCancelled},
	domain.OrderProcessing:       {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped:          {domain.OrderDelivered},
	domain.OrderDelivered:        {domain.OrderRefunded},
}

// CanAdminTransition reports whether an admin may move an order from one
// status to another.
func CanAdminTransition(from, to string) bool {
	for _, s := range adminTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminService struct {
	Store store.Store
}

// List returns every order, optionally filtered by status.
func (s *AdminService) List(ctx context.Context, status string) ([]domain.Order, error) {
	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.Store.Orders().ListOrders(ctx, status)
}

// Pending returns orders whose payment proof awaits review.
func (s *AdminService) Pending(ctx context.Context) ([]domain.Order, error) {
	return s.Store.Orders().ListOrders(ctx, domain.OrderPaymentSubmitted)
}

func (s *AdminService) Get(ctx context.Context, number string) (domain.Order, error) {
	o, err := s.Store.Orders().GetOrderByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, err
}

// UpdateStatus moves an order along its lifecycle. Confirming verifies the
// payment; cancelling rejects it and restocks.
func (s *AdminService) UpdateStatus(ctx context.Context, number, status string) (domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, ErrInvalidStatus
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.Orders().GetOrderByNumber(ctx, number)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !CanAdminTransition(o.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrStatusTransition, o.Status, status)
		}

		switch status {
		case domain.OrderCancelled:
			return cancelOrder(ctx, tx, o, domain.PaymentRejected)
		case domain.OrderConfirmed:
			if o.Payment != nil {
				if err := tx.Payments().UpdatePaymentStatus(ctx, o.Payment.ID, domain.PaymentVerified); err != nil {
					return err
				}
			}
		}
		return tx.Orders().UpdateOrderStatus(ctx, o.ID, status)
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("order status updated", "order_number", number, "status", status)
	return s.Store.Orders().GetOrderByNumber(ctx, number)
}
