package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// SubmitPaymentProof uploads payment evidence for the order being checked
// out. It is not retried; after a rejection the caller may submit again.
func (c *Coordinator) SubmitPaymentProof(ctx context.Context, orderNumber string, proof storesdk.PaymentProof) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := proof.Check(); err != nil {
		return err
	}
	orderNumber = strings.TrimSpace(orderNumber)

	c.mu.Lock()
	switch {
	case c.state.InFlight():
		err := fmt.Errorf("%w: %s", ErrBusy, c.state)
		c.mu.Unlock()
		return err
	case !CanTransition(c.state, SubmittingProof):
		err := &TransitionError{From: c.state, To: SubmittingProof}
		c.mu.Unlock()
		return err
	case c.order == nil || c.order.OrderNumber != orderNumber:
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOrderMismatch, orderNumber)
	}
	c.recordLocked(ctx, SubmittingProof, orderNumber)
	c.mu.Unlock()

	if err := c.backend.SubmitPaymentProof(ctx, orderNumber, proof); err != nil {
		c.settle(ctx, ProofRejected, orderNumber)
		c.logger(ctx).Warn("payment proof rejected", "order", orderNumber, "err", err)
		return err
	}

	c.mu.Lock()
	if c.order != nil && c.order.OrderNumber == orderNumber {
		c.order.Status = storesdk.StatusPaymentSubmitted
	}
	delete(c.handoffs, orderNumber)
	c.recordLocked(ctx, ProofAccepted, orderNumber)
	c.mu.Unlock()

	c.logger(ctx).Info("payment proof submitted", "order", orderNumber)
	return nil
}
