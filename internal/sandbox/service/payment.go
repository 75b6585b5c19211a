package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// MaxScreenshotSize bounds an uploaded payment screenshot.
const MaxScreenshotSize = 5 << 20

// Proof is a submitted payment proof.
type Proof struct {
	UTRNumber  string
	Filename   string
	Screenshot []byte
	PaidAt     *time.Time
}

type PaymentService struct {
	Store store.Store
}

// Verify records payment proof for an order awaiting payment and moves
// the order to payment_submitted for an admin to review.
func (s *PaymentService) Verify(ctx context.Context, userID int64, number string, p Proof) (domain.Order, error) {
	utr := strings.TrimSpace(p.UTRNumber)
	if utr == "" {
		return domain.Order{}, ErrMissingReference
	}
	if len(p.Screenshot) == 0 || len(p.Screenshot) > MaxScreenshotSize {
		return domain.Order{}, ErrInvalidScreenshot
	}
	contentType := http.DetectContentType(p.Screenshot)
	if !strings.HasPrefix(contentType, "image/") {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrInvalidScreenshot, contentType)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.Orders().GetOrderByNumber(ctx, number)
		if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPendingPayment || o.Payment == nil {
			return fmt.Errorf("%w: order is %s", ErrPaymentNotAllowed, o.Status)
		}

		shot := domain.Screenshot{
			ID:          idx.New().String(),
			Filename:    filepath.Base(p.Filename),
			ContentType: contentType,
			Data:        p.Screenshot,
		}
		err = tx.Payments().SubmitProof(ctx, o.Payment.ID, utr, p.PaidAt, shot)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrDuplicateUTR
		}
		if err != nil {
			return err
		}
		return tx.Orders().UpdateOrderStatus(ctx, o.ID, domain.OrderPaymentSubmitted)
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("payment proof submitted", "order_number", number, "user_id", userID)
	return s.Store.Orders().GetOrderByNumber(ctx, number)
}

// Screenshot returns a stored proof image.
func (s *PaymentService) Screenshot(ctx context.Context, id string) (domain.Screenshot, error) {
	shot, err := s.Store.Payments().GetScreenshot(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Screenshot{}, ErrScreenshotNotFound
	}
	return shot, err
}
