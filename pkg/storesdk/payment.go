package storesdk

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const pathPaymentVerify = "/api/orders/payment/verify/%s/"

// Multipart field names of the payment proof form.
const (
	FieldUTRNumber   = "utr_number"
	FieldScreenshot  = "transaction_ss"
	FieldPaymentDate = "payment_date"
)

// maxScreenshotSize matches the upload limit the backend enforces.
const maxScreenshotSize = 5 << 20

// PaymentProof is the evidence a customer submits for a manual payment.
type PaymentProof struct {
	// ReferenceID is the transaction reference (UTR) shown by the bank.
	ReferenceID string

	Screenshot []byte
	Filename   string

	// PaidAt is optional.
	PaidAt time.Time
}

// ContentType sniffs the screenshot's media type.
func (p PaymentProof) ContentType() string {
	return http.DetectContentType(p.Screenshot)
}

func (p PaymentProof) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.ReferenceID) == "" {
		errs[FieldUTRNumber] = "transaction reference is required"
	}
	switch {
	case len(p.Screenshot) == 0:
		errs[FieldScreenshot] = "payment screenshot is required"
	case len(p.Screenshot) > maxScreenshotSize:
		errs[FieldScreenshot] = "payment screenshot must be at most 5MB"
	case !strings.HasPrefix(p.ContentType(), "image/"):
		errs[FieldScreenshot] = "payment screenshot must be an image"
	}
	return errs
}

// Check returns Validate as an error. A missing screenshot wraps
// ErrMissingScreenshot.
func (p PaymentProof) Check() error {
	errs := p.Validate()
	if len(errs) == 0 {
		return nil
	}
	apiErr := ValidationError(errs)
	if len(p.Screenshot) == 0 {
		apiErr.Err = ErrMissingScreenshot
	}
	return apiErr
}

func (p PaymentProof) form() MultipartBody {
	name := filepath.Base(p.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "screenshot"
	}

	fields := []FormField{{Name: FieldUTRNumber, Value: strings.TrimSpace(p.ReferenceID)}}
	if !p.PaidAt.IsZero() {
		fields = append(fields, FormField{Name: FieldPaymentDate, Value: p.PaidAt.UTC().Format(time.RFC3339)})
	}
	return MultipartBody{
		Fields: fields,
		Files: []FormFile{{
			Field:       FieldScreenshot,
			Filename:    name,
			ContentType: p.ContentType(),
			Data:        p.Screenshot,
		}},
	}
}

// SubmitPaymentProof uploads the proof for an order awaiting payment. It
// is never retried beyond a token refresh replay; resubmitting is the
// caller's decision.
func (c *Client) SubmitPaymentProof(ctx context.Context, orderNumber string, proof PaymentProof) error {
	path, err := orderPath(pathPaymentVerify, orderNumber)
	if err != nil {
		return err
	}
	if err := proof.Check(); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, path, proof.form(), nil)
}
