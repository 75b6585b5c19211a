package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// maxProofBody leaves room for the form fields around the screenshot.
const maxProofBody = service.MaxScreenshotSize + 64<<10

type PaymentHandler struct {
	PaymentService *service.PaymentService
}

// HandleVerify godoc
//
//	@Summary		Submit payment proof
//	@Description	Multipart upload of the transfer reference and a screenshot for an order awaiting payment.
//	@Tags			Payments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			number			path		string	true	"Order number"
//	@Param			utr_number		formData	string	true	"Transfer reference"
//	@Param			transaction_ss	formData	file	true	"Screenshot"
//	@Param			payment_date	formData	string	false	"RFC3339 time of payment"
//	@Success		200				{object}	storesdk.OrderCreated
//	@Failure		400				{object}	storesdk.ErrorResponse
//	@Failure		404				{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/payment/verify/{number}/ [post].
func (h *PaymentHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofBody)
	if err := r.ParseMultipartForm(maxProofBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeFieldErrors(w, map[string]string{storesdk.FieldScreenshot: "screenshot must be at most 5MB."})
			return
		}
		httpx.WriteDetail(w, http.StatusBadRequest, "parse_error", "Multipart form parse error")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	proof := service.Proof{UTRNumber: r.FormValue(storesdk.FieldUTRNumber)}

	if raw := strings.TrimSpace(r.FormValue(storesdk.FieldPaymentDate)); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeFieldErrors(w, map[string]string{storesdk.FieldPaymentDate: "payment date must be RFC3339."})
			return
		}
		proof.PaidAt = &t
	}

	file, header, err := r.FormFile(storesdk.FieldScreenshot)
	if err != nil {
		writeFieldErrors(w, map[string]string{storesdk.FieldScreenshot: "screenshot is required."})
		return
	}
	defer file.Close()

	proof.Filename = header.Filename
	if proof.Screenshot, err = io.ReadAll(io.LimitReader(file, service.MaxScreenshotSize+1)); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "parse_error", "Could not read screenshot")
		return
	}

	o, err := h.PaymentService.Verify(r.Context(), uid, r.PathValue("number"), proof)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storesdk.OrderCreated{
		Message: "Payment proof submitted. We will verify it shortly.",
		Order:   toOrder(o),
	})
}

// HandleScreenshot godoc
//
//	@Summary		Payment screenshot
//	@Tags			Admin
//	@Produce		image/png
//	@Param			id	path	string	true	"Screenshot id"
//	@Success		200
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/payments/screenshots/{id}/ [get].
func (h *PaymentHandler) HandleScreenshot(w http.ResponseWriter, r *http.Request) {
	shot, err := h.PaymentService.Screenshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.Header().Set("Content-Type", shot.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(shot.Data)
}
