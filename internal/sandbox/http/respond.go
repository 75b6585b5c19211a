package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "parse_error", "JSON parse error - "+err.Error())
		return false
	}
	return true
}

// writeFieldErrors answers 400 with one entry per field, each a list of
// messages.
func writeFieldErrors(w http.ResponseWriter, errs map[string]string) {
	body := make(map[string][]string, len(errs))
	for k, v := range errs {
		body[k] = []string{v}
	}
	httpx.WriteJSON(w, http.StatusBadRequest, body)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, storesdk.MessageResponse{Message: msg})
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, storesdk.ErrorResponse{Error: msg})
}

// writeServiceError maps service errors onto responses. Unknown errors are
// logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrAddressNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrScreenshotNotFound),
		errors.Is(err, service.ErrUserNotFound):
		httpx.WriteDetail(w, http.StatusNotFound, "not_found", "Not found.")

	case errors.Is(err, service.ErrUserExists):
		writeFieldErrors(w, map[string]string{"email": "user with this email already exists."})
	case errors.Is(err, service.ErrCategoryExists):
		writeFieldErrors(w, map[string]string{"name": "category with this name already exists."})
	case errors.Is(err, service.ErrUnknownCategory):
		writeFieldErrors(w, map[string]string{"category_id": "invalid pk - object does not exist."})
	case errors.Is(err, service.ErrDuplicateUTR):
		writeFieldErrors(w, map[string]string{storesdk.FieldUTRNumber: "this UTR number has already been used."})
	case errors.Is(err, service.ErrMissingReference):
		writeFieldErrors(w, map[string]string{storesdk.FieldUTRNumber: "UTR number is required."})
	case errors.Is(err, service.ErrInvalidScreenshot):
		writeFieldErrors(w, map[string]string{storesdk.FieldScreenshot: "upload a valid image."})

	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrStatusTransition),
		errors.Is(err, service.ErrPaymentNotAllowed),
		errors.Is(err, service.ErrInvalidOTP):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())

	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}

// userID returns the numeric subject placed by the authn middleware.
func userID(r *http.Request) (int64, bool) {
	sub, ok := httpx.UserID(r.Context())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	return id, err == nil && id > 0
}

// requireUser answers 401 when the token subject is not a user id.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := userID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, httpx.CodeTokenNotValid, "Given token not valid for any token type")
	}
	return id, ok
}

// pathID parses a numeric path parameter, answering 404 when malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteDetail(w, http.StatusNotFound, "not_found", "Not found.")
		return 0, false
	}
	return id, true
}
