package storesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Kind classifies every failure the client reports.
type Kind string

const (
	// KindNetwork covers transport failures and timeouts. Never a refresh trigger.
	KindNetwork Kind = "network"

	// KindUnauthenticated means there are no credentials, or a refresh could
	// not repair them. Callers should send the user back to login.
	KindUnauthenticated Kind = "unauthenticated"

	// KindValidation is caller input rejected before any request was sent.
	KindValidation Kind = "validation"

	// KindConflict is a 409 that is not the order creation conflict shape.
	KindConflict Kind = "conflict"

	// KindServerRejected is any other non-2xx answer.
	KindServerRejected Kind = "server_rejected"
)

var (
	// ErrNotAuthenticated is wrapped when an operation needs a session and
	// there is none.
	ErrNotAuthenticated = errors.New("storesdk: not authenticated")

	// ErrSessionExpired is wrapped when a refresh failed and the session was
	// dropped.
	ErrSessionExpired = errors.New("storesdk: session expired")

	// ErrMissingScreenshot is wrapped when a payment proof has no image.
	ErrMissingScreenshot = errors.New("storesdk: payment screenshot is required")
)

// APIError is the single error type returned by the client.
type APIError struct {
	Kind       Kind
	StatusCode int    // zero for errors raised before a response
	Code       string // machine code from the body, e.g. "token_not_valid"
	Message    string // human readable, safe to show next to the control

	// Fields holds per field messages for validation failures.
	Fields map[string]string

	// Body is the raw response body, when there was one.
	Body []byte

	Err error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("storesdk: ")
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil && e.Message == "" {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// IsKind reports whether err is an *APIError of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// KindOf returns the kind of err, or "" when err is not an *APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func networkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Err: err}
}

// Unauthenticated builds a KindUnauthenticated error around cause.
func Unauthenticated(cause error) *APIError {
	return &APIError{Kind: KindUnauthenticated, Message: "please log in again", Err: cause}
}

// ValidationError builds a KindValidation error from a field map as
// returned by the Validate methods.
func ValidationError(fields map[string]string) *APIError {
	keys := slices.Sorted(maps.Keys(fields))
	msg := "invalid input"
	if len(keys) > 0 {
		msg = keys[0] + ": " + fields[keys[0]]
	}
	return &APIError{Kind: KindValidation, Message: msg, Fields: fields}
}

// parseErrorResponse turns a non-2xx response into an *APIError. It
// understands {"detail"}, {"error"}, {"message"} and field error maps
// such as {"quantity": ["must be positive"]}.
func parseErrorResponse(status int, body []byte) *APIError {
	e := &APIError{
		Kind:       KindServerRejected,
		StatusCode: status,
		Body:       body,
	}
	if status == http.StatusConflict {
		e.Kind = KindConflict
	}

	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) == nil {
		var er ErrorResponse
		_ = json.Unmarshal(body, &er)
		e.Code = er.Code

		switch {
		case er.Detail != "":
			e.Message = er.Detail
		case er.Error != "":
			e.Message = er.Error
		case er.Message != "":
			e.Message = er.Message
		}

		e.Fields = fieldErrors(raw)
		if e.Message == "" && len(e.Fields) > 0 {
			first := slices.Sorted(maps.Keys(e.Fields))[0]
			e.Message = first + ": " + e.Fields[first]
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// fieldErrors collects entries whose value is a string or a list of
// strings, skipping the envelope keys.
func fieldErrors(raw map[string]json.RawMessage) map[string]string {
	var out map[string]string
	for k, v := range raw {
		switch k {
		case "detail", "code", "error", "message", "id":
			continue
		}

		var msg string
		var list []string
		switch {
		case json.Unmarshal(v, &list) == nil && len(list) > 0:
			msg = list[0]
		case json.Unmarshal(v, &msg) == nil && msg != "":
		default:
			continue
		}

		if out == nil {
			out = make(map[string]string)
		}
		out[k] = msg
	}
	return out
}
