package storesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	pathOrders         = "/api/orders/order/"
	pathOrderCreate    = "/api/orders/order/create/"
	pathDirectPurchase = "/api/orders/order/direct-purchase/"
	pathOrder          = "/api/orders/order/%s/"
	pathOrderStatus    = "/api/orders/order/%s/status/"
	pathOrderCancel    = "/api/orders/order/%s/cancel/"
	pathPaymentMethods = "/api/orders/payment/methods/"
)

// CreateOrder turns the cart into an order. An existing order awaiting
// payment is reported through CreateOrderResult.Conflict, not as an error.
func (c *Client) CreateOrder(ctx context.Context, addressID int64, paymentMethod string) (CreateOrderResult, error) {
	req := CreateOrderRequest{AddressID: addressID, PaymentMethod: paymentMethod}
	if err := check(req.Validate()); err != nil {
		return CreateOrderResult{}, err
	}
	return c.placeOrder(ctx, pathOrderCreate, req)
}

// DirectPurchase orders a single product without using the cart.
func (c *Client) DirectPurchase(ctx context.Context, req DirectPurchaseRequest) (CreateOrderResult, error) {
	if err := check(req.Validate()); err != nil {
		return CreateOrderResult{}, err
	}
	return c.placeOrder(ctx, pathDirectPurchase, req)
}

func (c *Client) placeOrder(ctx context.Context, path string, body any) (CreateOrderResult, error) {
	resp, err := c.exchange(ctx, request{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return CreateOrderResult{}, err
	}
	return decodeCreateOrder(resp)
}

// decodeCreateOrder maps a create order response onto the result union.
// A non-2xx body carrying both an order id and an error message is the
// pending order conflict; any other failure is an *APIError.
func decodeCreateOrder(resp *Response) (CreateOrderResult, error) {
	if resp.OK() {
		var created OrderCreated
		if err := resp.Decode(&created); err != nil {
			return CreateOrderResult{}, err
		}
		if created.Order.OrderNumber == "" {
			return CreateOrderResult{}, &APIError{
				Kind:       KindServerRejected,
				StatusCode: resp.StatusCode,
				Message:    "order response has no order number",
				Body:       resp.Body,
				Err:        errEmptyBody,
			}
		}
		return CreateOrderResult{Created: &created}, nil
	}

	if conflict, ok := decodeConflict(resp.Body); ok {
		return CreateOrderResult{Conflict: conflict}, nil
	}
	return CreateOrderResult{}, parseErrorResponse(resp.StatusCode, resp.Body)
}

func decodeConflict(body []byte) (*OrderConflict, bool) {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Error string          `json:"error"`
	}
	if json.Unmarshal(body, &raw) != nil || raw.Error == "" {
		return nil, false
	}

	id := conflictID(raw.ID)
	if id == "" {
		return nil, false
	}
	return &OrderConflict{ExistingOrderNumber: id, Reason: raw.Error}, true
}

// conflictID accepts the order id as a JSON string or number.
func conflictID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// GetOrder returns the full detail of an order.
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	path, err := orderPath(pathOrder, orderNumber)
	if err != nil {
		return nil, err
	}
	var o Order
	if err := c.get(ctx, path, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns the user's orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	var out []OrderSummary
	if err := c.get(ctx, pathOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrderStatus returns the lightweight status of an order.
func (c *Client) GetOrderStatus(ctx context.Context, orderNumber string) (*OrderStatus, error) {
	path, err := orderPath(pathOrderStatus, orderNumber)
	if err != nil {
		return nil, err
	}
	var s OrderStatus
	if err := c.get(ctx, path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CancelOrder cancels an order that has not been paid for.
func (c *Client) CancelOrder(ctx context.Context, orderNumber string) error {
	path, err := orderPath(pathOrderCancel, orderNumber)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, path, nil, nil)
}

// PaymentMethods lists the methods order creation accepts.
func (c *Client) PaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var out []PaymentMethod
	if err := c.get(ctx, pathPaymentMethods, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func orderPath(format, orderNumber string) (string, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return "", ValidationError(map[string]string{"order_number": "order number is required"})
	}
	return fmt.Sprintf(format, url.PathEscape(orderNumber)), nil
}

