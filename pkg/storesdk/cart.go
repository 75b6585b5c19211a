package storesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	pathCart       = "/api/orders/cart/"
	pathCartAdd    = "/api/orders/cart/add/"
	pathCartUpdate = "/api/orders/cart/update/%d/"
	pathCartRemove = "/api/orders/cart/remove/%d/"
)

// GetCart returns the current cart.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.get(ctx, pathCart, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds quantity units of a product, merging with an existing line.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (*Cart, error) {
	req := AddToCartRequest{ProductID: productID, Quantity: quantity}
	if err := check(req.Validate()); err != nil {
		return nil, err
	}
	return c.mutateCart(ctx, request{method: http.MethodPost, path: pathCartAdd, body: req})
}

// UpdateCartItem sets the quantity of a line. Quantities below one are
// rejected; use RemoveCartItem.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ValidationError(map[string]string{"quantity": "quantity must be at least 1"})
	}
	return c.mutateCart(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf(pathCartUpdate, itemID),
		body:   UpdateCartItemRequest{Quantity: quantity},
	})
}

// RemoveCartItem deletes a line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) (*Cart, error) {
	return c.mutateCart(ctx, request{method: http.MethodDelete, path: fmt.Sprintf(pathCartRemove, itemID)})
}

// mutateCart runs a cart mutation and returns the resulting cart. Some
// backends answer with the cart, others with the touched item or nothing;
// for those the cart is fetched.
func (c *Client) mutateCart(ctx context.Context, req request) (*Cart, error) {
	resp, err := c.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, parseErrorResponse(resp.StatusCode, resp.Body)
	}

	if cart, ok := decodeCart(resp.Body); ok {
		return cart, nil
	}
	return c.GetCart(ctx)
}

func decodeCart(body []byte) (*Cart, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}

	var shape struct {
		CartID *int64           `json:"cart_id"`
		Items  *json.RawMessage `json:"items"`
	}
	if json.Unmarshal(body, &shape) != nil || shape.CartID == nil || shape.Items == nil {
		return nil, false
	}

	var cart Cart
	if json.Unmarshal(body, &cart) != nil {
		return nil, false
	}
	return &cart, true
}
