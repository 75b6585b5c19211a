package storesdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	pathAdminOrders      = "/api/admin/orders/manage/"
	pathAdminPending     = "/api/admin/orders/manage/pending/"
	pathAdminOrder       = "/api/admin/orders/manage/%s/"
	pathAdminOrderStatus = "/api/admin/orders/manage/%s/status/"
)

// AdminListOrders lists every order, optionally filtered by status. A
// non-admin session gets KindServerRejected with status 403.
func (c *Client) AdminListOrders(ctx context.Context, status string) ([]Order, error) {
	req := request{method: http.MethodGet, path: pathAdminOrders}
	if status != "" {
		if !ValidOrderStatus(status) {
			return nil, ValidationError(map[string]string{"status": "unknown order status"})
		}
		req.query = url.Values{"status": {status}}
	}
	var out []Order
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminPendingOrders lists orders with submitted payment awaiting review.
func (c *Client) AdminPendingOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.get(ctx, pathAdminPending, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminGetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	path, err := orderPath(pathAdminOrder, orderNumber)
	if err != nil {
		return nil, err
	}
	var o Order
	if err := c.get(ctx, path, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// AdminUpdateOrderStatus moves an order to status and returns it.
func (c *Client) AdminUpdateOrderStatus(ctx context.Context, orderNumber, status string) (*Order, error) {
	req := UpdateOrderStatusRequest{Status: status}
	if err := check(req.Validate()); err != nil {
		return nil, err
	}
	path, err := orderPath(pathAdminOrderStatus, orderNumber)
	if err != nil {
		return nil, err
	}
	var o Order
	if err := c.send(ctx, http.MethodPatch, path, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// AdminCreateProduct adds a product to the catalog.
func (c *Client) AdminCreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := check(in.Validate()); err != nil {
		return nil, err
	}
	var p Product
	if err := c.send(ctx, http.MethodPost, pathProducts, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AdminUpdateProduct replaces every writable field of product id.
func (c *Client) AdminUpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	if id <= 0 {
		return nil, ValidationError(map[string]string{"id": "product id is required"})
	}
	if err := check(in.Validate()); err != nil {
		return nil, err
	}
	var p Product
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf(pathProduct, id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AdminDeleteProduct removes a product. Carts holding it lose the line.
func (c *Client) AdminDeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return ValidationError(map[string]string{"id": "product id is required"})
	}
	return c.send(ctx, http.MethodDelete, fmt.Sprintf(pathProduct, id), nil, nil)
}

func (c *Client) AdminCreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := check(in.Validate()); err != nil {
		return nil, err
	}
	var cat Category
	if err := c.send(ctx, http.MethodPost, pathCategories, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) AdminUpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error) {
	if id <= 0 {
		return nil, ValidationError(map[string]string{"id": "category id is required"})
	}
	if err := check(in.Validate()); err != nil {
		return nil, err
	}
	var cat Category
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf(pathCategory, id), in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// AdminDeleteCategory removes a category. Its products stay, uncategorised.
func (c *Client) AdminDeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return ValidationError(map[string]string{"id": "category id is required"})
	}
	return c.send(ctx, http.MethodDelete, fmt.Sprintf(pathCategory, id), nil, nil)
}
