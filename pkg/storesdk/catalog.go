package storesdk

import (
	"context"
	"fmt"
)

const (
	pathProducts   = "/api/products/"
	pathProduct    = "/api/products/%d/"
	pathCategories = "/api/products/categories/"
	pathCategory   = "/api/products/categories/%d/"
)

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.get(ctx, pathProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.get(ctx, fmt.Sprintf(pathProduct, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, pathCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var cat Category
	if err := c.get(ctx, fmt.Sprintf(pathCategory, id), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}
