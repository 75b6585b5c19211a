package storesdk

import (
	"context"
	"fmt"
	"net/http"
)

const (
	pathAddresses = "/api/profile/addresses/"
	pathAddress   = "/api/profile/addresses/%d/"
)

func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	var out []Address
	if err := c.get(ctx, pathAddresses, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAddress stores a new shipping address and returns it with its id.
func (c *Client) CreateAddress(ctx context.Context, a Address) (*Address, error) {
	if err := check(a.Validate()); err != nil {
		return nil, err
	}
	a.ID = 0
	var out Address
	if err := c.send(ctx, http.MethodPost, pathAddresses, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAddress replaces the address with id a.ID.
func (c *Client) UpdateAddress(ctx context.Context, a Address) (*Address, error) {
	if a.ID <= 0 {
		return nil, ValidationError(map[string]string{"id": "address id is required"})
	}
	if err := check(a.Validate()); err != nil {
		return nil, err
	}
	var out Address
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf(pathAddress, a.ID), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf(pathAddress, id), nil, nil)
}
