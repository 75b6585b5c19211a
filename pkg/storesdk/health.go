package storesdk

import (
	"context"
	"net/http"
)

// Health calls GET /livez.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	err := c.call(ctx, request{method: http.MethodGet, path: "/livez", noAuth: true, noRefresh: true}, &h)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
