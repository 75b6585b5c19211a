package checkout

import (
	"context"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// AddToCart adds quantity units of a product. quantity must be at least 1.
func (c *Coordinator) AddToCart(ctx context.Context, productID int64, quantity int) (*storesdk.Cart, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	if errs := (storesdk.AddToCartRequest{ProductID: productID, Quantity: quantity}).Validate(); len(errs) > 0 {
		return nil, storesdk.ValidationError(errs)
	}
	return c.applyCart(ctx, func(ctx context.Context) (*storesdk.Cart, error) {
		return c.backend.AddToCart(ctx, productID, quantity)
	})
}

// UpdateQuantity sets a line's quantity. A quantity below 1 removes the
// line instead of sending an update.
func (c *Coordinator) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*storesdk.Cart, error) {
	if quantity < 1 {
		return c.RemoveItem(ctx, itemID)
	}
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	return c.applyCart(ctx, func(ctx context.Context) (*storesdk.Cart, error) {
		return c.backend.UpdateCartItem(ctx, itemID, quantity)
	})
}

func (c *Coordinator) RemoveItem(ctx context.Context, itemID int64) (*storesdk.Cart, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	return c.applyCart(ctx, func(ctx context.Context) (*storesdk.Cart, error) {
		return c.backend.RemoveCartItem(ctx, itemID)
	})
}

// RefreshCart fetches the cart from the server.
func (c *Coordinator) RefreshCart(ctx context.Context) (*storesdk.Cart, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	return c.applyCart(ctx, c.backend.GetCart)
}

// Cart returns the newest cart snapshot received, or nil before the first.
func (c *Coordinator) Cart() *storesdk.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cart == nil {
		return nil
	}
	cart := *c.cart
	cart.Items = append([]storesdk.CartItem(nil), c.cart.Items...)
	return &cart
}

// CartCount is the number of lines in the newest cart snapshot.
func (c *Coordinator) CartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cart == nil {
		return 0
	}
	return len(c.cart.Items)
}

// applyCart runs a cart call and keeps its result unless a newer cart call
// has already been applied. The call's own result is returned either way.
func (c *Coordinator) applyCart(ctx context.Context, call func(context.Context) (*storesdk.Cart, error)) (*storesdk.Cart, error) {
	c.mu.Lock()
	ticket := c.cartSeq.next()
	c.mu.Unlock()

	cart, err := call(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cartSeq.apply(ticket) {
		c.cart = cart
	} else {
		c.logger(ctx).Debug("discarding superseded cart response", "ticket", ticket, "applied", c.cartSeq.applied)
	}
	return cart, nil
}
