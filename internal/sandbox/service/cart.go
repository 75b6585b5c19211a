package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
)

// CartService mutates the server side cart. Every mutation answers with the
// whole cart so clients never recompute totals.
type CartService struct {
	Store store.Store
}

func (s *CartService) Get(ctx context.Context, userID int64) (domain.Cart, error) {
	return s.Store.Carts().GetOrCreateCart(ctx, userID)
}

// Add merges quantity into the product's line. The merged quantity may
// not exceed the stock on hand.
func (s *CartService) Add(ctx context.Context, userID, productID int64, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, ErrInvalidQuantity
	}

	var cart domain.Cart
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Catalog().GetProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		c, err := tx.Carts().GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		have := 0
		for _, it := range c.Items {
			if it.ProductID == productID {
				have = it.Quantity
			}
		}
		if have+quantity > p.StockQuantity {
			return ErrInsufficientStock
		}

		if _, err := tx.Carts().UpsertItem(ctx, c.ID, productID, quantity); err != nil {
			return err
		}
		cart, err = tx.Carts().GetOrCreateCart(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Update sets a line's quantity. Zero or less removes the line.
func (s *CartService) Update(ctx context.Context, userID, itemID int64, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, itemID)
	}

	var cart domain.Cart
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := tx.Carts().GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		it, err := tx.Carts().GetItem(ctx, c.ID, itemID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return err
		}
		if quantity > it.Stock {
			return ErrInsufficientStock
		}
		if err := tx.Carts().SetItemQuantity(ctx, c.ID, itemID, quantity); err != nil {
			return err
		}
		cart, err = tx.Carts().GetOrCreateCart(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID int64) (domain.Cart, error) {
	var cart domain.Cart
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := tx.Carts().GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Carts().DeleteItem(ctx, c.ID, itemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}
		cart, err = tx.Carts().GetOrCreateCart(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}
