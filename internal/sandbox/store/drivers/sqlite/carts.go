package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
)

type cartsRepo struct {
	db dbtx
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.price, p.image_url, p.stock_quantity, ci.quantity
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

func scanCartItem(row interface{ Scan(...any) error }) (domain.CartItem, error) {
	var it domain.CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.ProductName, &it.ProductPrice,
		&it.ProductImage, &it.Stock, &it.Quantity)
	return it, err
}

func (r *cartsRepo) GetOrCreateCart(ctx context.Context, userID int64) (domain.Cart, error) {
	cart := domain.Cart{UserID: userID}
	err := r.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = ?`, userID).Scan(&cart.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO carts (user_id, created_at) VALUES (?, ?)`, userID, now())
		if err != nil {
			return domain.Cart{}, err
		}
		if cart.ID, err = res.LastInsertId(); err != nil {
			return domain.Cart{}, err
		}
		return cart, nil
	case err != nil:
		return domain.Cart{}, err
	}

	rows, err := r.db.QueryContext(ctx, cartItemSelect+` WHERE ci.cart_id = ? ORDER BY ci.id`, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return domain.Cart{}, err
		}
		cart.Items = append(cart.Items, it)
	}
	return cart, rows.Err()
}

func (r *cartsRepo) GetItem(ctx context.Context, cartID, itemID int64) (domain.CartItem, error) {
	it, err := scanCartItem(r.db.QueryRowContext(ctx,
		cartItemSelect+` WHERE ci.cart_id = ? AND ci.id = ?`, cartID, itemID))
	if err != nil {
		return domain.CartItem{}, mapNotFound(err)
	}
	return it, nil
}

func (r *cartsRepo) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity
		RETURNING id`, cartID, productID, quantity).Scan(&id)
	return id, err
}

func (r *cartsRepo) SetItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?`, quantity, itemID, cartID))
}

func (r *cartsRepo) DeleteItem(ctx context.Context, cartID, itemID int64) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID))
}

func (r *cartsRepo) ClearCart(ctx context.Context, cartID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
