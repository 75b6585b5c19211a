package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
)

type ordersRepo struct {
	db dbtx
}

const orderColumns = `id, order_number, user_id, total_amount, status, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) (int64, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (order_number, user_id, total_amount, status, shipping_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.UserID, o.TotalAmount.String(), o.Status, o.ShippingAddress, ts, ts)
	if err != nil {
		return 0, mapConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, it := range o.Items {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			id, mapOptionalInt64(it.ProductID), it.ProductName, it.ProductPrice.String(), it.Quantity)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *ordersRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, orderNumber))
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	if err := r.loadDetail(ctx, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *ordersRepo) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
}

func (r *ordersRepo) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	orders, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadDetail(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *ordersRepo) FindPendingOrder(ctx context.Context, userID int64) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = ? AND status = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, domain.OrderPendingPayment))
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	return o, nil
}

func (r *ordersRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, now(), orderID))
}

func (r *ordersRepo) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	var n sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(order_number) FROM orders WHERE substr(order_number, 1, ?) = ?`, len(prefix), prefix).Scan(&n)
	return mapNullString(n), err
}

// list drains the rows before returning so callers can issue follow-up
// queries on a single connection.
func (r *ordersRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ordersRepo) loadDetail(ctx context.Context, o *domain.Order) error {
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Items = items

	p, err := (&paymentsRepo{db: r.db}).GetPaymentByOrder(ctx, o.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	default:
		o.Payment = &p
	}
	return nil
}

func (r *ordersRepo) items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_price, quantity
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var (
			it  domain.OrderItem
			pid sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &pid, &it.ProductName, &it.ProductPrice, &it.Quantity); err != nil {
			return nil, err
		}
		it.ProductID = mapNullInt64Ptr(pid)
		out = append(out, it)
	}
	return out, rows.Err()
}
