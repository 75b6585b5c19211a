package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/store"
)

type catalogRepo struct {
	db dbtx
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *catalogRepo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func (r *catalogRepo) CreateCategory(ctx context.Context, c domain.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description, created_at) VALUES (?, ?, ?)`,
		c.Name, c.Description, now())
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *catalogRepo) UpdateCategory(ctx context.Context, c domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		c.Name, c.Description, c.ID)
	return requireAffected(res, mapConstraint(err))
}

func (r *catalogRepo) DeleteCategory(ctx context.Context, id int64) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id))
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock_quantity, p.category_id, p.image_url,
	       p.created_at, p.updated_at, c.name, c.description, c.created_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var (
		p        domain.Product
		catID    sql.NullInt64
		catName  sql.NullString
		catDesc  sql.NullString
		catStamp sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &catID, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt, &catName, &catDesc, &catStamp)
	if err != nil {
		return domain.Product{}, err
	}
	p.CategoryID = mapNullInt64Ptr(catID)
	if catID.Valid && catName.Valid {
		p.Category = &domain.Category{
			ID:          catID.Int64,
			Name:        catName.String,
			Description: mapNullString(catDesc),
			CreatedAt:   catStamp.Time,
		}
	}
	return p, nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, categoryID *int64) ([]domain.Product, error) {
	query := productSelect
	var args []any
	if categoryID != nil {
		query += ` WHERE p.category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *catalogRepo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = ?`, id))
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}
	return p, nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p domain.Product) (int64, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, stock_quantity, category_id, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price.String(), p.StockQuantity, mapOptionalInt64(p.CategoryID), p.ImageURL, ts, ts)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p domain.Product) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock_quantity = ?, category_id = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Price.String(), p.StockQuantity, mapOptionalInt64(p.CategoryID), p.ImageURL, now(), p.ID))
}

func (r *catalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id))
}

func (r *catalogRepo) AdjustStock(ctx context.Context, productID int64, delta int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ?
		WHERE id = ? AND stock_quantity + ? >= 0`, delta, now(), productID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return err
	}
	return store.ErrInsufficientStock
}

func (r *catalogRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
