package sqlite

import (
	"context"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
)

type addressesRepo struct {
	db dbtx
}

const addressColumns = `id, user_id, phone, address_type, street, city, state, zip_code, is_default, created_at`

func scanAddress(row interface{ Scan(...any) error }) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Phone, &a.AddressType, &a.Street, &a.City, &a.State,
		&a.ZipCode, &a.IsDefault, &a.CreatedAt)
	return a, err
}

func (r *addressesRepo) ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+addressColumns+` FROM addresses
		WHERE user_id = ? ORDER BY is_default DESC, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *addressesRepo) GetAddress(ctx context.Context, userID, id int64) (domain.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.Address{}, mapNotFound(err)
	}
	return a, nil
}

func (r *addressesRepo) CreateAddress(ctx context.Context, a domain.Address) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (user_id, phone, address_type, street, city, state, zip_code, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Phone, a.AddressType, a.Street, a.City, a.State, a.ZipCode, a.IsDefault, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *addressesRepo) UpdateAddress(ctx context.Context, a domain.Address) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE addresses SET phone = ?, address_type = ?, street = ?, city = ?, state = ?, zip_code = ?, is_default = ?
		WHERE id = ? AND user_id = ?`,
		a.Phone, a.AddressType, a.Street, a.City, a.State, a.ZipCode, a.IsDefault, a.ID, a.UserID))
}

func (r *addressesRepo) DeleteAddress(ctx context.Context, userID, id int64) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = ? AND user_id = ?`, id, userID))
}

func (r *addressesRepo) ClearDefault(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE addresses SET is_default = 0 WHERE user_id = ? AND is_default = 1`, userID)
	return err
}
