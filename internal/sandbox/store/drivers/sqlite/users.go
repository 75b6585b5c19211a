package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, is_admin, is_active, otp_secret, otp_expiry, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u      domain.User
		secret sql.NullString
		expiry sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.Active,
		&secret, &expiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.OTPSecret = mapNullString(secret)
	u.OTPExpiry = mapNullTimePtr(expiry)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin, is_active, otp_secret, otp_expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.Active,
		mapStringNull(u.OTPSecret), mapOptionalTime(u.OTPExpiry), ts, ts)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) ActivateUser(ctx context.Context, id int64) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET is_active = 1, otp_secret = NULL, otp_expiry = NULL, updated_at = ?
		WHERE id = ?`, now(), id))
}

func (r *usersRepo) ReplacePendingUser(ctx context.Context, u domain.User) error {
	err := requireAffected(r.db.ExecContext(ctx, `
		UPDATE users SET username = ?, password_hash = ?, otp_secret = ?, otp_expiry = ?, updated_at = ?
		WHERE id = ? AND is_active = 0`,
		u.Username, u.PasswordHash, mapStringNull(u.OTPSecret), mapOptionalTime(u.OTPExpiry), now(), u.ID))
	return mapConstraint(err)
}

func (r *usersRepo) SetAdmin(ctx context.Context, id int64, admin bool) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`, admin, now(), id))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now(), id))
}

func (r *usersRepo) DeleteExpiredPendingUsers(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE is_active = 0 AND otp_expiry IS NOT NULL AND otp_expiry < ?`, at.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
