package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
)

type paymentsRepo struct {
	db dbtx
}

func (r *paymentsRepo) CreatePayment(ctx context.Context, p domain.Payment) (int64, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, payment_method, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.OrderID, p.PaymentMethod, p.Amount.String(), p.Status, ts, ts)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *paymentsRepo) GetPaymentByOrder(ctx context.Context, orderID int64) (domain.Payment, error) {
	var (
		p      domain.Payment
		utr    sql.NullString
		shotID sql.NullString
		paidAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, payment_method, amount, status, utr_number, screenshot_id, paid_at, created_at, updated_at
		FROM payments WHERE order_id = ?`, orderID).
		Scan(&p.ID, &p.OrderID, &p.PaymentMethod, &p.Amount, &p.Status, &utr, &shotID, &paidAt,
			&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	p.UTRNumber = mapNullString(utr)
	p.ScreenshotID = mapNullString(shotID)
	p.PaidAt = mapNullTimePtr(paidAt)
	return p, nil
}

func (r *paymentsRepo) SubmitProof(
	ctx context.Context,
	paymentID int64,
	utr string,
	paidAt *time.Time,
	shot domain.Screenshot,
) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_screenshots (id, payment_id, filename, content_type, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		shot.ID, paymentID, shot.Filename, shot.ContentType, shot.Data, ts)
	if err != nil {
		return mapConstraint(err)
	}

	err = requireAffected(r.db.ExecContext(ctx, `
		UPDATE payments SET utr_number = ?, screenshot_id = ?, paid_at = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		utr, shot.ID, mapOptionalTime(paidAt), domain.PaymentSubmitted, ts, paymentID))
	return mapConstraint(err)
}

func (r *paymentsRepo) UpdatePaymentStatus(ctx context.Context, paymentID int64, status string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, updated_at = ? WHERE id = ?`, status, now(), paymentID))
}

func (r *paymentsRepo) GetScreenshot(ctx context.Context, id string) (domain.Screenshot, error) {
	var s domain.Screenshot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, payment_id, filename, content_type, data, created_at
		FROM payment_screenshots WHERE id = ?`, id).
		Scan(&s.ID, &s.PaymentID, &s.Filename, &s.ContentType, &s.Data, &s.CreatedAt)
	if err != nil {
		return domain.Screenshot{}, mapNotFound(err)
	}
	return s, nil
}
