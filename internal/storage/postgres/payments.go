package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

const sessionColumns = `id, medicine_order_id, patient_id, line_ids, amount, virtual_account, expires_at, confirmed_at, confirmed_via, finalized_at, created_at`

type paymentRepository struct {
	storage *Storage
}

func (r *paymentRepository) CreateSession(ctx context.Context, session *model.PaymentSession) error {
	const query = `INSERT INTO payment_sessions (id, medicine_order_id, patient_id, line_ids, amount, virtual_account, expires_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING created_at`
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return r.storage.pool.QueryRow(ctx, query, session.ID, session.MedicineOrderID, session.PatientID, session.LineIDs,
		session.Amount, session.VirtualAccount, session.ExpiresAt).Scan(&session.CreatedAt)
}

func (r *paymentRepository) GetSession(ctx context.Context, id string) (*model.PaymentSession, error) {
	return scanSession(r.storage.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM payment_sessions WHERE id=$1`, id))
}

func (r *paymentRepository) OpenSession(ctx context.Context, medicineOrderID string) (*model.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions
              WHERE medicine_order_id=$1 AND finalized_at IS NULL
              ORDER BY created_at DESC LIMIT 1`
	session, err := scanSession(r.storage.pool.QueryRow(ctx, query, medicineOrderID))
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	return session, err
}

// Confirm records the first confirmation only. Later confirmations keep the original source.
func (r *paymentRepository) Confirm(ctx context.Context, sessionID string, via model.ConfirmationSource, at time.Time) error {
	const query = `UPDATE payment_sessions
                   SET confirmed_at=COALESCE(confirmed_at, $1), confirmed_via=COALESCE(confirmed_via, $2)
                   WHERE id=$3 AND finalized_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, at, via, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentFinalized
	}
	return nil
}

func (r *paymentRepository) Finalize(ctx context.Context, sessionID string, paidAt time.Time, event model.OutboxEvent) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var (
			medicineOrderID string
			confirmedAt     *time.Time
			finalizedAt     *time.Time
		)
		const lockSession = `SELECT medicine_order_id, confirmed_at, finalized_at FROM payment_sessions WHERE id=$1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockSession, sessionID).Scan(&medicineOrderID, &confirmedAt, &finalizedAt); err != nil {
			return notFound(err)
		}
		if finalizedAt != nil {
			return domainErrors.ErrPaymentFinalized
		}
		if confirmedAt == nil {
			return domainErrors.ErrPaymentNotConfirmed
		}

		const settle = `UPDATE medicine_orders SET is_paid='Verified', paid_at=$1 WHERE id=$2 AND is_paid='Unverified'`
		tag, err := tx.Exec(ctx, settle, paidAt, medicineOrderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrAlreadyPaid
		}

		if _, err := tx.Exec(ctx, `UPDATE payment_sessions SET finalized_at=$1 WHERE id=$2`, paidAt, sessionID); err != nil {
			return err
		}
		return enqueueEvent(ctx, tx, event)
	})
}

func scanSession(row scanner) (*model.PaymentSession, error) {
	var s model.PaymentSession
	err := row.Scan(&s.ID, &s.MedicineOrderID, &s.PatientID, &s.LineIDs, &s.Amount, &s.VirtualAccount,
		&s.ExpiresAt, &s.ConfirmedAt, &s.ConfirmedVia, &s.FinalizedAt, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
