package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

const orderColumns = `id, patient_id, caregiver_id, appointment_id, status, rate, proof_of_service, medicine_order_id, created_at, completed_at`

type orderRepository struct {
	storage *Storage
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (id, patient_id, caregiver_id, appointment_id, status)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING created_at`
	created := *order
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.Status = model.OrderStatusOngoing
	err := r.storage.pool.QueryRow(ctx, query, created.ID, created.PatientID, created.CaregiverID, created.AppointmentID, created.Status).
		Scan(&created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByParticipant(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders WHERE patient_id=$1 OR caregiver_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAll returns every order, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *orderRepository) SetRate(ctx context.Context, orderID string, rate float64) error {
	const query = `UPDATE orders SET rate=$1 WHERE id=$2 AND rate IS NULL AND status<>'Canceled'`
	tag, err := r.storage.pool.Exec(ctx, query, rate, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrAlreadyRated
	}
	return nil
}

func (r *orderRepository) Cancel(ctx context.Context, orderID string) error {
	const query = `UPDATE orders SET status='Canceled' WHERE id=$1 AND status='Ongoing'`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderClosed
	}
	return nil
}

func (r *orderRepository) Complete(ctx context.Context, orderID, proofOfService string, completedAt time.Time, event model.OutboxEvent) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const query = `UPDATE orders SET status='Completed', proof_of_service=$1, completed_at=$2
                       WHERE id=$3 AND status='Ongoing' AND rate IS NOT NULL`
		tag, err := tx.Exec(ctx, query, proofOfService, completedAt, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrOrderClosed
		}
		return enqueueEvent(ctx, tx, event)
	})
}

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.PatientID, &o.CaregiverID, &o.AppointmentID, &o.Status, &o.Rate,
		&o.ProofOfService, &o.MedicineOrderID, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}
