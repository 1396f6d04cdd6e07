package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

const medicineOrderColumns = `id, order_id, idempotency_key, total_qty, sub_total, delivery_fee, total_price, is_paid, paid_at, created_at`

type medicineOrderRepository struct {
	storage *Storage
}

// AttachToOrder runs header insert, line insert and order linkage in one transaction.
// The order row is locked first so concurrent finishes of the same order serialise.
func (r *medicineOrderRepository) AttachToOrder(ctx context.Context, draft model.MedicineOrderDraft) (*model.MedicineOrder, bool, error) {
	var (
		result   *model.MedicineOrder
		replayed bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var (
			status model.OrderStatus
			linked *string
		)
		const lockOrder = `SELECT status, medicine_order_id FROM orders WHERE id=$1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockOrder, draft.OrderID).Scan(&status, &linked); err != nil {
			return notFound(err)
		}

		existing, err := getMedicineOrder(ctx, tx, `idempotency_key=$1`, draft.IdempotencyKey)
		switch {
		case err == nil:
			if existing.OrderID != draft.OrderID || linked == nil || *linked != existing.ID {
				return domainErrors.ErrLinkageConflict
			}
			if !existing.SameSelection(draft) {
				return fmt.Errorf("%w: retry selected different medicines", domainErrors.ErrLinkageConflict)
			}
			result, replayed = existing, true
			return nil
		case !errors.Is(err, domainErrors.ErrNotFound):
			return err
		}

		if status != model.OrderStatusOngoing {
			return domainErrors.ErrOrderClosed
		}
		if linked != nil {
			return domainErrors.ErrLinkageConflict
		}

		header := &model.MedicineOrder{
			ID:             draft.ID,
			OrderID:        draft.OrderID,
			IdempotencyKey: draft.IdempotencyKey,
			TotalQty:       draft.Totals.TotalQty,
			SubTotal:       draft.Totals.SubTotal,
			DeliveryFee:    draft.Totals.DeliveryFee,
			TotalPrice:     draft.Totals.TotalPrice,
			IsPaid:         model.PaymentStatusUnverified,
		}
		const insertHeader = `INSERT INTO medicine_orders (id, order_id, idempotency_key, total_qty, sub_total, delivery_fee, total_price, is_paid)
                              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                              RETURNING created_at`
		err = tx.QueryRow(ctx, insertHeader, header.ID, header.OrderID, header.IdempotencyKey, header.TotalQty,
			header.SubTotal, header.DeliveryFee, header.TotalPrice, header.IsPaid).Scan(&header.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrLinkageConflict
			}
			return err
		}

		if err := insertLines(ctx, tx, header.ID, draft.Lines); err != nil {
			return err
		}
		header.Lines = make([]model.MedicineOrderLine, len(draft.Lines))
		for i, line := range draft.Lines {
			line.MedicineOrderID = header.ID
			header.Lines[i] = line
		}

		const link = `UPDATE orders SET medicine_order_id=$1 WHERE id=$2 AND medicine_order_id IS NULL AND status='Ongoing'`
		tag, err := tx.Exec(ctx, link, header.ID, draft.OrderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrLinkageConflict
		}

		result = header
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if replayed {
		r.storage.logger.Debug("medicine order replayed", "order_id", draft.OrderID, "medicine_order_id", result.ID)
	}
	return result, replayed, nil
}

func (r *medicineOrderRepository) GetByID(ctx context.Context, id string) (*model.MedicineOrder, error) {
	return getMedicineOrder(ctx, r.storage.pool, `id=$1`, id)
}

// insertLines stores every line with a single statement and fails unless all of them landed.
func insertLines(ctx context.Context, q querier, headerID string, lines []model.MedicineOrderLine) error {
	const query = `INSERT INTO medicine_order_lines (id, medicine_order_id, medicine_id, medicine_name, quantity, unit_price, total_price, position)
                   SELECT l.id, $1, l.medicine_id, l.medicine_name, l.quantity, l.unit_price, l.total_price, l.position
                   FROM unnest($2::text[], $3::text[], $4::text[], $5::int[], $6::bigint[], $7::bigint[])
                        WITH ORDINALITY AS l(id, medicine_id, medicine_name, quantity, unit_price, total_price, position)`
	var (
		ids        = make([]string, len(lines))
		medicines  = make([]string, len(lines))
		names      = make([]string, len(lines))
		quantities = make([]int32, len(lines))
		unitPrices = make([]int64, len(lines))
		totals     = make([]int64, len(lines))
	)
	for i, line := range lines {
		if line.Quantity <= 0 || line.Quantity > math.MaxInt32 {
			return fmt.Errorf("%w: %s", domainErrors.ErrInvalidQuantity, line.MedicineID)
		}
		ids[i] = line.ID
		medicines[i] = line.MedicineID
		names[i] = line.MedicineName
		quantities[i] = int32(line.Quantity)
		unitPrices[i] = line.UnitPrice
		totals[i] = line.TotalPrice
	}

	tag, err := q.Exec(ctx, query, headerID, ids, medicines, names, quantities, unitPrices, totals)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != int64(len(lines)) {
		return domainErrors.ErrIncompleteLines
	}
	return nil
}

func getMedicineOrder(ctx context.Context, q querier, where string, arg any) (*model.MedicineOrder, error) {
	query := `SELECT ` + medicineOrderColumns + ` FROM medicine_orders WHERE ` + where
	var m model.MedicineOrder
	err := q.QueryRow(ctx, query, arg).Scan(&m.ID, &m.OrderID, &m.IdempotencyKey, &m.TotalQty, &m.SubTotal,
		&m.DeliveryFee, &m.TotalPrice, &m.IsPaid, &m.PaidAt, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	lines, err := listLines(ctx, q, m.ID)
	if err != nil {
		return nil, err
	}
	m.Lines = lines
	return &m, nil
}

func listLines(ctx context.Context, q querier, headerID string) ([]model.MedicineOrderLine, error) {
	const query = `SELECT id, medicine_order_id, medicine_id, medicine_name, quantity, unit_price, total_price
                   FROM medicine_order_lines WHERE medicine_order_id=$1 ORDER BY position`
	rows, err := q.Query(ctx, query, headerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.MedicineOrderLine
	for rows.Next() {
		var l model.MedicineOrderLine
		if err := rows.Scan(&l.ID, &l.MedicineOrderID, &l.MedicineID, &l.MedicineName, &l.Quantity, &l.UnitPrice, &l.TotalPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
