package repository

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// MedicineRepository provides access to the shared medicine catalog.
type MedicineRepository interface {
	List(ctx context.Context) ([]model.Medicine, error)
	Search(ctx context.Context, query string, limit int) ([]model.Medicine, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Medicine, error)
	Create(ctx context.Context, medicine *model.Medicine) (*model.Medicine, error)
}

// MedicineOrderRepository manages medicine order headers and their lines.
type MedicineOrderRepository interface {
	// AttachToOrder stores header, lines and order linkage atomically. When a header with the
	// draft's idempotency key is already linked to the order it is returned with replayed=true.
	AttachToOrder(ctx context.Context, draft model.MedicineOrderDraft) (order *model.MedicineOrder, replayed bool, err error)
	GetByID(ctx context.Context, id string) (*model.MedicineOrder, error)
}
