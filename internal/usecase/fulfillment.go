package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/polkiloo/homecare/internal/config"
	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
	"github.com/polkiloo/homecare/internal/pkg/money"
	"github.com/polkiloo/homecare/internal/pkg/retry"
)

const evidenceNamespace = "proof_of_service"

const (
	msgOrderCompleted             = "order completed"
	msgOrderCompletedWithMedicine = "order completed with additional medicine"
)

// FulfillmentUseCase finishes service orders, optionally recommending medicines.
type FulfillmentUseCase struct {
	orders         repository.OrderRepository
	users          repository.UserRepository
	medicines      repository.MedicineRepository
	medicineOrders repository.MedicineOrderRepository
	evidence       repository.EvidenceStorage
	deliveryFee    int64
	uploadRetry    retry.Config
	logger         *slog.Logger
	now            func() time.Time
}

// NewFulfillmentUseCase constructs FulfillmentUseCase.
func NewFulfillmentUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	medicines repository.MedicineRepository,
	medicineOrders repository.MedicineOrderRepository,
	evidence repository.EvidenceStorage,
	cfg *config.Config,
	logger *slog.Logger,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		orders:         orders,
		users:          users,
		medicines:      medicines,
		medicineOrders: medicineOrders,
		evidence:       evidence,
		deliveryFee:    cfg.DeliveryFee,
		uploadRetry:    retry.Config{MaxAttempts: 3, Backoff: retry.DefaultBackoff(), Logger: logger},
		logger:         logger,
		now:            time.Now,
	}
}

// FinishOrder checks every precondition before writing anything, then attaches the medicine order,
// uploads the evidence and completes the order. A retry after a failed upload or completion
// replays the stored medicine order instead of creating another one.
func (u *FulfillmentUseCase) FinishOrder(ctx context.Context, in model.FinishOrderInput) (*model.FinishOrderResult, error) {
	order, err := u.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CaregiverID != in.CaregiverID {
		return nil, domainErrors.ErrForbidden
	}
	if !order.Ongoing() {
		return nil, domainErrors.ErrOrderClosed
	}
	if !order.Rated() {
		return nil, domainErrors.ErrRatingMissing
	}
	caregiver, err := u.users.GetByID(ctx, in.CaregiverID)
	if err != nil {
		return nil, err
	}
	if !caregiver.Approved() {
		return nil, domainErrors.ErrNotApproved
	}

	if len(in.Evidence) == 0 {
		return nil, domainErrors.ErrEvidenceRequired
	}
	kind := mimetype.Detect(in.Evidence)
	if !strings.HasPrefix(kind.String(), "image/") {
		return nil, fmt.Errorf("%w: got %s", domainErrors.ErrInvalidEvidence, kind.String())
	}

	items, err := u.resolveSelections(ctx, in.Selections)
	if err != nil {
		return nil, err
	}

	result := &model.FinishOrderResult{}
	switch {
	case len(items) > 0:
		draft, err := u.draft(order.ID, items)
		if err != nil {
			return nil, err
		}
		medicineOrder, replayed, err := u.medicineOrders.AttachToOrder(ctx, draft)
		if err != nil {
			return nil, err
		}
		result.MedicineOrder = medicineOrder
		result.Replayed = replayed
	case order.MedicineOrderID != nil:
		// a previous attempt stored the medicines but failed later on
		medicineOrder, err := u.medicineOrders.GetByID(ctx, *order.MedicineOrderID)
		if err != nil {
			return nil, err
		}
		result.MedicineOrder = medicineOrder
		result.Replayed = true
	}
	result.HadMedicine = result.MedicineOrder != nil
	if result.HadMedicine {
		order.MedicineOrderID = &result.MedicineOrder.ID
	}

	// every attempt writes its own object so a losing attempt only ever removes its own file
	name := order.ID + "-" + uuid.NewString() + kind.Extension()
	var ref string
	err = retry.Do(ctx, u.uploadRetry, func(ctx context.Context) error {
		var uploadErr error
		ref, uploadErr = u.evidence.Upload(ctx, evidenceNamespace+"/"+in.CaregiverID, name, in.Evidence)
		return uploadErr
	})
	if err != nil {
		u.logger.Error("evidence upload failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrEvidenceUpload, err)
	}

	completedAt := u.now().UTC()
	event, err := model.NewOrderCompletedEvent(order, ref, result.HadMedicine, completedAt)
	if err != nil {
		u.removeEvidence(ctx, ref)
		return nil, err
	}
	if err := u.orders.Complete(ctx, order.ID, ref, completedAt, event); err != nil {
		u.removeEvidence(ctx, ref)
		return nil, err
	}

	result.Success = true
	result.ProofOfService = ref
	result.CompletedAt = completedAt
	result.Message = msgOrderCompleted
	if result.HadMedicine {
		result.Message = msgOrderCompletedWithMedicine
	}

	u.logger.Info("order completed",
		slog.String("order_id", order.ID),
		slog.Bool("had_medicine", result.HadMedicine),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

func (u *FulfillmentUseCase) resolveSelections(ctx context.Context, selections []model.SelectionInput) ([]model.SelectionItem, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	for _, s := range selections {
		if s.Quantity <= 0 || s.Quantity > model.MaxLineQuantity {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidQuantity, s.MedicineID)
		}
		if !seen[s.MedicineID] {
			seen[s.MedicineID] = true
			ids = append(ids, s.MedicineID)
		}
	}

	found, err := u.medicines.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]model.Medicine, len(found))
	for _, m := range found {
		catalog[m.ID] = m
	}

	var selection model.Selection
	for _, s := range selections {
		medicine, ok := catalog[s.MedicineID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown medicine %s", domainErrors.ErrInvalidMedicine, s.MedicineID)
		}
		selection.AddQuantity(medicine, s.Quantity)
	}
	items := selection.Items()
	for _, item := range items {
		if item.Quantity > model.MaxLineQuantity {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidQuantity, item.Medicine.ID)
		}
	}
	return items, nil
}

func (u *FulfillmentUseCase) draft(orderID string, items []model.SelectionItem) (model.MedicineOrderDraft, error) {
	totals, err := model.ComputeTotals(items, u.deliveryFee)
	if err != nil {
		return model.MedicineOrderDraft{}, priceError(err)
	}

	headerID := uuid.NewString()
	lines := make([]model.MedicineOrderLine, 0, len(items))
	for _, item := range items {
		lineTotal, err := item.LineTotal()
		if err != nil {
			return model.MedicineOrderDraft{}, priceError(err)
		}
		lines = append(lines, model.MedicineOrderLine{
			ID:              uuid.NewString(),
			MedicineOrderID: headerID,
			MedicineID:      item.Medicine.ID,
			MedicineName:    item.Medicine.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.Medicine.Price,
			TotalPrice:      lineTotal,
		})
	}
	return model.MedicineOrderDraft{
		ID:             headerID,
		OrderID:        orderID,
		IdempotencyKey: model.FulfillmentKey(orderID),
		Totals:         totals,
		Lines:          lines,
	}, nil
}

func priceError(err error) error {
	if errors.Is(err, money.ErrOverflow) {
		return fmt.Errorf("%w: %v", domainErrors.ErrAmountTooLarge, err)
	}
	return err
}

func (u *FulfillmentUseCase) removeEvidence(ctx context.Context, ref string) {
	if err := u.evidence.Remove(ctx, ref); err != nil {
		u.logger.Warn("evidence cleanup failed", slog.String("ref", ref), slog.String("error", err.Error()))
	}
}
