package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
	"github.com/polkiloo/homecare/internal/pkg/money"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	expDateLayout      = "2006-01-02"
)

// CatalogUseCase reads and extends the shared medicine catalog.
type CatalogUseCase struct {
	medicines repository.MedicineRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(medicines repository.MedicineRepository, orders repository.OrderRepository, users repository.UserRepository, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{medicines: medicines, orders: orders, users: users, logger: logger, now: time.Now}
}

func (u *CatalogUseCase) List(ctx context.Context) ([]model.Medicine, error) {
	return u.medicines.List(ctx)
}

// Search matches names case-insensitively. An empty query lists the whole catalog.
func (u *CatalogUseCase) Search(ctx context.Context, query string, limit int) ([]model.Medicine, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return u.List(ctx)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return u.medicines.Search(ctx, query, limit)
}

// Create validates the form and inserts the item into the shared catalog.
// When contextOrderID is set the actor must be the caregiver of that ongoing order.
func (u *CatalogUseCase) Create(ctx context.Context, actorID, contextOrderID string, input model.MedicineInput) (*model.Medicine, error) {
	medicine, err := u.validate(input)
	if err != nil {
		return nil, err
	}

	actor, err := u.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrForbidden
		}
		return nil, err
	}
	if actor.Role != model.RoleCaregiver && actor.Role != model.RoleAdmin {
		return nil, domainErrors.ErrForbidden
	}

	if contextOrderID != "" {
		order, err := u.orders.GetByID(ctx, contextOrderID)
		if err != nil {
			return nil, err
		}
		if order.CaregiverID != actorID {
			return nil, domainErrors.ErrForbidden
		}
		if !order.Ongoing() {
			return nil, domainErrors.ErrOrderClosed
		}
	}

	medicine.CreatedBy = &actorID
	created, err := u.medicines.Create(ctx, medicine)
	if err != nil {
		return nil, err
	}

	u.logger.Info("medicine added to catalog",
		slog.String("medicine_id", created.ID),
		slog.String("created_by", actorID),
		slog.String("order_id", contextOrderID))
	return created, nil
}

func (u *CatalogUseCase) validate(input model.MedicineInput) (*model.Medicine, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidMedicine("name is required")
	}

	kind := model.MedicineType(strings.TrimSpace(input.Type))
	if kind == "" {
		return nil, invalidMedicine("type is required")
	}
	if !kind.Valid() {
		return nil, invalidMedicine(fmt.Sprintf("type must be %s or %s", model.MedicineTypeBranded, model.MedicineTypeGeneric))
	}

	rawDate := strings.TrimSpace(input.ExpDate)
	if rawDate == "" {
		return nil, invalidMedicine("expiry date is required")
	}
	expDate, err := time.Parse(expDateLayout, rawDate)
	if err != nil {
		return nil, invalidMedicine("expiry date must look like 2006-01-02")
	}
	now := u.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if expDate.Before(today) {
		return nil, invalidMedicine("expiry date is in the past")
	}

	price, err := money.ParsePrice(input.Price)
	if err != nil {
		return nil, invalidMedicine(err.Error())
	}

	medicine := &model.Medicine{
		Name:    name,
		Type:    kind,
		Price:   price,
		ExpDate: &expDate,
	}
	if photo := strings.TrimSpace(input.PhotoURL); photo != "" {
		medicine.PhotoURL = &photo
	}
	return medicine, nil
}

func invalidMedicine(detail string) error {
	return fmt.Errorf("%w: %s", domainErrors.ErrInvalidMedicine, detail)
}
