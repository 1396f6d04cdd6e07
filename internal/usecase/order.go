package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic outside of fulfillment.
type OrderUseCase struct {
	orders repository.OrderRepository
	users  repository.UserRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, users repository.UserRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, users: users}
}

// Book creates an ongoing order between the patient and the caregiver.
func (u *OrderUseCase) Book(ctx context.Context, patientID, caregiverID, appointmentID string) (*model.Order, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return nil, domainErrors.ErrNoAppointment
	}
	if _, err := u.requireRole(ctx, patientID, model.RolePatient); err != nil {
		return nil, err
	}
	caregiver, err := u.requireRole(ctx, caregiverID, model.RoleCaregiver)
	if err != nil {
		return nil, err
	}
	if !caregiver.Approved() {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrNotApproved, caregiverID)
	}

	return u.orders.Create(ctx, &model.Order{
		PatientID:     patientID,
		CaregiverID:   caregiverID,
		AppointmentID: appointmentID,
		Status:        model.OrderStatusOngoing,
	})
}

// Get returns the order when the user takes part in it.
func (u *OrderUseCase) Get(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasParticipant(userID) {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// List returns orders where the user is patient or caregiver, newest first.
func (u *OrderUseCase) List(ctx context.Context, userID string) ([]model.Order, error) {
	return u.orders.ListByParticipant(ctx, userID)
}

// Rate stores the patient's rating. An order can be rated once while it is ongoing.
func (u *OrderUseCase) Rate(ctx context.Context, patientID, orderID string, rate float64) (*model.Order, error) {
	if rate < 1 || rate > 5 {
		return nil, domainErrors.ErrInvalidRate
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PatientID != patientID {
		return nil, domainErrors.ErrForbidden
	}
	if !order.Ongoing() {
		return nil, domainErrors.ErrOrderClosed
	}
	if order.Rated() {
		return nil, domainErrors.ErrAlreadyRated
	}

	if err := u.orders.SetRate(ctx, orderID, rate); err != nil {
		return nil, err
	}
	order.Rate = &rate
	return order, nil
}

// Cancel moves an ongoing order to Canceled. Either participant may cancel.
func (u *OrderUseCase) Cancel(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := u.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Ongoing() {
		return nil, domainErrors.ErrOrderClosed
	}
	if err := u.orders.Cancel(ctx, orderID); err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusCanceled
	return order, nil
}

func (u *OrderUseCase) requireRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %s", domainErrors.ErrNotFound, role, userID)
		}
		return nil, err
	}
	if usr.Role != role {
		return nil, fmt.Errorf("%w: %s is not a %s", domainErrors.ErrInvalidRole, userID, role)
	}
	return usr, nil
}
