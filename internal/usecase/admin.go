package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
)

const maxEvidenceRead = 10 << 20

// AdminUseCase backs the administrator console: caregiver approval, user edits and the order log.
// Every operation requires the acting user to be an administrator.
type AdminUseCase struct {
	users          repository.UserRepository
	orders         repository.OrderRepository
	medicineOrders repository.MedicineOrderRepository
	payments       repository.PaymentRepository
	evidence       repository.EvidenceStorage
	logger         *slog.Logger
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(
	users repository.UserRepository,
	orders repository.OrderRepository,
	medicineOrders repository.MedicineOrderRepository,
	payments repository.PaymentRepository,
	evidence repository.EvidenceStorage,
	logger *slog.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		users:          users,
		orders:         orders,
		medicineOrders: medicineOrders,
		payments:       payments,
		evidence:       evidence,
		logger:         logger,
	}
}

// Users lists accounts matching the filter.
func (u *AdminUseCase) Users(ctx context.Context, adminID string, filter model.UserFilter) ([]model.User, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domainErrors.ErrInvalidRole
	}
	if filter.Approval != "" && !filter.Approval.Valid() {
		return nil, domainErrors.ErrInvalidApproval
	}
	return u.users.List(ctx, filter)
}

// SetApproval approves or rejects a caregiver. Other roles are always approved.
func (u *AdminUseCase) SetApproval(ctx context.Context, adminID, userID string, status model.ApprovalStatus) (*model.User, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if status != model.ApprovalApproved && status != model.ApprovalRejected {
		return nil, domainErrors.ErrInvalidApproval
	}

	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if usr.Role != model.RoleCaregiver {
		return nil, fmt.Errorf("%w: only caregivers are reviewed", domainErrors.ErrInvalidRole)
	}
	if err := u.users.SetApproval(ctx, userID, status); err != nil {
		return nil, err
	}
	usr.Approval = status

	u.logger.Info("caregiver reviewed",
		slog.String("admin_id", adminID),
		slog.String("user_id", userID),
		slog.String("approval", string(status)))
	return usr, nil
}

// UpdateUser edits login or role. Changing the role resets approval to what the new role starts with.
// Administrators cannot change their own role.
func (u *AdminUseCase) UpdateUser(ctx context.Context, adminID, userID string, update model.UserUpdate) (*model.User, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	update.Login = strings.TrimSpace(update.Login)
	update.Approval = ""
	if update.Role != "" && !update.Role.Valid() {
		return nil, domainErrors.ErrInvalidRole
	}
	if update.Login == "" && update.Role == "" {
		return nil, domainErrors.ErrEmptyUpdate
	}

	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Role != "" && update.Role != usr.Role {
		if userID == adminID {
			return nil, fmt.Errorf("%w: administrators cannot change their own role", domainErrors.ErrForbidden)
		}
		update.Approval = model.InitialApproval(update.Role)
	}
	return u.users.Update(ctx, userID, update)
}

// Orders returns the full order log, newest first.
func (u *AdminUseCase) Orders(ctx context.Context, adminID string) ([]model.Order, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return u.orders.ListAll(ctx)
}

// OrderDetail gathers the order, both participants, the medicine order and its payment state.
func (u *AdminUseCase) OrderDetail(ctx context.Context, adminID, orderID string) (*model.AdminOrderDetail, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &model.AdminOrderDetail{Order: *order}
	if detail.Patient, err = u.participant(ctx, order.PatientID); err != nil {
		return nil, err
	}
	if detail.Caregiver, err = u.participant(ctx, order.CaregiverID); err != nil {
		return nil, err
	}
	if order.MedicineOrderID == nil {
		return detail, nil
	}

	if detail.MedicineOrder, err = u.medicineOrders.GetByID(ctx, *order.MedicineOrderID); err != nil {
		return nil, err
	}
	if detail.Payment, err = u.payments.OpenSession(ctx, detail.MedicineOrder.ID); err != nil {
		return nil, err
	}
	detail.PaymentState = model.ResolvePaymentState(detail.MedicineOrder, detail.Payment)
	return detail, nil
}

// Evidence loads the proof of service stored when the order was completed.
func (u *AdminUseCase) Evidence(ctx context.Context, adminID, orderID string) (*model.EvidenceFile, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ProofOfService == nil || *order.ProofOfService == "" {
		return nil, fmt.Errorf("%w: order %s has no proof of service", domainErrors.ErrNotFound, orderID)
	}

	ref := *order.ProofOfService
	rc, err := u.evidence.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: proof of service %s", domainErrors.ErrNotFound, ref)
		}
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEvidenceRead))
	if err != nil {
		return nil, fmt.Errorf("read proof of service: %w", err)
	}
	return &model.EvidenceFile{Ref: ref, ContentType: mimetype.Detect(data).String(), Data: data}, nil
}

// participant tolerates accounts removed after the order was booked.
func (u *AdminUseCase) participant(ctx context.Context, id string) (*model.User, error) {
	usr, err := u.users.GetByID(ctx, id)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	return usr, err
}

func (u *AdminUseCase) requireAdmin(ctx context.Context, userID string) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrForbidden
		}
		return err
	}
	if usr.Role != model.RoleAdmin {
		return domainErrors.ErrForbidden
	}
	return nil
}
