package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homecare/internal/adapter/gateway"
	"github.com/polkiloo/homecare/internal/config"
	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/domain/repository"
)

// PaymentUseCase drives the additional-medicine payment of a patient.
type PaymentUseCase struct {
	orders         repository.OrderRepository
	medicineOrders repository.MedicineOrderRepository
	payments       repository.PaymentRepository
	gateway        gateway.Client
	window         time.Duration
	webhookSecret  string
	logger         *slog.Logger
	now            func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(
	orders repository.OrderRepository,
	medicineOrders repository.MedicineOrderRepository,
	payments repository.PaymentRepository,
	client gateway.Client,
	cfg *config.Config,
	logger *slog.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		orders:         orders,
		medicineOrders: medicineOrders,
		payments:       payments,
		gateway:        client,
		window:         cfg.PaymentWindow,
		webhookSecret:  cfg.PaymentWebhookSecret,
		logger:         logger,
		now:            time.Now,
	}
}

// View returns the payment state of a medicine order.
func (u *PaymentUseCase) View(ctx context.Context, patientID, medicineOrderID string) (*model.PaymentView, error) {
	medicineOrder, err := u.medicineOrderOf(ctx, patientID, medicineOrderID)
	if err != nil {
		return nil, err
	}
	session, err := u.payments.OpenSession(ctx, medicineOrder.ID)
	if err != nil {
		return nil, err
	}
	return u.view(medicineOrder, session), nil
}

// Start opens a payment session for the selected lines and issues a virtual account.
func (u *PaymentUseCase) Start(ctx context.Context, in model.StartPaymentInput) (*model.PaymentView, error) {
	medicineOrder, err := u.medicineOrderOf(ctx, in.PatientID, in.MedicineOrderID)
	if err != nil {
		return nil, err
	}
	if medicineOrder.IsPaid != model.PaymentStatusUnverified {
		return nil, domainErrors.ErrAlreadyPaid
	}

	selection := model.NewLineSelection(medicineOrder.Lines)
	if in.SelectAll {
		selection.SelectAll(true)
	} else {
		picked := make(map[string]bool, len(in.LineIDs))
		for _, id := range in.LineIDs {
			if picked[id] {
				continue
			}
			picked[id] = true
			if !selection.Toggle(id) {
				return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidSelection, id)
			}
		}
	}
	if selection.Len() == 0 {
		return nil, domainErrors.ErrEmptySelection
	}

	lines := selection.Selected()
	lineIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}

	now := u.now().UTC()
	session := &model.PaymentSession{
		ID:              uuid.NewString(),
		MedicineOrderID: medicineOrder.ID,
		PatientID:       in.PatientID,
		LineIDs:         lineIDs,
		Amount:          model.ChargeFor(lines, medicineOrder.DeliveryFee),
		ExpiresAt:       now.Add(u.window),
		CreatedAt:       now,
	}

	account, err := u.gateway.IssueVirtualAccount(ctx, session.ID, session.Amount)
	if err != nil {
		return nil, fmt.Errorf("issue virtual account: %w", err)
	}
	session.VirtualAccount = account.Number

	if err := u.payments.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	u.logger.Info("payment session started",
		slog.String("session_id", session.ID),
		slog.String("medicine_order_id", medicineOrder.ID),
		slog.Int("lines", len(lineIDs)),
		slog.Int64("amount", session.Amount))
	return u.view(medicineOrder, session), nil
}

// Session returns the view of one of the patient's sessions.
func (u *PaymentUseCase) Session(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	session, err := u.sessionOf(ctx, patientID, sessionID)
	if err != nil {
		return nil, err
	}
	medicineOrder, err := u.medicineOrders.GetByID(ctx, session.MedicineOrderID)
	if err != nil {
		return nil, err
	}
	return u.view(medicineOrder, session), nil
}

// Acknowledge records that the patient copied the virtual account number.
func (u *PaymentUseCase) Acknowledge(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	session, err := u.sessionOf(ctx, patientID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Finalized() {
		return nil, domainErrors.ErrPaymentFinalized
	}
	if err := u.payments.Confirm(ctx, session.ID, model.ConfirmedByPatient, u.now().UTC()); err != nil {
		return nil, err
	}
	return u.Session(ctx, patientID, sessionID)
}

// HandleGatewayNotification confirms a session from a signed gateway callback.
// Notifications other than "paid" and repeated ones for finalized sessions are accepted without effect.
func (u *PaymentUseCase) HandleGatewayNotification(ctx context.Context, body []byte, signature string) error {
	notification, err := gateway.ParseNotification(u.webhookSecret, body, signature)
	if err != nil {
		return err
	}
	if !notification.Paid() {
		u.logger.Info("gateway notification ignored",
			slog.String("reference", notification.Reference),
			slog.String("status", notification.Status))
		return nil
	}

	session, err := u.payments.GetSession(ctx, notification.Reference)
	if err != nil {
		return err
	}
	if session.Amount != notification.Amount || session.VirtualAccount != notification.VirtualAccount {
		return domainErrors.ErrPaymentMismatch
	}
	if session.Finalized() {
		return nil
	}

	err = u.payments.Confirm(ctx, session.ID, model.ConfirmedByGateway, u.now().UTC())
	if errors.Is(err, domainErrors.ErrPaymentFinalized) {
		return nil
	}
	return err
}

// Finalize settles the medicine order once the session was confirmed.
func (u *PaymentUseCase) Finalize(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	session, err := u.sessionOf(ctx, patientID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Finalized() {
		return nil, domainErrors.ErrPaymentFinalized
	}
	if !session.Confirmed() {
		return nil, domainErrors.ErrPaymentNotConfirmed
	}

	medicineOrder, err := u.medicineOrders.GetByID(ctx, session.MedicineOrderID)
	if err != nil {
		return nil, err
	}
	if medicineOrder.IsPaid != model.PaymentStatusUnverified {
		return nil, domainErrors.ErrAlreadyPaid
	}

	paidAt := u.now().UTC()
	event, err := model.NewMedicineOrderPaidEvent(medicineOrder, session, paidAt)
	if err != nil {
		return nil, err
	}
	if err := u.payments.Finalize(ctx, session.ID, paidAt, event); err != nil {
		return nil, err
	}

	medicineOrder.IsPaid = model.PaymentStatusVerified
	medicineOrder.PaidAt = &paidAt
	session.FinalizedAt = &paidAt

	u.logger.Info("medicine order paid",
		slog.String("medicine_order_id", medicineOrder.ID),
		slog.String("session_id", session.ID),
		slog.Int64("amount", session.Amount))
	return u.view(medicineOrder, session), nil
}

// Skip leaves the medicine order untouched. It only checks access.
func (u *PaymentUseCase) Skip(ctx context.Context, patientID, medicineOrderID string) error {
	_, err := u.medicineOrderOf(ctx, patientID, medicineOrderID)
	return err
}

func (u *PaymentUseCase) medicineOrderOf(ctx context.Context, patientID, medicineOrderID string) (*model.MedicineOrder, error) {
	medicineOrder, err := u.medicineOrders.GetByID(ctx, medicineOrderID)
	if err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, medicineOrder.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PatientID != patientID {
		return nil, domainErrors.ErrForbidden
	}
	return medicineOrder, nil
}

func (u *PaymentUseCase) sessionOf(ctx context.Context, patientID, sessionID string) (*model.PaymentSession, error) {
	session, err := u.payments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != patientID {
		return nil, domainErrors.ErrForbidden
	}
	return session, nil
}

func (u *PaymentUseCase) view(medicineOrder *model.MedicineOrder, session *model.PaymentSession) *model.PaymentView {
	view := &model.PaymentView{
		MedicineOrder: medicineOrder,
		State:         model.ResolvePaymentState(medicineOrder, session),
	}
	if session != nil {
		now := u.now()
		view.Session = session
		view.RemainingSeconds = session.RemainingSeconds(now)
		view.Expired = session.Expired(now)
	}
	return view
}
