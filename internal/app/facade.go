package app

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CareFacade exposes the marketplace use cases to the transport layer.
type CareFacade struct {
	auth        *usecase.AuthUseCase
	orders      *usecase.OrderUseCase
	catalog     *usecase.CatalogUseCase
	fulfillment *usecase.FulfillmentUseCase
	payments    *usecase.PaymentUseCase
	messages    *usecase.MessageUseCase
	admin       *usecase.AdminUseCase
	health      HealthChecker
}

func NewCareFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	catalog *usecase.CatalogUseCase,
	fulfillment *usecase.FulfillmentUseCase,
	payments *usecase.PaymentUseCase,
	messages *usecase.MessageUseCase,
	admin *usecase.AdminUseCase,
	health HealthChecker,
) *CareFacade {
	return &CareFacade{
		auth:        auth,
		orders:      orders,
		catalog:     catalog,
		fulfillment: fulfillment,
		payments:    payments,
		messages:    messages,
		admin:       admin,
		health:      health,
	}
}

func (f *CareFacade) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role)
	return token, err
}

func (f *CareFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *CareFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *CareFacade) BookOrder(ctx context.Context, patientID, caregiverID, appointmentID string) (*model.Order, error) {
	return f.orders.Book(ctx, patientID, caregiverID, appointmentID)
}

func (f *CareFacade) Order(ctx context.Context, userID, orderID string) (*model.Order, error) {
	return f.orders.Get(ctx, userID, orderID)
}

func (f *CareFacade) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	return f.orders.List(ctx, userID)
}

func (f *CareFacade) RateOrder(ctx context.Context, patientID, orderID string, rate float64) (*model.Order, error) {
	return f.orders.Rate(ctx, patientID, orderID, rate)
}

func (f *CareFacade) CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	return f.orders.Cancel(ctx, userID, orderID)
}

func (f *CareFacade) FinishOrder(ctx context.Context, in model.FinishOrderInput) (*model.FinishOrderResult, error) {
	return f.fulfillment.FinishOrder(ctx, in)
}

// Medicines lists the catalog, filtered by name when query is set.
func (f *CareFacade) Medicines(ctx context.Context, query string) ([]model.Medicine, error) {
	return f.catalog.Search(ctx, query, 0)
}

func (f *CareFacade) CreateMedicine(ctx context.Context, actorID, contextOrderID string, in model.MedicineInput) (*model.Medicine, error) {
	return f.catalog.Create(ctx, actorID, contextOrderID, in)
}

func (f *CareFacade) PaymentView(ctx context.Context, patientID, medicineOrderID string) (*model.PaymentView, error) {
	return f.payments.View(ctx, patientID, medicineOrderID)
}

func (f *CareFacade) StartPayment(ctx context.Context, in model.StartPaymentInput) (*model.PaymentView, error) {
	return f.payments.Start(ctx, in)
}

func (f *CareFacade) SkipPayment(ctx context.Context, patientID, medicineOrderID string) error {
	return f.payments.Skip(ctx, patientID, medicineOrderID)
}

func (f *CareFacade) PaymentSession(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	return f.payments.Session(ctx, patientID, sessionID)
}

func (f *CareFacade) AcknowledgePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	return f.payments.Acknowledge(ctx, patientID, sessionID)
}

func (f *CareFacade) FinalizePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	return f.payments.Finalize(ctx, patientID, sessionID)
}

func (f *CareFacade) HandlePaymentNotification(ctx context.Context, body []byte, signature string) error {
	return f.payments.HandleGatewayNotification(ctx, body, signature)
}

func (f *CareFacade) SendMessage(ctx context.Context, senderID, recipientID, body string) (*model.Message, error) {
	return f.messages.Send(ctx, senderID, recipientID, body)
}

func (f *CareFacade) MarkMessagesRead(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	return f.messages.MarkRead(ctx, recipientID, ids)
}

func (f *CareFacade) UnreadCount(ctx context.Context, userID string) (int, error) {
	return f.messages.UnreadCount(ctx, userID)
}

func (f *CareFacade) SubscribeUnread(ctx context.Context, userID string) (model.MessageFeed, []string, error) {
	return f.messages.Subscribe(ctx, userID)
}

func (f *CareFacade) AdminUsers(ctx context.Context, adminID string, filter model.UserFilter) ([]model.User, error) {
	return f.admin.Users(ctx, adminID, filter)
}

func (f *CareFacade) ReviewCaregiver(ctx context.Context, adminID, userID string, status model.ApprovalStatus) (*model.User, error) {
	return f.admin.SetApproval(ctx, adminID, userID, status)
}

func (f *CareFacade) UpdateUser(ctx context.Context, adminID, userID string, update model.UserUpdate) (*model.User, error) {
	return f.admin.UpdateUser(ctx, adminID, userID, update)
}

func (f *CareFacade) AdminOrders(ctx context.Context, adminID string) ([]model.Order, error) {
	return f.admin.Orders(ctx, adminID)
}

func (f *CareFacade) AdminOrder(ctx context.Context, adminID, orderID string) (*model.AdminOrderDetail, error) {
	return f.admin.OrderDetail(ctx, adminID, orderID)
}

func (f *CareFacade) OrderEvidence(ctx context.Context, adminID, orderID string) (*model.EvidenceFile, error) {
	return f.admin.Evidence(ctx, adminID, orderID)
}

// HealthCheck succeeds when no checker is wired.
func (f *CareFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
