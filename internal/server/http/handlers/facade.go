package handlers

import (
	"context"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (string, error)
}

// OrderFacade encapsulates service order operations exposed via HTTP.
type OrderFacade interface {
	BookOrder(ctx context.Context, patientID, caregiverID, appointmentID string) (*model.Order, error)
	Order(ctx context.Context, userID, orderID string) (*model.Order, error)
	Orders(ctx context.Context, userID string) ([]model.Order, error)
	RateOrder(ctx context.Context, patientID, orderID string, rate float64) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	FinishOrder(ctx context.Context, in model.FinishOrderInput) (*model.FinishOrderResult, error)
}

// CatalogFacade exposes the shared medicine catalog.
type CatalogFacade interface {
	Medicines(ctx context.Context, query string) ([]model.Medicine, error)
	CreateMedicine(ctx context.Context, actorID, contextOrderID string, in model.MedicineInput) (*model.Medicine, error)
}

// PaymentFacade drives the additional-medicine payment.
type PaymentFacade interface {
	PaymentView(ctx context.Context, patientID, medicineOrderID string) (*model.PaymentView, error)
	StartPayment(ctx context.Context, in model.StartPaymentInput) (*model.PaymentView, error)
	SkipPayment(ctx context.Context, patientID, medicineOrderID string) error
	PaymentSession(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error)
	AcknowledgePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error)
	FinalizePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error)
	HandlePaymentNotification(ctx context.Context, body []byte, signature string) error
}

// MessageFacade covers chat messages and the unread feed.
type MessageFacade interface {
	SendMessage(ctx context.Context, senderID, recipientID, body string) (*model.Message, error)
	MarkMessagesRead(ctx context.Context, recipientID string, ids []string) ([]string, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	SubscribeUnread(ctx context.Context, userID string) (model.MessageFeed, []string, error)
}

// AdminFacade backs the administrator console.
type AdminFacade interface {
	AdminUsers(ctx context.Context, adminID string, filter model.UserFilter) ([]model.User, error)
	ReviewCaregiver(ctx context.Context, adminID, userID string, status model.ApprovalStatus) (*model.User, error)
	UpdateUser(ctx context.Context, adminID, userID string, update model.UserUpdate) (*model.User, error)
	AdminOrders(ctx context.Context, adminID string) ([]model.Order, error)
	AdminOrder(ctx context.Context, adminID, orderID string) (*model.AdminOrderDetail, error)
	OrderEvidence(ctx context.Context, adminID, orderID string) (*model.EvidenceFile, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// CareFacade aggregates the full set of operations used across handlers.
type CareFacade interface {
	AuthFacade
	OrderFacade
	CatalogFacade
	PaymentFacade
	MessageFacade
	AdminFacade
	HealthFacade
}
