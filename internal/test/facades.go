package test

import (
	"context"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	BookFn   func(context.Context, string, string, string) (*model.Order, error)
	OrderFn  func(context.Context, string, string) (*model.Order, error)
	OrdersFn func(context.Context, string) ([]model.Order, error)
	RateFn   func(context.Context, string, string, float64) (*model.Order, error)
	CancelFn func(context.Context, string, string) (*model.Order, error)
	FinishFn func(context.Context, model.FinishOrderInput) (*model.FinishOrderResult, error)
}

// BookOrder returns an ongoing order for the pair.
func (s OrderFacadeStub) BookOrder(ctx context.Context, patientID, caregiverID, appointmentID string) (*model.Order, error) {
	if s.BookFn != nil {
		return s.BookFn(ctx, patientID, caregiverID, appointmentID)
	}
	return &model.Order{ID: "order-1", PatientID: patientID, CaregiverID: caregiverID, AppointmentID: appointmentID, Status: model.OrderStatusOngoing}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, PatientID: userID, Status: model.OrderStatusOngoing}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: "order-1", PatientID: userID, Status: model.OrderStatusOngoing, CreatedAt: time.Unix(0, 0)}}, nil
}

func (s OrderFacadeStub) RateOrder(ctx context.Context, patientID, orderID string, rate float64) (*model.Order, error) {
	if s.RateFn != nil {
		return s.RateFn(ctx, patientID, orderID, rate)
	}
	return &model.Order{ID: orderID, PatientID: patientID, Status: model.OrderStatusOngoing, Rate: &rate}, nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, PatientID: userID, Status: model.OrderStatusCanceled}, nil
}

// FinishOrder completes without medicine unless overridden.
func (s OrderFacadeStub) FinishOrder(ctx context.Context, in model.FinishOrderInput) (*model.FinishOrderResult, error) {
	if s.FinishFn != nil {
		return s.FinishFn(ctx, in)
	}
	return &model.FinishOrderResult{Success: true, Message: "order completed", ProofOfService: "proof_of_service/" + in.CaregiverID + "/" + in.OrderID + ".png"}, nil
}

// CatalogFacadeStub serves a one-item catalog by default.
type CatalogFacadeStub struct {
	MedicinesFn func(context.Context, string) ([]model.Medicine, error)
	CreateFn    func(context.Context, string, string, model.MedicineInput) (*model.Medicine, error)
}

func (s CatalogFacadeStub) Medicines(ctx context.Context, query string) ([]model.Medicine, error) {
	if s.MedicinesFn != nil {
		return s.MedicinesFn(ctx, query)
	}
	return []model.Medicine{{ID: "med-1", Name: "Paracetamol", Type: model.MedicineTypeGeneric, Price: 5000}}, nil
}

func (s CatalogFacadeStub) CreateMedicine(ctx context.Context, actorID, contextOrderID string, in model.MedicineInput) (*model.Medicine, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, actorID, contextOrderID, in)
	}
	return &model.Medicine{ID: "med-2", Name: in.Name, Type: model.MedicineType(in.Type), Price: 10000, CreatedBy: &actorID}, nil
}

// PaymentFacadeStub returns a recommended view unless overridden.
type PaymentFacadeStub struct {
	ViewFn         func(context.Context, string, string) (*model.PaymentView, error)
	StartFn        func(context.Context, model.StartPaymentInput) (*model.PaymentView, error)
	SkipFn         func(context.Context, string, string) error
	SessionFn      func(context.Context, string, string) (*model.PaymentView, error)
	AcknowledgeFn  func(context.Context, string, string) (*model.PaymentView, error)
	FinalizeFn     func(context.Context, string, string) (*model.PaymentView, error)
	NotificationFn func(context.Context, []byte, string) error
}

// SamplePaymentView is a header with two lines.
func SamplePaymentView(state model.PaymentState) *model.PaymentView {
	return &model.PaymentView{
		MedicineOrder: &model.MedicineOrder{
			ID:          "mo-1",
			OrderID:     "order-1",
			TotalQty:    3,
			SubTotal:    13000,
			DeliveryFee: 10000,
			TotalPrice:  23000,
			IsPaid:      model.PaymentStatusUnverified,
			Lines: []model.MedicineOrderLine{
				{ID: "l1", MedicineID: "a", MedicineName: "A", Quantity: 2, UnitPrice: 5000, TotalPrice: 10000},
				{ID: "l2", MedicineID: "b", MedicineName: "B", Quantity: 1, UnitPrice: 3000, TotalPrice: 3000},
			},
		},
		State: state,
	}
}

func (s PaymentFacadeStub) PaymentView(ctx context.Context, patientID, medicineOrderID string) (*model.PaymentView, error) {
	if s.ViewFn != nil {
		return s.ViewFn(ctx, patientID, medicineOrderID)
	}
	return SamplePaymentView(model.PaymentStateRecommended), nil
}

func (s PaymentFacadeStub) StartPayment(ctx context.Context, in model.StartPaymentInput) (*model.PaymentView, error) {
	if s.StartFn != nil {
		return s.StartFn(ctx, in)
	}
	view := SamplePaymentView(model.PaymentStateAwaitingConfirmation)
	view.Session = &model.PaymentSession{ID: "s1", MedicineOrderID: "mo-1", LineIDs: []string{"l1"}, Amount: 20000, VirtualAccount: model.StaticVirtualAccount}
	view.RemainingSeconds = 3600
	return view, nil
}

func (s PaymentFacadeStub) SkipPayment(ctx context.Context, patientID, medicineOrderID string) error {
	if s.SkipFn != nil {
		return s.SkipFn(ctx, patientID, medicineOrderID)
	}
	return nil
}

func (s PaymentFacadeStub) PaymentSession(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	if s.SessionFn != nil {
		return s.SessionFn(ctx, patientID, sessionID)
	}
	return s.StartPayment(ctx, model.StartPaymentInput{PatientID: patientID})
}

func (s PaymentFacadeStub) AcknowledgePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	if s.AcknowledgeFn != nil {
		return s.AcknowledgeFn(ctx, patientID, sessionID)
	}
	return SamplePaymentView(model.PaymentStateConfirmed), nil
}

func (s PaymentFacadeStub) FinalizePayment(ctx context.Context, patientID, sessionID string) (*model.PaymentView, error) {
	if s.FinalizeFn != nil {
		return s.FinalizeFn(ctx, patientID, sessionID)
	}
	return SamplePaymentView(model.PaymentStateVerified), nil
}

func (s PaymentFacadeStub) HandlePaymentNotification(ctx context.Context, body []byte, signature string) error {
	if s.NotificationFn != nil {
		return s.NotificationFn(ctx, body, signature)
	}
	return nil
}

// MessageFacadeStub simulates chat operations.
type MessageFacadeStub struct {
	SendFn      func(context.Context, string, string, string) (*model.Message, error)
	MarkReadFn  func(context.Context, string, []string) ([]string, error)
	UnreadFn    func(context.Context, string) (int, error)
	SubscribeFn func(context.Context, string) (model.MessageFeed, []string, error)
}

func (s MessageFacadeStub) SendMessage(ctx context.Context, senderID, recipientID, body string) (*model.Message, error) {
	if s.SendFn != nil {
		return s.SendFn(ctx, senderID, recipientID, body)
	}
	return &model.Message{ID: "m1", SenderID: senderID, RecipientID: recipientID, Body: body}, nil
}

func (s MessageFacadeStub) MarkMessagesRead(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(ctx, recipientID, ids)
	}
	return ids, nil
}

func (s MessageFacadeStub) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.UnreadFn != nil {
		return s.UnreadFn(ctx, userID)
	}
	return 2, nil
}

func (s MessageFacadeStub) SubscribeUnread(ctx context.Context, userID string) (model.MessageFeed, []string, error) {
	if s.SubscribeFn != nil {
		return s.SubscribeFn(ctx, userID)
	}
	feed := NewFeedStub(1)
	close(feed.C)
	return feed, nil, nil
}

// AdminFacadeStub answers for an administrator unless overridden.
type AdminFacadeStub struct {
	UsersFn    func(context.Context, string, model.UserFilter) ([]model.User, error)
	ReviewFn   func(context.Context, string, string, model.ApprovalStatus) (*model.User, error)
	UpdateFn   func(context.Context, string, string, model.UserUpdate) (*model.User, error)
	LogFn      func(context.Context, string) ([]model.Order, error)
	DetailFn   func(context.Context, string, string) (*model.AdminOrderDetail, error)
	EvidenceFn func(context.Context, string, string) (*model.EvidenceFile, error)
}

func (s AdminFacadeStub) AdminUsers(ctx context.Context, adminID string, filter model.UserFilter) ([]model.User, error) {
	if s.UsersFn != nil {
		return s.UsersFn(ctx, adminID, filter)
	}
	return []model.User{{ID: "caregiver-1", Login: "nurse", Role: model.RoleCaregiver, Approval: model.ApprovalPending}}, nil
}

func (s AdminFacadeStub) ReviewCaregiver(ctx context.Context, adminID, userID string, status model.ApprovalStatus) (*model.User, error) {
	if s.ReviewFn != nil {
		return s.ReviewFn(ctx, adminID, userID, status)
	}
	return &model.User{ID: userID, Role: model.RoleCaregiver, Approval: status}, nil
}

func (s AdminFacadeStub) UpdateUser(ctx context.Context, adminID, userID string, update model.UserUpdate) (*model.User, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, adminID, userID, update)
	}
	return &model.User{ID: userID, Login: update.Login, Role: update.Role}, nil
}

func (s AdminFacadeStub) AdminOrders(ctx context.Context, adminID string) ([]model.Order, error) {
	if s.LogFn != nil {
		return s.LogFn(ctx, adminID)
	}
	return []model.Order{{ID: "o1", Status: model.OrderStatusOngoing}}, nil
}

func (s AdminFacadeStub) AdminOrder(ctx context.Context, adminID, orderID string) (*model.AdminOrderDetail, error) {
	if s.DetailFn != nil {
		return s.DetailFn(ctx, adminID, orderID)
	}
	return &model.AdminOrderDetail{Order: model.Order{ID: orderID, Status: model.OrderStatusOngoing}}, nil
}

func (s AdminFacadeStub) OrderEvidence(ctx context.Context, adminID, orderID string) (*model.EvidenceFile, error) {
	if s.EvidenceFn != nil {
		return s.EvidenceFn(ctx, adminID, orderID)
	}
	return &model.EvidenceFile{Ref: "evidence/" + orderID + ".png", ContentType: "image/png", Data: []byte("png")}, nil
}

// CareFacadeStub aggregates facade dependencies for HTTP layer tests.
type CareFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	CatalogFacadeStub
	PaymentFacadeStub
	MessageFacadeStub
	AdminFacadeStub
	HealthFn func(context.Context) error
}

func (s CareFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
