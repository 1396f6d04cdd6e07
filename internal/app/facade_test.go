package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polkiloo/homecare/internal/config"
	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/realtime"
	testhelpers "github.com/polkiloo/homecare/internal/test"
	"github.com/polkiloo/homecare/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type facadeFixture struct {
	users          *testhelpers.UserRepositoryStub
	orders         *testhelpers.OrderRepositoryStub
	medicines      *testhelpers.MedicineRepositoryStub
	medicineOrders *testhelpers.MedicineOrderRepositoryStub
	payments       *testhelpers.PaymentRepositoryStub
	messages       *testhelpers.MessageRepositoryStub
	evidence       *testhelpers.EvidenceStorageStub
	facade         *CareFacade
}

func newFacade(health HealthChecker) *facadeFixture {
	rate := 5.0
	f := &facadeFixture{
		users: testhelpers.NewUserRepositoryStub(
			model.User{ID: "patient-1", Login: "patient", Role: model.RolePatient, Approval: model.ApprovalApproved},
			model.User{ID: "caregiver-1", Login: "nurse", Role: model.RoleCaregiver, Approval: model.ApprovalApproved},
			model.User{ID: "caregiver-2", Login: "trainee", Role: model.RoleCaregiver, Approval: model.ApprovalPending},
			model.User{ID: "admin-1", Login: "admin", Role: model.RoleAdmin, Approval: model.ApprovalApproved},
		),
		orders: testhelpers.NewOrderRepositoryStub(model.Order{
			ID: "o1", PatientID: "patient-1", CaregiverID: "caregiver-1", Status: model.OrderStatusOngoing, Rate: &rate,
		}),
		medicines:      &testhelpers.MedicineRepositoryStub{Items: []model.Medicine{{ID: "a", Name: "Paracetamol", Price: 5000}}},
		medicineOrders: testhelpers.NewMedicineOrderRepositoryStub(),
		payments:       testhelpers.NewPaymentRepositoryStub(),
		messages:       &testhelpers.MessageRepositoryStub{},
		evidence:       &testhelpers.EvidenceStorageStub{Objects: map[string][]byte{}},
	}
	f.payments.Headers = f.medicineOrders

	cfg := &config.Config{DeliveryFee: 10000, PaymentWindow: time.Hour}
	logger := discardLogger()
	hub := realtime.NewHub(logger)

	f.facade = NewCareFacade(
		usecase.NewAuthUseCase(f.users, testhelpers.HasherStub{}, testhelpers.StrategyStub{}),
		usecase.NewOrderUseCase(f.orders, f.users),
		usecase.NewCatalogUseCase(f.medicines, f.orders, f.users, logger),
		usecase.NewFulfillmentUseCase(f.orders, f.users, f.medicines, f.medicineOrders, f.evidence, cfg, logger),
		usecase.NewPaymentUseCase(f.orders, f.medicineOrders, f.payments, &testhelpers.GatewayClientStub{}, cfg, logger),
		usecase.NewMessageUseCase(f.messages, f.users, hub, hub, logger),
		usecase.NewAdminUseCase(f.users, f.orders, f.medicineOrders, f.payments, f.evidence, logger),
		health,
	)
	return f
}

func TestCareFacadeAuth(t *testing.T) {
	f := newFacade(nil)

	token, err := f.facade.Register(context.Background(), "nurse-joy", "pass", model.RoleCaregiver)
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	stored, err := f.users.GetByLogin(context.Background(), "nurse-joy")
	if err != nil || stored.Role != model.RoleCaregiver {
		t.Fatalf("expected stored caregiver, got %+v err=%v", stored, err)
	}

	if _, err := f.facade.Authenticate(context.Background(), "nurse-joy", "pass"); err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}

	id, err := f.facade.ParseToken(token)
	if err != nil || id != stored.ID {
		t.Fatalf("expected id %q, got %q err=%v", stored.ID, id, err)
	}
}

func TestCareFacadeOrderFlow(t *testing.T) {
	f := newFacade(nil)

	booked, err := f.facade.BookOrder(context.Background(), "patient-1", "caregiver-1", "appt-2")
	if err != nil {
		t.Fatalf("book returned error: %v", err)
	}
	if _, err := f.facade.RateOrder(context.Background(), "patient-1", booked.ID, 4); err != nil {
		t.Fatalf("rate returned error: %v", err)
	}
	if _, err := f.facade.Order(context.Background(), "caregiver-1", booked.ID); err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	list, err := f.facade.Orders(context.Background(), "patient-1")
	if err != nil || len(list) != 2 {
		t.Fatalf("expected two orders, got %v err=%v", list, err)
	}
	if _, err := f.facade.CancelOrder(context.Background(), "patient-1", booked.ID); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}

	res, err := f.facade.FinishOrder(context.Background(), model.FinishOrderInput{
		OrderID:     "o1",
		CaregiverID: "caregiver-1",
		Selections:  []model.SelectionInput{{MedicineID: "a", Quantity: 2}},
		Evidence:    []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	})
	if err != nil {
		t.Fatalf("finish returned error: %v", err)
	}
	if !res.HadMedicine || res.MedicineOrder.TotalPrice != 20000 {
		t.Fatalf("unexpected finish result %+v", res)
	}

	view, err := f.facade.PaymentView(context.Background(), "patient-1", res.MedicineOrder.ID)
	if err != nil || view.State != model.PaymentStateRecommended {
		t.Fatalf("unexpected payment view %+v err=%v", view, err)
	}
	view, err = f.facade.StartPayment(context.Background(), model.StartPaymentInput{PatientID: "patient-1", MedicineOrderID: res.MedicineOrder.ID, SelectAll: true})
	if err != nil {
		t.Fatalf("start payment returned error: %v", err)
	}
	sessionID := view.Session.ID
	if _, err := f.facade.PaymentSession(context.Background(), "patient-1", sessionID); err != nil {
		t.Fatalf("session returned error: %v", err)
	}
	if _, err := f.facade.FinalizePayment(context.Background(), "patient-1", sessionID); !errors.Is(err, domainErrors.ErrPaymentNotConfirmed) {
		t.Fatalf("expected not confirmed, got %v", err)
	}
	if _, err := f.facade.AcknowledgePayment(context.Background(), "patient-1", sessionID); err != nil {
		t.Fatalf("acknowledge returned error: %v", err)
	}
	view, err = f.facade.FinalizePayment(context.Background(), "patient-1", sessionID)
	if err != nil || view.State != model.PaymentStateVerified {
		t.Fatalf("expected verified, got %+v err=%v", view, err)
	}
	if err := f.facade.SkipPayment(context.Background(), "patient-1", res.MedicineOrder.ID); err != nil {
		t.Fatalf("skip returned error: %v", err)
	}
	if err := f.facade.HandlePaymentNotification(context.Background(), []byte(`{}`), "00"); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature without secret, got %v", err)
	}
}

func TestCareFacadeCatalog(t *testing.T) {
	f := newFacade(nil)

	created, err := f.facade.CreateMedicine(context.Background(), "caregiver-1", "o1", model.MedicineInput{
		Name: "Ibuprofen", Type: "Branded", Price: "7.500", ExpDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if created.Price != 7500 {
		t.Fatalf("expected price 7500, got %d", created.Price)
	}

	found, err := f.facade.Medicines(context.Background(), "ibu")
	if err != nil || len(found) != 1 || found[0].Name != "Ibuprofen" {
		t.Fatalf("unexpected search result %v err=%v", found, err)
	}
	all, err := f.facade.Medicines(context.Background(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected whole catalog, got %v err=%v", all, err)
	}
}

func TestCareFacadeMessages(t *testing.T) {
	f := newFacade(nil)

	feed, unread, err := f.facade.SubscribeUnread(context.Background(), "patient-1")
	if err != nil || len(unread) != 0 {
		t.Fatalf("unexpected subscribe result unread=%v err=%v", unread, err)
	}
	defer feed.Close()

	msg, err := f.facade.SendMessage(context.Background(), "caregiver-1", "patient-1", "on my way")
	if err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	select {
	case event := <-feed.Events():
		if event.MessageID != msg.ID {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected created event")
	}

	if n, err := f.facade.UnreadCount(context.Background(), "patient-1"); err != nil || n != 1 {
		t.Fatalf("expected one unread, got %d err=%v", n, err)
	}
	changed, err := f.facade.MarkMessagesRead(context.Background(), "patient-1", nil)
	if err != nil || len(changed) != 1 {
		t.Fatalf("expected one changed, got %v err=%v", changed, err)
	}
}

func TestCareFacadeAdmin(t *testing.T) {
	f := newFacade(nil)
	ctx := context.Background()

	pending, err := f.facade.AdminUsers(ctx, "admin-1", model.UserFilter{Role: model.RoleCaregiver, Approval: model.ApprovalPending})
	if err != nil || len(pending) != 1 || pending[0].ID != "caregiver-2" {
		t.Fatalf("expected one pending caregiver, got %v err=%v", pending, err)
	}
	if _, err := f.facade.AdminUsers(ctx, "patient-1", model.UserFilter{}); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for patient, got %v", err)
	}

	if _, err := f.facade.BookOrder(ctx, "patient-1", "caregiver-2", "appt-9"); !errors.Is(err, domainErrors.ErrNotApproved) {
		t.Fatalf("expected pending caregiver to be refused, got %v", err)
	}
	reviewed, err := f.facade.ReviewCaregiver(ctx, "admin-1", "caregiver-2", model.ApprovalApproved)
	if err != nil || reviewed.Approval != model.ApprovalApproved {
		t.Fatalf("unexpected review result %+v err=%v", reviewed, err)
	}
	if _, err := f.facade.BookOrder(ctx, "patient-1", "caregiver-2", "appt-9"); err != nil {
		t.Fatalf("approved caregiver must be bookable, got %v", err)
	}

	renamed, err := f.facade.UpdateUser(ctx, "admin-1", "patient-1", model.UserUpdate{Login: "patient-renamed"})
	if err != nil || renamed.Login != "patient-renamed" || renamed.Role != model.RolePatient {
		t.Fatalf("unexpected update result %+v err=%v", renamed, err)
	}

	if _, err := f.facade.FinishOrder(ctx, model.FinishOrderInput{
		OrderID:     "o1",
		CaregiverID: "caregiver-1",
		Selections:  []model.SelectionInput{{MedicineID: "a", Quantity: 1}},
		Evidence:    []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	}); err != nil {
		t.Fatalf("finish returned error: %v", err)
	}

	log, err := f.facade.AdminOrders(ctx, "admin-1")
	if err != nil || len(log) != 2 {
		t.Fatalf("expected both orders in the log, got %v err=%v", log, err)
	}
	detail, err := f.facade.AdminOrder(ctx, "admin-1", "o1")
	if err != nil {
		t.Fatalf("order detail returned error: %v", err)
	}
	if detail.Patient == nil || detail.Caregiver == nil || detail.MedicineOrder == nil {
		t.Fatalf("expected participants and medicine order, got %+v", detail)
	}
	if detail.PaymentState != model.PaymentStateRecommended {
		t.Fatalf("expected recommended payment state, got %q", detail.PaymentState)
	}

	file, err := f.facade.OrderEvidence(ctx, "admin-1", "o1")
	if err != nil {
		t.Fatalf("evidence returned error: %v", err)
	}
	if file.ContentType != "image/png" || file.Ref != *detail.Order.ProofOfService {
		t.Fatalf("unexpected evidence %+v", file)
	}
}

func TestCareFacadeHealthCheck(t *testing.T) {
	if err := newFacade(nil).facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil without checker, got %v", err)
	}
	down := errors.New("db down")
	if err := newFacade(healthStub{err: down}).facade.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected checker error, got %v", err)
	}
}
