package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/server/http/dto"
	testhelpers "github.com/polkiloo/homecare/internal/test"
)

func TestAdminHandlerUsersPassesFilter(t *testing.T) {
	facade := testhelpers.AdminFacadeStub{UsersFn: func(_ context.Context, adminID string, filter model.UserFilter) ([]model.User, error) {
		if adminID != "admin-1" {
			t.Fatalf("unexpected admin %q", adminID)
		}
		if filter.Role != model.RoleCaregiver || filter.Approval != model.ApprovalPending {
			t.Fatalf("unexpected filter %+v", filter)
		}
		return []model.User{{ID: "caregiver-2", Login: "trainee", PasswordHash: "secret", Role: model.RoleCaregiver, Approval: model.ApprovalPending}}, nil
	}}
	resp := serveRoute(t, http.MethodGet, "/admin/users", "/admin/users?role=caregiver&approval=Pending", NewAdminHandler(facade).Users, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var users []dto.UserResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].ID != "caregiver-2" || users[0].Approval != "Pending" {
		t.Fatalf("unexpected users %+v", users)
	}
	if containsKey(t, resp.Body.Bytes(), "password_hash") {
		t.Fatal("password hash must not be exposed")
	}
}

func containsKey(t *testing.T, body []byte, key string) bool {
	t.Helper()
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	for _, row := range rows {
		if _, ok := row[key]; ok {
			return true
		}
	}
	return false
}

func TestAdminHandlerReview(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{name: "approved", body: []byte(`{"status":"Approved"}`), status: http.StatusOK},
		{name: "missing status", body: []byte(`{}`), status: http.StatusBadRequest},
		{name: "invalid status", body: []byte(`{"status":"Maybe"}`), err: domainErrors.ErrInvalidApproval, status: http.StatusUnprocessableEntity},
		{name: "not admin", body: []byte(`{"status":"Rejected"}`), err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "unknown user", body: []byte(`{"status":"Rejected"}`), err: domainErrors.ErrNotFound, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.AdminFacadeStub{ReviewFn: func(_ context.Context, adminID, userID string, status model.ApprovalStatus) (*model.User, error) {
				if userID != "caregiver-2" {
					t.Fatalf("unexpected user %q", userID)
				}
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.User{ID: userID, Role: model.RoleCaregiver, Approval: status}, nil
			}}
			resp := serveRoute(t, http.MethodPost, "/admin/users/:id/approval", "/admin/users/caregiver-2/approval", NewAdminHandler(facade).Review, asUser("admin-1"), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAdminHandlerUpdate(t *testing.T) {
	facade := testhelpers.AdminFacadeStub{UpdateFn: func(_ context.Context, _ string, userID string, update model.UserUpdate) (*model.User, error) {
		if update.Login != "nurse-2" || update.Role != model.RoleCaregiver {
			t.Fatalf("unexpected update %+v", update)
		}
		return &model.User{ID: userID, Login: update.Login, Role: update.Role, Approval: model.ApprovalPending}, nil
	}}
	body := []byte(`{"login":"nurse-2","role":"caregiver"}`)
	resp := serveRoute(t, http.MethodPatch, "/admin/users/:id", "/admin/users/patient-1", NewAdminHandler(facade).Update, asUser("admin-1"), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var usr dto.UserResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &usr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if usr.ID != "patient-1" || usr.Role != "caregiver" || usr.Approval != "Pending" {
		t.Fatalf("unexpected user %+v", usr)
	}

	empty := testhelpers.AdminFacadeStub{UpdateFn: func(context.Context, string, string, model.UserUpdate) (*model.User, error) {
		return nil, domainErrors.ErrEmptyUpdate
	}}
	resp = serveRoute(t, http.MethodPatch, "/admin/users/:id", "/admin/users/patient-1", NewAdminHandler(empty).Update, asUser("admin-1"), []byte(`{}`), jsonHeaders)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty update, got %d", resp.Code)
	}
}

func TestAdminHandlerOrders(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/admin/orders", NewAdminHandler(testhelpers.AdminFacadeStub{}).Orders, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	none := testhelpers.AdminFacadeStub{LogFn: func(context.Context, string) ([]model.Order, error) { return nil, nil }}
	resp = performRequest(t, http.MethodGet, "/admin/orders", NewAdminHandler(none).Orders, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty log, got %d", resp.Code)
	}

	forbidden := testhelpers.AdminFacadeStub{LogFn: func(context.Context, string) ([]model.Order, error) { return nil, domainErrors.ErrForbidden }}
	resp = performRequest(t, http.MethodGet, "/admin/orders", NewAdminHandler(forbidden).Orders, asUser("patient-1"), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAdminHandlerOrderDetail(t *testing.T) {
	moID := "mo-1"
	facade := testhelpers.AdminFacadeStub{DetailFn: func(_ context.Context, _ string, orderID string) (*model.AdminOrderDetail, error) {
		return &model.AdminOrderDetail{
			Order:         model.Order{ID: orderID, Status: model.OrderStatusCompleted, MedicineOrderID: &moID},
			Patient:       &model.User{ID: "patient-1", Role: model.RolePatient},
			MedicineOrder: &model.MedicineOrder{ID: moID, OrderID: orderID, TotalPrice: 20000, IsPaid: model.PaymentStatusUnverified},
			Payment:       &model.PaymentSession{ID: "s1", Amount: 20000},
			PaymentState:  model.PaymentStateAwaitingConfirmation,
		}, nil
	}}
	resp := serveRoute(t, http.MethodGet, "/admin/orders/:id", "/admin/orders/o1", NewAdminHandler(facade).Order, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var detail dto.AdminOrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Order.ID != "o1" || detail.Patient == nil || detail.Caregiver != nil {
		t.Fatalf("unexpected participants %+v", detail)
	}
	if detail.MedicineOrder == nil || detail.MedicineOrder.ID != moID || detail.Payment == nil || detail.Payment.ID != "s1" {
		t.Fatalf("unexpected medicine order or payment %+v", detail)
	}
	if detail.PaymentState != string(model.PaymentStateAwaitingConfirmation) {
		t.Fatalf("unexpected payment state %q", detail.PaymentState)
	}
}

func TestAdminHandlerEvidence(t *testing.T) {
	resp := serveRoute(t, http.MethodGet, "/admin/orders/:id/evidence", "/admin/orders/o1/evidence", NewAdminHandler(testhelpers.AdminFacadeStub{}).Evidence, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if resp.Body.String() != "png" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}

	missing := testhelpers.AdminFacadeStub{EvidenceFn: func(context.Context, string, string) (*model.EvidenceFile, error) {
		return nil, domainErrors.ErrNotFound
	}}
	resp = serveRoute(t, http.MethodGet, "/admin/orders/:id/evidence", "/admin/orders/o1/evidence", NewAdminHandler(missing).Evidence, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	broken := testhelpers.AdminFacadeStub{EvidenceFn: func(context.Context, string, string) (*model.EvidenceFile, error) {
		return nil, errors.New("disk")
	}}
	resp = serveRoute(t, http.MethodGet, "/admin/orders/:id/evidence", "/admin/orders/o1/evidence", NewAdminHandler(broken).Evidence, asUser("admin-1"), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
