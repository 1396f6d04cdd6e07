package test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[string]*model.User
	Next  int
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub(users ...model.User) *UserRepositoryStub {
	s := &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[string]*model.User),
		Next:  1,
	}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add stores the user as is.
func (s *UserRepositoryStub) Add(user model.User) {
	u := user
	if u.Login == "" {
		u.Login = u.ID
	}
	s.Users[u.Login] = &u
	s.ByID[u.ID] = &u
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := model.User{ID: fmt.Sprintf("user-%d", s.Next), Login: login, PasswordHash: passwordHash, Role: role, Approval: model.InitialApproval(role)}
	s.Next++
	s.Add(user)
	return s.ByID[user.ID], nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns matching users ordered by id.
func (s *UserRepositoryStub) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.User
	for _, u := range s.ByID {
		if filter.Matches(*u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *UserRepositoryStub) SetApproval(ctx context.Context, id string, status model.ApprovalStatus) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Approval = status
	return nil
}

// Update applies non-empty fields and keeps the login index in sync.
func (s *UserRepositoryStub) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if update.Login != "" && update.Login != user.Login {
		if _, taken := s.Users[update.Login]; taken {
			return nil, domainErrors.ErrAlreadyExists
		}
		delete(s.Users, user.Login)
		user.Login = update.Login
		s.Users[user.Login] = user
	}
	if update.Role != "" {
		user.Role = update.Role
	}
	if update.Approval != "" {
		user.Approval = update.Approval
	}
	out := *user
	return &out, nil
}

// CompleteCall records an OrderRepository.Complete invocation.
type CompleteCall struct {
	OrderID        string
	ProofOfService string
	CompletedAt    time.Time
	Event          model.OutboxEvent
}

// OrderRepositoryStub keeps orders in a map and lets tests override any method.
type OrderRepositoryStub struct {
	Orders map[string]*model.Order

	CreateFn   func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn  func(context.Context, string) (*model.Order, error)
	ListFn     func(context.Context, string) ([]model.Order, error)
	SetRateFn  func(context.Context, string, float64) error
	CancelFn   func(context.Context, string) error
	CompleteFn func(context.Context, string, string, time.Time, model.OutboxEvent) error

	Completed []CompleteCall
	Canceled  []string
}

// NewOrderRepositoryStub stores copies of the given orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
	for _, o := range orders {
		order := o
		s.Orders[order.ID] = &order
	}
	return s
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	created := *order
	if created.ID == "" {
		created.ID = fmt.Sprintf("order-%d", len(s.Orders)+1)
	}
	created.Status = model.OrderStatusOngoing
	s.Orders[created.ID] = &created
	out := created
	return &out, nil
}

// GetByID returns a copy so callers cannot mutate stored state.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *order
	return &out, nil
}

func (s *OrderRepositoryStub) ListByParticipant(ctx context.Context, userID string) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	var out []model.Order
	for _, o := range s.Orders {
		if o.HasParticipant(userID) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.Orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *OrderRepositoryStub) SetRate(ctx context.Context, orderID string, rate float64) error {
	if s.SetRateFn != nil {
		return s.SetRateFn(ctx, orderID, rate)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.Rate != nil {
		return domainErrors.ErrAlreadyRated
	}
	order.Rate = &rate
	return nil
}

func (s *OrderRepositoryStub) Cancel(ctx context.Context, orderID string) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	order, ok := s.Orders[orderID]
	if !ok || !order.Ongoing() {
		return domainErrors.ErrOrderClosed
	}
	order.Status = model.OrderStatusCanceled
	s.Canceled = append(s.Canceled, orderID)
	return nil
}

// Complete mirrors the conditional update: only ongoing, rated orders complete.
func (s *OrderRepositoryStub) Complete(ctx context.Context, orderID, proof string, at time.Time, event model.OutboxEvent) error {
	s.Completed = append(s.Completed, CompleteCall{OrderID: orderID, ProofOfService: proof, CompletedAt: at, Event: event})
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, orderID, proof, at, event)
	}
	order, ok := s.Orders[orderID]
	if !ok || !order.Ongoing() || !order.Rated() {
		return domainErrors.ErrOrderClosed
	}
	order.Status = model.OrderStatusCompleted
	order.ProofOfService = &proof
	order.CompletedAt = &at
	return nil
}

// MedicineRepositoryStub serves a fixed catalog.
type MedicineRepositoryStub struct {
	Items []model.Medicine

	ListFn     func(context.Context) ([]model.Medicine, error)
	GetByIDsFn func(context.Context, []string) ([]model.Medicine, error)
	CreateFn   func(context.Context, *model.Medicine) (*model.Medicine, error)

	SearchLimit int
	Created     []model.Medicine
}

func (s *MedicineRepositoryStub) List(ctx context.Context) ([]model.Medicine, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	return s.Items, nil
}

// Search matches names case-insensitively.
func (s *MedicineRepositoryStub) Search(ctx context.Context, query string, limit int) ([]model.Medicine, error) {
	s.SearchLimit = limit
	var out []model.Medicine
	for _, m := range s.Items {
		if strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MedicineRepositoryStub) GetByIDs(ctx context.Context, ids []string) ([]model.Medicine, error) {
	if s.GetByIDsFn != nil {
		return s.GetByIDsFn(ctx, ids)
	}
	var out []model.Medicine
	for _, m := range s.Items {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (s *MedicineRepositoryStub) Create(ctx context.Context, medicine *model.Medicine) (*model.Medicine, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, medicine)
	}
	created := *medicine
	if created.ID == "" {
		created.ID = fmt.Sprintf("med-%d", len(s.Items)+1)
	}
	s.Items = append(s.Items, created)
	s.Created = append(s.Created, created)
	return &created, nil
}

// MedicineOrderRepositoryStub stores headers built from drafts.
type MedicineOrderRepositoryStub struct {
	Orders map[string]*model.MedicineOrder

	AttachFn  func(context.Context, model.MedicineOrderDraft) (*model.MedicineOrder, bool, error)
	GetByIDFn func(context.Context, string) (*model.MedicineOrder, error)

	Drafts []model.MedicineOrderDraft
}

// NewMedicineOrderRepositoryStub stores copies of the given headers.
func NewMedicineOrderRepositoryStub(orders ...model.MedicineOrder) *MedicineOrderRepositoryStub {
	s := &MedicineOrderRepositoryStub{Orders: make(map[string]*model.MedicineOrder)}
	for _, o := range orders {
		order := o
		s.Orders[order.ID] = &order
	}
	return s
}

func (s *MedicineOrderRepositoryStub) AttachToOrder(ctx context.Context, draft model.MedicineOrderDraft) (*model.MedicineOrder, bool, error) {
	s.Drafts = append(s.Drafts, draft)
	if s.AttachFn != nil {
		return s.AttachFn(ctx, draft)
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*model.MedicineOrder)
	}
	for _, existing := range s.Orders {
		if existing.IdempotencyKey == draft.IdempotencyKey {
			out := *existing
			return &out, true, nil
		}
	}
	header := &model.MedicineOrder{
		ID:             draft.ID,
		OrderID:        draft.OrderID,
		IdempotencyKey: draft.IdempotencyKey,
		TotalQty:       draft.Totals.TotalQty,
		SubTotal:       draft.Totals.SubTotal,
		DeliveryFee:    draft.Totals.DeliveryFee,
		TotalPrice:     draft.Totals.TotalPrice,
		IsPaid:         model.PaymentStatusUnverified,
		Lines:          draft.Lines,
	}
	s.Orders[header.ID] = header
	out := *header
	return &out, false, nil
}

func (s *MedicineOrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.MedicineOrder, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *order
	return &out, nil
}

// ConfirmCall records a PaymentRepository.Confirm invocation.
type ConfirmCall struct {
	SessionID string
	Via       model.ConfirmationSource
	At        time.Time
}

// FinalizeCall records a PaymentRepository.Finalize invocation.
type FinalizeCall struct {
	SessionID string
	PaidAt    time.Time
	Event     model.OutboxEvent
}

// PaymentRepositoryStub keeps sessions in memory. Finalize also settles the header
// in Headers when it is set.
type PaymentRepositoryStub struct {
	Sessions map[string]*model.PaymentSession
	Headers  *MedicineOrderRepositoryStub

	CreateErr   error
	ConfirmFn   func(context.Context, string, model.ConfirmationSource, time.Time) error
	FinalizeFn  func(context.Context, string, time.Time, model.OutboxEvent) error
	OpenErr     error
	Confirms    []ConfirmCall
	Finalizes   []FinalizeCall
	CreateCalls int
}

// NewPaymentRepositoryStub stores copies of the given sessions.
func NewPaymentRepositoryStub(sessions ...model.PaymentSession) *PaymentRepositoryStub {
	s := &PaymentRepositoryStub{Sessions: make(map[string]*model.PaymentSession)}
	for _, ps := range sessions {
		session := ps
		s.Sessions[session.ID] = &session
	}
	return s
}

func (s *PaymentRepositoryStub) CreateSession(ctx context.Context, session *model.PaymentSession) error {
	s.CreateCalls++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if s.Sessions == nil {
		s.Sessions = make(map[string]*model.PaymentSession)
	}
	stored := *session
	s.Sessions[stored.ID] = &stored
	return nil
}

func (s *PaymentRepositoryStub) GetSession(ctx context.Context, id string) (*model.PaymentSession, error) {
	session, ok := s.Sessions[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *session
	return &out, nil
}

// OpenSession returns the newest unfinalized session of the header.
func (s *PaymentRepositoryStub) OpenSession(ctx context.Context, medicineOrderID string) (*model.PaymentSession, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	var latest *model.PaymentSession
	for _, session := range s.Sessions {
		if session.MedicineOrderID != medicineOrderID || session.Finalized() {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (s *PaymentRepositoryStub) Confirm(ctx context.Context, sessionID string, via model.ConfirmationSource, at time.Time) error {
	s.Confirms = append(s.Confirms, ConfirmCall{SessionID: sessionID, Via: via, At: at})
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, sessionID, via, at)
	}
	session, ok := s.Sessions[sessionID]
	if !ok || session.Finalized() {
		return domainErrors.ErrPaymentFinalized
	}
	if session.ConfirmedAt == nil {
		session.ConfirmedAt = &at
		session.ConfirmedVia = &via
	}
	return nil
}

func (s *PaymentRepositoryStub) Finalize(ctx context.Context, sessionID string, paidAt time.Time, event model.OutboxEvent) error {
	s.Finalizes = append(s.Finalizes, FinalizeCall{SessionID: sessionID, PaidAt: paidAt, Event: event})
	if s.FinalizeFn != nil {
		return s.FinalizeFn(ctx, sessionID, paidAt, event)
	}
	session, ok := s.Sessions[sessionID]
	if !ok || session.Finalized() {
		return domainErrors.ErrPaymentFinalized
	}
	if !session.Confirmed() {
		return domainErrors.ErrPaymentNotConfirmed
	}
	if s.Headers != nil {
		header, ok := s.Headers.Orders[session.MedicineOrderID]
		if !ok || header.IsPaid != model.PaymentStatusUnverified {
			return domainErrors.ErrAlreadyPaid
		}
		header.IsPaid = model.PaymentStatusVerified
		header.PaidAt = &paidAt
	}
	session.FinalizedAt = &paidAt
	return nil
}

// MessageRepositoryStub keeps messages in insertion order.
// BeforeSnapshot runs at the start of UnreadIDs to interleave writes with a snapshot.
type MessageRepositoryStub struct {
	Messages       []model.Message
	Err            error
	BeforeSnapshot func()
}

func (s *MessageRepositoryStub) Create(ctx context.Context, message *model.Message) (*model.Message, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	stored := *message
	stored.IsRead = false
	stored.CreatedAt = time.Unix(int64(len(s.Messages)), 0).UTC()
	s.Messages = append(s.Messages, stored)
	return &stored, nil
}

func (s *MessageRepositoryStub) CountUnread(ctx context.Context, recipientID string) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	count := 0
	for _, m := range s.Messages {
		if m.RecipientID == recipientID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MessageRepositoryStub) UnreadIDs(ctx context.Context, recipientID string) ([]string, error) {
	if s.BeforeSnapshot != nil {
		s.BeforeSnapshot()
	}
	if s.Err != nil {
		return nil, s.Err
	}
	var ids []string
	for _, m := range s.Messages {
		if m.RecipientID == recipientID && !m.IsRead {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// MarkRead flags unread messages of the recipient. Empty ids select every unread message.
func (s *MessageRepositoryStub) MarkRead(ctx context.Context, recipientID string, ids []string) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	changed := []string{}
	for i := range s.Messages {
		m := &s.Messages[i]
		if m.RecipientID != recipientID || m.IsRead {
			continue
		}
		if len(ids) > 0 && !wanted[m.ID] {
			continue
		}
		m.IsRead = true
		changed = append(changed, m.ID)
	}
	return changed, nil
}
