package test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sync"

	"github.com/polkiloo/homecare/internal/domain/model"
)

// UploadCall records an evidence upload.
type UploadCall struct {
	Namespace string
	Name      string
	Size      int
}

// EvidenceStorageStub records uploads and removals. Open serves Objects by reference.
type EvidenceStorageStub struct {
	UploadFn func(context.Context, string, string, []byte) (string, error)
	RemoveFn func(context.Context, string) error
	Objects  map[string][]byte

	Uploads []UploadCall
	Removed []string
}

// Upload returns "<namespace>/<name>" unless overridden and keeps the data when Objects is set.
func (s *EvidenceStorageStub) Upload(ctx context.Context, namespace, name string, data []byte) (string, error) {
	s.Uploads = append(s.Uploads, UploadCall{Namespace: namespace, Name: name, Size: len(data)})
	if s.UploadFn != nil {
		return s.UploadFn(ctx, namespace, name, data)
	}
	ref := namespace + "/" + name
	if s.Objects != nil {
		s.Objects[ref] = data
	}
	return ref, nil
}

func (s *EvidenceStorageStub) Remove(ctx context.Context, ref string) error {
	s.Removed = append(s.Removed, ref)
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, ref)
	}
	return nil
}

func (s *EvidenceStorageStub) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	data, ok := s.Objects[ref]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// IssueCall records a virtual account request.
type IssueCall struct {
	Reference string
	Amount    int64
}

// GatewayClientStub issues the static virtual account unless overridden.
type GatewayClientStub struct {
	IssueFn func(context.Context, string, int64) (model.VirtualAccount, error)
	Calls   []IssueCall
}

func (s *GatewayClientStub) IssueVirtualAccount(ctx context.Context, reference string, amount int64) (model.VirtualAccount, error) {
	s.Calls = append(s.Calls, IssueCall{Reference: reference, Amount: amount})
	if s.IssueFn != nil {
		return s.IssueFn(ctx, reference, amount)
	}
	return model.VirtualAccount{Number: model.StaticVirtualAccount, Provider: "stub"}, nil
}

// BroadcasterStub collects message events.
type BroadcasterStub struct {
	Err error

	mu     sync.Mutex
	events []model.MessageEvent
}

func (s *BroadcasterStub) Broadcast(ctx context.Context, event model.MessageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.Err
}

// Events returns a copy of the received events.
func (s *BroadcasterStub) Events() []model.MessageEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MessageEvent(nil), s.events...)
}

// FeedStub is a message feed backed by a caller-controlled channel.
type FeedStub struct {
	C chan model.MessageEvent

	once   sync.Once
	closed chan struct{}
}

// NewFeedStub creates a feed with the given buffer.
func NewFeedStub(buffer int) *FeedStub {
	return &FeedStub{C: make(chan model.MessageEvent, buffer), closed: make(chan struct{})}
}

func (f *FeedStub) Events() <-chan model.MessageEvent {
	return f.C
}

func (f *FeedStub) Close() {
	f.once.Do(func() { close(f.closed) })
}

// Closed is closed once the consumer released the feed.
func (f *FeedStub) Closed() <-chan struct{} {
	return f.closed
}

// FailedCall records an OutboxStore.MarkFailed invocation.
type FailedCall struct {
	ID     string
	Reason string
	Final  bool
}

// OutboxStoreStub hands out configured batches and records the outcome of each event.
type OutboxStoreStub struct {
	Batches [][]model.OutboxEvent
	ClaimFn func(context.Context, int) ([]model.OutboxEvent, error)

	mu        sync.Mutex
	claims    int
	published []string
	failed    []FailedCall
}

// ClaimBatch returns the next configured batch, then nothing.
func (s *OutboxStoreStub) ClaimBatch(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims < len(s.Batches) {
		batch := s.Batches[s.claims]
		s.claims++
		return batch, nil
	}
	return nil, nil
}

func (s *OutboxStoreStub) MarkPublished(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, id)
	return nil
}

func (s *OutboxStoreStub) MarkFailed(ctx context.Context, id string, reason string, final bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, FailedCall{ID: id, Reason: reason, Final: final})
	return nil
}

func (s *OutboxStoreStub) PublishedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.published...)
}

func (s *OutboxStoreStub) FailedCalls() []FailedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FailedCall(nil), s.failed...)
}

// PublisherStub records published events or fails with Err.
type PublisherStub struct {
	Err error

	mu     sync.Mutex
	calls  int
	events []model.OutboxEvent
	closed bool
}

func (p *PublisherStub) Publish(ctx context.Context, event model.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *PublisherStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *PublisherStub) Events() []model.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OutboxEvent(nil), p.events...)
}

func (p *PublisherStub) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
