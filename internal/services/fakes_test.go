package services

import (
	"context"
	"sync"
	"time"

	"github.com/aide-systems/aide-core/internal/models"
)

type postCall struct {
	Body    interface{}
	Timeout time.Duration
	Options callOptions
}

type fakePoster struct {
	mu    sync.Mutex
	calls []postCall
	resp  *models.StructuredChatResponse
	err   error
}

func (f *fakePoster) Post(ctx context.Context, body interface{}, timeout time.Duration, opts ...CallOption) (*models.StructuredChatResponse, error) {
	o := callOptions{headers: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, postCall{Body: body, Timeout: timeout, Options: o})
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return models.NewStructuredChatResponse("ok"), nil
}

func (f *fakePoster) Calls() []postCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postCall(nil), f.calls...)
}

type fakeHub struct {
	mu       sync.Mutex
	messages []models.HubMessage
	notify   chan models.HubMessage
}

func newFakeHub() *fakeHub {
	return &fakeHub{notify: make(chan models.HubMessage, 16)}
}

func (h *fakeHub) Broadcast(ctx context.Context, msg models.HubMessage) int {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()
	h.notify <- msg
	return 1
}

func (h *fakeHub) Messages() []models.HubMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.HubMessage(nil), h.messages...)
}

type fakeQueue struct {
	payloads []map[string]interface{}
}

func (q *fakeQueue) Enqueue(payload map[string]interface{}) {
	q.payloads = append(q.payloads, payload)
}
