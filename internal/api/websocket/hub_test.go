package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

type fakeSubscriber struct {
	id   string
	fail bool

	mu       sync.Mutex
	received [][]byte
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(_ context.Context, data []byte) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.mu.Lock()
	f.received = append(f.received, data)
	f.mu.Unlock()
	return nil
}

func (f *fakeSubscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

type fakeMirror struct {
	mu    sync.Mutex
	types []string
}

func (m *fakeMirror) Publish(_ context.Context, msgType string, _ []byte) error {
	m.mu.Lock()
	m.types = append(m.types, msgType)
	m.mu.Unlock()
	return errors.New("nats down")
}

func TestHub_ConnectDisconnect(t *testing.T) {
	h := NewHub(logger.NewNop())
	a := &fakeSubscriber{id: "a"}
	b := &fakeSubscriber{id: "b"}

	h.Connect(a)
	h.Connect(b)
	assert.Equal(t, 2, h.Count())

	h.Disconnect(a)
	h.Disconnect(a)
	assert.Equal(t, 1, h.Count())
}

func TestHub_BroadcastIsolatesFailures(t *testing.T) {
	h := NewHub(logger.NewNop())
	good1 := &fakeSubscriber{id: "s1"}
	bad := &fakeSubscriber{id: "s2", fail: true}
	good2 := &fakeSubscriber{id: "s3"}
	h.Connect(good1)
	h.Connect(bad)
	h.Connect(good2)

	delivered := h.Broadcast(context.Background(), models.HubMessage{"type": "alert", "source": "n8n"})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, good1.count())
	assert.Equal(t, 1, good2.count())
	assert.Equal(t, 3, h.Count(), "failing subscriber must stay registered")
	assert.JSONEq(t, `{"type":"alert","source":"n8n"}`, string(good1.received[0]))
}

func TestHub_BroadcastMirror(t *testing.T) {
	h := NewHub(logger.NewNop())
	m := &fakeMirror{}
	h.SetMirror(m)
	sub := &fakeSubscriber{id: "s"}
	h.Connect(sub)

	assert.Equal(t, 1, h.Broadcast(context.Background(), models.HubMessage{"type": "data_update"}))
	assert.Equal(t, []string{"data_update"}, m.types)
}

func TestHub_BroadcastNoSubscribers(t *testing.T) {
	h := NewHub(logger.NewNop())
	assert.Equal(t, 0, h.Broadcast(context.Background(), models.HubMessage{"type": "alert"}))
}

func TestHub_StreamPushesImmediately(t *testing.T) {
	h := NewHub(logger.NewNop())
	sub := &fakeSubscriber{id: "s"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- h.Stream(ctx, sub, time.Hour, func() (models.HubMessage, error) {
			return models.HubMessage{"type": "metrics_update"}, nil
		})
	}()

	require.Eventually(t, func() bool { return sub.count() == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestHub_StreamTicks(t *testing.T) {
	h := NewHub(logger.NewNop())
	sub := &fakeSubscriber{id: "s"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = h.Stream(ctx, sub, 5*time.Millisecond, func() (models.HubMessage, error) {
			return models.HubMessage{"type": "metrics_update"}, nil
		})
	}()

	require.Eventually(t, func() bool { return sub.count() >= 3 }, time.Second, time.Millisecond)
}

func TestHub_StreamStopsOnSendFailure(t *testing.T) {
	h := NewHub(logger.NewNop())
	err := h.Stream(context.Background(), &fakeSubscriber{id: "s", fail: true}, time.Millisecond, func() (models.HubMessage, error) {
		return models.HubMessage{"type": "metrics_update"}, nil
	})
	assert.Error(t, err)
}

func TestHub_StreamCancelIsPerSubscriber(t *testing.T) {
	h := NewHub(logger.NewNop())
	a := &fakeSubscriber{id: "a"}
	b := &fakeSubscriber{id: "b"}
	next := func() (models.HubMessage, error) { return models.HubMessage{"type": "metrics_update"}, nil }

	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	defer cancelB()

	doneA := make(chan struct{})
	go func() { _ = h.Stream(ctxA, a, 5*time.Millisecond, next); close(doneA) }()
	go func() { _ = h.Stream(ctxB, b, 5*time.Millisecond, next) }()

	cancelA()
	<-doneA
	seen := b.count()
	require.Eventually(t, func() bool { return b.count() > seen+1 }, time.Second, time.Millisecond)
}

func TestWSSubscriber_Send(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	h := NewHub(logger.NewNop())
	connected := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := NewSubscriber(conn, time.Second)
		h.Connect(sub)
		close(connected)
		ReadUntilClosed(conn, 1024, func() {
			h.Disconnect(sub)
			conn.Close()
		})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	<-connected
	assert.Equal(t, 1, h.Broadcast(context.Background(), models.HubMessage{"type": "alert"}))

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"alert"}`, string(data))

	client.Close()
	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
}
