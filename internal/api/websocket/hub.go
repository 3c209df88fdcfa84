package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/monitoring"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// Subscriber is one open real-time channel owned by the hub
type Subscriber interface {
	ID() string
	Send(ctx context.Context, data []byte) error
}

// Mirror receives every broadcast after subscriber fan-out
type Mirror interface {
	Publish(ctx context.Context, msgType string, data []byte) error
}

// Hub fans messages out to every connected subscriber. Delivery is best
// effort: a failed send is logged and counted but never stops delivery to
// the remaining subscribers and never evicts the failing one. Subscribers
// leave only through Disconnect.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	mirror      Mirror
	logger      logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]Subscriber),
		logger:      log,
	}
}

// SetMirror installs an optional mirror for broadcasts
func (h *Hub) SetMirror(m Mirror) {
	h.mu.Lock()
	h.mirror = m
	h.mu.Unlock()
}

func (h *Hub) Connect(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub.ID()] = sub
	n := len(h.subscribers)
	h.mu.Unlock()

	monitoring.SetActiveSubscribers(n)
	h.logger.Info("Subscriber connected", "subscriber_id", sub.ID(), "total", n)
}

// Disconnect removes sub; removing an unknown subscriber is a no-op
func (h *Hub) Disconnect(sub Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub.ID()]
	delete(h.subscribers, sub.ID())
	n := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		monitoring.SetActiveSubscribers(n)
		h.logger.Info("Subscriber disconnected", "subscriber_id", sub.ID(), "total", n)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) snapshot() ([]Subscriber, Mirror) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := make([]Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		subs = append(subs, s)
	}
	return subs, h.mirror
}

// Broadcast sends msg to every subscriber connected when the call starts and
// returns how many sends succeeded
func (h *Hub) Broadcast(ctx context.Context, msg models.HubMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", "type", msg.Type(), "error", err)
		return 0
	}

	subs, mirror := h.snapshot()
	delivered := 0
	for _, sub := range subs {
		if err := sub.Send(ctx, data); err != nil {
			monitoring.RecordBroadcastSend(msg.Type(), false)
			h.logger.Warn("Broadcast send failed", "subscriber_id", sub.ID(), "type", msg.Type(), "error", err)
			continue
		}
		monitoring.RecordBroadcastSend(msg.Type(), true)
		delivered++
	}

	if mirror != nil {
		if err := mirror.Publish(ctx, msg.Type(), data); err != nil {
			h.logger.Warn("Broadcast mirror publish failed", "type", msg.Type(), "error", err)
		}
	}

	return delivered
}

// Stream pushes next() to sub immediately and then every interval until ctx
// is cancelled or a send fails. A failing next() skips that tick.
func (h *Hub) Stream(ctx context.Context, sub Subscriber, interval time.Duration, next func() (models.HubMessage, error)) error {
	push := func() error {
		msg, err := next()
		if err != nil {
			h.logger.Error("Failed to build stream message", "subscriber_id", sub.ID(), "error", err)
			return nil
		}
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Error("Failed to marshal stream message", "subscriber_id", sub.ID(), "error", err)
			return nil
		}
		if err := sub.Send(ctx, data); err != nil {
			monitoring.RecordBroadcastSend(msg.Type(), false)
			return err
		}
		monitoring.RecordBroadcastSend(msg.Type(), true)
		return nil
	}

	if err := push(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := push(); err != nil {
				return err
			}
		}
	}
}
