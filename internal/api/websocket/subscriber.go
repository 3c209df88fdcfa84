package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsSubscriber adapts a gorilla connection to Subscriber. gorilla allows one
// concurrent writer, so every write holds writeMu.
type wsSubscriber struct {
	id           string
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func NewSubscriber(conn *websocket.Conn, writeTimeout time.Duration) Subscriber {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &wsSubscriber{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadUntilClosed discards inbound frames until the peer goes away, then
// calls onClose. Control frames (ping, close) are handled by gorilla while
// reading.
func ReadUntilClosed(conn *websocket.Conn, maxMessageSize int64, onClose func()) {
	defer onClose()
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
