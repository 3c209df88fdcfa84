// Package messaging mirrors hub broadcasts onto a NATS subject so that other
// services can follow relay events without holding a WebSocket open.
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// Publisher publishes relay events to NATS
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        logger.Logger
}

// NewPublisher connects to the configured NATS server
func NewPublisher(cfg config.NATSConfig, log logger.Logger) (*Publisher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:          conn,
		subjectPrefix: cfg.SubjectPrefix,
		logger:        log,
	}, nil
}

// Subject returns the subject a message of msgType is published on
func Subject(prefix, msgType string) string {
	msgType = strings.NewReplacer(" ", "_", ".", "_", "*", "_", ">", "_").Replace(msgType)
	if msgType == "" {
		msgType = "unknown"
	}
	if prefix == "" {
		return msgType
	}
	return prefix + "." + msgType
}

// Publish sends data on {prefix}.{msgType}
func (p *Publisher) Publish(ctx context.Context, msgType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.conn.Publish(Subject(p.subjectPrefix, msgType), data)
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", "error", err)
		p.conn.Close()
	}
}
