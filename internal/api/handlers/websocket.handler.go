package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	realtime "github.com/aide-systems/aide-core/internal/api/websocket"
	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/logger"
)

type WebSocketHandler struct {
	upgrader  websocket.Upgrader
	hub       *realtime.Hub
	generator *services.MetricsGenerator
	cfg       config.WebSocketConfig
	logger    logger.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, generator *services.MetricsGenerator, cfg config.WebSocketConfig, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Dashboards are served from other origins; CORS policy covers HTTP only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub:       hub,
		generator: generator,
		cfg:       cfg,
		logger:    log,
	}
}

// Stream handles GET /ws. The subscriber receives every hub broadcast plus
// its own metrics_update push until either side closes.
func (h *WebSocketHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := realtime.NewSubscriber(conn, h.cfg.WriteTimeout)
	h.hub.Connect(sub)
	defer h.hub.Disconnect(sub)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go realtime.ReadUntilClosed(conn, h.cfg.MaxMessageSize, cancel)

	err = h.hub.Stream(ctx, sub, h.cfg.PushInterval, func() (models.HubMessage, error) {
		snapshot := h.generator.CurrentSnapshot()
		return models.HubMessage{
			"type":      "metrics_update",
			"data":      snapshot,
			"timestamp": snapshot.Timestamp.Format(time.RFC3339),
		}, nil
	})
	if err != nil {
		h.logger.Debug("Metrics stream ended", "subscriber_id", sub.ID(), "error", err)
	}
}
