package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/cache"
	"github.com/aide-systems/aide-core/pkg/logger"
)

const readingTTL = 24 * time.Hour

type IngestHandler struct {
	store  cache.Store
	hub    services.Broadcaster
	logger logger.Logger
	now    func() time.Time
}

func NewIngestHandler(store cache.Store, hub services.Broadcaster, log logger.Logger) *IngestHandler {
	return &IngestHandler{store: store, hub: hub, logger: log, now: time.Now}
}

// ReadingKey is the cache key of one ingested reading
func ReadingKey(r models.EnergyReading) string {
	return fmt.Sprintf("energy_data:%s:%s", r.Subsystem, r.Timestamp.Format(time.RFC3339))
}

// Ingest handles POST /api/data/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var reading models.EnergyReading
	if err := c.ShouldBindJSON(&reading); err != nil {
		_ = c.Error(models.NewValidationError("Invalid energy reading: " + err.Error()))
		return
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = h.now()
	}
	if err := reading.Validate(); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Set(ctx, ReadingKey(reading), reading, readingTTL); err != nil {
		h.logger.Warn("Failed to cache energy reading", "subsystem", reading.Subsystem, "error", err)
	}
	h.hub.Broadcast(ctx, models.HubMessage{"type": "data_ingestion", "data": reading})

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Data ingested successfully"})
}
