package models

import (
	"encoding/json"
	"time"
)

// Regions of the Brazilian interconnected grid in their fixed reporting order
var Regions = []string{"SE_CO", "S", "NE", "N"}

// GenerationMix is instantaneous generation per source, in MW
type GenerationMix struct {
	Hydro   float64 `json:"hydro"`
	Thermal float64 `json:"thermal"`
	Wind    float64 `json:"wind"`
	Solar   float64 `json:"solar"`
	Nuclear float64 `json:"nuclear"`
	Import  float64 `json:"import"`
}

// MetricsSnapshot is one synthesized reading of the whole grid
type MetricsSnapshot struct {
	Timestamp       time.Time          `json:"timestamp"`
	TotalLoadMW     float64            `json:"total_load_mw"`
	GenerationMix   GenerationMix      `json:"generation_mix"`
	ReservoirLevels map[string]float64 `json:"reservoir_levels"` // region -> percent
	PLDPrices       map[string]float64 `json:"pld_prices"`       // region -> R$/MWh
}

type AlertType string

const (
	AlertHighConsumption AlertType = "high_consumption"
	AlertLowReservoir    AlertType = "low_reservoir"
	AlertHighPLD         AlertType = "high_pld"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AlertRecord is derived from a snapshot and never stored
type AlertRecord struct {
	Type     AlertType `json:"type"`
	Severity string    `json:"severity"`
	Region   string    `json:"region,omitempty"`
	Value    float64   `json:"value"`
	Message  string    `json:"message"`
}

// HistoricalPoint is one hourly sample of the historical series
type HistoricalPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Consumption float64   `json:"consumption"`
	Generation  float64   `json:"generation"`
	Price       float64   `json:"price"`
}

type DataSource string

const (
	SourceONSAPI     DataSource = "ons_api"
	SourceN8NWebhook DataSource = "n8n_webhook"
	SourceManual     DataSource = "manual"
	SourceScheduled  DataSource = "scheduled"
)

// EnergyReading is a manually ingested measurement
type EnergyReading struct {
	Timestamp     time.Time              `json:"timestamp"`
	Source        DataSource             `json:"source"`
	ConsumptionMW float64                `json:"consumption_mw"`
	GenerationMW  float64                `json:"generation_mw"`
	Subsystem     string                 `json:"subsystem"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON reads timestamp leniently through Timestamp
func (r *EnergyReading) UnmarshalJSON(b []byte) error {
	type plain EnergyReading
	aux := struct {
		*plain
		Timestamp *Timestamp `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Timestamp != nil {
		r.Timestamp = aux.Timestamp.Time
	}
	return nil
}

// Validate rejects readings that cannot be physical
func (r *EnergyReading) Validate() error {
	if r.ConsumptionMW < 0 || r.GenerationMW < 0 {
		return NewValidationError("Energy values must be non-negative")
	}
	if r.Subsystem == "" {
		return NewValidationError("Field 'subsystem' is required")
	}
	switch r.Source {
	case SourceONSAPI, SourceN8NWebhook, SourceManual, SourceScheduled:
	case "":
		r.Source = SourceManual
	default:
		return NewValidationError("Unknown data source: " + string(r.Source))
	}
	return nil
}

// Prediction is the placeholder forecast cached under latest_prediction
type Prediction struct {
	PredictionType string    `json:"prediction_type"`
	HorizonHours   int       `json:"horizon_hours"`
	Confidence     float64   `json:"confidence"`
	Values         []float64 `json:"values"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ReportResult is announced to subscribers once a report job completes
type ReportResult struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	URL    string `json:"url"`
}
