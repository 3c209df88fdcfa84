package services

import (
	"fmt"

	"github.com/aide-systems/aide-core/internal/models"
)

const (
	highConsumptionMW      = 70000.0
	lowReservoirPercent    = 60.0
	criticalReservoirLevel = 50.0
	highPLDPrice           = 200.0
)

// EvaluateAlerts derives alerts from a snapshot: consumption first, then
// reservoirs, then prices, each in fixed region order
func EvaluateAlerts(s models.MetricsSnapshot) []models.AlertRecord {
	alerts := []models.AlertRecord{}

	if s.TotalLoadMW > highConsumptionMW {
		alerts = append(alerts, models.AlertRecord{
			Type:     models.AlertHighConsumption,
			Severity: models.SeverityWarning,
			Value:    s.TotalLoadMW,
			Message:  fmt.Sprintf("High consumption: %.0f MW", s.TotalLoadMW),
		})
	}

	for _, region := range models.Regions {
		level, ok := s.ReservoirLevels[region]
		if !ok || level >= lowReservoirPercent {
			continue
		}
		severity := models.SeverityWarning
		if level < criticalReservoirLevel {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, models.AlertRecord{
			Type:     models.AlertLowReservoir,
			Severity: severity,
			Region:   region,
			Value:    level,
			Message:  fmt.Sprintf("Reservoir %s at %.1f%%", region, level),
		})
	}

	for _, region := range models.Regions {
		price, ok := s.PLDPrices[region]
		if !ok || price <= highPLDPrice {
			continue
		}
		alerts = append(alerts, models.AlertRecord{
			Type:     models.AlertHighPLD,
			Severity: models.SeverityWarning,
			Region:   region,
			Value:    price,
			Message:  fmt.Sprintf("PLD %s: R$ %.2f/MWh", region, price),
		})
	}

	return alerts
}

// CriticalAlerts filters alerts down to the critical ones
func CriticalAlerts(alerts []models.AlertRecord) []models.AlertRecord {
	var out []models.AlertRecord
	for _, a := range alerts {
		if a.Severity == models.SeverityCritical {
			out = append(out, a)
		}
	}
	return out
}
