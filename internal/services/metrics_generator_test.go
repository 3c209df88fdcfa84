package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aide-systems/aide-core/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMetricsGenerator_CurrentSnapshotShape(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	g := NewMetricsGenerator(fixedClock(now), 42)

	s := g.CurrentSnapshot()
	assert.Equal(t, now, s.Timestamp)
	assert.Len(t, s.ReservoirLevels, len(models.Regions))
	assert.Len(t, s.PLDPrices, len(models.Regions))
	for _, region := range models.Regions {
		assert.Contains(t, s.ReservoirLevels, region)
		assert.Contains(t, s.PLDPrices, region)
	}
	assert.Equal(t, 1990.0, s.GenerationMix.Nuclear)
	// peak hour multiplies the base load by 1.0 +- noise
	assert.InDelta(t, baseLoadMW, s.TotalLoadMW, baseLoadMW*0.2)
}

func TestMetricsGenerator_SolarIsZeroAtNight(t *testing.T) {
	g := NewMetricsGenerator(fixedClock(time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)), 1)
	assert.Equal(t, 0.0, g.CurrentSnapshot().GenerationMix.Solar)
}

func TestMetricsGenerator_SameSeedSameOutput(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := NewMetricsGenerator(fixedClock(now), 7).CurrentSnapshot()
	b := NewMetricsGenerator(fixedClock(now), 7).CurrentSnapshot()
	assert.Equal(t, a, b)
}

func TestMetricsGenerator_Historical(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewMetricsGenerator(fixedClock(now), 3)

	start, end, points := g.Historical(24)
	assert.Equal(t, now.Add(-24*time.Hour), start)
	assert.Equal(t, now, end)
	require.Len(t, points, 25)
	assert.Equal(t, start, points[0].Timestamp)
	assert.Equal(t, end, points[24].Timestamp)
	for i := 1; i < len(points); i++ {
		assert.Equal(t, time.Hour, points[i].Timestamp.Sub(points[i-1].Timestamp))
	}

	_, _, zero := g.Historical(0)
	assert.Len(t, zero, 1)
}

func TestMetricsGenerator_Forecast(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewMetricsGenerator(fixedClock(now), 5)

	p := g.Forecast(map[string]interface{}{})
	assert.Equal(t, "demand_forecast", p.PredictionType)
	assert.Equal(t, 24, p.HorizonHours)
	assert.Equal(t, now, p.GeneratedAt)
	assert.GreaterOrEqual(t, p.Confidence, 0.8)
	assert.LessOrEqual(t, p.Confidence, 0.9)
	require.Len(t, p.Values, forecastPoints)
	for _, v := range p.Values {
		assert.GreaterOrEqual(t, v, 60000.0)
		assert.LessOrEqual(t, v, 70000.0)
	}

	p = g.Forecast(map[string]interface{}{"type": "price_forecast", "horizon": float64(48)})
	assert.Equal(t, "price_forecast", p.PredictionType)
	assert.Equal(t, 48, p.HorizonHours)
}
