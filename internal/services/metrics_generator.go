package services

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/aide-systems/aide-core/internal/models"
)

const (
	baseLoadMW       = 65000.0
	historicalBaseMW = 60000.0
	forecastPoints   = 24
)

var (
	baseReservoirLevels = map[string]float64{"SE_CO": 68.5, "S": 82.3, "NE": 54.7, "N": 91.2}
	basePLDPrices       = map[string]float64{"SE_CO": 145.32, "S": 142.18, "NE": 89.45, "N": 78.92}
)

// MetricsGenerator synthesizes grid readings. Only the shape of the output
// and the alert thresholds downstream are stable; the noise is not.
type MetricsGenerator struct {
	now func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewMetricsGenerator builds a generator with an injectable clock. A zero
// seed draws a random one.
func NewMetricsGenerator(now func() time.Time, seed int64) *MetricsGenerator {
	if now == nil {
		now = time.Now
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MetricsGenerator{
		now:   now,
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

// normal draws from N(0, sd); callers hold g.mu
func (g *MetricsGenerator) normal(sd float64) float64 {
	return g.rng.NormFloat64() * sd
}

func hourFactor(hour int) float64 {
	return 1 + 0.3*math.Sin(float64(hour-14)*math.Pi/12)
}

func (g *MetricsGenerator) CurrentSnapshot() models.MetricsSnapshot {
	now := g.now()
	hour := now.Hour()

	g.mu.Lock()
	defer g.mu.Unlock()

	s := models.MetricsSnapshot{
		Timestamp:   now,
		TotalLoadMW: baseLoadMW * hourFactor(hour) * (1 + g.normal(0.02)),
		GenerationMix: models.GenerationMix{
			Hydro:   42850 + g.normal(1000),
			Thermal: 8750 + g.normal(500),
			Wind:    12300 + g.normal(800),
			Solar:   4200 * math.Max(0, math.Sin(float64(hour-6)*math.Pi/12)),
			Nuclear: 1990,
			Import:  890 + g.normal(100),
		},
		ReservoirLevels: make(map[string]float64, len(models.Regions)),
		PLDPrices:       make(map[string]float64, len(models.Regions)),
	}
	for _, region := range models.Regions {
		s.ReservoirLevels[region] = baseReservoirLevels[region] + g.normal(2)
	}
	for _, region := range models.Regions {
		s.PLDPrices[region] = basePLDPrices[region] + g.normal(10)
	}
	return s
}

// Historical returns hourly points from now-hours to now inclusive
func (g *MetricsGenerator) Historical(hours int) (start, end time.Time, points []models.HistoricalPoint) {
	end = g.now()
	start = end.Add(-time.Duration(hours) * time.Hour)

	g.mu.Lock()
	defer g.mu.Unlock()

	points = make([]models.HistoricalPoint, 0, hours+1)
	for ts := start; !ts.After(end); ts = ts.Add(time.Hour) {
		f := hourFactor(ts.Hour())
		points = append(points, models.HistoricalPoint{
			Timestamp:   ts,
			Consumption: historicalBaseMW * f * (1 + g.normal(0.02)),
			Generation:  historicalBaseMW * f * (1 + g.normal(0.02)),
			Price:       145 + g.normal(20),
		})
	}
	return start, end, points
}

// Forecast produces the placeholder prediction for the ml_prediction
// workflow. payload.type and payload.horizon override the defaults.
func (g *MetricsGenerator) Forecast(payload map[string]interface{}) models.Prediction {
	p := models.Prediction{
		PredictionType: "demand_forecast",
		HorizonHours:   24,
		GeneratedAt:    g.now(),
	}
	if t, ok := payload["type"].(string); ok && t != "" {
		p.PredictionType = t
	}
	if h, ok := payload["horizon"].(float64); ok && h > 0 {
		p.HorizonHours = int(h)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p.Confidence = 0.85 + g.faker.Float64Range(-0.05, 0.05)
	p.Values = make([]float64, forecastPoints)
	for i := range p.Values {
		p.Values[i] = g.faker.Float64Range(60000, 70000)
	}
	return p
}
