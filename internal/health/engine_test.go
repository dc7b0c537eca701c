package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

type fakeScoreStore struct {
	scores map[string]float64
	err    error
}

func (s *fakeScoreStore) UpdateHealthScore(_ context.Context, networkID string, score float64) error {
	if s.err != nil {
		return s.err
	}
	if s.scores == nil {
		s.scores = map[string]float64{}
	}
	s.scores[networkID] = score
	return nil
}

func f(v float64) *float64 { return &v }

func testNetwork() *models.Network {
	return &models.Network{
		NetworkID:        "net_abc123def456",
		Organization:     "ACME Corporation",
		Name:             "ACME Backbone",
		NetworkType:      models.NetworkTypeSatellite,
		Status:           "active",
		SLAUptimeTarget:  99.9,
		SLALatencyTarget: 100,
	}
}

// readings builds n readings, the first active of which are active and the
// rest offline, all sharing the given latency and packet loss.
func buildReadings(n, active int, latency, loss *float64) []models.TelemetryReading {
	readings := make([]models.TelemetryReading, n)
	for i := range readings {
		status := models.DeviceStatusOffline
		if i < active {
			status = models.DeviceStatusActive
		}
		readings[i] = models.TelemetryReading{
			DeviceID:          "device-001",
			Organization:      "ACME Corporation",
			Status:            status,
			LatencyMS:         latency,
			PacketLossPercent: loss,
		}
	}
	return readings
}

func TestEngine_Score(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	// 10 readings, 9 active, avg latency 120 against a 100ms target, 0.5%
	// loss, uptime 90% against a 99.9% target:
	// 100 - 2.0 (latency) - 1.5 (loss) - 19.8 (uptime) = 76.7
	snapshot := engine.Score(testNetwork(), buildReadings(10, 9, f(120), f(0.5)))

	require.NotNil(t, snapshot.HealthScore)
	assert.Equal(t, 76.7, *snapshot.HealthScore)
	assert.Equal(t, 10, snapshot.TotalReadings)
	assert.Equal(t, 90.0, *snapshot.UptimePercent)
	assert.Equal(t, 120.0, *snapshot.AvgLatencyMS)
	assert.Equal(t, 0.5, *snapshot.AvgPacketLossPercent)
}

func TestEngine_Score_PerfectWindow(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	snapshot := engine.Score(testNetwork(), buildReadings(10, 10, f(50), nil))

	require.NotNil(t, snapshot.HealthScore)
	assert.Equal(t, 100.0, *snapshot.HealthScore)
}

func TestEngine_Score_ZeroPacketLossStillDefined(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	// A measured 0.0% loss deducts nothing but is still a defined average.
	snapshot := engine.Score(testNetwork(), buildReadings(10, 10, nil, f(0)))

	require.NotNil(t, snapshot.HealthScore)
	assert.Equal(t, 100.0, *snapshot.HealthScore)
	require.NotNil(t, snapshot.AvgPacketLossPercent)
	assert.Equal(t, 0.0, *snapshot.AvgPacketLossPercent)
}

func TestEngine_Score_DeductionCaps(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	// Pathological window: all caps engaged, clamped at 0.
	snapshot := engine.Score(testNetwork(), buildReadings(10, 0, f(100000), f(100)))

	require.NotNil(t, snapshot.HealthScore)
	assert.Equal(t, 0.0, *snapshot.HealthScore)
}

func TestEngine_Score_MissingMetricsExcluded(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	// Latency present on a single reading; the average uses only that sample
	// instead of treating absent values as zero.
	readings := buildReadings(4, 4, nil, nil)
	readings[0].LatencyMS = f(200)

	snapshot := engine.Score(testNetwork(), readings)

	require.NotNil(t, snapshot.AvgLatencyMS)
	assert.Equal(t, 200.0, *snapshot.AvgLatencyMS)
	// 100 - min(30, (200-100)/10) = 90
	assert.Equal(t, 90.0, *snapshot.HealthScore)
}

func TestEngine_Score_ZeroReadings(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())

	snapshot := engine.Score(testNetwork(), nil)

	assert.Nil(t, snapshot.HealthScore)
	assert.Nil(t, snapshot.UptimePercent)
	assert.Nil(t, snapshot.AvgLatencyMS)
	assert.Zero(t, snapshot.TotalReadings)
}

func TestEngine_Score_Idempotent(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	readings := buildReadings(10, 9, f(120), f(0.5))

	first := engine.Score(testNetwork(), readings)
	second := engine.Score(testNetwork(), readings)

	assert.Equal(t, *first.HealthScore, *second.HealthScore)
	assert.Equal(t, *first.UptimePercent, *second.UptimePercent)
}

func TestEngine_ScoreAndPersist(t *testing.T) {
	store := &fakeScoreStore{}
	engine := NewEngine(store, clockwork.NewFakeClock())
	network := testNetwork()

	snapshot, err := engine.ScoreAndPersist(context.Background(), network, Aggregate(buildReadings(10, 9, f(120), f(0.5))))
	require.NoError(t, err)
	require.NotNil(t, snapshot.HealthScore)
	assert.Equal(t, 76.7, store.scores[network.NetworkID])
}

func TestEngine_ScoreAndPersist_ZeroReadingsSkipsWrite(t *testing.T) {
	store := &fakeScoreStore{}
	engine := NewEngine(store, clockwork.NewFakeClock())

	snapshot, err := engine.ScoreAndPersist(context.Background(), testNetwork(), models.TelemetryAggregate{})
	require.NoError(t, err)
	assert.Nil(t, snapshot.HealthScore)
	assert.Empty(t, store.scores)
}

func TestEngine_ScoreAndPersist_StoreError(t *testing.T) {
	store := &fakeScoreStore{err: errors.New("disk full")}
	engine := NewEngine(store, clockwork.NewFakeClock())

	_, err := engine.ScoreAndPersist(context.Background(), testNetwork(), Aggregate(buildReadings(5, 5, nil, nil)))
	assert.Error(t, err)
}

func TestEngine_SLAReport(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	network := testNetwork()
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	report, err := engine.SLAReport(network, buildReadings(10, 10, f(80), nil), start, end)
	require.NoError(t, err)

	assert.Equal(t, network.NetworkID, report.NetworkID)
	assert.Equal(t, 10, report.TotalReadings)
	assert.Equal(t, 10, report.LatencySamples)
	assert.True(t, report.Compliance.UptimeCompliance)
	require.NotNil(t, report.Compliance.LatencyCompliance)
	assert.True(t, *report.Compliance.LatencyCompliance)
	assert.Equal(t, models.SLACompliant, report.Status)
}

func TestEngine_SLAReport_LatencyBreach(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	end := time.Now().UTC()

	report, err := engine.SLAReport(testNetwork(), buildReadings(10, 10, f(150), nil), end.AddDate(0, 0, -30), end)
	require.NoError(t, err)

	assert.True(t, report.Compliance.UptimeCompliance)
	require.NotNil(t, report.Compliance.LatencyCompliance)
	assert.False(t, *report.Compliance.LatencyCompliance)
	assert.Equal(t, models.SLANonCompliant, report.Status)
}

func TestEngine_SLAReport_NoLatencySamples(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	end := time.Now().UTC()

	report, err := engine.SLAReport(testNetwork(), buildReadings(10, 10, nil, nil), end.AddDate(0, 0, -30), end)
	require.NoError(t, err)

	// No samples: no latency verdict, and the absent verdict does not block
	// overall compliance.
	assert.Nil(t, report.Compliance.LatencyCompliance)
	assert.Zero(t, report.LatencySamples)
	assert.Nil(t, report.ActualPerformance.AvgLatencyMS)
	assert.Equal(t, models.SLACompliant, report.Status)
}

func TestEngine_SLAReport_UptimeBreach(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	end := time.Now().UTC()

	report, err := engine.SLAReport(testNetwork(), buildReadings(10, 5, nil, nil), end.AddDate(0, 0, -30), end)
	require.NoError(t, err)

	assert.False(t, report.Compliance.UptimeCompliance)
	assert.Equal(t, 50.0, report.ActualPerformance.UptimePercent)
	assert.Equal(t, models.SLANonCompliant, report.Status)
}

func TestEngine_SLAReport_NoReadings(t *testing.T) {
	engine := NewEngine(&fakeScoreStore{}, clockwork.NewFakeClock())
	end := time.Now().UTC()

	_, err := engine.SLAReport(testNetwork(), nil, end.AddDate(0, 0, -30), end)
	assert.True(t, errors.Is(err, ErrNoReadings))
}

func TestAggregate(t *testing.T) {
	readings := []models.TelemetryReading{
		{Status: models.DeviceStatusActive, LatencyMS: f(100), PacketLossPercent: f(1)},
		{Status: models.DeviceStatusActive, LatencyMS: f(200)},
		{Status: models.DeviceStatusDegraded, PacketLossPercent: f(3)},
	}

	agg := Aggregate(readings)

	assert.Equal(t, 3, agg.Count)
	assert.Equal(t, 2, agg.ActiveCount)
	require.NotNil(t, agg.AvgLatencyMS)
	assert.Equal(t, 150.0, *agg.AvgLatencyMS)
	require.NotNil(t, agg.AvgPacketLossPercent)
	assert.Equal(t, 2.0, *agg.AvgPacketLossPercent)
}
