// Package health derives bounded health scores and SLA compliance verdicts
// from aggregated telemetry windows.
package health

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// ErrNoReadings marks a window with zero telemetry samples. This is a distinct
// reportable state, not a failure: callers translate it into a zero-reading
// response instead of a score.
var ErrNoReadings = errors.New("no telemetry readings in window")

// Deduction caps and weights of the scoring algorithm.
const (
	maxLatencyDeduction    = 30.0
	maxPacketLossDeduction = 30.0
	maxUptimeDeduction     = 40.0
	packetLossWeight       = 3.0
	uptimeWeight           = 2.0
	latencyDivisor         = 10.0
)

// NetworkScoreStore persists the derived health score back onto the network
// record. Concurrent recomputations race by design: last write wins.
type NetworkScoreStore interface {
	UpdateHealthScore(ctx context.Context, networkID string, score float64) error
}

// Engine computes health snapshots and SLA reports.
type Engine struct {
	networks NetworkScoreStore
	clock    clockwork.Clock
}

func NewEngine(networks NetworkScoreStore, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		networks: networks,
		clock:    clock,
	}
}

// Aggregate reduces raw readings to the window aggregate the scoring algorithm
// consumes. Nil metric values are excluded from their average entirely rather
// than counted as zero.
func Aggregate(readings []models.TelemetryReading) models.TelemetryAggregate {
	agg := models.TelemetryAggregate{Count: len(readings)}

	var latencySum, lossSum float64
	var latencyN, lossN int
	for _, r := range readings {
		if r.LatencyMS != nil {
			latencySum += *r.LatencyMS
			latencyN++
		}
		if r.PacketLossPercent != nil {
			lossSum += *r.PacketLossPercent
			lossN++
		}
		if r.Status == models.DeviceStatusActive {
			agg.ActiveCount++
		}
	}

	if latencyN > 0 {
		avg := latencySum / float64(latencyN)
		agg.AvgLatencyMS = &avg
	}
	if lossN > 0 {
		avg := lossSum / float64(lossN)
		agg.AvgPacketLossPercent = &avg
	}

	return agg
}

// Score computes a health snapshot from the raw readings in the window. It is
// a pure function of the network's SLA targets and the readings: scoring the
// same window twice yields the same snapshot (modulo the computed-at stamp).
func (e *Engine) Score(network *models.Network, readings []models.TelemetryReading) models.HealthSnapshot {
	return e.ScoreAggregate(network, Aggregate(readings))
}

// ScoreAggregate computes a health snapshot from a precomputed window
// aggregate, as produced by the telemetry store or by Aggregate.
//
// Starting from 100, it deducts for average latency above the SLA target
// (capped at 30), for any defined packet loss (capped at 30), and for uptime
// below the SLA target (capped at 40), then clamps to [0, 100]. With zero
// readings in the window there is no score at all.
func (e *Engine) ScoreAggregate(network *models.Network, agg models.TelemetryAggregate) models.HealthSnapshot {
	snapshot := models.HealthSnapshot{
		NetworkID:     network.NetworkID,
		Organization:  network.Organization,
		Status:        network.Status,
		TotalReadings: agg.Count,
		LastUpdated:   e.clock.Now().UTC(),
	}

	if agg.Count == 0 {
		return snapshot
	}

	uptime := float64(agg.ActiveCount) / float64(agg.Count) * 100

	health := 100.0

	if agg.AvgLatencyMS != nil && *agg.AvgLatencyMS > network.SLALatencyTarget {
		health -= math.Min(maxLatencyDeduction, (*agg.AvgLatencyMS-network.SLALatencyTarget)/latencyDivisor)
	}

	if agg.AvgPacketLossPercent != nil {
		health -= math.Min(maxPacketLossDeduction, *agg.AvgPacketLossPercent*packetLossWeight)
	}

	if uptime < network.SLAUptimeTarget {
		health -= math.Min(maxUptimeDeduction, (network.SLAUptimeTarget-uptime)*uptimeWeight)
	}

	health = math.Max(0, math.Min(100, health))

	snapshot.HealthScore = round2p(health)
	snapshot.UptimePercent = round2p(uptime)
	if agg.AvgLatencyMS != nil {
		snapshot.AvgLatencyMS = round2p(*agg.AvgLatencyMS)
	}
	if agg.AvgPacketLossPercent != nil {
		snapshot.AvgPacketLossPercent = round2p(*agg.AvgPacketLossPercent)
	}

	return snapshot
}

// ScoreAndPersist computes the snapshot and writes the score back onto the
// network record. A zero-reading window leaves the stored score untouched.
// There is no optimistic concurrency check: whichever concurrent computation
// writes last determines the stored score.
func (e *Engine) ScoreAndPersist(ctx context.Context, network *models.Network, agg models.TelemetryAggregate) (models.HealthSnapshot, error) {
	snapshot := e.ScoreAggregate(network, agg)

	if snapshot.HealthScore != nil {
		if err := e.networks.UpdateHealthScore(ctx, network.NetworkID, *snapshot.HealthScore); err != nil {
			return snapshot, fmt.Errorf("failed to persist health score: %w", err)
		}
	}

	return snapshot, nil
}

// SLAReport judges SLA compliance over an explicit period. Uptime compliance
// is always judged; latency compliance is nil when the period had no latency
// samples, and an absent verdict does not block overall compliance. The report
// carries the latency sample count so callers can tell "compliant" from
// "never measured".
func (e *Engine) SLAReport(network *models.Network, readings []models.TelemetryReading, periodStart, periodEnd time.Time) (*models.SLAReport, error) {
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}

	agg := Aggregate(readings)
	uptime := float64(agg.ActiveCount) / float64(agg.Count) * 100

	var latencySamples int
	for _, r := range readings {
		if r.LatencyMS != nil {
			latencySamples++
		}
	}

	compliance := models.SLACompliance{
		UptimeCompliance: uptime >= network.SLAUptimeTarget,
	}
	if agg.AvgLatencyMS != nil {
		ok := *agg.AvgLatencyMS <= network.SLALatencyTarget
		compliance.LatencyCompliance = &ok
	}

	status := models.SLACompliant
	if !compliance.UptimeCompliance || (compliance.LatencyCompliance != nil && !*compliance.LatencyCompliance) {
		status = models.SLANonCompliant
	}

	report := &models.SLAReport{
		NetworkID:      network.NetworkID,
		Organization:   network.Organization,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		TotalReadings:  agg.Count,
		LatencySamples: latencySamples,
		SLATargets: models.SLATargets{
			UptimeTarget:    network.SLAUptimeTarget,
			LatencyTargetMS: network.SLALatencyTarget,
		},
		ActualPerformance: models.SLAPerformance{
			UptimePercent: *round2p(uptime),
		},
		Compliance: compliance,
		Status:     status,
	}
	if agg.AvgLatencyMS != nil {
		report.ActualPerformance.AvgLatencyMS = round2p(*agg.AvgLatencyMS)
	}

	return report, nil
}

// round2p rounds to 2 decimal places for reporting. Internal computation runs
// at full precision; rounding happens only at the edge.
func round2p(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
