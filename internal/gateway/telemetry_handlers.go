package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
	"github.com/JudeSurin/SpaceLink-Complete/internal/metrics"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/auth"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
	maxHistoryHours   = 168
)

// validateReading checks metric ranges on a submitted reading. All metric
// fields are optional; a present field must be within its physical range.
func validateReading(t *models.TelemetryCreate) error {
	if t.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", apierror.ErrInvalidInput)
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", apierror.ErrInvalidInput, t.Status)
	}
	if t.Latitude != nil && (*t.Latitude < -90 || *t.Latitude > 90) {
		return fmt.Errorf("%w: latitude out of range", apierror.ErrInvalidInput)
	}
	if t.Longitude != nil && (*t.Longitude < -180 || *t.Longitude > 180) {
		return fmt.Errorf("%w: longitude out of range", apierror.ErrInvalidInput)
	}
	if t.LatencyMS != nil && *t.LatencyMS < 0 {
		return fmt.Errorf("%w: latency_ms must be non-negative", apierror.ErrInvalidInput)
	}
	if t.PacketLossPercent != nil && (*t.PacketLossPercent < 0 || *t.PacketLossPercent > 100) {
		return fmt.Errorf("%w: packet_loss_percent out of range", apierror.ErrInvalidInput)
	}
	if t.ThroughputMbps != nil && *t.ThroughputMbps < 0 {
		return fmt.Errorf("%w: throughput_mbps must be non-negative", apierror.ErrInvalidInput)
	}
	if t.JitterMS != nil && *t.JitterMS < 0 {
		return fmt.Errorf("%w: jitter_ms must be non-negative", apierror.ErrInvalidInput)
	}
	return nil
}

// toReading stamps the reading with the key's organization and the current
// time when the device did not supply one. The submitted organization field
// is ignored; tenancy always comes from the key.
func (h *Handler) toReading(t *models.TelemetryCreate, key *models.DeviceKey) *models.TelemetryReading {
	timestamp := h.clock.Now().UTC()
	if t.Timestamp != nil {
		timestamp = t.Timestamp.UTC()
	}
	status := t.Status
	if status == "" {
		status = models.DeviceStatusActive
	}
	return &models.TelemetryReading{
		DeviceID:          t.DeviceID,
		Organization:      key.Organization,
		Timestamp:         timestamp,
		Latitude:          t.Latitude,
		Longitude:         t.Longitude,
		SignalStrength:    t.SignalStrength,
		LatencyMS:         t.LatencyMS,
		PacketLossPercent: t.PacketLossPercent,
		ThroughputMbps:    t.ThroughputMbps,
		JitterMS:          t.JitterMS,
		Status:            status,
		FirmwareVersion:   t.FirmwareVersion,
		ErrorMessage:      t.ErrorMessage,
	}
}

// SendTelemetry appends a single device reading. The API key must belong to
// the submitting device.
func (h *Handler) SendTelemetry(w http.ResponseWriter, r *http.Request) {
	key, _ := DeviceKeyFromContext(r.Context())

	var req models.TelemetryCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}
	if err := validateReading(&req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := auth.AuthorizeDeviceWrite(key, req.DeviceID); err != nil {
		metrics.AuthzDecisionsTotal.WithLabelValues("telemetry:write", "deny").Inc()
		respondError(w, r, err)
		return
	}
	metrics.AuthzDecisionsTotal.WithLabelValues("telemetry:write", "allow").Inc()

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	reading := h.toReading(&req, key)
	if err := h.db.Telemetry.Append(ctx, reading); err != nil {
		metrics.TelemetryReadingsTotal.WithLabelValues("error").Inc()
		respondError(w, r, err)
		return
	}
	metrics.TelemetryReadingsTotal.WithLabelValues("created").Inc()

	writeJSON(w, http.StatusCreated, reading)
}

// SendTelemetryBatch appends multiple readings in one request. Records whose
// device id does not match the API key are skipped; the rest are stored.
// The batch is not atomic.
func (h *Handler) SendTelemetryBatch(w http.ResponseWriter, r *http.Request) {
	key, _ := DeviceKeyFromContext(r.Context())

	var req models.TelemetryBatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}
	if len(req.Telemetry) == 0 {
		respondError(w, r, fmt.Errorf("%w: telemetry batch is empty", apierror.ErrInvalidInput))
		return
	}
	for i := range req.Telemetry {
		if err := validateReading(&req.Telemetry[i]); err != nil {
			respondError(w, r, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}
	metrics.TelemetryBatchSize.Observe(float64(len(req.Telemetry)))

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	created := 0
	for i := range req.Telemetry {
		item := &req.Telemetry[i]
		if err := auth.AuthorizeDeviceWrite(key, item.DeviceID); err != nil {
			log.Warn().Str("device_id", item.DeviceID).Str("key_device", key.DeviceID).
				Msg("Skipping batch record for mismatched device")
			metrics.TelemetryReadingsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err := h.db.Telemetry.Append(ctx, h.toReading(item, key)); err != nil {
			metrics.TelemetryReadingsTotal.WithLabelValues("error").Inc()
			respondError(w, r, err)
			return
		}
		metrics.TelemetryReadingsTotal.WithLabelValues("created").Inc()
		created++
	}

	writeJSON(w, http.StatusCreated, models.BatchResult{
		Message:          "Batch processed",
		RecordsSubmitted: len(req.Telemetry),
		RecordsCreated:   created,
	})
}

// queryScope resolves the organization a read query runs against. Non-admin
// principals are always pinned to their own tenant regardless of what the
// query string asks for.
func queryScope(p *models.Principal, requested string) string {
	if p.IsAdmin() {
		return requested
	}
	return p.Organization
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC 3339", apierror.ErrInvalidInput, name)
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string, fallback, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", apierror.ErrInvalidInput, name, min, max)
	}
	return v, nil
}

// QueryTelemetry returns readings matching the filter, newest first.
func (h *Handler) QueryTelemetry(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !models.DeviceStatus(status).Valid() {
		respondError(w, r, fmt.Errorf("%w: invalid status %q", apierror.ErrInvalidInput, status))
		return
	}
	from, err := parseTimeParam(r, "start_time")
	if err != nil {
		respondError(w, r, err)
		return
	}
	to, err := parseTimeParam(r, "end_time")
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", defaultQueryLimit, 1, maxQueryLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	offset, err := parseIntParam(r, "offset", 0, 0, 1<<30)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	readings, err := h.db.Telemetry.Query(ctx, database.TelemetryFilter{
		Organization: queryScope(p, q.Get("organization")),
		DeviceID:     q.Get("device_id"),
		Status:       status,
		From:         from,
		To:           to,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// LatestTelemetry returns the most recent reading per device within the
// caller's scope.
func (h *Handler) LatestTelemetry(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	readings, err := h.db.Telemetry.LatestPerDevice(ctx, queryScope(p, r.URL.Query().Get("organization")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// DeviceLatestTelemetry returns the most recent reading for one device.
func (h *Handler) DeviceLatestTelemetry(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	deviceID := mux.Vars(r)["device_id"]

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	reading, err := h.db.Telemetry.LatestForDevice(ctx, queryScope(p, r.URL.Query().Get("organization")), deviceID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

// DeviceTelemetryHistory returns a device's readings over a trailing window,
// oldest first.
func (h *Handler) DeviceTelemetryHistory(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	deviceID := mux.Vars(r)["device_id"]

	hours, err := parseIntParam(r, "hours", 24, 1, maxHistoryHours)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	since := h.clock.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	readings, err := h.db.Telemetry.History(ctx, queryScope(p, r.URL.Query().Get("organization")), deviceID, since)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":    deviceID,
		"period_hours": hours,
		"data_points":  len(readings),
		"telemetry":    readings,
	})
}

// TelemetryStatsSummary returns per-organization device counts and 24h
// metric averages.
func (h *Handler) TelemetryStatsSummary(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	scope := queryScope(p, r.URL.Query().Get("organization"))

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	summary, err := h.db.Telemetry.Summary(ctx, scope, h.clock.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summary.Organization == "" {
		summary.Organization = p.Organization
	}

	writeJSON(w, http.StatusOK, summary)
}

// DeleteDeviceTelemetry removes every reading stored for a device.
func (h *Handler) DeleteDeviceTelemetry(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	deviceID := mux.Vars(r)["device_id"]

	if err := auth.Authorize(p, auth.ActionTelemetryDelete, p.Organization); err != nil {
		metrics.AuthzDecisionsTotal.WithLabelValues(string(auth.ActionTelemetryDelete), "deny").Inc()
		respondError(w, r, err)
		return
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(string(auth.ActionTelemetryDelete), "allow").Inc()

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	deleted, err := h.db.Telemetry.DeleteByDevice(ctx, deviceID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if deleted == 0 {
		respondError(w, r, fmt.Errorf("%w: no telemetry for device %s", apierror.ErrNotFound, deviceID))
		return
	}

	log.Info().Str("device_id", deviceID).Int64("records", deleted).Msg("Deleted device telemetry")

	w.WriteHeader(http.StatusNoContent)
}
