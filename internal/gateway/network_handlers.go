package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
	"github.com/JudeSurin/SpaceLink-Complete/internal/health"
	"github.com/JudeSurin/SpaceLink-Complete/internal/metrics"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/auth"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

const (
	defaultSLAUptimeTarget  = 99.9
	defaultSLALatencyTarget = 100.0
	defaultSLAPeriodDays    = 30
)

// newResourceID builds a short random identifier with the given prefix,
// e.g. "net_3fa85f642b88".
func newResourceID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (h *Handler) authorize(p *models.Principal, action auth.Action, resourceOrg string) error {
	err := auth.Authorize(p, action, resourceOrg)
	decision := "allow"
	if err != nil {
		decision = "deny"
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(string(action), decision).Inc()
	return err
}

func validateNetworkCreate(req *models.NetworkCreate) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", apierror.ErrInvalidInput)
	}
	if req.Organization == "" {
		return fmt.Errorf("%w: organization is required", apierror.ErrInvalidInput)
	}
	if !req.NetworkType.Valid() {
		return fmt.Errorf("%w: invalid network_type %q", apierror.ErrInvalidInput, req.NetworkType)
	}
	if req.SLAUptimeTarget != nil && (*req.SLAUptimeTarget < 0 || *req.SLAUptimeTarget > 100) {
		return fmt.Errorf("%w: sla_uptime_target out of range", apierror.ErrInvalidInput)
	}
	if req.SLALatencyTarget != nil && *req.SLALatencyTarget <= 0 {
		return fmt.Errorf("%w: sla_latency_target must be positive", apierror.ErrInvalidInput)
	}
	return nil
}

// CreateNetwork defines a new monitored network for an organization.
func (h *Handler) CreateNetwork(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	var req models.NetworkCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}
	if err := validateNetworkCreate(&req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkWrite, req.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	now := h.clock.Now().UTC()
	initialScore := 100.0
	network := &models.Network{
		NetworkID:        newResourceID("net"),
		Organization:     req.Organization,
		Name:             req.Name,
		Description:      req.Description,
		NetworkType:      req.NetworkType,
		Config:           req.Config,
		Status:           "active",
		HealthScore:      &initialScore,
		CreatedAt:        now,
		UpdatedAt:        now,
		SLAUptimeTarget:  defaultSLAUptimeTarget,
		SLALatencyTarget: defaultSLALatencyTarget,
	}
	if req.SLAUptimeTarget != nil {
		network.SLAUptimeTarget = *req.SLAUptimeTarget
	}
	if req.SLALatencyTarget != nil {
		network.SLALatencyTarget = *req.SLALatencyTarget
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Networks.Create(ctx, network); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("network_id", network.NetworkID).Str("organization", network.Organization).
		Msg("Created network")

	writeJSON(w, http.StatusCreated, network)
}

// ListNetworks returns networks within the caller's scope.
func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)
	q := r.URL.Query()

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	networks, err := h.db.Networks.List(ctx, database.NetworkFilter{
		Organization: queryScope(p, q.Get("organization")),
		NetworkType:  q.Get("network_type"),
		Status:       q.Get("status"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, networks)
}

func (h *Handler) fetchNetwork(r *http.Request) (*models.Network, error) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	return h.db.Networks.Get(ctx, mux.Vars(r)["network_id"])
}

// GetNetwork returns one network by id.
func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	network, err := h.fetchNetwork(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkRead, network.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, network)
}

// UpdateNetwork applies a partial update to a network.
func (h *Handler) UpdateNetwork(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	var req models.NetworkUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: malformed JSON body", apierror.ErrInvalidInput))
		return
	}

	network, err := h.fetchNetwork(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkWrite, network.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	if req.NetworkType != nil && !req.NetworkType.Valid() {
		respondError(w, r, fmt.Errorf("%w: invalid network_type %q", apierror.ErrInvalidInput, *req.NetworkType))
		return
	}
	if req.SLAUptimeTarget != nil && (*req.SLAUptimeTarget < 0 || *req.SLAUptimeTarget > 100) {
		respondError(w, r, fmt.Errorf("%w: sla_uptime_target out of range", apierror.ErrInvalidInput))
		return
	}
	if req.SLALatencyTarget != nil && *req.SLALatencyTarget <= 0 {
		respondError(w, r, fmt.Errorf("%w: sla_latency_target must be positive", apierror.ErrInvalidInput))
		return
	}

	if req.Name != nil {
		network.Name = *req.Name
	}
	if req.Description != nil {
		network.Description = *req.Description
	}
	if req.NetworkType != nil {
		network.NetworkType = *req.NetworkType
	}
	if req.Config != nil {
		network.Config = req.Config
	}
	if req.Status != nil {
		network.Status = *req.Status
	}
	if req.SLAUptimeTarget != nil {
		network.SLAUptimeTarget = *req.SLAUptimeTarget
	}
	if req.SLALatencyTarget != nil {
		network.SLALatencyTarget = *req.SLALatencyTarget
	}
	network.UpdatedAt = h.clock.Now().UTC()

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Networks.Update(ctx, network); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, network)
}

// DeleteNetwork removes a network definition. Stored telemetry is not
// touched; readings are keyed by device and organization, not network.
func (h *Handler) DeleteNetwork(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	network, err := h.fetchNetwork(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkDelete, network.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := h.db.Networks.Delete(ctx, network.NetworkID); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("network_id", network.NetworkID).Msg("Deleted network")

	w.WriteHeader(http.StatusNoContent)
}

// NetworkHealth computes the network's current health score from recent
// telemetry and persists it on the network record.
func (h *Handler) NetworkHealth(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	hours, err := parseIntParam(r, "hours", 24, 1, maxHistoryHours)
	if err != nil {
		respondError(w, r, err)
		return
	}

	network, err := h.fetchNetwork(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkRead, network.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	now := h.clock.Now().UTC()
	agg, err := h.db.Telemetry.Aggregate(ctx, network.Organization, now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		respondError(w, r, err)
		return
	}

	snapshot, err := h.engine.ScoreAndPersist(ctx, network, agg)
	if err != nil {
		respondError(w, r, err)
		return
	}

	metrics.HealthScoresComputed.Inc()
	if snapshot.HealthScore != nil {
		metrics.HealthScoreValue.WithLabelValues(network.NetworkID, network.Organization).Set(*snapshot.HealthScore)
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// NetworkSLAReport evaluates SLA compliance over a reporting period,
// defaulting to the trailing 30 days.
func (h *Handler) NetworkSLAReport(w http.ResponseWriter, r *http.Request) {
	p := h.principal(r)

	start, err := parseTimeParam(r, "start_date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	end, err := parseTimeParam(r, "end_date")
	if err != nil {
		respondError(w, r, err)
		return
	}
	periodEnd := h.clock.Now().UTC()
	if end != nil {
		periodEnd = end.UTC()
	}
	periodStart := periodEnd.AddDate(0, 0, -defaultSLAPeriodDays)
	if start != nil {
		periodStart = start.UTC()
	}
	if !periodStart.Before(periodEnd) {
		respondError(w, r, fmt.Errorf("%w: start_date must precede end_date", apierror.ErrInvalidInput))
		return
	}

	network, err := h.fetchNetwork(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.authorize(p, auth.ActionNetworkRead, network.Organization); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	rows, err := h.db.Telemetry.Query(ctx, database.TelemetryFilter{
		Organization: network.Organization,
		From:         &periodStart,
		To:           &periodEnd,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	readings := make([]models.TelemetryReading, len(rows))
	for i, row := range rows {
		readings[i] = *row
	}

	report, err := h.engine.SLAReport(network, readings, periodStart, periodEnd)
	if errors.Is(err, health.ErrNoReadings) {
		writeJSON(w, http.StatusOK, map[string]any{
			"network_id":   network.NetworkID,
			"organization": network.Organization,
			"period_start": periodStart,
			"period_end":   periodEnd,
			"message":      "No telemetry data available for this period",
		})
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
