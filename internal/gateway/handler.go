// Package gateway exposes the enterprise API surface: telemetry ingestion and
// queries, network configuration with health and SLA reporting, and partner
// management. Handlers resolve a principal, authorize once, and perform a
// single logical read or append against the stores.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
	"github.com/JudeSurin/SpaceLink-Complete/internal/health"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/auth"
)

type Handler struct {
	db           *database.BunDB
	resolver     *auth.Resolver
	engine       *health.Engine
	storeTimeout time.Duration
	clock        clockwork.Clock
	startTime    time.Time
}

func NewHandler(db *database.BunDB, resolver *auth.Resolver, engine *health.Engine, storeTimeout time.Duration, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		db:           db,
		resolver:     resolver,
		engine:       engine,
		storeTimeout: storeTimeout,
		clock:        clock,
		startTime:    clock.Now(),
	}
}

// storeCtx derives the per-request store deadline. A store call that outlives
// it surfaces as Unavailable, and no further work happens for the request.
func (h *Handler) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.storeTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps a classified error to its HTTP status. Unclassified
// errors are logged and reported as a generic internal error so store
// internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apierror.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// Root is the service welcome endpoint with quick links to the API surface.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to SpaceLink Enterprise Gateway",
		"status":  "operational",
		"endpoints": map[string]string{
			"authentication": "/v1/auth/token",
			"telemetry":      "/v1/telemetry",
			"networks":       "/v1/networks",
			"partners":       "/v1/partners",
		},
	})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "SpaceLink Enterprise Gateway",
		"time":    h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// APIStatus reports feature and auth-method availability.
func (h *Handler) APIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"api_version": "v1",
		"service":     "SpaceLink Enterprise Gateway",
		"status":      "operational",
		"uptime":      h.clock.Now().Sub(h.startTime).Round(time.Second).String(),
		"features": map[string]string{
			"telemetry_ingestion": "enabled",
			"network_monitoring":  "enabled",
			"partner_management":  "enabled",
			"authentication":      "enabled",
		},
		"supported_auth_methods": []string{
			"API Key (X-API-Key header)",
			"OAuth2 Bearer Token",
		},
	})
}
