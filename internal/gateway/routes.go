package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the full API surface. Management endpoints require a bearer
// token; telemetry submission requires a device API key.
func (h *Handler) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", instrument("/", h.Root)).Methods(http.MethodGet)
	r.HandleFunc("/health", instrument("/health", h.HealthCheck)).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", instrument("/v1/status", h.APIStatus)).Methods(http.MethodGet)
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/v1/auth/token",
		instrument("/v1/auth/token", h.Login)).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/me",
		instrument("/v1/auth/me", h.requireBearer(h.Me))).Methods(http.MethodGet)

	tel := r.PathPrefix("/v1/telemetry").Subrouter()
	tel.HandleFunc("/send",
		instrument("/v1/telemetry/send", h.requireDeviceKey(h.SendTelemetry))).Methods(http.MethodPost)
	tel.HandleFunc("/batch",
		instrument("/v1/telemetry/batch", h.requireDeviceKey(h.SendTelemetryBatch))).Methods(http.MethodPost)
	tel.HandleFunc("",
		instrument("/v1/telemetry", h.requireBearer(h.QueryTelemetry))).Methods(http.MethodGet)
	tel.HandleFunc("/latest",
		instrument("/v1/telemetry/latest", h.requireBearer(h.LatestTelemetry))).Methods(http.MethodGet)
	tel.HandleFunc("/devices/{device_id}/latest",
		instrument("/v1/telemetry/devices/latest", h.requireBearer(h.DeviceLatestTelemetry))).Methods(http.MethodGet)
	tel.HandleFunc("/devices/{device_id}/history",
		instrument("/v1/telemetry/devices/history", h.requireBearer(h.DeviceTelemetryHistory))).Methods(http.MethodGet)
	tel.HandleFunc("/devices/{device_id}",
		instrument("/v1/telemetry/devices", h.requireBearer(h.DeleteDeviceTelemetry))).Methods(http.MethodDelete)
	tel.HandleFunc("/stats/summary",
		instrument("/v1/telemetry/stats/summary", h.requireBearer(h.TelemetryStatsSummary))).Methods(http.MethodGet)

	net := r.PathPrefix("/v1/networks").Subrouter()
	net.HandleFunc("",
		instrument("/v1/networks", h.requireBearer(h.CreateNetwork))).Methods(http.MethodPost)
	net.HandleFunc("",
		instrument("/v1/networks", h.requireBearer(h.ListNetworks))).Methods(http.MethodGet)
	net.HandleFunc("/{network_id}",
		instrument("/v1/networks/get", h.requireBearer(h.GetNetwork))).Methods(http.MethodGet)
	net.HandleFunc("/{network_id}",
		instrument("/v1/networks/update", h.requireBearer(h.UpdateNetwork))).Methods(http.MethodPatch, http.MethodPut)
	net.HandleFunc("/{network_id}",
		instrument("/v1/networks/delete", h.requireBearer(h.DeleteNetwork))).Methods(http.MethodDelete)
	net.HandleFunc("/{network_id}/health",
		instrument("/v1/networks/health", h.requireBearer(h.NetworkHealth))).Methods(http.MethodGet)
	net.HandleFunc("/{network_id}/sla",
		instrument("/v1/networks/sla", h.requireBearer(h.NetworkSLAReport))).Methods(http.MethodGet)

	partners := r.PathPrefix("/v1/partners").Subrouter()
	partners.HandleFunc("",
		instrument("/v1/partners", h.requireBearer(h.OnboardPartner))).Methods(http.MethodPost)
	partners.HandleFunc("",
		instrument("/v1/partners", h.requireBearer(h.ListPartners))).Methods(http.MethodGet)
	partners.HandleFunc("/{partner_id}",
		instrument("/v1/partners/get", h.requireBearer(h.GetPartner))).Methods(http.MethodGet)
	partners.HandleFunc("/{partner_id}",
		instrument("/v1/partners/update", h.requireBearer(h.UpdatePartner))).Methods(http.MethodPatch, http.MethodPut)
	partners.HandleFunc("/{partner_id}",
		instrument("/v1/partners/delete", h.requireBearer(h.DeletePartner))).Methods(http.MethodDelete)
	partners.HandleFunc("/{partner_id}/suspend",
		instrument("/v1/partners/suspend", h.requireBearer(h.SuspendPartner))).Methods(http.MethodPost)
	partners.HandleFunc("/{partner_id}/activate",
		instrument("/v1/partners/activate", h.requireBearer(h.ActivatePartner))).Methods(http.MethodPost)
	partners.HandleFunc("/{partner_id}/api-keys/generate",
		instrument("/v1/partners/api-keys/generate", h.requireBearer(h.GeneratePartnerAPIKey))).Methods(http.MethodPost)
	partners.HandleFunc("/{partner_id}/integration-status",
		instrument("/v1/partners/integration-status", h.requireBearer(h.PartnerIntegrationStatus))).Methods(http.MethodGet)

	return r
}
