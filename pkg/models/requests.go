package models

import (
	"time"
)

// LoginRequest authenticates a user for a bearer token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the bearer token issuance response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        Role   `json:"role"`
}

// TelemetryCreate is a device-submitted reading before it is stored.
// Timestamp is optional; the gateway stamps the current time when absent.
type TelemetryCreate struct {
	DeviceID          string       `json:"device_id"`
	Organization      string       `json:"organization,omitempty"`
	Timestamp         *time.Time   `json:"timestamp,omitempty"`
	Latitude          *float64     `json:"latitude,omitempty"`
	Longitude         *float64     `json:"longitude,omitempty"`
	SignalStrength    *float64     `json:"signal_strength,omitempty"`
	LatencyMS         *float64     `json:"latency_ms,omitempty"`
	PacketLossPercent *float64     `json:"packet_loss_percent,omitempty"`
	ThroughputMbps    *float64     `json:"throughput_mbps,omitempty"`
	JitterMS          *float64     `json:"jitter_ms,omitempty"`
	Status            DeviceStatus `json:"status,omitempty"`
	FirmwareVersion   string       `json:"firmware_version,omitempty"`
	ErrorMessage      string       `json:"error_message,omitempty"`
}

// TelemetryBatch wraps multiple readings submitted in one request.
type TelemetryBatch struct {
	Telemetry []TelemetryCreate `json:"telemetry"`
}

// BatchResult reports how many of the submitted readings were accepted.
// Mismatched device ids are skipped, not failed, so the two counts can differ.
type BatchResult struct {
	Message          string `json:"message"`
	RecordsSubmitted int    `json:"records_submitted"`
	RecordsCreated   int    `json:"records_created"`
}

// NetworkCreate is the payload for defining a new monitored network.
type NetworkCreate struct {
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	NetworkType      NetworkType    `json:"network_type"`
	Organization     string         `json:"organization"`
	Config           map[string]any `json:"config,omitempty"`
	SLAUptimeTarget  *float64       `json:"sla_uptime_target,omitempty"`
	SLALatencyTarget *float64       `json:"sla_latency_target,omitempty"`
}

// NetworkUpdate carries partial updates; nil fields are left unchanged.
type NetworkUpdate struct {
	Name             *string        `json:"name,omitempty"`
	Description      *string        `json:"description,omitempty"`
	NetworkType      *NetworkType   `json:"network_type,omitempty"`
	Config           map[string]any `json:"config,omitempty"`
	Status           *string        `json:"status,omitempty"`
	SLAUptimeTarget  *float64       `json:"sla_uptime_target,omitempty"`
	SLALatencyTarget *float64       `json:"sla_latency_target,omitempty"`
}

// PartnerCreate is the payload for onboarding a partner organization.
type PartnerCreate struct {
	OrganizationName    string      `json:"organization_name"`
	PartnerType         PartnerType `json:"partner_type"`
	Tier                string      `json:"tier,omitempty"`
	PrimaryContactName  string      `json:"primary_contact_name"`
	PrimaryContactEmail string      `json:"primary_contact_email"`
	PrimaryContactPhone string      `json:"primary_contact_phone,omitempty"`
	WebhookURL          string      `json:"webhook_url,omitempty"`
	IPWhitelist         []string    `json:"ip_whitelist,omitempty"`
	Notes               string      `json:"notes,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
}

// PartnerUpdate carries partial updates; nil fields are left unchanged.
type PartnerUpdate struct {
	OrganizationName    *string      `json:"organization_name,omitempty"`
	PartnerType         *PartnerType `json:"partner_type,omitempty"`
	Tier                *string      `json:"tier,omitempty"`
	PrimaryContactName  *string      `json:"primary_contact_name,omitempty"`
	PrimaryContactEmail *string      `json:"primary_contact_email,omitempty"`
	PrimaryContactPhone *string      `json:"primary_contact_phone,omitempty"`
	WebhookURL          *string      `json:"webhook_url,omitempty"`
	IPWhitelist         []string     `json:"ip_whitelist,omitempty"`
	Status              *string      `json:"status,omitempty"`
	Notes               *string      `json:"notes,omitempty"`
	Tags                []string     `json:"tags,omitempty"`
}

// DeviceKeyIssued is the response for a freshly generated device API key.
type DeviceKeyIssued struct {
	PartnerID string    `json:"partner_id"`
	DeviceID  string    `json:"device_id"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
	Usage     string    `json:"usage"`
}

// IntegrationStatus summarizes a partner's recent integration activity.
type IntegrationStatus struct {
	PartnerID             string `json:"partner_id"`
	Organization          string `json:"organization"`
	Status                string `json:"status"`
	APIAccessEnabled      bool   `json:"api_access_enabled"`
	IntegrationActive     bool   `json:"integration_active"`
	Last24hTelemetryCount int    `json:"last_24h_telemetry_count"`
	WebhookConfigured     bool   `json:"webhook_configured"`
	IPWhitelistConfigured bool   `json:"ip_whitelist_configured"`
}

// SummaryMetrics are the organization-wide averages over the last 24 hours.
type SummaryMetrics struct {
	AvgLatencyMS         *float64 `json:"avg_latency_ms"`
	AvgPacketLossPercent *float64 `json:"avg_packet_loss_percent"`
	AvgThroughputMbps    *float64 `json:"avg_throughput_mbps"`
	AvgSignalStrength    *float64 `json:"avg_signal_strength"`
}

// TelemetrySummary is the organization telemetry statistics response.
type TelemetrySummary struct {
	Organization   string         `json:"organization"`
	TotalDevices   int            `json:"total_devices"`
	ActiveDevices  int            `json:"active_devices"`
	OfflineDevices int            `json:"offline_devices"`
	Last24hMetrics SummaryMetrics `json:"last_24h_metrics"`
}
