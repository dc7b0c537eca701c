package models

import (
	"time"
)

// Role is the closed set of principal roles. Using a typed constant set means
// an unknown role is a validation error at the edge, not a silent string
// mismatch deep inside an authorization check.
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePartner  Role = "partner"
	RoleCustomer Role = "customer"
	RoleReadonly Role = "readonly"
	RoleDevice   Role = "device"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePartner, RoleCustomer, RoleReadonly, RoleDevice:
		return true
	}
	return false
}

type DeviceStatus string

const (
	DeviceStatusActive      DeviceStatus = "active"
	DeviceStatusDegraded    DeviceStatus = "degraded"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusActive, DeviceStatusDegraded, DeviceStatusOffline, DeviceStatusMaintenance:
		return true
	}
	return false
}

type NetworkType string

const (
	NetworkTypeWAN       NetworkType = "wan"
	NetworkTypeLAN       NetworkType = "lan"
	NetworkTypeSatellite NetworkType = "satellite"
	NetworkTypeHybrid    NetworkType = "hybrid"
)

func (t NetworkType) Valid() bool {
	switch t {
	case NetworkTypeWAN, NetworkTypeLAN, NetworkTypeSatellite, NetworkTypeHybrid:
		return true
	}
	return false
}

type PartnerType string

const (
	PartnerTypeChannel     PartnerType = "channel"
	PartnerTypeIntegration PartnerType = "integration"
	PartnerTypeReseller    PartnerType = "reseller"
	PartnerTypeEnterprise  PartnerType = "enterprise"
)

func (t PartnerType) Valid() bool {
	switch t {
	case PartnerTypeChannel, PartnerTypeIntegration, PartnerTypeReseller, PartnerTypeEnterprise:
		return true
	}
	return false
}

// Principal is the resolved identity derived from a verified credential.
// It exists only for the duration of a request; every authorization decision
// downstream of credential resolution operates on a Principal, never on raw
// credentials.
type Principal struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
	Enabled      bool   `json:"enabled"`
}

// IsAdmin reports whether the principal has cross-tenant visibility.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User is a bearer-credential account (enterprise user or partner operator).
type User struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	Organization   string    `json:"organization"`
	Disabled       bool      `json:"disabled"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeviceKey is a long-lived opaque credential bound 1:1 to a device.
// The bound device id and organization are immutable after issuance; the only
// mutable state is the Active flag (revocation) and the last-used timestamp.
type DeviceKey struct {
	Key          string     `json:"key"`
	DeviceID     string     `json:"device_id"`
	Organization string     `json:"organization"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	Active       bool       `json:"active"`
}

// TelemetryReading is one append-only network-quality sample from a device.
// Metric fields are pointers: a nil metric was not reported and is excluded
// from window averages rather than counted as zero.
type TelemetryReading struct {
	ID                int64        `json:"id"`
	DeviceID          string       `json:"device_id"`
	Organization      string       `json:"organization"`
	Timestamp         time.Time    `json:"timestamp"`
	Latitude          *float64     `json:"latitude,omitempty"`
	Longitude         *float64     `json:"longitude,omitempty"`
	SignalStrength    *float64     `json:"signal_strength,omitempty"`
	LatencyMS         *float64     `json:"latency_ms,omitempty"`
	PacketLossPercent *float64     `json:"packet_loss_percent,omitempty"`
	ThroughputMbps    *float64     `json:"throughput_mbps,omitempty"`
	JitterMS          *float64     `json:"jitter_ms,omitempty"`
	Status            DeviceStatus `json:"status"`
	FirmwareVersion   string       `json:"firmware_version,omitempty"`
	ErrorMessage      string       `json:"error_message,omitempty"`
}

// Network is a tenant-owned monitored network configuration with SLA targets.
// HealthScore is derived state: it holds whatever the last health computation
// wrote and is not authoritative until recomputed.
type Network struct {
	NetworkID        string         `json:"network_id"`
	Organization     string         `json:"organization"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	NetworkType      NetworkType    `json:"network_type"`
	Config           map[string]any `json:"config,omitempty"`
	Status           string         `json:"status"`
	HealthScore      *float64       `json:"health_score,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	SLAUptimeTarget  float64        `json:"sla_uptime_target"`
	SLALatencyTarget float64        `json:"sla_latency_target"`
}

// Partner is a channel or integration partner organization.
type Partner struct {
	PartnerID           string      `json:"partner_id"`
	OrganizationName    string      `json:"organization_name"`
	PartnerType         PartnerType `json:"partner_type"`
	Tier                string      `json:"tier"`
	PrimaryContactName  string      `json:"primary_contact_name"`
	PrimaryContactEmail string      `json:"primary_contact_email"`
	PrimaryContactPhone string      `json:"primary_contact_phone,omitempty"`
	APIAccessEnabled    bool        `json:"api_access_enabled"`
	WebhookURL          string      `json:"webhook_url,omitempty"`
	IPWhitelist         []string    `json:"ip_whitelist,omitempty"`
	Status              string      `json:"status"`
	OnboardedAt         time.Time   `json:"onboarded_at"`
	Notes               string      `json:"notes,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
}

// HealthSnapshot is the derived health view of a network over a window.
// Averages and uptime are nil when the window had no samples for that metric.
type HealthSnapshot struct {
	NetworkID            string    `json:"network_id"`
	Organization         string    `json:"organization"`
	HealthScore          *float64  `json:"health_score"`
	Status               string    `json:"status"`
	AvgLatencyMS         *float64  `json:"avg_latency_ms"`
	AvgPacketLossPercent *float64  `json:"avg_packet_loss_percent"`
	UptimePercent        *float64  `json:"uptime_percent"`
	TotalReadings        int       `json:"total_readings"`
	LastUpdated          time.Time `json:"last_updated"`
}

// SLA compliance statuses.
const (
	SLACompliant    = "COMPLIANT"
	SLANonCompliant = "NON_COMPLIANT"
)

// SLATargets echoes the network's configured targets in an SLA report.
type SLATargets struct {
	UptimeTarget    float64 `json:"uptime_target"`
	LatencyTargetMS float64 `json:"latency_target_ms"`
}

// SLAPerformance is the measured performance over the report period.
type SLAPerformance struct {
	UptimePercent float64  `json:"uptime_percent"`
	AvgLatencyMS  *float64 `json:"avg_latency_ms"`
}

// SLACompliance carries the per-metric verdicts. LatencyCompliance is nil when
// the period had no latency samples: absent data does not fail the SLA, it is
// simply not judged.
type SLACompliance struct {
	UptimeCompliance  bool  `json:"uptime_compliance"`
	LatencyCompliance *bool `json:"latency_compliance"`
}

// SLAReport is the compliance verdict for a network over an explicit period.
type SLAReport struct {
	NetworkID         string         `json:"network_id"`
	Organization      string         `json:"organization"`
	PeriodStart       time.Time      `json:"period_start"`
	PeriodEnd         time.Time      `json:"period_end"`
	TotalReadings     int            `json:"total_readings"`
	LatencySamples    int            `json:"latency_samples"`
	SLATargets        SLATargets     `json:"sla_targets"`
	ActualPerformance SLAPerformance `json:"actual_performance"`
	Compliance        SLACompliance  `json:"compliance"`
	Status            string         `json:"status"`
}

// TelemetryAggregate is the store-side aggregation over a tenant window.
type TelemetryAggregate struct {
	AvgLatencyMS         *float64 `json:"avg_latency_ms"`
	AvgPacketLossPercent *float64 `json:"avg_packet_loss_percent"`
	Count                int      `json:"count"`
	ActiveCount          int      `json:"active_count"`
}
