package database

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// User represents a bearer-credential account in the database using Bun ORM
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Username       string    `bun:"username,pk"`
	Email          string    `bun:"email,unique,notnull"`
	HashedPassword string    `bun:"hashed_password,notnull"`
	Role           string    `bun:"role,notnull"`
	Organization   string    `bun:"organization,notnull"`
	Disabled       bool      `bun:"disabled,notnull,default:false"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database User to domain model
func (u *User) ToModel() *models.User {
	return &models.User{
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		Role:           models.Role(u.Role),
		Organization:   u.Organization,
		Disabled:       u.Disabled,
		CreatedAt:      u.CreatedAt,
	}
}

// UserFromModel converts domain model to database User
func UserFromModel(m *models.User) *User {
	return &User{
		Username:       m.Username,
		Email:          m.Email,
		HashedPassword: m.HashedPassword,
		Role:           string(m.Role),
		Organization:   m.Organization,
		Disabled:       m.Disabled,
		CreatedAt:      m.CreatedAt,
	}
}

// DeviceKey represents a device API key in the database using Bun ORM.
// DeviceID and Organization are written once at issuance and never updated.
type DeviceKey struct {
	bun.BaseModel `bun:"table:device_keys,alias:dk"`

	Key          string     `bun:"key,pk"`
	DeviceID     string     `bun:"device_id,notnull"`
	Organization string     `bun:"organization,notnull"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	LastUsed     *time.Time `bun:"last_used"`
	Active       bool       `bun:"active,notnull,default:true"`
}

// ToModel converts database DeviceKey to domain model
func (k *DeviceKey) ToModel() *models.DeviceKey {
	return &models.DeviceKey{
		Key:          k.Key,
		DeviceID:     k.DeviceID,
		Organization: k.Organization,
		CreatedAt:    k.CreatedAt,
		LastUsed:     k.LastUsed,
		Active:       k.Active,
	}
}

// DeviceKeyFromModel converts domain model to database DeviceKey
func DeviceKeyFromModel(m *models.DeviceKey) *DeviceKey {
	return &DeviceKey{
		Key:          m.Key,
		DeviceID:     m.DeviceID,
		Organization: m.Organization,
		CreatedAt:    m.CreatedAt,
		LastUsed:     m.LastUsed,
		Active:       m.Active,
	}
}

// Telemetry represents one stored reading using Bun ORM. Rows are append-only;
// nothing ever updates a telemetry row in place.
type Telemetry struct {
	bun.BaseModel `bun:"table:telemetry,alias:t"`

	ID                int64     `bun:"id,pk,autoincrement"`
	DeviceID          string    `bun:"device_id,notnull"`
	Organization      string    `bun:"organization,notnull"`
	Timestamp         time.Time `bun:"timestamp,notnull"`
	Latitude          *float64  `bun:"latitude"`
	Longitude         *float64  `bun:"longitude"`
	SignalStrength    *float64  `bun:"signal_strength"`
	LatencyMS         *float64  `bun:"latency_ms"`
	PacketLossPercent *float64  `bun:"packet_loss_percent"`
	ThroughputMbps    *float64  `bun:"throughput_mbps"`
	JitterMS          *float64  `bun:"jitter_ms"`
	Status            string    `bun:"status,notnull,default:'active'"`
	FirmwareVersion   string    `bun:"firmware_version"`
	ErrorMessage      string    `bun:"error_message"`
}

// ToModel converts database Telemetry to domain model
func (t *Telemetry) ToModel() *models.TelemetryReading {
	return &models.TelemetryReading{
		ID:                t.ID,
		DeviceID:          t.DeviceID,
		Organization:      t.Organization,
		Timestamp:         t.Timestamp,
		Latitude:          t.Latitude,
		Longitude:         t.Longitude,
		SignalStrength:    t.SignalStrength,
		LatencyMS:         t.LatencyMS,
		PacketLossPercent: t.PacketLossPercent,
		ThroughputMbps:    t.ThroughputMbps,
		JitterMS:          t.JitterMS,
		Status:            models.DeviceStatus(t.Status),
		FirmwareVersion:   t.FirmwareVersion,
		ErrorMessage:      t.ErrorMessage,
	}
}

// TelemetryFromModel converts domain model to database Telemetry
func TelemetryFromModel(m *models.TelemetryReading) *Telemetry {
	return &Telemetry{
		ID:                m.ID,
		DeviceID:          m.DeviceID,
		Organization:      m.Organization,
		Timestamp:         m.Timestamp,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		SignalStrength:    m.SignalStrength,
		LatencyMS:         m.LatencyMS,
		PacketLossPercent: m.PacketLossPercent,
		ThroughputMbps:    m.ThroughputMbps,
		JitterMS:          m.JitterMS,
		Status:            string(m.Status),
		FirmwareVersion:   m.FirmwareVersion,
		ErrorMessage:      m.ErrorMessage,
	}
}

// Network represents a monitored network configuration using Bun ORM
type Network struct {
	bun.BaseModel `bun:"table:networks,alias:n"`

	NetworkID        string         `bun:"network_id,pk"`
	Organization     string         `bun:"organization,notnull"`
	Name             string         `bun:"name,notnull"`
	Description      string         `bun:"description"`
	NetworkType      string         `bun:"network_type,notnull"`
	Config           map[string]any `bun:"config,type:json"`
	Status           string         `bun:"status,notnull,default:'active'"`
	HealthScore      *float64       `bun:"health_score"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	SLAUptimeTarget  float64        `bun:"sla_uptime_target,notnull,default:99.9"`
	SLALatencyTarget float64        `bun:"sla_latency_target,notnull,default:100.0"`
}

// ToModel converts database Network to domain model
func (n *Network) ToModel() *models.Network {
	return &models.Network{
		NetworkID:        n.NetworkID,
		Organization:     n.Organization,
		Name:             n.Name,
		Description:      n.Description,
		NetworkType:      models.NetworkType(n.NetworkType),
		Config:           n.Config,
		Status:           n.Status,
		HealthScore:      n.HealthScore,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		SLAUptimeTarget:  n.SLAUptimeTarget,
		SLALatencyTarget: n.SLALatencyTarget,
	}
}

// NetworkFromModel converts domain model to database Network
func NetworkFromModel(m *models.Network) *Network {
	return &Network{
		NetworkID:        m.NetworkID,
		Organization:     m.Organization,
		Name:             m.Name,
		Description:      m.Description,
		NetworkType:      string(m.NetworkType),
		Config:           m.Config,
		Status:           m.Status,
		HealthScore:      m.HealthScore,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		SLAUptimeTarget:  m.SLAUptimeTarget,
		SLALatencyTarget: m.SLALatencyTarget,
	}
}

// Partner represents a partner organization using Bun ORM
type Partner struct {
	bun.BaseModel `bun:"table:partners,alias:p"`

	PartnerID           string    `bun:"partner_id,pk"`
	OrganizationName    string    `bun:"organization_name,notnull"`
	PartnerType         string    `bun:"partner_type,notnull"`
	Tier                string    `bun:"tier,notnull,default:'bronze'"`
	PrimaryContactName  string    `bun:"primary_contact_name"`
	PrimaryContactEmail string    `bun:"primary_contact_email"`
	PrimaryContactPhone string    `bun:"primary_contact_phone"`
	APIAccessEnabled    bool      `bun:"api_access_enabled,notnull,default:true"`
	WebhookURL          string    `bun:"webhook_url"`
	IPWhitelist         []string  `bun:"ip_whitelist,type:json"`
	Status              string    `bun:"status,notnull,default:'active'"`
	OnboardedAt         time.Time `bun:"onboarded_at,nullzero,notnull,default:current_timestamp"`
	Notes               string    `bun:"notes"`
	Tags                []string  `bun:"tags,type:json"`
}

// ToModel converts database Partner to domain model
func (p *Partner) ToModel() *models.Partner {
	return &models.Partner{
		PartnerID:           p.PartnerID,
		OrganizationName:    p.OrganizationName,
		PartnerType:         models.PartnerType(p.PartnerType),
		Tier:                p.Tier,
		PrimaryContactName:  p.PrimaryContactName,
		PrimaryContactEmail: p.PrimaryContactEmail,
		PrimaryContactPhone: p.PrimaryContactPhone,
		APIAccessEnabled:    p.APIAccessEnabled,
		WebhookURL:          p.WebhookURL,
		IPWhitelist:         p.IPWhitelist,
		Status:              p.Status,
		OnboardedAt:         p.OnboardedAt,
		Notes:               p.Notes,
		Tags:                p.Tags,
	}
}

// PartnerFromModel converts domain model to database Partner
func PartnerFromModel(m *models.Partner) *Partner {
	return &Partner{
		PartnerID:           m.PartnerID,
		OrganizationName:    m.OrganizationName,
		PartnerType:         string(m.PartnerType),
		Tier:                m.Tier,
		PrimaryContactName:  m.PrimaryContactName,
		PrimaryContactEmail: m.PrimaryContactEmail,
		PrimaryContactPhone: m.PrimaryContactPhone,
		APIAccessEnabled:    m.APIAccessEnabled,
		WebhookURL:          m.WebhookURL,
		IPWhitelist:         m.IPWhitelist,
		Status:              m.Status,
		OnboardedAt:         m.OnboardedAt,
		Notes:               m.Notes,
		Tags:                m.Tags,
	}
}
