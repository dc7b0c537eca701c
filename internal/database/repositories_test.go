package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

func setupTestDB(t *testing.T) *BunDB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func f(v float64) *float64 { return &v }

func seedReading(t *testing.T, db *BunDB, deviceID, org string, ts time.Time, status models.DeviceStatus, latency *float64) *models.TelemetryReading {
	t.Helper()
	reading := &models.TelemetryReading{
		DeviceID:     deviceID,
		Organization: org,
		Timestamp:    ts,
		LatencyMS:    latency,
		Status:       status,
	}
	require.NoError(t, db.Telemetry.Append(context.Background(), reading))
	return reading
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Username:       "enterprise_admin",
		Email:          "admin@spacelink.example",
		HashedPassword: "$2a$10$notarealhash",
		Role:           models.RoleAdmin,
		Organization:   "SpaceLink Internal",
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Users.Create(ctx, user))

	got, err := db.Users.GetByUsername(ctx, "enterprise_admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "SpaceLink Internal", got.Organization)

	_, err = db.Users.GetByUsername(ctx, "ghost")
	assert.True(t, errors.Is(err, apierror.ErrNotFound))

	count, err := db.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeviceKeyRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	key := &models.DeviceKey{
		Key:          "ok_device-001_abc123",
		DeviceID:     "device-001",
		Organization: "ACME Corporation",
		CreatedAt:    time.Now().UTC(),
		Active:       true,
	}
	require.NoError(t, db.DeviceKeys.Create(ctx, key))

	got, err := db.DeviceKeys.Get(ctx, key.Key)
	require.NoError(t, err)
	assert.Equal(t, "device-001", got.DeviceID)
	assert.True(t, got.Active)
	assert.Nil(t, got.LastUsed)

	usedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.DeviceKeys.TouchLastUsed(ctx, key.Key, usedAt))
	got, err = db.DeviceKeys.Get(ctx, key.Key)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsed)
	assert.Equal(t, usedAt, got.LastUsed.UTC())

	require.NoError(t, db.DeviceKeys.SetActive(ctx, key.Key, false))
	got, err = db.DeviceKeys.Get(ctx, key.Key)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = db.DeviceKeys.Get(ctx, "ok_missing_key")
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestTelemetryRepository_AppendAndQuery(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := seedReading(t, db, "device-001", "ACME Corporation", base, models.DeviceStatusActive, f(80))
	seedReading(t, db, "device-001", "ACME Corporation", base.Add(time.Minute), models.DeviceStatusActive, f(120))
	seedReading(t, db, "mobile-001", "Customer Inc", base.Add(2*time.Minute), models.DeviceStatusDegraded, nil)

	assert.NotZero(t, first.ID, "append must report the assigned id")

	readings, err := db.Telemetry.Query(ctx, TelemetryFilter{Organization: "ACME Corporation"})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	// Newest first.
	assert.True(t, readings[0].Timestamp.After(readings[1].Timestamp))

	readings, err = db.Telemetry.Query(ctx, TelemetryFilter{DeviceID: "mobile-001"})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, models.DeviceStatusDegraded, readings[0].Status)

	from := base.Add(30 * time.Second)
	readings, err = db.Telemetry.Query(ctx, TelemetryFilter{Organization: "ACME Corporation", From: &from})
	require.NoError(t, err)
	assert.Len(t, readings, 1)

	readings, err = db.Telemetry.Query(ctx, TelemetryFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, readings, 1)

	readings, err = db.Telemetry.Query(ctx, TelemetryFilter{Limit: 1, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestTelemetryRepository_AppendOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Appending a duplicate timestamp for the same device creates a second
	// row instead of overwriting the first.
	seedReading(t, db, "device-001", "ACME Corporation", base, models.DeviceStatusActive, f(80))
	seedReading(t, db, "device-001", "ACME Corporation", base, models.DeviceStatusOffline, f(90))

	readings, err := db.Telemetry.Query(ctx, TelemetryFilter{DeviceID: "device-001"})
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestTelemetryRepository_LatestPerDevice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedReading(t, db, "device-001", "ACME Corporation", base, models.DeviceStatusActive, f(80))
	seedReading(t, db, "device-001", "ACME Corporation", base.Add(time.Hour), models.DeviceStatusDegraded, f(150))
	seedReading(t, db, "sat-001", "ACME Corporation", base.Add(30*time.Minute), models.DeviceStatusActive, nil)
	seedReading(t, db, "mobile-001", "Customer Inc", base, models.DeviceStatusActive, nil)

	latest, err := db.Telemetry.LatestPerDevice(ctx, "ACME Corporation")
	require.NoError(t, err)
	require.Len(t, latest, 2)

	byDevice := map[string]*models.TelemetryReading{}
	for _, r := range latest {
		byDevice[r.DeviceID] = r
	}
	require.Contains(t, byDevice, "device-001")
	assert.Equal(t, models.DeviceStatusDegraded, byDevice["device-001"].Status)

	reading, err := db.Telemetry.LatestForDevice(ctx, "ACME Corporation", "device-001")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), reading.Timestamp.UTC())

	_, err = db.Telemetry.LatestForDevice(ctx, "ACME Corporation", "missing-device")
	assert.True(t, errors.Is(err, apierror.ErrNotFound))

	// Tenancy: the Customer Inc scope never sees ACME devices.
	_, err = db.Telemetry.LatestForDevice(ctx, "Customer Inc", "device-001")
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestTelemetryRepository_History(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedReading(t, db, "device-001", "ACME Corporation", base, models.DeviceStatusActive, f(80))
	seedReading(t, db, "device-001", "ACME Corporation", base.Add(time.Hour), models.DeviceStatusActive, f(90))
	seedReading(t, db, "device-001", "ACME Corporation", base.Add(-48*time.Hour), models.DeviceStatusActive, f(70))

	history, err := db.Telemetry.History(ctx, "ACME Corporation", "device-001", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Oldest first for charting.
	assert.True(t, history[0].Timestamp.Before(history[1].Timestamp))
}

func TestTelemetryRepository_Aggregate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 9; i++ {
		seedReading(t, db, "device-001", "ACME Corporation", base.Add(time.Duration(i)*time.Minute), models.DeviceStatusActive, f(120))
	}
	seedReading(t, db, "device-001", "ACME Corporation", base.Add(9*time.Minute), models.DeviceStatusOffline, f(120))

	agg, err := db.Telemetry.Aggregate(ctx, "ACME Corporation", base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 10, agg.Count)
	assert.Equal(t, 9, agg.ActiveCount)
	require.NotNil(t, agg.AvgLatencyMS)
	assert.Equal(t, 120.0, *agg.AvgLatencyMS)
	assert.Nil(t, agg.AvgPacketLossPercent)

	empty, err := db.Telemetry.Aggregate(ctx, "ACME Corporation", base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.AvgLatencyMS)
}

func TestTelemetryRepository_Summary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedReading(t, db, "device-001", "ACME Corporation", now.Add(-time.Hour), models.DeviceStatusActive, f(100))
	seedReading(t, db, "sat-001", "ACME Corporation", now.Add(-2*time.Hour), models.DeviceStatusOffline, nil)

	summary, err := db.Telemetry.Summary(ctx, "ACME Corporation", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalDevices)
	assert.Equal(t, 1, summary.ActiveDevices)
	assert.Equal(t, 1, summary.OfflineDevices)
	require.NotNil(t, summary.Last24hMetrics.AvgLatencyMS)
	assert.Equal(t, 100.0, *summary.Last24hMetrics.AvgLatencyMS)
}

func TestTelemetryRepository_CountSinceAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedReading(t, db, "device-001", "ACME Corporation", now.Add(-time.Hour), models.DeviceStatusActive, nil)
	seedReading(t, db, "device-001", "ACME Corporation", now.Add(-30*time.Hour), models.DeviceStatusActive, nil)

	count, err := db.Telemetry.CountSince(ctx, "ACME Corporation", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	deleted, err := db.Telemetry.DeleteByDevice(ctx, "device-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = db.Telemetry.DeleteByDevice(ctx, "device-001")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestNetworkRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	network := &models.Network{
		NetworkID:        "net_abc123def456",
		Organization:     "ACME Corporation",
		Name:             "ACME Backbone",
		NetworkType:      models.NetworkTypeSatellite,
		Config:           map[string]any{"region": "us-east"},
		Status:           "active",
		CreatedAt:        now,
		UpdatedAt:        now,
		SLAUptimeTarget:  99.9,
		SLALatencyTarget: 100,
	}
	require.NoError(t, db.Networks.Create(ctx, network))

	got, err := db.Networks.Get(ctx, network.NetworkID)
	require.NoError(t, err)
	assert.Equal(t, "ACME Backbone", got.Name)
	assert.Equal(t, "us-east", got.Config["region"])
	assert.Nil(t, got.HealthScore)

	networks, err := db.Networks.List(ctx, NetworkFilter{Organization: "ACME Corporation"})
	require.NoError(t, err)
	assert.Len(t, networks, 1)

	networks, err = db.Networks.List(ctx, NetworkFilter{Organization: "Customer Inc"})
	require.NoError(t, err)
	assert.Empty(t, networks)

	got.Name = "ACME Backbone v2"
	require.NoError(t, db.Networks.Update(ctx, got))
	got, err = db.Networks.Get(ctx, network.NetworkID)
	require.NoError(t, err)
	assert.Equal(t, "ACME Backbone v2", got.Name)

	require.NoError(t, db.Networks.UpdateHealthScore(ctx, network.NetworkID, 76.7))
	got, err = db.Networks.Get(ctx, network.NetworkID)
	require.NoError(t, err)
	require.NotNil(t, got.HealthScore)
	assert.Equal(t, 76.7, *got.HealthScore)
	// Score write leaves the rest of the record alone.
	assert.Equal(t, "ACME Backbone v2", got.Name)

	require.NoError(t, db.Networks.Delete(ctx, network.NetworkID))
	_, err = db.Networks.Get(ctx, network.NetworkID)
	assert.True(t, errors.Is(err, apierror.ErrNotFound))

	err = db.Networks.Delete(ctx, network.NetworkID)
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestPartnerRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	partner := &models.Partner{
		PartnerID:           "partner_abc123def456",
		OrganizationName:    "ACME Corporation",
		PartnerType:         models.PartnerTypeChannel,
		Tier:                "gold",
		PrimaryContactName:  "Jules Verne",
		PrimaryContactEmail: "jules@acme.example",
		APIAccessEnabled:    true,
		IPWhitelist:         []string{"203.0.113.0/24"},
		Status:              "active",
		OnboardedAt:         time.Now().UTC(),
		Tags:                []string{"priority"},
	}
	require.NoError(t, db.Partners.Create(ctx, partner))

	got, err := db.Partners.Get(ctx, partner.PartnerID)
	require.NoError(t, err)
	assert.Equal(t, "gold", got.Tier)
	assert.Equal(t, []string{"203.0.113.0/24"}, got.IPWhitelist)

	partners, err := db.Partners.List(ctx, PartnerFilter{Tier: "gold"})
	require.NoError(t, err)
	assert.Len(t, partners, 1)

	partners, err = db.Partners.List(ctx, PartnerFilter{Status: "suspended"})
	require.NoError(t, err)
	assert.Empty(t, partners)

	require.NoError(t, db.Partners.SetAccess(ctx, partner.PartnerID, "suspended", false))
	got, err = db.Partners.Get(ctx, partner.PartnerID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", got.Status)
	assert.False(t, got.APIAccessEnabled)

	require.NoError(t, db.Partners.SetAccess(ctx, partner.PartnerID, "active", true))
	got, err = db.Partners.Get(ctx, partner.PartnerID)
	require.NoError(t, err)
	assert.True(t, got.APIAccessEnabled)

	require.NoError(t, db.Partners.Delete(ctx, partner.PartnerID))
	_, err = db.Partners.Get(ctx, partner.PartnerID)
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestClean(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedDemoData(ctx))
	require.NoError(t, db.Clean(ctx))

	count, err := db.Users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedDemoData(ctx))

	user, err := db.Users.GetByUsername(ctx, "enterprise_admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	key, err := db.DeviceKeys.Get(ctx, "ok_device-001_abc123xyz")
	require.NoError(t, err)
	assert.Equal(t, "device-001", key.DeviceID)

	// Seeding is idempotent: a populated store is left untouched.
	require.NoError(t, db.SeedDemoData(ctx))
	count, err := db.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
