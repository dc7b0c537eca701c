package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/apierror"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// UserRepository provides database operations for bearer-credential accounts
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	db *bun.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", apierror.ErrNotFound, username)
	}
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	return user.ToModel(), nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	dbUser := UserFromModel(user)
	_, err := r.db.NewInsert().
		Model(dbUser).
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*User)(nil)).
		Count(ctx)
	return count, apierror.FromContext(err)
}

// DeviceKeyRepository provides database operations for device API keys
type DeviceKeyRepository interface {
	Get(ctx context.Context, key string) (*models.DeviceKey, error)
	Create(ctx context.Context, key *models.DeviceKey) error
	TouchLastUsed(ctx context.Context, key string, at time.Time) error
	SetActive(ctx context.Context, key string, active bool) error
}

type deviceKeyRepository struct {
	db *bun.DB
}

// NewDeviceKeyRepository creates a new device key repository
func NewDeviceKeyRepository(db *bun.DB) DeviceKeyRepository {
	return &deviceKeyRepository{db: db}
}

func (r *deviceKeyRepository) Get(ctx context.Context, key string) (*models.DeviceKey, error) {
	keyData := new(DeviceKey)
	err := r.db.NewSelect().
		Model(keyData).
		Where("key = ?", key).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: device key", apierror.ErrNotFound)
	}
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	return keyData.ToModel(), nil
}

func (r *deviceKeyRepository) Create(ctx context.Context, key *models.DeviceKey) error {
	dbKey := DeviceKeyFromModel(key)
	_, err := r.db.NewInsert().
		Model(dbKey).
		Exec(ctx)
	return apierror.FromContext(err)
}

// TouchLastUsed records the last successful use of a key. Only the timestamp
// is touched; the device binding stays immutable.
func (r *deviceKeyRepository) TouchLastUsed(ctx context.Context, key string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*DeviceKey)(nil)).
		Set("last_used = ?", at.UTC()).
		Where("key = ?", key).
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *deviceKeyRepository) SetActive(ctx context.Context, key string, active bool) error {
	_, err := r.db.NewUpdate().
		Model((*DeviceKey)(nil)).
		Set("active = ?", active).
		Where("key = ?", key).
		Exec(ctx)
	return apierror.FromContext(err)
}

// TelemetryFilter narrows telemetry queries. Zero values mean "no filter".
type TelemetryFilter struct {
	Organization string
	DeviceID     string
	Status       string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// TelemetryRepository provides append-only storage and range queries for
// telemetry readings. Appends never block readers and rows are never updated.
type TelemetryRepository interface {
	Append(ctx context.Context, reading *models.TelemetryReading) error
	Query(ctx context.Context, filter TelemetryFilter) ([]*models.TelemetryReading, error)
	LatestPerDevice(ctx context.Context, organization string) ([]*models.TelemetryReading, error)
	LatestForDevice(ctx context.Context, organization, deviceID string) (*models.TelemetryReading, error)
	History(ctx context.Context, organization, deviceID string, since time.Time) ([]*models.TelemetryReading, error)
	Aggregate(ctx context.Context, organization string, from, to time.Time) (models.TelemetryAggregate, error)
	Summary(ctx context.Context, organization string, since time.Time) (*models.TelemetrySummary, error)
	CountSince(ctx context.Context, organization string, since time.Time) (int, error)
	DeleteByDevice(ctx context.Context, deviceID string) (int64, error)
}

type telemetryRepository struct {
	db *bun.DB
}

// NewTelemetryRepository creates a new telemetry repository
func NewTelemetryRepository(db *bun.DB) TelemetryRepository {
	return &telemetryRepository{db: db}
}

func (r *telemetryRepository) Append(ctx context.Context, reading *models.TelemetryReading) error {
	row := TelemetryFromModel(reading)
	_, err := r.db.NewInsert().
		Model(row).
		Exec(ctx)
	if err != nil {
		return apierror.FromContext(err)
	}
	reading.ID = row.ID
	return nil
}

func (r *telemetryRepository) Query(ctx context.Context, filter TelemetryFilter) ([]*models.TelemetryReading, error) {
	var rows []*Telemetry
	q := r.db.NewSelect().Model(&rows)

	if filter.Organization != "" {
		q = q.Where("organization = ?", filter.Organization)
	}
	if filter.DeviceID != "" {
		q = q.Where("device_id = ?", filter.DeviceID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("timestamp <= ?", *filter.To)
	}

	q = q.Order("timestamp DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, apierror.FromContext(err)
	}

	result := make([]*models.TelemetryReading, len(rows))
	for i, row := range rows {
		result[i] = row.ToModel()
	}
	return result, nil
}

// LatestPerDevice returns the most recent reading for each device, optionally
// scoped to one organization.
func (r *telemetryRepository) LatestPerDevice(ctx context.Context, organization string) ([]*models.TelemetryReading, error) {
	latest := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		ColumnExpr("device_id AS device_id").
		ColumnExpr("MAX(timestamp) AS max_timestamp").
		Group("device_id")
	if organization != "" {
		latest = latest.Where("organization = ?", organization)
	}

	var rows []*Telemetry
	err := r.db.NewSelect().
		Model(&rows).
		Join("JOIN (?) AS latest ON t.device_id = latest.device_id AND t.timestamp = latest.max_timestamp", latest).
		Scan(ctx)
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	result := make([]*models.TelemetryReading, len(rows))
	for i, row := range rows {
		result[i] = row.ToModel()
	}
	return result, nil
}

func (r *telemetryRepository) LatestForDevice(ctx context.Context, organization, deviceID string) (*models.TelemetryReading, error) {
	row := new(Telemetry)
	q := r.db.NewSelect().
		Model(row).
		Where("device_id = ?", deviceID)
	if organization != "" {
		q = q.Where("organization = ?", organization)
	}

	err := q.Order("timestamp DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no telemetry for device %s", apierror.ErrNotFound, deviceID)
	}
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	return row.ToModel(), nil
}

func (r *telemetryRepository) History(ctx context.Context, organization, deviceID string, since time.Time) ([]*models.TelemetryReading, error) {
	var rows []*Telemetry
	q := r.db.NewSelect().
		Model(&rows).
		Where("device_id = ?", deviceID).
		Where("timestamp >= ?", since)
	if organization != "" {
		q = q.Where("organization = ?", organization)
	}

	if err := q.Order("timestamp ASC").Scan(ctx); err != nil {
		return nil, apierror.FromContext(err)
	}

	result := make([]*models.TelemetryReading, len(rows))
	for i, row := range rows {
		result[i] = row.ToModel()
	}
	return result, nil
}

// Aggregate computes the window aggregate consumed by the health engine.
// Averages are over rows where the metric is present; NULLs never drag an
// average toward zero.
func (r *telemetryRepository) Aggregate(ctx context.Context, organization string, from, to time.Time) (models.TelemetryAggregate, error) {
	var avgLatency, avgPacketLoss sql.NullFloat64
	var count, activeCount int

	err := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		ColumnExpr("AVG(latency_ms)").
		ColumnExpr("AVG(packet_loss_percent)").
		ColumnExpr("COUNT(*)").
		ColumnExpr("COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0)").
		Where("organization = ?", organization).
		Where("timestamp >= ?", from).
		Where("timestamp <= ?", to).
		Scan(ctx, &avgLatency, &avgPacketLoss, &count, &activeCount)
	if err != nil {
		return models.TelemetryAggregate{}, apierror.FromContext(err)
	}

	agg := models.TelemetryAggregate{
		Count:       count,
		ActiveCount: activeCount,
	}
	if avgLatency.Valid {
		agg.AvgLatencyMS = &avgLatency.Float64
	}
	if avgPacketLoss.Valid {
		agg.AvgPacketLossPercent = &avgPacketLoss.Float64
	}
	return agg, nil
}

func (r *telemetryRepository) Summary(ctx context.Context, organization string, since time.Time) (*models.TelemetrySummary, error) {
	devices := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		ColumnExpr("COUNT(DISTINCT device_id)")
	activeDevices := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		ColumnExpr("COUNT(DISTINCT device_id)").
		Where("status = 'active'")
	if organization != "" {
		devices = devices.Where("organization = ?", organization)
		activeDevices = activeDevices.Where("organization = ?", organization)
	}

	var totalDevices, activeCount int
	if err := devices.Scan(ctx, &totalDevices); err != nil {
		return nil, apierror.FromContext(err)
	}
	if err := activeDevices.Scan(ctx, &activeCount); err != nil {
		return nil, apierror.FromContext(err)
	}

	var avgLatency, avgPacketLoss, avgThroughput, avgSignal sql.NullFloat64
	recent := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		ColumnExpr("AVG(latency_ms)").
		ColumnExpr("AVG(packet_loss_percent)").
		ColumnExpr("AVG(throughput_mbps)").
		ColumnExpr("AVG(signal_strength)").
		Where("timestamp >= ?", since)
	if organization != "" {
		recent = recent.Where("organization = ?", organization)
	}
	if err := recent.Scan(ctx, &avgLatency, &avgPacketLoss, &avgThroughput, &avgSignal); err != nil {
		return nil, apierror.FromContext(err)
	}

	summary := &models.TelemetrySummary{
		Organization:   organization,
		TotalDevices:   totalDevices,
		ActiveDevices:  activeCount,
		OfflineDevices: totalDevices - activeCount,
	}
	if avgLatency.Valid {
		summary.Last24hMetrics.AvgLatencyMS = round2(avgLatency.Float64)
	}
	if avgPacketLoss.Valid {
		summary.Last24hMetrics.AvgPacketLossPercent = round2(avgPacketLoss.Float64)
	}
	if avgThroughput.Valid {
		summary.Last24hMetrics.AvgThroughputMbps = round2(avgThroughput.Float64)
	}
	if avgSignal.Valid {
		summary.Last24hMetrics.AvgSignalStrength = round2(avgSignal.Float64)
	}
	return summary, nil
}

func (r *telemetryRepository) CountSince(ctx context.Context, organization string, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Telemetry)(nil)).
		Where("organization = ?", organization).
		Where("timestamp >= ?", since).
		Count(ctx)
	return count, apierror.FromContext(err)
}

func (r *telemetryRepository) DeleteByDevice(ctx context.Context, deviceID string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*Telemetry)(nil)).
		Where("device_id = ?", deviceID).
		Exec(ctx)
	if err != nil {
		return 0, apierror.FromContext(err)
	}
	return res.RowsAffected()
}

// NetworkFilter narrows network listings. Zero values mean "no filter".
type NetworkFilter struct {
	Organization string
	NetworkType  string
	Status       string
}

// NetworkRepository provides database operations for networks
type NetworkRepository interface {
	Get(ctx context.Context, networkID string) (*models.Network, error)
	List(ctx context.Context, filter NetworkFilter) ([]*models.Network, error)
	Create(ctx context.Context, network *models.Network) error
	Update(ctx context.Context, network *models.Network) error
	Delete(ctx context.Context, networkID string) error
	UpdateHealthScore(ctx context.Context, networkID string, score float64) error
}

type networkRepository struct {
	db *bun.DB
}

// NewNetworkRepository creates a new network repository
func NewNetworkRepository(db *bun.DB) NetworkRepository {
	return &networkRepository{db: db}
}

func (r *networkRepository) Get(ctx context.Context, networkID string) (*models.Network, error) {
	network := new(Network)
	err := r.db.NewSelect().
		Model(network).
		Where("network_id = ?", networkID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: network %s", apierror.ErrNotFound, networkID)
	}
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	return network.ToModel(), nil
}

func (r *networkRepository) List(ctx context.Context, filter NetworkFilter) ([]*models.Network, error) {
	var rows []*Network
	q := r.db.NewSelect().Model(&rows)

	if filter.Organization != "" {
		q = q.Where("organization = ?", filter.Organization)
	}
	if filter.NetworkType != "" {
		q = q.Where("network_type = ?", filter.NetworkType)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, apierror.FromContext(err)
	}

	result := make([]*models.Network, len(rows))
	for i, row := range rows {
		result[i] = row.ToModel()
	}
	return result, nil
}

func (r *networkRepository) Create(ctx context.Context, network *models.Network) error {
	dbNetwork := NetworkFromModel(network)
	_, err := r.db.NewInsert().
		Model(dbNetwork).
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *networkRepository) Update(ctx context.Context, network *models.Network) error {
	dbNetwork := NetworkFromModel(network)
	_, err := r.db.NewUpdate().
		Model(dbNetwork).
		WherePK().
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *networkRepository) Delete(ctx context.Context, networkID string) error {
	res, err := r.db.NewDelete().
		Model((*Network)(nil)).
		Where("network_id = ?", networkID).
		Exec(ctx)
	if err != nil {
		return apierror.FromContext(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: network %s", apierror.ErrNotFound, networkID)
	}
	return nil
}

// UpdateHealthScore overwrites only the stored health score. Last write wins;
// there is no version check.
func (r *networkRepository) UpdateHealthScore(ctx context.Context, networkID string, score float64) error {
	_, err := r.db.NewUpdate().
		Model((*Network)(nil)).
		Set("health_score = ?", score).
		Where("network_id = ?", networkID).
		Exec(ctx)
	return apierror.FromContext(err)
}

// PartnerFilter narrows partner listings. Zero values mean "no filter".
type PartnerFilter struct {
	OrganizationName string
	PartnerType      string
	Tier             string
	Status           string
}

// PartnerRepository provides database operations for partners
type PartnerRepository interface {
	Get(ctx context.Context, partnerID string) (*models.Partner, error)
	List(ctx context.Context, filter PartnerFilter) ([]*models.Partner, error)
	Create(ctx context.Context, partner *models.Partner) error
	Update(ctx context.Context, partner *models.Partner) error
	Delete(ctx context.Context, partnerID string) error
	SetAccess(ctx context.Context, partnerID, status string, apiAccessEnabled bool) error
}

type partnerRepository struct {
	db *bun.DB
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db *bun.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Get(ctx context.Context, partnerID string) (*models.Partner, error) {
	partner := new(Partner)
	err := r.db.NewSelect().
		Model(partner).
		Where("partner_id = ?", partnerID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: partner %s", apierror.ErrNotFound, partnerID)
	}
	if err != nil {
		return nil, apierror.FromContext(err)
	}

	return partner.ToModel(), nil
}

func (r *partnerRepository) List(ctx context.Context, filter PartnerFilter) ([]*models.Partner, error) {
	var rows []*Partner
	q := r.db.NewSelect().Model(&rows)

	if filter.OrganizationName != "" {
		q = q.Where("organization_name = ?", filter.OrganizationName)
	}
	if filter.PartnerType != "" {
		q = q.Where("partner_type = ?", filter.PartnerType)
	}
	if filter.Tier != "" {
		q = q.Where("tier = ?", filter.Tier)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Order("onboarded_at DESC").Scan(ctx); err != nil {
		return nil, apierror.FromContext(err)
	}

	result := make([]*models.Partner, len(rows))
	for i, row := range rows {
		result[i] = row.ToModel()
	}
	return result, nil
}

func (r *partnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	dbPartner := PartnerFromModel(partner)
	_, err := r.db.NewInsert().
		Model(dbPartner).
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *partnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	dbPartner := PartnerFromModel(partner)
	_, err := r.db.NewUpdate().
		Model(dbPartner).
		WherePK().
		Exec(ctx)
	return apierror.FromContext(err)
}

func (r *partnerRepository) Delete(ctx context.Context, partnerID string) error {
	res, err := r.db.NewDelete().
		Model((*Partner)(nil)).
		Where("partner_id = ?", partnerID).
		Exec(ctx)
	if err != nil {
		return apierror.FromContext(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: partner %s", apierror.ErrNotFound, partnerID)
	}
	return nil
}

func (r *partnerRepository) SetAccess(ctx context.Context, partnerID, status string, apiAccessEnabled bool) error {
	res, err := r.db.NewUpdate().
		Model((*Partner)(nil)).
		Set("status = ?", status).
		Set("api_access_enabled = ?", apiAccessEnabled).
		Where("partner_id = ?", partnerID).
		Exec(ctx)
	if err != nil {
		return apierror.FromContext(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: partner %s", apierror.ErrNotFound, partnerID)
	}
	return nil
}

// round2 rounds a reported average to 2 decimal places.
func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
