package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// BunDB wraps bun.DB and provides repository access
type BunDB struct {
	db *bun.DB

	// Repositories
	Users      UserRepository
	DeviceKeys DeviceKeyRepository
	Telemetry  TelemetryRepository
	Networks   NetworkRepository
	Partners   PartnerRepository
}

// Option is a functional option for configuring the database
type Option func(*BunDB)

// WithDebug enables query logging for debugging
func WithDebug(enabled bool) Option {
	return func(db *BunDB) {
		if enabled {
			db.db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
			))
			log.Info().Msg("Bun query logging enabled")
		}
	}
}

// New creates a new Bun-based database connection
func New(dbPath string, opts ...Option) (*BunDB, error) {
	// Open SQLite connection using sqliteshim (compatible with modernc.org/sqlite)
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create Bun DB with SQLite dialect
	db := bun.NewDB(sqldb, sqlitedialect.New())

	bunDB := &BunDB{
		db: db,
	}

	// Apply options
	for _, opt := range opts {
		opt(bunDB)
	}

	// Initialize repositories
	bunDB.Users = NewUserRepository(db)
	bunDB.DeviceKeys = NewDeviceKeyRepository(db)
	bunDB.Telemetry = NewTelemetryRepository(db)
	bunDB.Networks = NewNetworkRepository(db)
	bunDB.Partners = NewPartnerRepository(db)

	// Run migrations
	if err := bunDB.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Bun database initialized successfully")
	return bunDB, nil
}

// Close closes the database connection
func (db *BunDB) Close() error {
	return db.db.Close()
}

// DB returns the underlying bun.DB instance for advanced operations
func (db *BunDB) DB() *bun.DB {
	return db.db
}

// Migrate runs database migrations
func (db *BunDB) Migrate(ctx context.Context) error {
	log.Info().Msg("Running database migrations")

	// Create tables if they don't exist
	tables := []interface{}{
		(*User)(nil),
		(*DeviceKey)(nil),
		(*Telemetry)(nil),
		(*Network)(nil),
		(*Partner)(nil),
	}

	for _, model := range tables {
		if _, err := db.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Create indexes for foreign keys and common queries
	indexes := []string{
		// Telemetry indexes: (device, timestamp) is the ordering key
		"CREATE INDEX IF NOT EXISTS idx_telemetry_device_id ON telemetry(device_id, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_telemetry_organization ON telemetry(organization, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_telemetry_status ON telemetry(status)",

		// Network indexes
		"CREATE INDEX IF NOT EXISTS idx_networks_organization ON networks(organization)",
		"CREATE INDEX IF NOT EXISTS idx_networks_status ON networks(status)",

		// Partner indexes
		"CREATE INDEX IF NOT EXISTS idx_partners_organization_name ON partners(organization_name)",
		"CREATE INDEX IF NOT EXISTS idx_partners_status ON partners(status)",

		// Device key indexes
		"CREATE INDEX IF NOT EXISTS idx_device_keys_device_id ON device_keys(device_id)",

		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_organization ON users(organization)",
	}

	for _, idx := range indexes {
		if _, err := db.db.ExecContext(ctx, idx); err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index (may already exist)")
			// Don't fail on index errors - they might already exist
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// Clean removes all data from all tables (useful for development/testing)
// WARNING: This will delete ALL data in the database!
func (db *BunDB) Clean(ctx context.Context) error {
	log.Warn().Msg("Cleaning all data from database")

	tables := []string{
		"telemetry",
		"networks",
		"partners",
		"device_keys",
		"users",
	}

	for _, table := range tables {
		_, err := db.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			log.Error().Err(err).Str("table", table).Msg("Failed to clean table")
			// Continue with other tables even if one fails
		} else {
			log.Debug().Str("table", table).Msg("Cleaned table")
		}
	}

	log.Info().Msg("Database cleaned successfully")
	return nil
}
