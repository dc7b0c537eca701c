package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTKey = "unit-test-jwt-secret-key-0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testJWTKey)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Gateway.Host)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, 10*time.Second, cfg.Gateway.StoreTimeout)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "file:./gateway.db", cfg.Database.DSN)
	assert.False(t, cfg.Database.SeedDemoData)
	assert.True(t, cfg.Gateway.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetListenAddress())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testJWTKey)
	t.Setenv("GATEWAY_PORT", "9090")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("DATABASE_URL", "file:/tmp/test.db")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Gateway.Port)
	assert.True(t, cfg.Database.SeedDemoData)
	assert.Equal(t, "file:/tmp/test.db", cfg.Database.DSN)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testJWTKey)

	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	yaml := `
gateway:
  host: 127.0.0.1
  port: 8443
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Gateway.Host)
	assert.Equal(t, 8443, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvironmentBeatsYAML(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testJWTKey)
	t.Setenv("GATEWAY_PORT", "7000")

	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  port: 8443\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Gateway.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Auth: AuthConfig{
				JWTSecretKey: testJWTKey,
				TokenTTL:     time.Hour,
			},
			Database: DatabaseConfig{DSN: "file::memory:"},
			Gateway: GatewayConfig{
				Host:         "0.0.0.0",
				Port:         8080,
				StoreTimeout: 10 * time.Second,
				Metrics: MetricsConfig{
					Enabled:            true,
					CollectionInterval: 30 * time.Second,
				},
			},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Auth.JWTSecretKey = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.JWTSecretKey = "too-short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Gateway.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Gateway.StoreTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Gateway.Metrics.CollectionInterval = 0
	assert.Error(t, cfg.Validate())
}
