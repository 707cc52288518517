package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryBackend(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "America/Sao_Paulo", cfg.Dashboard.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, 10, cfg.Dashboard.LeaderboardTop)
	assert.Equal(t, 20*time.Second, cfg.Dashboard.LoadTimeout)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.Auth.SkipPaths)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadSupabaseRequiresCredentials(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "supabase")
	t.Setenv("DASH_SUPABASE_URL", "")
	t.Setenv("DASH_SUPABASE_KEY", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DASH_SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("DASH_SUPABASE_KEY", "anon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestLoadAuthNeedsKey(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "memory")
	t.Setenv("DASH_AUTH_ENABLED", "true")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DASH_API_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}

func TestEnvParsingFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "memory")
	t.Setenv("DASH_REFRESH_INTERVAL", "soon")
	t.Setenv("DASH_DB_PORT", "abc")
	t.Setenv("DASH_CLICKHOUSE_ADDR", "ch1:9000, ch2:9000 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.RefreshInterval)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"ch1:9000", "ch2:9000"}, cfg.ClickHouse.Addr)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 6543, DBName: "db", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@h:6543/db?sslmode=require", d.DSN())
}

func TestLoadTimeoutMustBePositive(t *testing.T) {
	t.Setenv("DASH_STORE_BACKEND", "memory")
	t.Setenv("DASH_LOAD_TIMEOUT", "-1s")
	_, err := Load()
	assert.ErrorContains(t, err, "DASH_LOAD_TIMEOUT")
}
