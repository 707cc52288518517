package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends understood by the service.
const (
	BackendSupabase   = "supabase"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config holds all configuration for the dashboard service.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Supabase   SupabaseConfig
	Database   DatabaseConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Dashboard  DashboardConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

// StoreConfig selects where daily summaries and creatives are read from.
type StoreConfig struct {
	Backend string
	// CacheEnabled puts a Redis read-through cache in front of the backend.
	CacheEnabled bool
	CacheTTL     time.Duration
	// FixturesPath seeds the memory backend from a JSON file.
	FixturesPath string
}

// SupabaseConfig configures the PostgREST endpoint of the hosted project.
type SupabaseConfig struct {
	URL         string
	Key         string
	HTTPTimeout time.Duration
	MaxRetries  int
	PageSize    int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ClickHouseConfig configures the optional reporting replica.
type ClickHouseConfig struct {
	Addr        []string
	Database    string
	Username    string
	Password    string
	DialTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// DashboardConfig holds settings of the dashboard computation itself.
type DashboardConfig struct {
	Timezone        string
	RefreshInterval time.Duration
	// MaxTracked bounds how many (product, range) snapshots the refresher keeps warm.
	MaxTracked     int
	LeaderboardTop int
	// LoadTimeout bounds the store reads of one dashboard load. It must stay
	// under the server's write timeout.
	LoadTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("DASH_HTTP_ADDR", ":8080"),
			Env:             getEnv("DASH_ENV", "development"),
			ShutdownTimeout: getDurationEnv("DASH_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getEnv("DASH_STORE_BACKEND", BackendSupabase)),
			CacheEnabled: getBoolEnv("DASH_CACHE_ENABLED", false),
			CacheTTL:     getDurationEnv("DASH_CACHE_TTL", 4*time.Minute),
			FixturesPath: getEnv("DASH_FIXTURES_PATH", ""),
		},
		Supabase: SupabaseConfig{
			URL:         strings.TrimRight(getEnv("DASH_SUPABASE_URL", ""), "/"),
			Key:         getEnv("DASH_SUPABASE_KEY", ""),
			HTTPTimeout: getDurationEnv("DASH_SUPABASE_TIMEOUT", 15*time.Second),
			MaxRetries:  getIntEnv("DASH_SUPABASE_MAX_RETRIES", 3),
			PageSize:    getIntEnv("DASH_SUPABASE_PAGE_SIZE", 1000),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DASH_DB_HOST", "localhost"),
			Port:     getIntEnv("DASH_DB_PORT", 5432),
			User:     getEnv("DASH_DB_USER", "postgres"),
			Password: getEnv("DASH_DB_PASSWORD", ""),
			DBName:   getEnv("DASH_DB_NAME", "postgres"),
			SSLMode:  getEnv("DASH_DB_SSLMODE", "require"),
			MaxConns: getIntEnv("DASH_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("DASH_DB_MIN_CONNS", 1),
		},
		ClickHouse: ClickHouseConfig{
			Addr:        getSliceEnv("DASH_CLICKHOUSE_ADDR", []string{"localhost:9000"}),
			Database:    getEnv("DASH_CLICKHOUSE_DB", "default"),
			Username:    getEnv("DASH_CLICKHOUSE_USER", "default"),
			Password:    getEnv("DASH_CLICKHOUSE_PASSWORD", ""),
			DialTimeout: getDurationEnv("DASH_CLICKHOUSE_DIAL_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("DASH_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("DASH_REDIS_PASSWORD", ""),
			DB:       getIntEnv("DASH_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("DASH_AUTH_ENABLED", false),
			MasterKey: getEnv("DASH_API_KEY", ""),
			SkipPaths: getSliceEnv("DASH_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("DASH_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("DASH_RATE_LIMIT_RPS", 20),
			Burst:   getIntEnv("DASH_RATE_LIMIT_BURST", 40),
		},
		Log: LogConfig{
			Level:  getEnv("DASH_LOG_LEVEL", "info"),
			Format: getEnv("DASH_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("DASH_METRICS_ENABLED", true),
			Path:      getEnv("DASH_METRICS_PATH", "/metrics"),
			Namespace: getEnv("DASH_METRICS_NAMESPACE", "dashboard"),
		},
		Dashboard: DashboardConfig{
			Timezone:        getEnv("DASH_TIMEZONE", "America/Sao_Paulo"),
			RefreshInterval: getDurationEnv("DASH_REFRESH_INTERVAL", 5*time.Minute),
			MaxTracked:      getIntEnv("DASH_MAX_TRACKED", 64),
			LeaderboardTop:  getIntEnv("DASH_LEADERBOARD_TOP", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("DASH_SUPABASE_URL and DASH_SUPABASE_KEY are required for the supabase backend")
		}
	case BackendPostgres, BackendClickHouse, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("DASH_API_KEY is required when auth is enabled")
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("DASH_REFRESH_INTERVAL must be positive")
	}
	if c.Dashboard.LoadTimeout <= 0 {
		return fmt.Errorf("DASH_LOAD_TIMEOUT must be positive")
	}
	if c.Supabase.PageSize <= 0 {
		return fmt.Errorf("DASH_SUPABASE_PAGE_SIZE must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
