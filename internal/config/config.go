package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // plant time zones on hosts without zoneinfo

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Plant        PlantConfig        `mapstructure:"plant"`
	Summary      SummaryConfig      `mapstructure:"summary"`
	Measurements MeasurementsConfig `mapstructure:"measurements"`
	Security     SecurityConfig     `mapstructure:"security"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	Mode            string `mapstructure:"mode"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
	EnableGzip      bool   `mapstructure:"enable_gzip"`
}

type DatabaseConfig struct {
	Path           string          `mapstructure:"path"`
	MigrationsPath string          `mapstructure:"migrations_path"`
	MaxConnections int             `mapstructure:"max_connections"`
	QueryTimeout   string          `mapstructure:"query_timeout"`
	Migration      MigrationConfig `mapstructure:"migration"`
}

type MigrationConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenExpiry int    `mapstructure:"token_expiry"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	BatchSize int    `mapstructure:"batch_size"`
}

// PlantConfig describes the monitored site. Timestamps in the measurement table
// are wall-clock times in Timezone.
type PlantConfig struct {
	Name     string `mapstructure:"name"`
	Location string `mapstructure:"location"`
	Timezone string `mapstructure:"timezone"`
}

// SummaryConfig selects where period grouping runs: "sql" or "rows"
type SummaryConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type MeasurementsConfig struct {
	MaxRange string `mapstructure:"max_range"`
}

type SecurityConfig struct {
	EnableCORS     bool              `mapstructure:"enable_cors"`
	AllowedOrigins []string          `mapstructure:"allowed_origins"`
	RateLimiting   RateLimitSettings `mapstructure:"rate_limiting"`
}

type RateLimitSettings struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	BurstSize         int  `mapstructure:"burst_size"`
}

type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Freshness  FreshnessConfig  `mapstructure:"freshness"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Prefix  string `mapstructure:"prefix"`
}

// FreshnessConfig drives the cron job that watches for stalled ingestion
type FreshnessConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	StaleAfter string `mapstructure:"stale_after"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.mode", "SOLAR_MODE")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.enabled", "SOLAR_AUTH_ENABLED")
	viper.BindEnv("auth.password", "SOLAR_AUTH_PASSWORD")
	viper.BindEnv("plant.timezone", "SOLAR_TIMEZONE")
	viper.BindEnv("summary.strategy", "SOLAR_SUMMARY_STRATEGY")
	viper.BindEnv("security.allowed_origins", "SOLAR_ALLOWED_ORIGINS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Mode:            "development",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "30s",
			EnableGzip:      true,
		},
		Database: DatabaseConfig{
			Path:           "./data/solar.db",
			MigrationsPath: "./migrations",
			MaxConnections: 10,
			QueryTimeout:   "10s",
			Migration:      MigrationConfig{Enabled: true, AutoMigrate: true},
		},
		Auth: AuthConfig{
			Enabled:     false,
			TokenExpiry: 3600,
			Username:    "admin",
			Password:    "solar2025",
		},
		Logging:      LoggingConfig{Level: "info", Format: "json", BatchSize: 100},
		Plant:        PlantConfig{Name: "Muan Solar", Location: "Muan", Timezone: "Asia/Seoul"},
		Summary:      SummaryConfig{Strategy: "sql"},
		Measurements: MeasurementsConfig{MaxRange: "744h"},
		Security: SecurityConfig{
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
			RateLimiting:   RateLimitSettings{Enabled: true, RequestsPerMinute: 600, BurstSize: 60},
		},
		Monitoring: MonitoringConfig{
			Prometheus: PrometheusConfig{Enabled: true, Path: "/metrics", Prefix: "solar"},
			Freshness:  FreshnessConfig{Enabled: true, Schedule: "@every 5m", StaleAfter: "2h"},
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	for key, value := range map[string]string{
		"server.read_timeout":              c.Server.ReadTimeout,
		"server.write_timeout":             c.Server.WriteTimeout,
		"server.shutdown_timeout":          c.Server.ShutdownTimeout,
		"database.query_timeout":           c.Database.QueryTimeout,
		"measurements.max_range":           c.Measurements.MaxRange,
		"monitoring.freshness.stale_after": c.Monitoring.Freshness.StaleAfter,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid duration: %q", key, value))
		}
	}

	if c.Database.Path == "" {
		errors = append(errors, "database.path is required")
	}
	if c.Database.MaxConnections < 1 {
		errors = append(errors, "database.max_connections must be at least 1")
	}

	if _, err := time.LoadLocation(c.Plant.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("plant.timezone is not a known location: %q", c.Plant.Timezone))
	}

	switch c.Summary.Strategy {
	case "sql", "rows":
	default:
		errors = append(errors, fmt.Sprintf("summary.strategy must be \"sql\" or \"rows\", got %q", c.Summary.Strategy))
	}

	if c.Auth.Enabled {
		if len(c.Auth.JWTSecret) < 16 {
			errors = append(errors, "auth.jwt_secret must be at least 16 characters when auth is enabled")
		}
		if c.Auth.Username == "" || c.Auth.Password == "" {
			errors = append(errors, "auth.username and auth.password are required when auth is enabled")
		}
		if c.Auth.TokenExpiry <= 0 {
			errors = append(errors, "auth.token_expiry must be positive")
		}
	}

	if c.Security.RateLimiting.Enabled && c.Security.RateLimiting.RequestsPerMinute <= 0 {
		errors = append(errors, "security.rate_limiting.requests_per_minute must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the plant time zone; Validate guarantees it loads
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Plant.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration parses value, falling back to def when empty or malformed
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

func setDefaults() {
	def := Default()

	// Server defaults
	viper.SetDefault("server.port", def.Server.Port)
	viper.SetDefault("server.host", def.Server.Host)
	viper.SetDefault("server.mode", def.Server.Mode)
	viper.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	viper.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	viper.SetDefault("server.enable_gzip", def.Server.EnableGzip)

	// Database defaults
	viper.SetDefault("database.path", def.Database.Path)
	viper.SetDefault("database.migrations_path", def.Database.MigrationsPath)
	viper.SetDefault("database.max_connections", def.Database.MaxConnections)
	viper.SetDefault("database.query_timeout", def.Database.QueryTimeout)
	viper.SetDefault("database.migration.enabled", def.Database.Migration.Enabled)
	viper.SetDefault("database.migration.auto_migrate", def.Database.Migration.AutoMigrate)

	// Auth defaults
	viper.SetDefault("auth.enabled", def.Auth.Enabled)
	viper.SetDefault("auth.token_expiry", def.Auth.TokenExpiry)
	viper.SetDefault("auth.username", def.Auth.Username)
	viper.SetDefault("auth.password", def.Auth.Password)

	// Logging defaults
	viper.SetDefault("logging.level", def.Logging.Level)
	viper.SetDefault("logging.format", def.Logging.Format)
	viper.SetDefault("logging.batch_size", def.Logging.BatchSize)

	// Plant defaults
	viper.SetDefault("plant.name", def.Plant.Name)
	viper.SetDefault("plant.location", def.Plant.Location)
	viper.SetDefault("plant.timezone", def.Plant.Timezone)

	viper.SetDefault("summary.strategy", def.Summary.Strategy)
	viper.SetDefault("measurements.max_range", def.Measurements.MaxRange)

	// Security defaults
	viper.SetDefault("security.enable_cors", def.Security.EnableCORS)
	viper.SetDefault("security.allowed_origins", def.Security.AllowedOrigins)
	viper.SetDefault("security.rate_limiting.enabled", def.Security.RateLimiting.Enabled)
	viper.SetDefault("security.rate_limiting.requests_per_minute", def.Security.RateLimiting.RequestsPerMinute)
	viper.SetDefault("security.rate_limiting.burst_size", def.Security.RateLimiting.BurstSize)

	// Monitoring defaults
	viper.SetDefault("monitoring.prometheus.enabled", def.Monitoring.Prometheus.Enabled)
	viper.SetDefault("monitoring.prometheus.path", def.Monitoring.Prometheus.Path)
	viper.SetDefault("monitoring.prometheus.prefix", def.Monitoring.Prometheus.Prefix)
	viper.SetDefault("monitoring.freshness.enabled", def.Monitoring.Freshness.Enabled)
	viper.SetDefault("monitoring.freshness.schedule", def.Monitoring.Freshness.Schedule)
	viper.SetDefault("monitoring.freshness.stale_after", def.Monitoring.Freshness.StaleAfter)
}
