package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/storeradar/radar-service/internal/catalog"
	"github.com/storeradar/radar-service/internal/database"
	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/middleware"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/session"
	"github.com/storeradar/radar-service/internal/telemetry"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig                 `mapstructure:"server"`
	Database   database.Config              `mapstructure:"database"`
	Catalog    catalog.Config               `mapstructure:"catalog"`
	Engine     engine.Config                `mapstructure:"engine"`
	Preference preference.Config            `mapstructure:"preference"`
	Session    session.Config               `mapstructure:"session"`
	RateLimit  middleware.RateLimiterConfig `mapstructure:"rate_limit"`
	Auth       middleware.AuthConfig        `mapstructure:"auth"`
	Logging    LoggingConfig                `mapstructure:"logging"`
	Telemetry  telemetry.Config             `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks every section that has rules.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config server.port: must be within [1, 65535]")
	}
	if c.Catalog.Source == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("invalid config database.url: required for postgres catalog")
	}
	for _, v := range []interface{ Validate() error }{
		c.Database, c.Catalog, c.Engine, c.Preference, c.Session,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Preference.ThresholdSource == "remote" && c.Catalog.Source != "remote" {
		return fmt.Errorf("invalid config preference.threshold_source: remote requires the remote catalog")
	}
	return nil
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines and
// setting them as environment variables
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables that are
// not already set
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// bindEnvVars binds unprefixed environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.url", "RADAR_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "RADAR_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.host", "RADAR_SERVER_HOST", "HOST")
	_ = v.BindEnv("logging.level", "RADAR_LOGGING_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("catalog.remote.base_url", "RADAR_CATALOG_REMOTE_BASE_URL", "CATALOG_URL")
	_ = v.BindEnv("auth.jwt_secret", "RADAR_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("telemetry.endpoint", "RADAR_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	// Database defaults
	db := database.DefaultConfig()
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", db.MaxConnections)
	v.SetDefault("database.min_connections", db.MinConnections)
	v.SetDefault("database.max_conn_lifetime", db.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", db.MaxConnIdleTime)
	v.SetDefault("database.health_check_period", db.HealthCheck)
	v.SetDefault("database.migrate", db.Migrate)

	// Catalog defaults
	remote := catalog.DefaultRemoteConfig()
	v.SetDefault("catalog.source", "remote")
	v.SetDefault("catalog.schema", "public")
	v.SetDefault("catalog.data_file", "")
	v.SetDefault("catalog.remote.base_url", "http://localhost:8080")
	v.SetDefault("catalog.remote.timeout", remote.Timeout)
	v.SetDefault("catalog.remote.rate_limit.requests_per_second", remote.RateLimit.RequestsPerSecond)
	v.SetDefault("catalog.remote.rate_limit.max_retries", remote.RateLimit.MaxRetries)
	v.SetDefault("catalog.remote.rate_limit.initial_backoff", remote.RateLimit.InitialBackoff)
	v.SetDefault("catalog.remote.rate_limit.max_backoff", remote.RateLimit.MaxBackoff)
	v.SetDefault("catalog.remote.circuit_breaker.max_failures", remote.CircuitBreaker.MaxFailures)
	v.SetDefault("catalog.remote.circuit_breaker.reset_timeout", remote.CircuitBreaker.ResetTimeout)
	v.SetDefault("catalog.remote.circuit_breaker.half_open_max_calls", remote.CircuitBreaker.HalfOpenMaxCalls)

	// Engine defaults
	eng := engine.DefaultConfig()
	v.SetDefault("engine.default_position.lat", eng.DefaultPosition.Lat)
	v.SetDefault("engine.default_position.lng", eng.DefaultPosition.Lng)
	v.SetDefault("engine.event_buffer", eng.EventBuffer)
	v.SetDefault("engine.ranking.max_price_scope", string(eng.Ranking.MaxPriceScope))
	v.SetDefault("engine.ranking.runner_up_limit", eng.Ranking.RunnerUpLimit)

	// Preference defaults
	pref := preference.DefaultConfig()
	v.SetDefault("preference.threshold", pref.Threshold)
	v.SetDefault("preference.threshold_source", pref.ThresholdSource)
	v.SetDefault("preference.learn_every", pref.LearnEvery)
	v.SetDefault("preference.window", pref.Window)
	v.SetDefault("preference.alpha", pref.Alpha)

	// Session defaults
	sess := session.DefaultConfig()
	v.SetDefault("session.idle_ttl", sess.IdleTTL)
	v.SetDefault("session.reap_interval", sess.ReapInterval)
	v.SetDefault("session.max_sessions", sess.MaxSessions)

	// Rate limit defaults
	rl := middleware.DefaultRateLimiterConfig()
	v.SetDefault("rate_limit.requests_per_second", rl.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", rl.BurstSize)
	v.SetDefault("rate_limit.idle_ttl", rl.IdleTTL)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "opentelemetry-collector:4317")
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.export_interval", 30*time.Second)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
