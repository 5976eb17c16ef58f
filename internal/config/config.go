package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	App    AppConfig
	Remote RemoteConfig
	State  StateConfig
	Sync   SyncConfig
}

// ServerConfig holds local HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"SERVER_PORT" default:"8090"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"vtz-stock-sync"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	User        string `envconfig:"APP_USER" default:"operator"` // Acting user recorded in audit logs
}

// RemoteConfig holds settings for the authoritative backend.
type RemoteConfig struct {
	BaseURL string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:3000"`
	Timeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"15s"`
	Token   string        `envconfig:"REMOTE_TOKEN" default:""` // Session credential for outbound calls
}

// StateConfig holds durable local state settings.
type StateConfig struct {
	Backend string `envconfig:"STATE_BACKEND" default:"sqlite"` // sqlite, mysql, redis, or memory
	Path    string `envconfig:"STATE_PATH" default:"./data/state.db"`
	// MySQL settings (shared multi-terminal state)
	MySQLHost     string `envconfig:"STATE_MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"STATE_MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"STATE_MYSQL_NAME" default:"vtz_state"`
	MySQLUser     string `envconfig:"STATE_MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"STATE_MYSQL_PASS" default:""`
	// Redis settings (kiosk deployments)
	RedisHost     string `envconfig:"STATE_REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"STATE_REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"STATE_REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"STATE_REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"STATE_REDIS_PREFIX" default:"vtz:state"`
}

// SyncConfig holds sync engine settings.
type SyncConfig struct {
	ProbeInterval time.Duration `envconfig:"SYNC_PROBE_INTERVAL" default:"30s"`
}

// MySQLDSN returns the MySQL data source name.
func (s *StateConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPassword, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// RedisAddress returns the Redis address in host:port format.
func (s *StateConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
