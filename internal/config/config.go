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
	Server    ServerConfig
	App       AppConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	TrustedDB TrustedDBConfig
	GameData  GameDataConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"4002"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"universalis-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
}

// CacheConfig holds Redis settings for the distributed cache tier and the
// key-value stores (blacklist, tax rates, upload counters).
type CacheConfig struct {
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Optional read replica for weighted cache reads.
	ReplicaHost  string `envconfig:"REDIS_REPLICA_HOST" default:""`
	ReplicaPort  int    `envconfig:"REDIS_REPLICA_PORT" default:"6379"`
	ReplicaCount int    `envconfig:"REDIS_REPLICA_COUNT" default:"0"`

	LocalMaxEntries int `envconfig:"CACHE_LOCAL_MAX_ENTRIES" default:"4096"`
}

// DatabaseConfig holds PostgreSQL settings for the market data.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"universalis"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASS" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// TrustedDBConfig holds MySQL settings for the trusted-source registry.
type TrustedDBConfig struct {
	Host     string `envconfig:"TRUSTED_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"TRUSTED_DB_PORT" default:"3306"`
	Name     string `envconfig:"TRUSTED_DB_NAME" default:"universalis"`
	User     string `envconfig:"TRUSTED_DB_USER" default:"root"`
	Password string `envconfig:"TRUSTED_DB_PASS" default:""`
}

// GameDataConfig points at the world/item catalog export.
type GameDataConfig struct {
	Path string `envconfig:"GAME_DATA_PATH" default:"./data/game_data.json"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// DSN returns the MySQL data source name.
func (t *TrustedDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		t.User, t.Password, t.Host, t.Port, t.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis master address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// ReplicaAddress returns the replica address, empty when none is deployed.
func (c *CacheConfig) ReplicaAddress() string {
	if c.ReplicaHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.ReplicaHost, c.ReplicaPort)
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
