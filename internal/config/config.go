// Package config loads the service configuration from a YAML file and lets
// environment variables override individual settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Broker   BrokerConfig   `yaml:"broker"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Client   ClientConfig   `yaml:"client"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

type GRPCConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Addr          string        `yaml:"addr"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogMode         bool          `yaml:"log_mode"`
	Seed            bool          `yaml:"seed"`
}

// BrokerConfig enables the Redis relay that fans push signals out across
// several API instances. An empty RedisAddr keeps signals in-process.
type BrokerConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Channel       string `yaml:"channel"`
}

type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Users    []UserConfig  `yaml:"users"`
}

// UserConfig is a dashboard account. PasswordHash is a bcrypt hash.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

type AdvisorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ClientConfig is used by the watch and items commands
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// Default returns the configuration used when no file or variable overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		GRPC: GRPCConfig{
			Addr:          ":9091",
			CheckInterval: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			DSN:             "supplychain.db",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
			Seed:            true,
		},
		Broker: BrokerConfig{
			Channel: "supplychain.inventory",
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Advisor: AdvisorConfig{
			Model: "gpt-4o-mini",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return errors.New("auth secret is required when auth is enabled")
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return errors.New("advisor api key is required when the advisor is enabled")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getEnv("SUPPLYCHAIN_ADDR", cfg.Server.Addr)
	cfg.Server.AllowedOrigins = getEnvSlice("SUPPLYCHAIN_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Metrics.Enabled = getEnvBool("SUPPLYCHAIN_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = getEnv("SUPPLYCHAIN_METRICS_ADDR", cfg.Metrics.Addr)

	cfg.GRPC.Enabled = getEnvBool("SUPPLYCHAIN_GRPC_ENABLED", cfg.GRPC.Enabled)
	cfg.GRPC.Addr = getEnv("SUPPLYCHAIN_GRPC_ADDR", cfg.GRPC.Addr)

	cfg.Database.Driver = getEnv("SUPPLYCHAIN_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("SUPPLYCHAIN_DB_DSN", cfg.Database.DSN)
	cfg.Database.MaxOpenConns = getEnvInt("SUPPLYCHAIN_DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.Seed = getEnvBool("SUPPLYCHAIN_DB_SEED", cfg.Database.Seed)

	cfg.Broker.RedisAddr = getEnv("SUPPLYCHAIN_REDIS_ADDR", cfg.Broker.RedisAddr)
	cfg.Broker.RedisPassword = getEnv("SUPPLYCHAIN_REDIS_PASSWORD", cfg.Broker.RedisPassword)
	cfg.Broker.RedisDB = getEnvInt("SUPPLYCHAIN_REDIS_DB", cfg.Broker.RedisDB)

	cfg.Auth.Enabled = getEnvBool("SUPPLYCHAIN_AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.Secret = getEnv("SUPPLYCHAIN_AUTH_SECRET", cfg.Auth.Secret)

	cfg.Log.Level = getEnv("SUPPLYCHAIN_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("SUPPLYCHAIN_LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.Development = getEnvBool("SUPPLYCHAIN_LOG_DEVELOPMENT", cfg.Log.Development)

	cfg.Advisor.Enabled = getEnvBool("SUPPLYCHAIN_ADVISOR_ENABLED", cfg.Advisor.Enabled)
	cfg.Advisor.APIKey = getEnv("OPENAI_API_KEY", cfg.Advisor.APIKey)

	cfg.Client.BaseURL = getEnv("SUPPLYCHAIN_API_URL", cfg.Client.BaseURL)
	cfg.Client.Token = getEnv("SUPPLYCHAIN_TOKEN", cfg.Client.Token)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
