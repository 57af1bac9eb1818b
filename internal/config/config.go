package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Auth       AuthConfig       `json:"auth"`
	Redis      RedisConfig      `json:"redis"`
	Kafka      KafkaConfig      `json:"kafka"`
	AWS        AWSConfig        `json:"aws"`
	Validation ValidationConfig `json:"validation"`
	Worker     WorkerConfig     `json:"worker"`
	Logging    LoggingConfig    `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host" env:"SERVER_HOST"`
	Port            int           `json:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `json:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL            string        `json:"url" env:"DATABASE_URL"`
	MaxConnections int           `json:"max_connections" env:"DATABASE_MAX_CONNECTIONS"`
	MaxIdleConns   int           `json:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	MaxLifetime    time.Duration `json:"max_lifetime" env:"DATABASE_MAX_LIFETIME"`
}

// AuthConfig selects how session tokens are resolved.
type AuthConfig struct {
	// Resolver is "jwt" or "supabase".
	Resolver    string `json:"resolver" env:"AUTH_RESOLVER"`
	JWTSecret   string `json:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer   string `json:"jwt_issuer" env:"AUTH_JWT_ISSUER"`
	SupabaseURL string `json:"supabase_url" env:"SUPABASE_URL"`
	SupabaseKey string `json:"supabase_key" env:"SUPABASE_ANON_KEY"`
}

type RedisConfig struct {
	Addr     string        `json:"addr" env:"REDIS_ADDR"`
	Password string        `json:"password" env:"REDIS_PASSWORD"`
	DB       int           `json:"db" env:"REDIS_DB"`
	TTL      time.Duration `json:"ttl" env:"REDIS_CATALOG_TTL"`
}

type KafkaConfig struct {
	Brokers     []string      `json:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	Topic       string        `json:"topic" env:"KAFKA_TOPIC"`
	MaxAttempts int           `json:"max_attempts" env:"KAFKA_MAX_ATTEMPTS"`
	Backoff     time.Duration `json:"backoff" env:"KAFKA_BACKOFF"`
}

type AWSConfig struct {
	Region      string        `json:"region" env:"AWS_REGION"`
	Bucket      string        `json:"bucket" env:"AWS_DOCUMENTS_BUCKET"`
	LinkTTL     time.Duration `json:"link_ttl" env:"AWS_DOCUMENT_LINK_TTL"`
	EmailSender string        `json:"email_sender" env:"AWS_SES_SENDER"`
}

// ValidationConfig names the third-party check providers. A provider with
// no URL is not run.
type ValidationConfig struct {
	ScamURL      string        `json:"scam_url" env:"VALIDATION_SCAM_URL"`
	SanctionsURL string        `json:"sanctions_url" env:"VALIDATION_SANCTIONS_URL"`
	AuditURL     string        `json:"audit_url" env:"VALIDATION_AUDIT_URL"`
	APIKey       string        `json:"api_key" env:"VALIDATION_API_KEY"`
	RetryMax     int           `json:"retry_max" env:"VALIDATION_RETRY_MAX"`
	Timeout      time.Duration `json:"timeout" env:"VALIDATION_TIMEOUT"`
}

type WorkerConfig struct {
	Schedule string        `json:"schedule" env:"WORKER_SCHEDULE"`
	MaxAge   time.Duration `json:"max_age" env:"WORKER_MAX_AGE"`
	Batch    int           `json:"batch" env:"WORKER_BATCH"`
}

type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:            "sqlite://data/portal.db",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
		},
		Auth: AuthConfig{
			Resolver: "jwt",
		},
		Redis: RedisConfig{
			TTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:       "project-moderation",
			MaxAttempts: 3,
			Backoff:     200 * time.Millisecond,
		},
		AWS: AWSConfig{
			Region:  "us-east-1",
			LinkTTL: 15 * time.Minute,
		},
		Validation: ValidationConfig{
			RetryMax: 3,
			Timeout:  10 * time.Second,
		},
		Worker: WorkerConfig{
			Schedule: "*/15 * * * *",
			MaxAge:   24 * time.Hour,
			Batch:    50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// Precedence, lowest first: defaults, the JSON file, a .env file in the
// working directory, the process environment.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// existing environment variables win over .env entries
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Auth.Resolver {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for the jwt resolver")
		}
	case "supabase":
		if c.Auth.SupabaseURL == "" || c.Auth.SupabaseKey == "" {
			return fmt.Errorf("supabase url and key are required for the supabase resolver")
		}
	default:
		return fmt.Errorf("unknown auth resolver %q", c.Auth.Resolver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	return nil
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
