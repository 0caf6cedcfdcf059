package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	Cache         CacheConfig
	Usage         UsageConfig
	Gateway       GatewayConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ProviderConfig holds one provider's connection settings. A provider
// with no credential (API key for cloud backends, base URL for
// self-hosted ones) is constructed but never enabled.
type ProviderConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	Priority     int
	CostPerToken float64
}

// ProvidersConfig holds all provider configurations
type ProvidersConfig struct {
	SelfHostedGeneral ProviderConfig
	SelfHostedLegal   ProviderConfig
	OpenAI            ProviderConfig
	Anthropic         ProviderConfig
	Gemini            ProviderConfig
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	Backend       string // "memory" or "redis"
	MaxEntries    int
	SweepInterval time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// UsageConfig holds usage tracker configuration
type UsageConfig struct {
	BufferSize    int
	WorkerCount   int
	MonthlyBudget float64
}

// GatewayConfig holds gateway core configuration
type GatewayConfig struct {
	CallTimeout time.Duration
	MaxInputLen int
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if present (no-op when absent)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			SelfHostedGeneral: ProviderConfig{
				BaseURL:      getEnv("SELF_HOSTED_GENERAL_URL", ""),
				Model:        getEnv("SELF_HOSTED_GENERAL_MODEL", "praxis-general-7b"),
				Timeout:      getEnvAsDuration("SELF_HOSTED_TIMEOUT", 30*time.Second),
				CostPerToken: getEnvAsFloat("SELF_HOSTED_GENERAL_COST_PER_TOKEN", 0.000001),
			},
			SelfHostedLegal: ProviderConfig{
				BaseURL:      getEnv("SELF_HOSTED_LEGAL_URL", ""),
				Model:        getEnv("SELF_HOSTED_LEGAL_MODEL", "praxis-legal-7b"),
				Timeout:      getEnvAsDuration("SELF_HOSTED_TIMEOUT", 30*time.Second),
				CostPerToken: getEnvAsFloat("SELF_HOSTED_LEGAL_COST_PER_TOKEN", 0.000002),
			},
			OpenAI: ProviderConfig{
				APIKey:       getEnv("OPENAI_API_KEY", ""),
				BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:        getEnv("OPENAI_MODEL", "gpt-4o"),
				Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
				Priority:     getEnvAsInt("OPENAI_PRIORITY", 20),
				CostPerToken: getEnvAsFloat("OPENAI_COST_PER_TOKEN", 0.00001),
			},
			Anthropic: ProviderConfig{
				APIKey:       getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL:      getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
				Model:        getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
				Timeout:      getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
				Priority:     getEnvAsInt("ANTHROPIC_PRIORITY", 30),
				CostPerToken: getEnvAsFloat("ANTHROPIC_COST_PER_TOKEN", 0.000015),
			},
			Gemini: ProviderConfig{
				APIKey:       getEnv("GEMINI_API_KEY", ""),
				BaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				Model:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
				Timeout:      getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
				Priority:     getEnvAsInt("GEMINI_PRIORITY", 10),
				CostPerToken: getEnvAsFloat("GEMINI_COST_PER_TOKEN", 0.000005),
			},
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			MaxEntries:    getEnvAsInt("CACHE_MAX_ENTRIES", 10000),
			SweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		Usage: UsageConfig{
			BufferSize:    getEnvAsInt("USAGE_BUFFER_SIZE", 10000),
			WorkerCount:   getEnvAsInt("USAGE_WORKER_COUNT", 5),
			MonthlyBudget: getEnvAsFloat("USAGE_MONTHLY_BUDGET", 500),
		},
		Gateway: GatewayConfig{
			CallTimeout: getEnvAsDuration("GATEWAY_CALL_TIMEOUT", 30*time.Second),
			MaxInputLen: getEnvAsInt("GATEWAY_MAX_INPUT_LEN", 1<<20),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache backend must be memory or redis, got %q", c.Cache.Backend)
	}

	if c.Usage.MonthlyBudget < 0 {
		return fmt.Errorf("monthly budget must not be negative")
	}

	// At least one provider must be reachable in production
	if c.IsProduction() && !c.anyProviderConfigured() {
		return fmt.Errorf("at least one provider must be configured in production")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

func (c *Config) anyProviderConfigured() bool {
	return c.Providers.SelfHostedGeneral.BaseURL != "" ||
		c.Providers.SelfHostedLegal.BaseURL != "" ||
		c.Providers.OpenAI.APIKey != "" ||
		c.Providers.Anthropic.APIKey != "" ||
		c.Providers.Gemini.APIKey != ""
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "gateway"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "gateway"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
