// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	JWT      JWTConfig
	Security SecurityConfig
	Admin    AdminConfig
	Telegram TelegramConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Logging  LoggingConfig
	Invoice  InvoiceConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	PublicURL   string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains the remote backend (PostgreSQL) configuration.
// An empty Host disables the backend; the storefront then runs on the
// local store only.
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// StoreConfig selects the key-value backend of the local state store
type StoreConfig struct {
	Driver         string // redis, bolt, memory
	BoltPath       string
	SessionTTL     time.Duration
	JanitorEvery   time.Duration
	CartTTL        time.Duration
	CheckoutTTL    time.Duration
	EventsChannel  string
	HeartbeatEvery time.Duration
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute   int
	AssistantRatePerMin  int
	AssistantBurst       int
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	TrustedProxies       []string
	RequestSizeLimitByte int64
}

// AdminConfig gates the admin dashboard
type AdminConfig struct {
	Emails       []string
	PasswordHash string
}

// TelegramConfig contains the notification channel configuration
type TelegramConfig struct {
	BotToken    string
	ChatIDs     []string
	APIBaseURL  string
	Concurrency int
	Timeout     time.Duration
}

// StorageConfig contains file storage configuration
type StorageConfig struct {
	LocalPath  string
	PublicPath string
}

// UploadConfig contains file upload configuration
type UploadConfig struct {
	MaxSize          int64
	AllowedMIMETypes []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// InvoiceConfig holds the seller details printed on invoices
type InvoiceConfig struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	Currency       string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Solar Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			PublicURL:   getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "solar_store"),
			User:         getEnv("DB_USER", "solar"),
			Password:     getEnv("DB_PASSWORD", ""),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Store: StoreConfig{
			Driver:         getEnv("STORE_DRIVER", "redis"),
			BoltPath:       getEnv("STORE_BOLT_PATH", "data/store.db"),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			JanitorEvery:   getEnvAsDuration("SESSION_JANITOR_INTERVAL", 10*time.Minute),
			CartTTL:        getEnvAsDuration("CART_TTL", 24*time.Hour),
			CheckoutTTL:    getEnvAsDuration("CHECKOUT_TTL", 2*time.Hour),
			EventsChannel:  getEnv("STORE_EVENTS_CHANNEL", "solar:events"),
			HeartbeatEvery: getEnvAsDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "solar-storefront-dev-secret-change-me-please"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitPerMinute:   getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			AssistantRatePerMin:  getEnvAsInt("ASSISTANT_RATE_PER_MINUTE", 20),
			AssistantBurst:       getEnvAsInt("ASSISTANT_BURST", 5),
			CORSAllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods:   getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders:   getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID", "X-Request-ID"}),
			TrustedProxies:       getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			RequestSizeLimitByte: getEnvAsInt64("REQUEST_SIZE_LIMIT", 12<<20),
		},
		Admin: AdminConfig{
			Emails:       getEnvAsSlice("ADMIN_EMAILS", []string{}),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatIDs:     getEnvAsSlice("TELEGRAM_CHAT_IDS", []string{}),
			APIBaseURL:  getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			Concurrency: getEnvAsInt("TELEGRAM_CONCURRENCY", 4),
			Timeout:     getEnvAsDuration("TELEGRAM_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			LocalPath:  getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			PublicPath: getEnv("STORAGE_PUBLIC_PATH", "/uploads"),
		},
		Upload: UploadConfig{
			MaxSize:          getEnvAsInt64("UPLOAD_MAX_SIZE", 8<<20), // 8MB
			AllowedMIMETypes: getEnvAsSlice("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/webp"}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Invoice: InvoiceConfig{
			CompanyName:    getEnv("COMPANY_NAME", "Solar Storefront"),
			CompanyAddress: getEnv("COMPANY_ADDRESS", ""),
			CompanyPhone:   getEnv("COMPANY_PHONE", ""),
			CompanyEmail:   getEnv("COMPANY_EMAIL", ""),
			Currency:       getEnv("CURRENCY", "USD"),
		},
	}

	// Normalize admin emails once so that gating is an exact comparison
	for i, email := range config.Admin.Emails {
		config.Admin.Emails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Store.Driver {
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required when STORE_DRIVER=redis")
		}
	case "bolt":
		if c.Store.BoltPath == "" {
			return fmt.Errorf("STORE_BOLT_PATH is required when STORE_DRIVER=bolt")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.Store.Driver)
	}

	if c.Database.Host != "" && c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required when DB_HOST is set")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Telegram.BotToken != "" && len(c.Telegram.ChatIDs) == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_IDS is required when TELEGRAM_BOT_TOKEN is set")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// HasBackend reports whether the remote relational backend is configured
func (c *Config) HasBackend() bool {
	return c.Database.Host != ""
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
