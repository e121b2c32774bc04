package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Environment          string
	Database             DatabaseConfig
	Shopify              ShopifyConfig
	Export               ExportConfig
	Storage              StorageConfig
	Sync                 SyncConfig
	API                  APIConfig
	LogLevel             string
	ShopifyWebhookSecret string // SHOPIFY_WEBHOOK_SECRET: verify incoming Shopify webhooks (X-Shopify-Hmac-Sha256)
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int           // DB_MAX_OPEN_CONNS
	MaxIdleConns    int           // DB_MAX_IDLE_CONNS
	ConnMaxLifetime time.Duration // DB_CONN_MAX_LIFETIME, e.g. 30m
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// ExportConfig holds the account-level values of the partner CSV
type ExportConfig struct {
	CustomerCode        string   // EXPORT_CUSTOMER_CODE: first column of every row
	Tag                 string   // EXPORT_TAG: added to orders in Shopify after export; empty disables tagging
	MarketplaceChannels []string // EXPORT_MARKETPLACE_CHANNELS: comma-separated channel labels parsed as marketplace
}

// StorageConfig selects where export files are written
type StorageConfig struct {
	Backend   string // EXPORT_STORAGE: local or s3
	Dir       string // EXPORT_DIR
	PublicURL string // EXPORT_PUBLIC_URL: prefix of the location stored in export history
	S3        S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // for S3-compatible stores (MinIO)
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// SyncConfig drives the scheduled Shopify order poll
type SyncConfig struct {
	Schedule string // ORDER_SYNC_SCHEDULE: cron expression; empty disables the scheduler
	PageSize int
}

type APIConfig struct {
	AdminKeyHash string // ADMIN_API_KEY_HASH: bcrypt hash of the admin bearer key
}

func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("EXPORT_STORAGE", "local")
	viper.SetDefault("ORDER_SYNC_PAGE_SIZE", 50)

	// Read from environment variables
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "orderexport"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2025-01"),
		},
		Export: ExportConfig{
			CustomerCode:        strings.TrimSpace(getEnvOrViper("EXPORT_CUSTOMER_CODE", "")),
			Tag:                 strings.TrimSpace(getEnvOrViper("EXPORT_TAG", "exported")),
			MarketplaceChannels: splitList(getEnvOrViper("EXPORT_MARKETPLACE_CHANNELS", "amazon")),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(strings.TrimSpace(getEnvOrViper("EXPORT_STORAGE", "local"))),
			Dir:       getEnvOrViper("EXPORT_DIR", "exports"),
			PublicURL: strings.TrimRight(getEnvOrViper("EXPORT_PUBLIC_URL", "/exports"), "/"),
			S3: S3Config{
				Bucket:          strings.TrimSpace(getEnvOrViper("S3_BUCKET", "")),
				Region:          getEnvOrViper("S3_REGION", "us-east-1"),
				Endpoint:        strings.TrimSpace(getEnvOrViper("S3_ENDPOINT", "")),
				AccessKeyID:     strings.TrimSpace(getEnvOrViper("S3_ACCESS_KEY_ID", "")),
				SecretAccessKey: strings.TrimSpace(getEnvOrViper("S3_SECRET_ACCESS_KEY", "")),
				Prefix:          strings.Trim(getEnvOrViper("S3_PREFIX", "exports"), "/"),
				UsePathStyle:    getEnvOrViper("S3_USE_PATH_STYLE", "false") == "true",
			},
		},
		Sync: SyncConfig{
			Schedule: strings.TrimSpace(getEnvOrViper("ORDER_SYNC_SCHEDULE", "")),
			PageSize: getIntOrDefault("ORDER_SYNC_PAGE_SIZE", 50),
		},
		API: APIConfig{
			AdminKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		LogLevel:             getEnvOrViper("LOG_LEVEL", "info"),
		ShopifyWebhookSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Shopify.ShopDomain == "" {
		return fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when EXPORT_STORAGE=s3")
		}
	default:
		return fmt.Errorf("EXPORT_STORAGE must be local or s3, got %q", c.Storage.Backend)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > 250 {
		return fmt.Errorf("ORDER_SYNC_PAGE_SIZE must be between 1 and 250")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN returns the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(getEnvOrViper(key, "")))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(getEnvOrViper(key, "")))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
