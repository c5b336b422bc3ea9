package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()
}

// Storage drivers
const (
	StorageFilesystem = "filesystem"
	StorageGridFS     = "gridfs"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Shopify ShopifyConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
	Worker  WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	URL         string `envconfig:"APP_URL" default:"http://localhost:8080"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// ShopifyConfig holds the app credentials and Admin API settings.
type ShopifyConfig struct {
	APIKey         string        `envconfig:"SHOPIFY_API_KEY"`
	APISecret      string        `envconfig:"SHOPIFY_API_SECRET"`
	APIVersion     string        `envconfig:"SHOPIFY_API_VERSION" default:"2024-10"`
	Scopes         string        `envconfig:"SHOPIFY_SCOPES" default:"read_products,read_online_store_navigation,write_online_store_navigation"`
	ProxyPath      string        `envconfig:"SHOPIFY_APP_PROXY_PATH" default:"apps/sellgpt/llms"`
	VerifyAppProxy bool          `envconfig:"SHOPIFY_VERIFY_APP_PROXY" default:"false"`
	RequestTimeout time.Duration `envconfig:"SHOPIFY_REQUEST_TIMEOUT" default:"30s"`
	RateLimit      float64       `envconfig:"SHOPIFY_RATE_LIMIT" default:"2"`
	RateBurst      int           `envconfig:"SHOPIFY_RATE_BURST" default:"4"`
	StateTTL       time.Duration `envconfig:"SHOPIFY_OAUTH_STATE_TTL" default:"10m"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGODB_DATABASE" default:"llm_shopify"`
}

// RedisConfig holds Redis connection settings. An empty host disables the job queue.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	QueueKey string `envconfig:"REDIS_QUEUE_KEY" default:"llm-shopify:gdpr-jobs"`
}

// StorageConfig selects the artifact store.
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"filesystem"`
	Path   string `envconfig:"STORAGE_PATH" default:"./storage/app"`
	Bucket string `envconfig:"STORAGE_GRIDFS_BUCKET" default:"artifacts"`
}

// WorkerConfig holds GDPR worker settings.
type WorkerConfig struct {
	PollTimeout time.Duration `envconfig:"WORKER_POLL_TIMEOUT" default:"5s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// RedirectURI is the OAuth callback registered with the app.
func (a *AppConfig) RedirectURI() string {
	return strings.TrimRight(a.URL, "/") + "/auth/callback"
}

// WebhookAddress is the endpoint Shopify delivers webhooks to.
func (a *AppConfig) WebhookAddress() string {
	return strings.TrimRight(a.URL, "/") + "/webhooks"
}

// ScopeList splits the comma separated scopes.
func (s *ShopifyConfig) ScopeList() []string {
	var scopes []string
	for _, scope := range strings.Split(s.Scopes, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Enabled reports whether a Redis server is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Shopify.APIKey == "" || cfg.Shopify.APISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}

	switch cfg.Storage.Driver {
	case StorageFilesystem, StorageGridFS:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}
