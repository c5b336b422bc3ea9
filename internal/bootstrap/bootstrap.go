// Package bootstrap wires infrastructure shared by the API server and the worker.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/msmoosa/llm-shopify/internal/application"
	"github.com/msmoosa/llm-shopify/internal/application/webhook_handlers"
	"github.com/msmoosa/llm-shopify/internal/config"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/storage"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewLogger builds the process logger. Development uses the console writer.
func NewLogger(cfg config.AppConfig, component string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("component", component).Logger()
}

// ConnectMongo connects and pings MongoDB
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// ConnectRedis connects to Redis. It returns nil when Redis is disabled or unreachable.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *redis.Client {
	if !cfg.Enabled() {
		logger.Info().Msg("Redis disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Address()).Msg("Redis connection failed")
		client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Address()).Msg("Redis client initialized")
	return client
}

// NewArtifactStore opens the configured artifact store
func NewArtifactStore(cfg config.StorageConfig, db *mongo.Database, logger zerolog.Logger) (ports.ArtifactStore, error) {
	switch cfg.Driver {
	case config.StorageGridFS:
		return storage.NewGridFSStore(db, cfg.Bucket, logger)
	default:
		return storage.NewFilesystemStore(cfg.Path)
	}
}

// NewDispatcher registers the lifecycle reactors
func NewDispatcher(logger zerolog.Logger, shops ports.ShopRepository, store ports.ArtifactStore) *application.WebhookDispatcher {
	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewAppInstalledHandler(logger, shops))
	dispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, shops, store))
	dispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger))
	dispatcher.RegisterHandler(webhook_handlers.NewShopRedactHandler(logger, shops, store))
	return dispatcher
}
