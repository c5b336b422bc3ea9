package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/msmoosa/llm-shopify/internal/application"
	"github.com/msmoosa/llm-shopify/internal/bootstrap"
	"github.com/msmoosa/llm-shopify/internal/config"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/queue"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/repository"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := bootstrap.NewLogger(cfg.App, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := bootstrap.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	redisClient := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if redisClient == nil {
		logger.Fatal().Msg("The GDPR worker requires Redis")
	}
	defer redisClient.Close()

	store, err := bootstrap.NewArtifactStore(cfg.Storage, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize artifact store")
	}

	repo := repository.NewMongoRepository(db)
	jobs := queue.NewRedisQueue(redisClient, cfg.Redis.QueueKey)

	if pending, err := jobs.Len(ctx); err == nil {
		logger.Info().Int64("pending", pending).Str("queue", cfg.Redis.QueueKey).Msg("Connected to job queue")
	}

	worker := application.NewGDPRWorker(jobs, bootstrap.NewDispatcher(logger, repo, store), cfg.Worker.PollTimeout, logger)
	if err := worker.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Worker failed")
	}
}
