package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/msmoosa/llm-shopify/internal/application"
	"github.com/msmoosa/llm-shopify/internal/bootstrap"
	"github.com/msmoosa/llm-shopify/internal/config"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/api"
	securitymiddleware "github.com/msmoosa/llm-shopify/internal/infrastructure/middleware"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/queue"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/repository"
	shopifyinfra "github.com/msmoosa/llm-shopify/internal/infrastructure/shopify"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := bootstrap.NewLogger(cfg.App, "api")
	logger.Info().Str("environment", cfg.App.Environment).Str("api_version", cfg.Shopify.APIVersion).Msg("Starting llm-shopify API")

	ctx := context.Background()

	// Connect to MongoDB
	mongoClient, db, err := bootstrap.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	repo := repository.NewMongoRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to ensure shop indexes")
	}

	store, err := bootstrap.NewArtifactStore(cfg.Storage, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize artifact store")
	}

	// Redis backs OAuth state and the GDPR queue; both degrade to in-process handling
	var sessions ports.SessionRepository = repository.NewMemorySessionRepository()
	var jobs ports.JobQueue
	if redisClient := bootstrap.ConnectRedis(ctx, cfg.Redis, logger); redisClient != nil {
		defer redisClient.Close()
		sessions = repository.NewRedisSessionRepository(redisClient)
		jobs = queue.NewRedisQueue(redisClient, cfg.Redis.QueueKey)
	} else {
		logger.Warn().Msg("Using in-memory OAuth sessions; compliance webhooks are handled inline")
	}

	rateLimiter := shopifyinfra.NewRateLimiter(cfg.Shopify.RateLimit, cfg.Shopify.RateBurst, logger)
	shopifyClient := shopifyinfra.NewClient(cfg.Shopify.APIKey, cfg.Shopify.APISecret, shopifyinfra.Options{
		APIVersion:  cfg.Shopify.APIVersion,
		RedirectURI: cfg.App.RedirectURI(),
		Scopes:      cfg.Shopify.ScopeList(),
		HTTPClient:  &http.Client{Timeout: cfg.Shopify.RequestTimeout},
		RateLimiter: rateLimiter,
	}, logger)

	// Initialize application services
	dispatcher := bootstrap.NewDispatcher(logger, repo, store)
	catalog := application.NewCatalogClient(shopifyClient, logger)
	redirects := application.NewRedirectRegistrar(shopifyClient, cfg.Shopify.ProxyPath, logger)
	generation := application.NewGenerationService(catalog, redirects, store, repo, logger)
	retrieval := application.NewRetrievalService(repo, store, logger)
	install := application.NewInstallService(
		shopifyClient,
		catalog,
		repo,
		sessions,
		dispatcher,
		application.NewWebhookRegistrar(shopifyClient, cfg.App.WebhookAddress(), logger),
		cfg.Shopify.ScopeList(),
		cfg.App.RedirectURI(),
		cfg.Shopify.StateTTL,
		logger,
	)
	webhooks := application.NewWebhookService(repo, dispatcher, jobs, logger)

	handlers := api.NewHandlers(generation, retrieval, install, webhooks, shopifyClient, cfg.Shopify.APIKey, logger)

	routerCfg := api.Config{
		Handlers: handlers,
		SessionAuth: securitymiddleware.ShopSession(securitymiddleware.SessionConfig{
			APIKey:    cfg.Shopify.APIKey,
			APISecret: cfg.Shopify.APISecret,
			Shops:     repo,
			Shopify:   shopifyClient,
			Logger:    logger,
		}),
	}
	if cfg.Shopify.VerifyAppProxy {
		routerCfg.AppProxyAuth = securitymiddleware.AppProxySignature(cfg.Shopify.APISecret, logger)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting API server")
		logger.Info().Msg("Swagger documentation available at " + cfg.App.URL + "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Server stopped")
}
