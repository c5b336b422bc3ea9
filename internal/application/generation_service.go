package application

import (
	"context"
	"fmt"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/metrics"
	"github.com/msmoosa/llm-shopify/internal/llmstxt"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// GenerationResult is the outcome of a successful generation. Warnings carries
// failures of best-effort steps that did not affect the outcome.
type GenerationResult struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Filename    string   `json:"filename"`
	Path        string   `json:"path"`
	RedirectURL string   `json:"redirect_url"`
	Warnings    []string `json:"warnings,omitempty"`
}

// GenerationService builds and stores the llms.txt for one shop
type GenerationService struct {
	catalog   *CatalogClient
	redirects *RedirectRegistrar
	store     ports.ArtifactStore
	shops     ports.ShopRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	catalog *CatalogClient,
	redirects *RedirectRegistrar,
	store ports.ArtifactStore,
	shops ports.ShopRepository,
	logger zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		catalog:   catalog,
		redirects: redirects,
		store:     store,
		shops:     shops,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate runs the pipeline: fetch shop info and products, render, store,
// stamp the shop and register the redirect. A fetch or store failure aborts
// the run and leaves any previous artifact untouched.
func (s *GenerationService) Generate(ctx context.Context, shop *domain.Shop) (result *GenerationResult, err error) {
	started := s.now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(domain.KindOf(err))
		}
		metrics.RecordGeneration(outcome, time.Since(started))
	}()

	if shop == nil {
		return nil, domain.NewError(domain.KindUnauthenticated, "Unauthorized", nil)
	}
	if !shop.HasAccessToken() {
		return nil, domain.NewError(domain.KindAuthenticationMissing,
			"Shop is not properly authenticated. Missing access token. Please re-install the app.", nil)
	}

	s.logger.Info().
		Str("shop", shop.Domain).
		Int64("shop_id", shop.ID).
		Int("token_length", len(shop.AccessToken)).
		Msg("Generating llms.txt")

	session := shop.APISession()

	info, err := s.catalog.FetchShop(ctx, session)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.FetchProducts(ctx, session)
	if err != nil {
		return nil, err
	}

	document := llmstxt.Render(*info, products, shop.BaseURL())

	key := domain.ArtifactKey(shop.ID)
	if err := s.store.Put(ctx, key, []byte(document)); err != nil {
		s.logger.Error().Err(err).Str("shop", shop.Domain).Str("key", key).Msg("Failed to write llms.txt")
		return nil, domain.NewError(domain.KindStorage, "Failed to store llms.txt", err)
	}

	result = &GenerationResult{
		Success:  true,
		Message:  fmt.Sprintf("LLMs.txt generated with %d products.", len(products)),
		Filename: key,
		Path:     shop.BaseURL() + WellKnownPath,
	}

	generatedAt := s.now().UTC()
	if err := s.shops.SetLLMGeneratedAt(ctx, shop.ID, &generatedAt); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop.Domain).Msg("Failed to stamp llm_generated_at")
		result.Warnings = append(result.Warnings, "Failed to record generation time: "+err.Error())
	} else {
		shop.LLMGeneratedAt = &generatedAt
	}

	target, err := s.redirects.EnsureRedirect(ctx, session, shop.Domain)
	result.RedirectURL = target
	if err != nil {
		metrics.RecordRedirectFailure()
		result.Warnings = append(result.Warnings, "Failed to register /llms.txt redirect: "+err.Error())
	}

	s.logger.Info().
		Str("shop", shop.Domain).
		Str("key", key).
		Int("products", len(products)).
		Int("bytes", len(document)).
		Int("warnings", len(result.Warnings)).
		Msg("Generated llms.txt")

	return result, nil
}
