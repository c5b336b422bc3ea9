package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// RetrievalService serves a stored llms.txt by shop domain
type RetrievalService struct {
	shops  ports.ShopRepository
	store  ports.ArtifactStore
	logger zerolog.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(shops ports.ShopRepository, store ports.ArtifactStore, logger zerolog.Logger) *RetrievalService {
	return &RetrievalService{
		shops:  shops,
		store:  store,
		logger: logger,
	}
}

// Show returns the stored document for the shop verbatim
func (s *RetrievalService) Show(ctx context.Context, shopDomain string) ([]byte, error) {
	shopDomain = strings.TrimSpace(shopDomain)
	if shopDomain == "" {
		return nil, domain.NewError(domain.KindBadRequest, "Missing shop parameter", nil)
	}

	shop, err := s.shops.GetShopByDomain(ctx, shopDomain)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to look up shop")
		return nil, domain.NewError(domain.KindStorage, "Failed to look up shop", err)
	}
	if shop == nil {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("Shop not found: %s", shopDomain), nil)
	}

	content, err := s.store.Get(ctx, domain.ArtifactKey(shop.ID))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("LLMs.txt has not been generated for %s", shopDomain), err)
		}
		s.logger.Error().Err(err).Str("shop", shopDomain).Int64("shop_id", shop.ID).Msg("Failed to read llms.txt")
		return nil, domain.NewError(domain.KindStorage, "Failed to read llms.txt", err)
	}

	return content, nil
}

// Status reports whether the shop has a generated document
func (s *RetrievalService) Status(ctx context.Context, shop *domain.Shop) (bool, error) {
	if shop == nil {
		return false, domain.NewError(domain.KindUnauthenticated, "Unauthorized", nil)
	}
	exists, err := s.store.Exists(ctx, domain.ArtifactKey(shop.ID))
	if err != nil {
		return false, domain.NewError(domain.KindStorage, "Failed to check llms.txt", err)
	}
	return exists, nil
}
