package webhook_handlers

import (
	"context"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// AppInstalledHandler logs the stored credential after an install. It does not generate anything.
type AppInstalledHandler struct {
	logger zerolog.Logger
	shops  ports.ShopRepository
}

// NewAppInstalledHandler creates a new app installed handler
func NewAppInstalledHandler(logger zerolog.Logger, shops ports.ShopRepository) *AppInstalledHandler {
	return &AppInstalledHandler{
		logger: logger,
		shops:  shops,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppInstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppInstalled
}

// Handle verifies the token was saved for the installed shop
func (h *AppInstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shop, err := h.shops.GetShopByDomain(ctx, event.Shop)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", event.Shop).Msg("Failed to load shop after installation")
		return nil
	}
	if shop == nil {
		h.logger.Error().Str("shop", event.Shop).Int64("shop_id", event.ShopID).Msg("Shop not found after installation")
		return nil
	}

	h.logger.Info().
		Int64("shop_id", shop.ID).
		Str("shop_name", shop.Name).
		Str("shop_email", shop.Email).
		Bool("has_token", shop.HasAccessToken()).
		Int("token_length", len(shop.AccessToken)).
		Str("token_preview", shop.TokenPreview()).
		Time("token_updated_at", shop.UpdatedAt).
		Msg("App installed - verifying token")

	return nil
}
