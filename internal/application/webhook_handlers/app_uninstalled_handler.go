package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler removes the shop and its llms.txt when the app is uninstalled
type AppUninstalledHandler struct {
	logger zerolog.Logger
	shops  ports.ShopRepository
	store  ports.ArtifactStore
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, shops ports.ShopRepository, store ports.ArtifactStore) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger: logger,
		shops:  shops,
		store:  store,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled
}

// Handle clears the generation stamp, deletes the shop record and deletes the
// artifact. Every step runs even when an earlier one fails.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopID, shopDomain := h.resolve(ctx, event)
	if shopID == 0 {
		h.logger.Warn().Str("shop", shopDomain).Msg("App uninstalled for unknown shop - nothing to clean up")
		return nil
	}

	log := h.logger.With().Int64("shop_id", shopID).Str("shop", shopDomain).Logger()
	log.Info().Msg("Processing app uninstalled webhook event")

	if err := h.shops.SetLLMGeneratedAt(ctx, shopID, nil); err != nil {
		log.Error().Err(err).Msg("Failed to clear llm_generated_at on uninstall")
	}

	if err := h.shops.DeleteShop(ctx, shopID); err != nil {
		log.Error().Err(err).Msg("Failed to delete shop on uninstall")
	} else {
		log.Info().Msg("Deleted shop on uninstall")
	}

	key := domain.ArtifactKey(shopID)
	exists, err := h.store.Exists(ctx, key)
	switch {
	case err != nil:
		log.Error().Err(err).Str("filename", key).Msg("Error checking LLMs.txt file on app uninstall")
	case !exists:
		log.Info().Str("filename", key).Msg("LLMs.txt file not found during uninstall (may have been deleted already)")
	default:
		if err := h.store.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("filename", key).Msg("Error deleting LLMs.txt file on app uninstall")
		} else {
			log.Info().Str("filename", key).Msg("Deleted LLMs.txt file on app uninstall")
		}
	}

	return nil
}

// resolve finds the shop id from the directory, falling back to the payload
func (h *AppUninstalledHandler) resolve(ctx context.Context, event *domain.WebhookEvent) (int64, string) {
	var payload struct {
		ID              int64  `json:"id"`
		Domain          string `json:"domain"`
		MyshopifyDomain string `json:"myshopify_domain"`
	}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Warn().Err(err).Str("shop", event.Shop).Msg("Failed to parse app uninstalled webhook payload")
		}
	}

	shopDomain := event.Shop
	if shopDomain == "" {
		shopDomain = payload.MyshopifyDomain
	}
	if shopDomain == "" {
		shopDomain = payload.Domain
	}

	if shopDomain != "" {
		shop, err := h.shops.GetShopByDomain(ctx, shopDomain)
		if err != nil {
			h.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to look up shop on uninstall")
		} else if shop != nil {
			return shop.ID, shopDomain
		}
	}

	if event.ShopID != 0 {
		return event.ShopID, shopDomain
	}
	return payload.ID, shopDomain
}
