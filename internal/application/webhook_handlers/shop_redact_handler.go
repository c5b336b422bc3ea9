package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// ShopRedactHandler deletes the llms.txt of a shop that asked for its data to be erased
type ShopRedactHandler struct {
	logger zerolog.Logger
	shops  ports.ShopRepository
	store  ports.ArtifactStore
}

// NewShopRedactHandler creates a new shop redact handler
func NewShopRedactHandler(logger zerolog.Logger, shops ports.ShopRepository, store ports.ArtifactStore) *ShopRedactHandler {
	return &ShopRedactHandler{
		logger: logger,
		shops:  shops,
		store:  store,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ShopRedactHandler) CanHandle(topic string) bool {
	return topic == domain.TopicShopRedact
}

// Handle deletes the artifact if present. The payload shop id is used when the
// shop record is already gone. Failures are logged and never returned.
func (h *ShopRedactHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload domain.CompliancePayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Warn().Err(err).Str("shop", event.Shop).Msg("Failed to parse shop redact payload")
		}
	}

	h.logger.Info().
		Str("shop", event.Shop).
		Int64("shop_id", payload.ShopID).
		Str("shop_domain_from_payload", payload.ShopDomain).
		Msg("Shop data redaction request received")

	shopDomain := event.Shop
	if shopDomain == "" {
		shopDomain = payload.ShopDomain
	}

	shopID, ok := h.resolveShopID(ctx, shopDomain, payload.ShopID)
	if !ok {
		return nil
	}

	key := domain.ArtifactKey(shopID)
	exists, err := h.store.Exists(ctx, key)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shopDomain).Str("filename", key).Msg("Error processing shop redaction request")
		return nil
	}
	if !exists {
		return nil
	}

	if err := h.store.Delete(ctx, key); err != nil {
		h.logger.Error().Err(err).Str("shop", shopDomain).Str("filename", key).Msg("Error processing shop redaction request")
		return nil
	}

	h.logger.Info().Int64("shop_id", shopID).Str("shop", shopDomain).Str("filename", key).Msg("Deleted LLMs.txt file on shop redaction request")
	return nil
}

// resolveShopID prefers the directory record for the domain. When that is gone
// or unreadable the payload id is used, unless the directory says it belongs
// to a different shop.
func (h *ShopRedactHandler) resolveShopID(ctx context.Context, shopDomain string, payloadID int64) (int64, bool) {
	shop, err := h.shops.GetShopByDomain(ctx, shopDomain)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shopDomain).Msg("Error processing shop redaction request")
	} else if shop != nil {
		return shop.ID, true
	}

	if payloadID == 0 {
		if err == nil {
			h.logger.Warn().Str("shop", shopDomain).Msg("Shop not found for redaction request")
		}
		return 0, false
	}

	owner, err := h.shops.GetShopByID(ctx, payloadID)
	switch {
	case err != nil:
		h.logger.Warn().Err(err).Int64("shop_id", payloadID).Msg("Failed to look up shop by id, using payload shop id")
	case owner != nil && owner.Domain != shopDomain:
		h.logger.Warn().
			Int64("shop_id", payloadID).
			Str("shop", shopDomain).
			Str("owner", owner.Domain).
			Msg("Payload shop id belongs to another shop")
		return 0, false
	}
	return payloadID, true
}
