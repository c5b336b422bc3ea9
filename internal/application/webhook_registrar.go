package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

type webhookSubscription struct {
	ID      int64  `json:"id,omitempty"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

// WebhookRegistrar subscribes installed shops to the lifecycle webhooks the app reacts to
type WebhookRegistrar struct {
	shopify ports.ShopifyClient
	address string
	topics  []string
	logger  zerolog.Logger
}

// NewWebhookRegistrar creates a new webhook registrar. address is the public
// webhook endpoint, e.g. "https://app.example.com/webhooks".
func NewWebhookRegistrar(shopify ports.ShopifyClient, address string, logger zerolog.Logger) *WebhookRegistrar {
	return &WebhookRegistrar{
		shopify: shopify,
		address: address,
		topics:  []string{domain.TopicAppUninstalled},
		logger:  logger,
	}
}

// EnsureSubscriptions creates any missing subscription. Failures are logged and
// the first one is returned; installation carries on regardless.
func (r *WebhookRegistrar) EnsureSubscriptions(ctx context.Context, session domain.APISession) error {
	var firstErr error
	for _, topic := range r.topics {
		if err := r.ensure(ctx, session, topic); err != nil {
			r.logger.Warn().Err(err).Str("shop", session.ShopDomain).Str("topic", topic).Msg("Failed to register webhook")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *WebhookRegistrar) ensure(ctx context.Context, session domain.APISession, topic string) error {
	query := url.Values{}
	query.Set("topic", topic)

	resp, err := r.shopify.REST(ctx, session, ports.RESTRequest{Method: http.MethodGet, Path: "webhooks.json", Query: query})
	if err != nil {
		return err
	}
	if resp.Errors {
		return fmt.Errorf("webhook lookup failed: status %d, body: %s", resp.Status, errorMessage(resp.Body))
	}

	var payload struct {
		Webhooks []webhookSubscription `json:"webhooks"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return fmt.Errorf("failed to decode webhooks: %w", err)
	}
	for _, existing := range payload.Webhooks {
		if existing.Address == r.address {
			return nil
		}
	}

	resp, err = r.shopify.REST(ctx, session, ports.RESTRequest{
		Method: http.MethodPost,
		Path:   "webhooks.json",
		Body: map[string]webhookSubscription{"webhook": {
			Topic:   topic,
			Address: r.address,
			Format:  "json",
		}},
	})
	if err != nil {
		return err
	}
	if resp.Errors {
		return fmt.Errorf("webhook creation failed: status %d, body: %s", resp.Status, errorMessage(resp.Body))
	}

	r.logger.Info().Str("shop", session.ShopDomain).Str("topic", topic).Str("address", r.address).Msg("Registered webhook")
	return nil
}
