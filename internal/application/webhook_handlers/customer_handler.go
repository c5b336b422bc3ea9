package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/rs/zerolog"
)

// CustomerHandler acknowledges customer data requests and redactions. The app
// stores no customer records, so there is nothing to export or erase.
type CustomerHandler struct {
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomersDataRequest ||
		topic == domain.TopicCustomersRedact
}

// Handle logs the request
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload domain.CompliancePayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Warn().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to parse customer webhook payload")
		}
	}

	entry := h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Int64("shop_id", payload.ShopID).
		Int64("customer_id", payload.Customer.ID).
		Int("orders_requested", len(payload.OrdersRequested))

	switch event.Topic {
	case domain.TopicCustomersDataRequest:
		entry.Int64("data_request_id", payload.DataRequest.ID).Msg("Customer data request received (no customer data stored)")
	case domain.TopicCustomersRedact:
		entry.Msg("Customer redaction request received (no customer data stored)")
	}

	return nil
}
