package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler reacts to one or more webhook topics
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes lifecycle events to the registered handlers
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch runs every handler accepting the event topic. All matching handlers
// run even when one fails; their errors are joined.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	var errs []error
	handled := false

	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := handler.Handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Topic, err))
		}
	}

	if !handled {
		d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler registered for webhook topic")
	}
	return errors.Join(errs...)
}
