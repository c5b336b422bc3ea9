package application

import (
	"context"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/metrics"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookService records verified webhooks and hands them to the reactors.
// Compliance topics go through the job queue when one is configured.
type WebhookService struct {
	log        ports.WebhookLogRepository
	dispatcher EventDispatcher
	queue      ports.JobQueue
	logger     zerolog.Logger
}

// NewWebhookService creates a new webhook service. queue may be nil, in which
// case compliance webhooks are handled inline.
func NewWebhookService(log ports.WebhookLogRepository, dispatcher EventDispatcher, queue ports.JobQueue, logger zerolog.Logger) *WebhookService {
	return &WebhookService{
		log:        log,
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
	}
}

// Receive processes a verified webhook. Failures are logged and never returned
// so the delivery is always acknowledged.
func (s *WebhookService) Receive(ctx context.Context, event *domain.WebhookEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}

	if err := s.log.LogWebhook(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to log webhook")
	}

	if domain.IsComplianceTopic(event.Topic) && s.queue != nil {
		job := &domain.Job{
			ID:         event.ID,
			Topic:      event.Topic,
			Domain:     event.Shop,
			Payload:    event.Payload,
			EnqueuedAt: time.Now().UTC(),
		}
		err := s.queue.Enqueue(ctx, job)
		if err == nil {
			metrics.RecordWebhook(event.Topic, "queued")
			s.logger.Info().Str("topic", event.Topic).Str("shop", event.Shop).Str("job_id", job.ID).Msg("Queued compliance webhook")
			return
		}
		s.logger.Warn().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to queue compliance webhook, handling inline")
	}

	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		metrics.RecordWebhook(event.Topic, "failed")
		s.logger.Error().Err(err).Str("topic", event.Topic).Str("shop", event.Shop).Msg("Failed to process webhook event")
		return
	}

	metrics.RecordWebhook(event.Topic, "ok")
	s.logger.Info().Str("topic", event.Topic).Str("shop", event.Shop).Bool("verified", event.Verified).Msg("Webhook processed")
}
