package application

import (
	"context"
	"errors"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// GDPRWorker consumes queued compliance webhooks one at a time
type GDPRWorker struct {
	queue       ports.JobQueue
	dispatcher  EventDispatcher
	pollTimeout time.Duration
	logger      zerolog.Logger
}

// NewGDPRWorker creates a new worker
func NewGDPRWorker(queue ports.JobQueue, dispatcher EventDispatcher, pollTimeout time.Duration, logger zerolog.Logger) *GDPRWorker {
	return &GDPRWorker{
		queue:       queue,
		dispatcher:  dispatcher,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Run processes jobs until ctx is cancelled
func (w *GDPRWorker) Run(ctx context.Context) error {
	w.logger.Info().Dur("poll_timeout", w.pollTimeout).Msg("GDPR worker started")
	for ctx.Err() == nil {
		if _, err := w.ProcessNext(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("Failed to read job queue")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
	w.logger.Info().Msg("GDPR worker stopped")
	return nil
}

// ProcessNext waits for one job and runs it. It reports whether a job was taken.
// Handler failures are logged; only queue failures are returned.
func (w *GDPRWorker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Dequeue(ctx, w.pollTimeout)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	event := &domain.WebhookEvent{
		ID:         job.ID,
		Topic:      job.Topic,
		Shop:       job.Domain,
		Payload:    job.Payload,
		Verified:   true,
		ReceivedAt: job.EnqueuedAt,
	}
	if err := w.dispatcher.Dispatch(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error().Err(err).Str("job_id", job.ID).Str("topic", job.Topic).Str("shop", job.Domain).Msg("GDPR job failed")
		return true, nil
	}

	w.logger.Info().Str("job_id", job.ID).Str("topic", job.Topic).Str("shop", job.Domain).Msg("GDPR job processed")
	return true, nil
}
