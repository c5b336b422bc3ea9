package ports

import (
	"context"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
)

// JobQueue carries compliance webhooks from the API to the worker
type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.Job) error
	// Dequeue blocks up to timeout and returns nil, nil when nothing arrived
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error)
}
