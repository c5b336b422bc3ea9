package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is a FIFO job list: LPUSH to enqueue, BRPOP to dequeue
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a queue stored at key
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{
		client: client,
		key:    key,
	}
}

// Enqueue appends a job
func (q *RedisQueue) Enqueue(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue waits up to timeout for the oldest job
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(result))
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Len returns the number of waiting jobs
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return n, nil
}
