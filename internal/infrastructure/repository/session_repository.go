package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "llm-shopify:oauth:"

// RedisSessionRepository keeps OAuth handshakes in Redis until they expire
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis session repository
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// CreateSession stores the handshake with a TTL matching its expiry
func (r *RedisSessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session for %s already expired", session.Shop)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the handshake for state, or nil when unknown or expired
func (r *RedisSessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes the handshake
func (r *RedisSessionRepository) DeleteSession(ctx context.Context, state string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+state).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemorySessionRepository keeps handshakes in process. Used when Redis is not configured.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an in-process session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// CreateSession stores the handshake
func (r *MemorySessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for state, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, state)
		}
	}
	copied := *session
	r.sessions[session.State] = &copied
	return nil
}

// GetSession returns the handshake for state, or nil when unknown or expired
func (r *MemorySessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[state]
	if !ok || session.Expired(r.now()) {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// DeleteSession removes the handshake
func (r *MemorySessionRepository) DeleteSession(ctx context.Context, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, state)
	return nil
}
