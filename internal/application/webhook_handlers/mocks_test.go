package webhook_handlers

import (
	"context"
	"sync"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
)

// mockShopRepository is a func-field fake of ports.ShopRepository backed by a map
type mockShopRepository struct {
	mu    sync.Mutex
	shops map[string]*domain.Shop

	GetShopByDomainFunc   func(ctx context.Context, shopDomain string) (*domain.Shop, error)
	GetShopByIDFunc       func(ctx context.Context, id int64) (*domain.Shop, error)
	SetLLMGeneratedAtFunc func(ctx context.Context, id int64, at *time.Time) error
	DeleteShopFunc        func(ctx context.Context, id int64) error

	cleared []int64
	deleted []int64
}

func newMockShopRepository(shops ...*domain.Shop) *mockShopRepository {
	m := &mockShopRepository{shops: make(map[string]*domain.Shop)}
	for _, shop := range shops {
		m.shops[shop.Domain] = shop
	}
	return m
}

func (m *mockShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shops[shop.Domain] = shop
	return nil
}

func (m *mockShopRepository) GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	if m.GetShopByDomainFunc != nil {
		return m.GetShopByDomainFunc(ctx, shopDomain)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shops[shopDomain], nil
}

func (m *mockShopRepository) GetShopByID(ctx context.Context, id int64) (*domain.Shop, error) {
	if m.GetShopByIDFunc != nil {
		return m.GetShopByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, shop := range m.shops {
		if shop.ID == id {
			return shop, nil
		}
	}
	return nil, nil
}

func (m *mockShopRepository) SetLLMGeneratedAt(ctx context.Context, id int64, at *time.Time) error {
	m.mu.Lock()
	m.cleared = append(m.cleared, id)
	m.mu.Unlock()
	if m.SetLLMGeneratedAtFunc != nil {
		return m.SetLLMGeneratedAtFunc(ctx, id, at)
	}
	return nil
}

func (m *mockShopRepository) DeleteShop(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	if m.DeleteShopFunc != nil {
		return m.DeleteShopFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, shop := range m.shops {
		if shop.ID == id {
			delete(m.shops, key)
		}
	}
	return nil
}

// mockArtifactStore is an in-memory ports.ArtifactStore
type mockArtifactStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	ExistsErr error
	DeleteErr error
}

func newMockArtifactStore(keys ...string) *mockArtifactStore {
	m := &mockArtifactStore{objects: make(map[string][]byte)}
	for _, key := range keys {
		m.objects[key] = []byte("# llms.txt")
	}
	return m
}

func (m *mockArtifactStore) Put(ctx context.Context, key string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
	return nil
}

func (m *mockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}

func (m *mockArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *mockArtifactStore) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}
