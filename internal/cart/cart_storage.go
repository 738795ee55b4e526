package cart

import (
	"context"
	"sync"
)

//go:generate mockgen -source=cart_storage.go -destination=../mock/cart/cart_storage_mock.go -package=mock

// Storage is the durable home of a cart: an ordered list of raw items keyed
// by cart ID. Implementations return an empty list (not an error) for a
// cart that was never written.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]Item, error)
	Save(ctx context.Context, cartID string, items []Item) error
	Delete(ctx context.Context, cartID string) error
}

// MemoryStorage keeps carts in process memory. Used by tests and local
// development without Redis.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]Item)}
}

func (m *MemoryStorage) Load(_ context.Context, cartID string) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.carts[cartID]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, cartID string, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]Item, len(items))
	copy(stored, items)
	m.carts[cartID] = stored
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, cartID)
	return nil
}
