package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/models"
)

type memoryEntry struct {
	payload   string
	expiresAt *time.Time
}

// MemoryStore 进程内存储，适用于单节点与测试
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry)}
}

// Driver 驱动名称
func (s *MemoryStore) Driver() string {
	return constants.CartDriverMemory
}

// Load 读取购物车
func (s *MemoryStore) Load(ctx context.Context, cartID string) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeSlot(cartID, s.readLocked(cartID)), nil
}

// Update 串行修改购物车
func (s *MemoryStore) Update(ctx context.Context, cartID string, fn MutateFunc) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next, err := applyMutation(decodeSlot(cartID, s.readLocked(cartID)), fn)
	if err != nil {
		return nil, err
	}
	payload, err := encodeSlot(next)
	if err != nil {
		return nil, err
	}
	s.entries[cartID] = memoryEntry{payload: payload, expiresAt: expiresAt(s.ttl)}
	return next.Clone(), nil
}

// Clear 删除购物车
func (s *MemoryStore) Clear(ctx context.Context, cartID string) error {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, cartID)
	s.mu.Unlock()
	return nil
}

// PurgeExpired 清理过期购物车
func (s *MemoryStore) PurgeExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, entry := range s.entries {
		if entry.expiresAt != nil && !entry.expiresAt.After(now) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) readLocked(cartID string) string {
	entry, ok := s.entries[cartID]
	if !ok {
		return ""
	}
	if entry.expiresAt != nil && !entry.expiresAt.After(time.Now()) {
		delete(s.entries, cartID)
		return ""
	}
	return entry.payload
}
