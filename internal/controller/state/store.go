package state

import (
	"context"
	"sync"
	"time"
)

// Store хранилище сессий. Запись по пользователю перезаписывается целиком,
// без слияния. Get и Take возвращают nil, nil при отсутствии сессии.
// Take атомарно удаляет сессию, только если её Rev совпадает с rev,
// иначе оставляет хранилище как есть и возвращает nil, nil
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Take(ctx context.Context, userID int64, rev string) (*Session, error)
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore хранилище в памяти процесса, для одного инстанса
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // telegramID -> Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore создаёт хранилище. ttl <= 0 отключает устаревание
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (ms *MemoryStore) expired(s *Session) bool {
	return ms.ttl > 0 && ms.now().Sub(s.UpdatedAt) > ms.ttl
}

// Get возвращает копию сессии
func (ms *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sessions[userID]
	if !ok || ms.expired(s) {
		return nil, nil
	}
	return s.clone(), nil
}

// Put сохраняет копию сессии
func (ms *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.sessions[userID] = s.clone()
	return nil
}

// Take удаляет и возвращает сессию ревизии rev
func (ms *MemoryStore) Take(_ context.Context, userID int64, rev string) (*Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sessions[userID]
	if !ok {
		return nil, nil
	}
	if ms.expired(s) {
		delete(ms.sessions, userID)
		return nil, nil
	}
	if s.Rev != rev {
		return nil, nil
	}
	delete(ms.sessions, userID)
	return s, nil
}

// Delete удаляет сессию
func (ms *MemoryStore) Delete(_ context.Context, userID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.sessions, userID)
	return nil
}
