package storage

import (
	"context"
	"sync"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

// MemorySessionStore in-memory хранилище сессий пользователей
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
}

// NewMemorySessionStore создаёт новое in-memory хранилище
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]*entity.Session),
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена
func (r *MemorySessionStore) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[userID]
	r.mu.RUnlock()

	if exists {
		cp := *session
		return &cp, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Другой воркер мог успеть создать сессию
	if session, exists = r.sessions[userID]; !exists {
		session = entity.NewSession(userID, chatID)
		r.sessions[userID] = session
	}

	cp := *session
	return &cp, nil
}

// Save сохраняет состояние сессии
func (r *MemorySessionStore) Save(ctx context.Context, session *entity.Session) error {
	cp := *session

	r.mu.Lock()
	r.sessions[session.UserID] = &cp
	r.mu.Unlock()

	return nil
}

// Count возвращает число известных пользователей
func (r *MemorySessionStore) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Проверка реализации интерфейса
var _ port.SessionStore = (*MemorySessionStore)(nil)
