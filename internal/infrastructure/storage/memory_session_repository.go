package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

// ErrSessionNotFound сессия с таким ID не найдена
var ErrSessionNotFound = errors.New("session not found")

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

// Get возвращает копию сессии по ID
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Wrap(ErrSessionNotFound, id)
	}
	copied := *session
	return &copied, nil
}

// Save сохраняет состояние сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	copied := *session

	r.mu.Lock()
	r.sessions[session.ID] = &copied
	r.mu.Unlock()

	return nil
}

// Delete удаляет сессию
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}

// Active возвращает открытые сессии в порядке подключения
func (r *MemorySessionRepository) Active(ctx context.Context) ([]*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]*entity.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Active() {
			copied := *s
			active = append(active, &copied)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].OpenedAt.Before(active[j].OpenedAt)
	})
	return active, nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
