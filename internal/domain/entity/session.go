package entity

import "time"

// SessionState состояние websocket-сессии
type SessionState string

const (
	StateConnected  SessionState = "connected"  // Соединение открыто, кадров ещё нет
	StateIdle       SessionState = "idle"       // Ожидание следующего кадра
	StateProcessing SessionState = "processing" // Обработка кадра
	StateClosed     SessionState = "closed"     // Соединение закрыто
)

// Session представляет подключённого клиента
type Session struct {
	ID              string       // идентификатор сессии
	RemoteAddr      string       // адрес клиента
	State           SessionState // текущее состояние
	FramesProcessed int          // обработано кадров
	OpenedAt        time.Time
	LastFrameAt     time.Time
}

// NewSession создаёт новую сессию в начальном состоянии
func NewSession(id, remoteAddr string, now time.Time) *Session {
	return &Session{
		ID:         id,
		RemoteAddr: remoteAddr,
		State:      StateConnected,
		OpenedAt:   now,
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// FrameDone отмечает завершение обработки кадра
func (s *Session) FrameDone(now time.Time) {
	s.FramesProcessed++
	s.LastFrameAt = now
	s.State = StateIdle
}

// Active сообщает, открыта ли сессия
func (s *Session) Active() bool {
	return s.State != StateClosed
}
