package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

// SessionService ведёт учёт websocket-сессий
type SessionService struct {
	repo port.SessionRepository
	now  func() time.Time
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo, now: time.Now}
}

// Open регистрирует новое соединение
func (s *SessionService) Open(ctx context.Context, remoteAddr string) (*entity.Session, error) {
	session := entity.NewSession(uuid.NewString(), remoteAddr, s.now())
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) SetState(ctx context.Context, id string, state entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.SetState(state)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) BeginFrame(ctx context.Context, id string) (*entity.Session, error) {
	return s.SetState(ctx, id, entity.StateProcessing)
}

// FrameDone отмечает обработанный кадр и возвращает сессию в ожидание
func (s *SessionService) FrameDone(ctx context.Context, id string) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.FrameDone(s.now())
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Close закрывает сессию и убирает её из хранилища
func (s *SessionService) Close(ctx context.Context, id string) (*entity.Session, error) {
	session, err := s.SetState(ctx, id, entity.StateClosed)
	if err != nil {
		return nil, err
	}
	return session, s.repo.Delete(ctx, id)
}

// HasActive сообщает, есть ли хотя бы одно открытое соединение
func (s *SessionService) HasActive(ctx context.Context) (bool, error) {
	active, err := s.repo.Active(ctx)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}
