package app

import (
	"context"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

type SessionService struct {
	repo port.SessionStore
}

func NewSessionService(repo port.SessionStore) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *SessionService) SetMenu(ctx context.Context, userID, chatID int64, state entity.MenuState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.SetMenu(state)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// AttachPhoto запоминает новое фото пользователя; предыдущее забывается.
func (s *SessionService) AttachPhoto(ctx context.Context, userID, chatID int64, path string) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.AttachPhoto(path)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// ForgetPhoto сбрасывает фото, файл которого уже удалён.
func (s *SessionService) ForgetPhoto(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.PhotoPath = ""
	session.SetMenu(entity.StateRoot)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) Count(ctx context.Context) int {
	return s.repo.Count(ctx)
}
