package port

import (
	"context"

	"photo-bot/internal/domain/entity"
)

// SessionStore интерфейс хранилища сессий
type SessionStore interface {
	// Get возвращает сессию по ID, создаёт новую если не найдена
	Get(ctx context.Context, userID, chatID int64) (*entity.Session, error)

	// Save сохраняет сессию
	Save(ctx context.Context, session *entity.Session) error

	// Count возвращает число известных пользователей
	Count(ctx context.Context) int
}
