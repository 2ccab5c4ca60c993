package port

import (
	"context"

	"photo-bot/internal/domain/entity"
)

// RemoteEditAPI удаление и генерация фона с локальным запасным вариантом.
// Недоступность сервиса не является ошибкой: результат помечается как OutcomeDegraded.
type RemoteEditAPI interface {
	RemoveBackground(ctx context.Context, path string) (*entity.EditResult, error)
	GenerateBackground(ctx context.Context, path, stylePrompt string) (*entity.EditResult, error)
	Status() map[string]ProviderStatus
}

// ProviderStatus состояние удалённого сервиса
type ProviderStatus struct {
	Available bool   `json:"available"`
	APIKeySet bool   `json:"api_key_set"`
	Breaker   string `json:"breaker,omitempty"`
}

// FileStore временные файлы загрузок и результатов
type FileStore interface {
	// SaveUpload сохраняет присланное фото и возвращает путь
	SaveUpload(ctx context.Context, userID int64, fileID string, data []byte) (string, error)

	// NewOutputPath выдаёт уникальный путь для результата
	NewOutputPath(prefix, ext string) (string, error)

	// Exists проверяет наличие файла
	Exists(path string) bool

	// Discard удаляет доставленный результат
	Discard(path string) error
}
