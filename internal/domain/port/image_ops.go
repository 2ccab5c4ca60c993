package port

import (
	"context"

	"photo-bot/internal/domain/entity"
)

// ImageOps локальные операции над изображением
type ImageOps interface {
	Resize(ctx context.Context, path string, target entity.Size) (*entity.EditResult, error)
	Crop(ctx context.Context, path string, style entity.CropStyle) (*entity.EditResult, error)
	Enhance(ctx context.Context, path string, res entity.Resolution) (*entity.EditResult, error)
	Convert(ctx context.Context, path string, format entity.Format) (*entity.EditResult, error)

	// Info читает размеры и формат без полного декодирования
	Info(path string) (entity.ImageInfo, error)
}

// LocalBackground локальная замена удалённых сервисов фона
type LocalBackground interface {
	// RemoveBackgroundLocal делает фон прозрачным по цвету углов
	RemoveBackgroundLocal(ctx context.Context, path string) (*entity.EditResult, error)

	// CompositeBackground накладывает передний план на синтетический фон; style задаёт стиль или описание фона
	CompositeBackground(ctx context.Context, originalPath, foregroundPath, style string) (*entity.EditResult, error)
}
