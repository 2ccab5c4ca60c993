package port

import (
	"context"
	"image"

	"photo-bot/internal/domain/entity"
)

// SubjectDetector интерфейс поиска главного объекта на снимке
type SubjectDetector interface {
	// Detect возвращает ограничивающую рамку главного объекта
	Detect(ctx context.Context, img image.Image) (entity.Region, error)
}
