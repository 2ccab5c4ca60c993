package vision

import (
	"image"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

var _ port.SubjectDetector = (*SubjectDetector)(nil)

// scaleBack переводит рамку из уменьшенной копии в координаты исходного изображения.
func scaleBack(rect image.Rectangle, scale float64, bounds image.Rectangle) entity.Region {
	if scale <= 0 {
		scale = 1
	}
	r := image.Rect(
		int(float64(rect.Min.X)/scale),
		int(float64(rect.Min.Y)/scale),
		int(float64(rect.Max.X)/scale+0.5),
		int(float64(rect.Max.Y)/scale+0.5),
	).Add(bounds.Min).Intersect(bounds)
	return entity.RegionFromRect(r)
}
