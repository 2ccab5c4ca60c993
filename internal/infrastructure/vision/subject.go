//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"

	"gocv.io/x/gocv"

	"photo-bot/internal/domain/entity"
)

// ErrNoSubject объект на снимке не найден
var ErrNoSubject = errors.New("no subject found")

type SubjectDetector struct {
	MinAreaRatio float64
	MaxSide      int
}

// NewSubjectDetector создаёт детектор на OpenCV (Canny + внешние контуры).
func NewSubjectDetector() *SubjectDetector {
	return &SubjectDetector{
		MinAreaRatio: 0.01,
		MaxSide:      1024,
	}
}

// Detect ищет самый крупный контур и возвращает его рамку в координатах исходника.
func (d *SubjectDetector) Detect(ctx context.Context, img image.Image) (entity.Region, error) {
	if err := ctx.Err(); err != nil {
		return entity.Region{}, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return entity.Region{}, err
	}
	defer mat.Close()

	if mat.Empty() {
		return entity.Region{}, errors.New("empty image")
	}

	// Приводим изображение к стандартному размеру для стабильных порогов.
	scale := 1.0
	if mat.Cols() > d.MaxSide || mat.Rows() > d.MaxSide {
		scale = float64(d.MaxSide) / float64(maxInt(mat.Cols(), mat.Rows()))
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return entity.Region{}, ErrNoSubject
	}

	// Самый крупный контур считаем главным объектом.
	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return entity.Region{}, ErrNoSubject
	}

	rect := gocv.BoundingRect(contours.At(best))
	minArea := float64(mat.Cols()*mat.Rows()) * d.MinAreaRatio
	if float64(rect.Dx()*rect.Dy()) < minArea {
		return entity.Region{}, ErrNoSubject
	}

	return scaleBack(rect, scale, img.Bounds()), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
