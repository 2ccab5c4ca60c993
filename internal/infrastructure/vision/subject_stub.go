//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"photo-bot/internal/domain/entity"
)

// ErrNoSubject объект на снимке не найден
var ErrNoSubject = errors.New("no subject found")

// SubjectDetector без OpenCV: лапласиан по серому изображению и рамка по массе границ.
type SubjectDetector struct {
	MinAreaRatio  float64
	MinEdgeRatio  float64
	TrimRatio     float64
	EdgeThreshold uint8
	MaxSide       int
}

// NewSubjectDetector создаёт детектор на чистом Go (сборка без тега gocv).
func NewSubjectDetector() *SubjectDetector {
	return &SubjectDetector{
		MinAreaRatio:  0.01,
		MinEdgeRatio:  0.002,
		TrimRatio:     0.02,
		EdgeThreshold: 40,
		MaxSide:       512,
	}
}

var laplacian = [9]float64{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

// Detect возвращает рамку, внутри которой лежит основная масса границ.
func (d *SubjectDetector) Detect(ctx context.Context, img image.Image) (entity.Region, error) {
	if err := ctx.Err(); err != nil {
		return entity.Region{}, err
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return entity.Region{}, errors.New("empty image")
	}

	work := img
	scale := 1.0
	if bounds.Dx() > d.MaxSide || bounds.Dy() > d.MaxSide {
		scale = float64(d.MaxSide) / float64(maxInt(bounds.Dx(), bounds.Dy()))
		newW := maxInt(1, int(float64(bounds.Dx())*scale))
		newH := maxInt(1, int(float64(bounds.Dy())*scale))
		work = imaging.Resize(img, newW, newH, imaging.Box)
	}

	gray := imaging.Blur(imaging.Grayscale(work), 1.0)
	edges := imaging.Convolve3x3(gray, laplacian, nil)

	w, h := edges.Bounds().Dx(), edges.Bounds().Dy()
	cols := make([]int, w)
	rows := make([]int, h)
	total := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x*4] >= d.EdgeThreshold {
				cols[x]++
				rows[y]++
				total++
			}
		}
	}

	if total == 0 || float64(total) < float64(w*h)*d.MinEdgeRatio {
		return entity.Region{}, ErrNoSubject
	}

	x0, x1 := massSpan(cols, total, d.TrimRatio)
	y0, y1 := massSpan(rows, total, d.TrimRatio)
	rect := image.Rect(x0, y0, x1+1, y1+1)

	if float64(rect.Dx()*rect.Dy()) < float64(w*h)*d.MinAreaRatio {
		return entity.Region{}, ErrNoSubject
	}

	return scaleBack(rect, scale, bounds), nil
}

// massSpan отсекает trim долю массы с каждой стороны гистограммы.
func massSpan(counts []int, total int, trim float64) (int, int) {
	cut := int(float64(total) * trim)

	start, acc := 0, 0
	for i, c := range counts {
		acc += c
		if acc > cut {
			start = i
			break
		}
	}

	end := len(counts) - 1
	acc = 0
	for i := len(counts) - 1; i >= 0; i-- {
		acc += counts[i]
		if acc > cut {
			end = i
			break
		}
	}

	if end < start {
		return start, start
	}
	return start, end
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
