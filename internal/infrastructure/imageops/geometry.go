package imageops

import (
	"image"
	"math"
)

// fitWithin вписывает размер ow×oh в прямоугольник tw×th с сохранением пропорций.
func fitWithin(ow, oh, tw, th int) (int, int) {
	scale := minFloat(float64(tw)/float64(ow), float64(th)/float64(oh))
	nw := int(float64(ow) * scale)
	nh := int(float64(oh) * scale)
	if nw > tw {
		nw = tw
	}
	if nh > th {
		nh = th
	}
	return maxInt(nw, 1), maxInt(nh, 1)
}

// centerRect возвращает центральный прямоугольник с соотношением сторон rw:rh внутри bounds.
func centerRect(bounds image.Rectangle, rw, rh int) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	nw, nh := w, h
	if w*rh > h*rw {
		nw = h * rw / rh
	} else {
		nh = w * rh / rw
	}
	nw = maxInt(nw, 1)
	nh = maxInt(nh, 1)

	x0 := bounds.Min.X + (w-nw)/2
	y0 := bounds.Min.Y + (h-nh)/2
	return image.Rect(x0, y0, x0+nw, y0+nh)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// capPixels уменьшает w×h с сохранением пропорций, чтобы площадь не превышала limit.
func capPixels(w, h, limit int) (int, int) {
	if limit <= 0 || w*h <= limit {
		return w, h
	}
	s := math.Sqrt(float64(limit) / float64(w*h))
	return maxInt(int(float64(w)*s), 1), maxInt(int(float64(h)*s), 1)
}
