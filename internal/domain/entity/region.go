package entity

import "image"

// Region прямоугольная область изображения (например, границы объекта для умной обрезки)
type Region struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
}

// Center возвращает координаты центра области
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Empty сообщает, что область вырождена
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Rect переводит область в image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Pad расширяет область на padding пикселей с каждой стороны и обрезает её по границам bounds.
func (r Region) Pad(padding int, bounds image.Rectangle) Region {
	rect := image.Rect(r.X-padding, r.Y-padding, r.X+r.Width+padding, r.Y+r.Height+padding).Intersect(bounds)
	return RegionFromRect(rect)
}

// RegionFromRect строит область из image.Rectangle
func RegionFromRect(rect image.Rectangle) Region {
	return Region{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
}
