package entity

import (
	"fmt"
	"strings"
)

// Format формат выходного файла
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatGIF  Format = "gif"
)

// ParseFormat разбирает строку формата. Поддерживаются только jpeg, png и webp.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Ext возвращает расширение файла без точки
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// ImageInfo хранит сведения об изображении.
type ImageInfo struct {
	Width  int    // ширина изображения
	Height int    // высота изображения
	Format Format // формат, определённый декодером
}

// Outcome итог операции редактирования
type Outcome int

const (
	OutcomeSuccess  Outcome = iota // операция выполнена полностью
	OutcomeDegraded                // удалённый сервис недоступен, использован локальный вариант
	OutcomeFailed                  // операция не выполнена
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EditResult результат операции над изображением; доставляется пользователю один раз.
type EditResult struct {
	OutputPath string
	Format     Format
	Caption    string
	Outcome    Outcome
	Provider   string // "local" или имя удалённого сервиса
}

// PhotoVariant один из размеров присланной фотографии
type PhotoVariant struct {
	FileID   string
	Width    int
	Height   int
	FileSize int
}

// LargestVariant выбирает вариант с наибольшей площадью в пикселях.
func LargestVariant(variants []PhotoVariant) (PhotoVariant, bool) {
	if len(variants) == 0 {
		return PhotoVariant{}, false
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if v.Width*v.Height > best.Width*best.Height {
			best = v
		}
	}
	return best, true
}
