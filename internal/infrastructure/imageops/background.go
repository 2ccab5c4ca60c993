package imageops

import (
	"context"
	"image"
	"image/color"
	"math/rand"
	"strings"

	"github.com/disintegration/imaging"

	"photo-bot/internal/domain/entity"
)

// Стили синтетического фона
const (
	StyleGradient = "gradient"
	StyleBlur     = "blur"
	StyleSolid    = "solid"
	StylePattern  = "pattern"
)

// StyleFromPrompt подбирает локальный стиль фона по ключевым словам описания.
func StyleFromPrompt(prompt string) string {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "blur"):
		return StyleBlur
	case strings.Contains(p, "solid"), strings.Contains(p, "color"), strings.Contains(p, "plain"):
		return StyleSolid
	case strings.Contains(p, "pattern"):
		return StylePattern
	default:
		return StyleGradient
	}
}

// RemoveBackgroundLocal делает прозрачными пиксели, близкие к среднему цвету четырёх углов.
// Результат сохраняется в PNG.
func (p *Processor) RemoveBackgroundLocal(ctx context.Context, path string) (*entity.EditResult, error) {
	const op = "remove_bg_local"

	img, _, err := load(path)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	out := removeByCorners(img, p.CornerThreshold)
	res, err := p.result(op, out, entity.FormatPNG, "bg_removed_local", "✅ *Background removed (local)*")
	if err != nil {
		return nil, err
	}
	res.Outcome = entity.OutcomeDegraded
	return res, nil
}

func removeByCorners(img image.Image, threshold int) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()

	var sum [3]int
	for _, pt := range []image.Point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		c := out.NRGBAAt(pt.X, pt.Y)
		sum[0] += int(c.R)
		sum[1] += int(c.G)
		sum[2] += int(c.B)
	}
	bg := [3]int{sum[0] / 4, sum[1] / 4, sum[2] / 4}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := out.PixOffset(x, y)
			px := out.Pix[i : i+4 : i+4]
			if absInt(int(px[0])-bg[0]) < threshold &&
				absInt(int(px[1])-bg[1]) < threshold &&
				absInt(int(px[2])-bg[2]) < threshold {
				px[3] = 0
			}
		}
	}
	return out
}

// CompositeBackground накладывает передний план на синтетический фон. style может быть
// названием стиля или произвольным описанием. Полностью непрозрачный передний план смешивается с фоном. Результат сохраняется в JPEG.
func (p *Processor) CompositeBackground(ctx context.Context, originalPath, foregroundPath, style string) (*entity.EditResult, error) {
	const op = "generate_bg_local"

	original, _, err := load(originalPath)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}
	fg := original
	if foregroundPath != "" && foregroundPath != originalPath {
		if fg, _, err = load(foregroundPath); err != nil {
			return nil, &entity.ProcessingError{Op: op, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	w, h := fg.Bounds().Dx(), fg.Bounds().Dy()
	bg := syntheticBackground(original, StyleFromPrompt(style), w, h)

	opacity := 1.0
	if opaque(fg) {
		opacity = p.OverlayOpacity
	}
	out := imaging.Overlay(bg, fg, image.Pt(0, 0), opacity)

	res, err := p.result(op, out, entity.FormatJPEG, "bg_generated_local", "✅ *Background generated (local)*")
	if err != nil {
		return nil, err
	}
	res.Outcome = entity.OutcomeDegraded
	return res, nil
}

var solidColors = []color.NRGBA{
	{255, 255, 255, 255},
	{0, 0, 0, 255},
	{240, 248, 255, 255},
	{255, 250, 240, 255},
	{245, 245, 220, 255},
}

func syntheticBackground(original image.Image, style string, w, h int) *image.NRGBA {
	switch style {
	case StyleBlur:
		small := imaging.Resize(original, maxInt(w/8, 1), maxInt(h/8, 1), imaging.Box)
		return imaging.Resize(imaging.Blur(small, 3), w, h, imaging.Linear)
	case StyleSolid:
		return imaging.New(w, h, solidColors[(w+h)%len(solidColors)])
	case StylePattern:
		return pattern(w, h)
	default:
		return gradient(w, h)
	}
}

// gradient рисует один из трёх градиентов, выбранный по площади изображения.
func gradient(w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	variant := (w * h) % 3
	fw, fh := float64(w), float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			var r, g, b float64
			switch variant {
			case 0:
				r, g, b = 70+fx/fw*80, 130+fy/fh*60, 200+(fx+fy)/(fw+fh)*55
			case 1:
				r, g, b = 255-fy/fh*100, 150+fx/fw*50, 80+fy/fh*120
			default:
				r, g, b = 40+fx/fw*60, 90+fy/fh*100, 140+fx/fw*100
			}
			out.SetNRGBA(x, y, color.NRGBA{clamp8(r), clamp8(g), clamp8(b), 255})
		}
	}
	return out
}

// pattern рисует плитки 20×20 с шагом 40 на светлом фоне.
func pattern(w, h int) *image.NRGBA {
	out := imaging.New(w, h, color.NRGBA{250, 250, 250, 255})
	rnd := rand.New(rand.NewSource(int64(w)*31 + int64(h)))

	for ty := 0; ty < h; ty += 40 {
		for tx := 0; tx < w; tx += 40 {
			c := color.NRGBA{
				uint8(200 + rnd.Intn(56)),
				uint8(200 + rnd.Intn(56)),
				uint8(200 + rnd.Intn(56)),
				255,
			}
			for y := ty; y < ty+20 && y < h; y++ {
				for x := tx; x < tx+20 && x < w; x++ {
					out.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
