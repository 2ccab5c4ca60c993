package imageops

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

var (
	_ port.ImageOps        = (*Processor)(nil)
	_ port.LocalBackground = (*Processor)(nil)
)

// Processor выполняет локальные операции над изображениями.
type Processor struct {
	files    port.FileStore
	detector port.SubjectDetector
	logger   zerolog.Logger

	JPEGQuality     int     // качество JPEG при сохранении
	WebPQuality     int     // качество WebP при сохранении
	CropPadding     int     // отступ вокруг объекта при умной обрезке
	CornerThreshold int     // допуск по каналу при локальном удалении фона
	OverlayOpacity  float64 // прозрачность непрозрачного переднего плана при наложении
	MaxPixels       int     // предел площади результата улучшения
}

// NewProcessor создаёт обработчик с параметрами по умолчанию.
func NewProcessor(files port.FileStore, detector port.SubjectDetector, logger zerolog.Logger) *Processor {
	return &Processor{
		files:           files,
		detector:        detector,
		logger:          logger,
		JPEGQuality:     95,
		WebPQuality:     92,
		CropPadding:     20,
		CornerThreshold: 40,
		OverlayOpacity:  0.8,
		MaxPixels:       7680 * 4320,
	}
}

// Info возвращает размеры и формат файла без полного декодирования.
func (p *Processor) Info(path string) (entity.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.ImageInfo{}, err
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return entity.ImageInfo{}, fmt.Errorf("decode config: %w", err)
	}
	return entity.ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: mirrorFormat(name)}, nil
}

// Resize вписывает изображение в target с сохранением пропорций. Формат сохраняется.
func (p *Processor) Resize(ctx context.Context, path string, target entity.Size) (*entity.EditResult, error) {
	const op = "resize"

	if target.Width <= 0 || target.Height <= 0 {
		return nil, &entity.ProcessingError{Op: op, Err: fmt.Errorf("invalid target %dx%d", target.Width, target.Height)}
	}

	img, format, err := load(path)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), target.Width, target.Height)
	out := imaging.Resize(img, w, h, imaging.Lanczos)

	return p.result(op, out, format, "resized", fmt.Sprintf("✅ *Image resized to %dx%d*", w, h))
}

// Crop обрезает изображение по выбранному стилю. Умная обрезка при неудаче поиска объекта
// переходит к квадратной.
func (p *Processor) Crop(ctx context.Context, path string, style entity.CropStyle) (*entity.EditResult, error) {
	const op = "crop"

	img, format, err := load(path)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	rect, err := p.cropRect(ctx, img, style)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	out := imaging.Crop(img, rect)
	caption := fmt.Sprintf("✅ *Image cropped (%s) to %dx%d*", style, rect.Dx(), rect.Dy())
	return p.result(op, out, format, "cropped_"+string(style), caption)
}

func (p *Processor) cropRect(ctx context.Context, img image.Image, style entity.CropStyle) (image.Rectangle, error) {
	b := img.Bounds()

	switch style {
	case entity.CropSquare:
		return centerRect(b, 1, 1), nil
	case entity.CropPortrait:
		return centerRect(b, 9, 16), nil
	case entity.CropLandscape:
		return centerRect(b, 16, 9), nil
	case entity.CropSmart:
		if p.detector == nil {
			return centerRect(b, 1, 1), nil
		}
		region, err := p.detector.Detect(ctx, img)
		if err == nil {
			region = region.Pad(p.CropPadding, b)
		}
		if err != nil || region.Empty() {
			p.logger.Debug().Err(err).Msg("subject not found, falling back to square crop")
			return centerRect(b, 1, 1), nil
		}
		return region.Rect(), nil
	default:
		return image.Rectangle{}, fmt.Errorf("unknown crop style %q", style)
	}
}

// Enhance увеличивает изображение до разрешения res шагами не более чем в два раза,
// затем поднимает контраст, насыщенность и резкость. Результат всегда JPEG.
func (p *Processor) Enhance(ctx context.Context, path string, res entity.Resolution) (*entity.EditResult, error) {
	const op = "enhance"

	img, _, err := load(path)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	b := img.Bounds()
	target, ok := entity.ResolutionSizes[res]
	if res == entity.ResolutionOriginal {
		tw, th := capPixels(b.Dx()*2, b.Dy()*2, p.MaxPixels)
		target, ok = entity.Size{Width: tw, Height: th}, true
	}
	if !ok {
		return nil, &entity.ProcessingError{Op: op, Err: fmt.Errorf("unknown resolution %q", res)}
	}

	w, h := fitWithin(b.Dx(), b.Dy(), target.Width, target.Height)
	out, err := upscale(ctx, img, w, h)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	out = imaging.AdjustContrast(out, 15)
	out = imaging.AdjustSaturation(out, 10)
	out = imaging.Sharpen(out, 1.0)

	caption := fmt.Sprintf("✅ *Image enhanced to %s (%dx%d)*", strings.ToUpper(string(res)), w, h)
	return p.result(op, out, entity.FormatJPEG, "enhanced_"+string(res), caption)
}

// upscale масштабирует до w×h; при увеличении больше чем вдвое идёт промежуточными шагами
// с подчёркиванием резкости между ними.
func upscale(ctx context.Context, img image.Image, w, h int) (*image.NRGBA, error) {
	cur := imaging.Clone(img)
	for cur.Bounds().Dx()*2 < w && cur.Bounds().Dy()*2 < h {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur = imaging.Resize(cur, cur.Bounds().Dx()*2, cur.Bounds().Dy()*2, imaging.Lanczos)
		cur = imaging.Sharpen(cur, 0.8)
	}
	return imaging.Resize(cur, w, h, imaging.Lanczos), nil
}

// Convert перекодирует изображение в jpeg, png или webp.
func (p *Processor) Convert(ctx context.Context, path string, format entity.Format) (*entity.EditResult, error) {
	const op = "convert"

	format, err := entity.ParseFormat(string(format))
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	img, _, err := load(path)
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	caption := fmt.Sprintf("✅ *Image converted to %s*", strings.ToUpper(string(format)))
	return p.result(op, img, format, "converted", caption)
}

// result сохраняет изображение в новый файл и собирает EditResult.
func (p *Processor) result(op string, img image.Image, format entity.Format, prefix, caption string) (*entity.EditResult, error) {
	path, err := p.files.NewOutputPath(prefix, format.Ext())
	if err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}
	if err := p.encode(img, format, path); err != nil {
		return nil, &entity.ProcessingError{Op: op, Err: err}
	}

	p.logger.Debug().
		Str("op", op).
		Str("path", path).
		Str("format", string(format)).
		Msg("image saved")

	return &entity.EditResult{
		OutputPath: path,
		Format:     format,
		Caption:    caption,
		Outcome:    entity.OutcomeSuccess,
		Provider:   "local",
	}, nil
}
