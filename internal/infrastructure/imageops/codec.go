package imageops

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photo-bot/internal/domain/entity"
)

// load читает файл и возвращает изображение с учётом EXIF-ориентации и формат исходника.
func load(path string) (image.Image, entity.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode: %w", err)
	}

	return img, mirrorFormat(name), nil
}

// mirrorFormat сопоставляет имя декодера с форматом вывода; bmp и tiff сохраняем в png.
func mirrorFormat(name string) entity.Format {
	switch name {
	case "jpeg":
		return entity.FormatJPEG
	case "webp":
		return entity.FormatWEBP
	case "gif":
		return entity.FormatGIF
	default:
		return entity.FormatPNG
	}
}

// encode пишет изображение в файл; для JPEG прозрачность сначала заливается белым.
func (p *Processor) encode(img image.Image, format entity.Format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	switch format {
	case entity.FormatJPEG:
		err = imaging.Encode(f, flatten(img), imaging.JPEG, imaging.JPEGQuality(p.JPEGQuality))
	case entity.FormatPNG:
		err = imaging.Encode(f, img, imaging.PNG)
	case entity.FormatGIF:
		err = imaging.Encode(f, img, imaging.GIF)
	case entity.FormatWEBP:
		err = webp.Encode(f, img, webp.Options{Quality: p.WebPQuality})
	default:
		err = fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, format)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// flatten накладывает изображение на непрозрачный белый фон.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// opaque сообщает, что в изображении нет прозрачных пикселей.
func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
