package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

var _ port.RemoteEditAPI = (*Editor)(nil)

// Editor удаляет и генерирует фон через удалённые сервисы; при их недоступности
// использует локальную обработку, а в крайнем случае возвращает исходный файл.
type Editor struct {
	removers  []*Client
	generator *Client
	local     port.LocalBackground
	files     port.FileStore
	logger    zerolog.Logger
}

// NewEditor создаёт редактор. removers перебираются по порядку, generator может быть nil.
func NewEditor(removers []*Client, generator *Client, local port.LocalBackground, files port.FileStore, logger zerolog.Logger) *Editor {
	return &Editor{
		removers:  removers,
		generator: generator,
		local:     local,
		files:     files,
		logger:    logger,
	}
}

// RemoveBackground удаляет фон. Ошибка возвращается только если входного файла нет.
func (e *Editor) RemoveBackground(ctx context.Context, path string) (*entity.EditResult, error) {
	const op = "remove_bg"

	if !e.files.Exists(path) {
		return nil, &entity.ProcessingError{Op: op, Err: entity.ErrPhotoExpired}
	}

	for _, c := range e.removers {
		if !c.Configured() {
			continue
		}
		data, err := c.Submit(ctx, path, nil)
		if err != nil {
			continue
		}
		res, err := e.store(data, "bg_removed", "✅ *Background removed!*", c.Name())
		if err != nil {
			e.logger.Warn().Err(err).Str("provider", c.Name()).Msg("save remote result")
			continue
		}
		return res, nil
	}

	res, err := e.local.RemoveBackgroundLocal(ctx, path)
	if err == nil {
		res.Outcome = entity.OutcomeDegraded
		return res, nil
	}
	e.logger.Warn().Err(err).Str("path", path).Msg("local background removal failed")

	return original(path, "⚠️ *Background could not be removed, original returned*"), nil
}

// GenerateBackground заменяет фон по описанию stylePrompt. Сначала вырезается передний план,
// затем он отправляется генератору или накладывается на локальный фон.
func (e *Editor) GenerateBackground(ctx context.Context, path, stylePrompt string) (*entity.EditResult, error) {
	fg, err := e.RemoveBackground(ctx, path)
	if err != nil {
		var perr *entity.ProcessingError
		if errors.As(err, &perr) {
			perr.Op = "generate_bg"
		}
		return nil, err
	}
	if fg.OutputPath != path {
		defer func() {
			if derr := e.files.Discard(fg.OutputPath); derr != nil {
				e.logger.Debug().Err(derr).Msg("discard intermediate foreground")
			}
		}()
	}

	if e.generator != nil && e.generator.Configured() {
		data, err := e.generator.Submit(ctx, fg.OutputPath, map[string]string{"background_prompt": stylePrompt})
		if err == nil {
			res, err := e.store(data, "bg_generated", "✅ *New background generated!*", e.generator.Name())
			if err == nil {
				return res, nil
			}
			e.logger.Warn().Err(err).Msg("save generated background")
		}
	}

	res, err := e.local.CompositeBackground(ctx, path, fg.OutputPath, stylePrompt)
	if err != nil {
		e.logger.Warn().Err(err).Msg("local background composite failed")
		return original(path, "⚠️ *Background could not be generated, original returned*"), nil
	}
	res.Outcome = entity.OutcomeDegraded
	return res, nil
}

// Status состояние всех сервисов, включая локальный
func (e *Editor) Status() map[string]port.ProviderStatus {
	out := map[string]port.ProviderStatus{
		"local": {Available: true},
	}
	for _, c := range e.removers {
		out[c.Name()] = c.Status()
	}
	if e.generator != nil {
		out[e.generator.Name()] = e.generator.Status()
	}
	return out
}

func (e *Editor) store(data []byte, prefix, caption, provider string) (*entity.EditResult, error) {
	format, ext := formatOf(data)
	path, err := e.files.NewOutputPath(prefix, ext)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write result: %w", err)
	}
	return &entity.EditResult{
		OutputPath: path,
		Format:     format,
		Caption:    caption,
		Outcome:    entity.OutcomeSuccess,
		Provider:   provider,
	}, nil
}

// original результат без изменений: пользователь получает исходное фото.
func original(path, caption string) *entity.EditResult {
	format, _ := formatOfPath(path)
	return &entity.EditResult{
		OutputPath: path,
		Format:     format,
		Caption:    caption,
		Outcome:    entity.OutcomeDegraded,
		Provider:   "none",
	}
}

func formatOf(data []byte) (entity.Format, string) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return entity.FormatJPEG, "jpg"
	case "image/webp":
		return entity.FormatWEBP, "webp"
	case "image/gif":
		return entity.FormatGIF, "gif"
	default:
		return entity.FormatPNG, "png"
	}
}

func formatOfPath(path string) (entity.Format, string) {
	f, err := os.Open(path)
	if err != nil {
		return entity.FormatJPEG, "jpg"
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return formatOf(head[:n])
}
