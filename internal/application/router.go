package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
	"photo-bot/internal/infrastructure/metrics"
)

// handler обрабатывает нажатие кнопки для пользователя, у которого есть действующее фото.
type handler func(ctx context.Context, ev entity.Event, session *entity.Session) error

// Stats счётчики для /status и HTTP
type Stats struct {
	Running           bool      `json:"running"`
	Users             int       `json:"users"`
	MessagesProcessed int64     `json:"messages_processed"`
	StartedAt         time.Time `json:"started_at"`
}

// Router конечный автомат меню: принимает события транспорта и вызывает операции над фото.
type Router struct {
	sessions  *SessionService
	transport port.MessageTransport
	ops       port.ImageOps
	remote    port.RemoteEditAPI
	files     port.FileStore
	prompt    string
	logger    zerolog.Logger

	handlers  map[entity.Action]handler
	messages  atomic.Int64
	running   atomic.Bool
	startedAt time.Time
}

// NewRouter создаёт маршрутизатор и регистрирует обработчики всех токенов.
// prompt используется для генерации фона.
func NewRouter(
	sessions *SessionService,
	transport port.MessageTransport,
	ops port.ImageOps,
	remote port.RemoteEditAPI,
	files port.FileStore,
	prompt string,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		sessions:  sessions,
		transport: transport,
		ops:       ops,
		remote:    remote,
		files:     files,
		prompt:    prompt,
		logger:    logger,
		handlers:  make(map[entity.Action]handler),
		startedAt: time.Now(),
	}
	r.registerAll()
	return r
}

func (r *Router) registerAll() {
	for action, state := range entity.SubMenus {
		r.register(action, r.openSubMenu(state))
	}
	r.register(entity.ActionBack, r.back)

	for action, size := range entity.ResizeTargets {
		r.register(action, r.leaf(action, resizeNotices, func(ctx context.Context, path string) (*entity.EditResult, error) {
			return r.ops.Resize(ctx, path, size)
		}))
	}
	for action, style := range entity.CropStyles {
		r.register(action, r.leaf(action, cropNotices, func(ctx context.Context, path string) (*entity.EditResult, error) {
			return r.ops.Crop(ctx, path, style)
		}))
	}
	for action, format := range entity.ConvertFormats {
		r.register(action, r.leaf(action, convertNotices, func(ctx context.Context, path string) (*entity.EditResult, error) {
			return r.ops.Convert(ctx, path, format)
		}))
	}
	for action, res := range entity.EnhanceTargets {
		r.register(action, r.leaf(action, enhanceNotices, func(ctx context.Context, path string) (*entity.EditResult, error) {
			return r.ops.Enhance(ctx, path, res)
		}))
	}

	r.register(entity.ActionRemoveBG, r.leaf(entity.ActionRemoveBG, removeBGNotices, r.remote.RemoveBackground))
	r.register(entity.ActionGenerateBG, r.leaf(entity.ActionGenerateBG, generateBGNotices, func(ctx context.Context, path string) (*entity.EditResult, error) {
		return r.remote.GenerateBackground(ctx, path, r.prompt)
	}))

	for _, action := range entity.KnownActions() {
		if _, ok := r.handlers[action]; !ok {
			panic(fmt.Sprintf("router: action %q has no handler", action))
		}
	}
}

// register добавляет обработчик; неизвестный или повторный токен является ошибкой программиста.
func (r *Router) register(action entity.Action, h handler) {
	if !action.IsKnown() {
		panic(fmt.Sprintf("router: unknown action %q", action))
	}
	if _, dup := r.handlers[action]; dup {
		panic(fmt.Sprintf("router: duplicate handler for %q", action))
	}
	r.handlers[action] = h
}

// SetRunning отмечает, что транспорт принимает обновления
func (r *Router) SetRunning(running bool) {
	r.running.Store(running)
}

// Stats возвращает счётчики бота
func (r *Router) Stats(ctx context.Context) Stats {
	return Stats{
		Running:           r.running.Load(),
		Users:             r.sessions.Count(ctx),
		MessagesProcessed: r.messages.Load(),
		StartedAt:         r.startedAt,
	}
}

// Dispatch обрабатывает одно входящее событие. Ошибка означает сбой транспорта или хранилища;
// ошибки пользователя сообщаются ему сообщением.
func (r *Router) Dispatch(ctx context.Context, ev entity.Event) error {
	r.messages.Add(1)

	switch ev.Kind {
	case entity.EventCommand:
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		return r.handleCommand(ctx, ev)
	case entity.EventPhoto:
		metrics.UpdatesTotal.WithLabelValues("photo").Inc()
		return r.handlePhoto(ctx, ev)
	case entity.EventAction:
		metrics.UpdatesTotal.WithLabelValues("action").Inc()
		return r.handleAction(ctx, ev)
	default:
		metrics.UpdatesTotal.WithLabelValues("text").Inc()
		_, err := r.transport.SendText(ctx, ev.ChatID, textHint, nil)
		return err
	}
}

func (r *Router) handleCommand(ctx context.Context, ev entity.Event) error {
	var text string

	switch ev.Command {
	case "start":
		if _, err := r.sessions.Get(ctx, ev.UserID, ev.ChatID); err != nil {
			return err
		}
		metrics.SessionsCurrent.Set(float64(r.sessions.Count(ctx)))
		text = textWelcome
	case "help":
		text = textHelp
	case "status":
		text = statusText(r.Stats(ctx), r.remote.Status())
	default:
		text = textHint
	}

	_, err := r.transport.SendText(ctx, ev.ChatID, text, nil)
	return err
}

func (r *Router) handlePhoto(ctx context.Context, ev entity.Event) error {
	variant, ok := entity.LargestVariant(ev.Photos)
	if !ok {
		_, err := r.transport.SendText(ctx, ev.ChatID, textHint, nil)
		return err
	}

	data, err := r.transport.DownloadFile(ctx, variant.FileID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("download photo")
		_, serr := r.transport.SendText(ctx, ev.ChatID, textUploadFailed, nil)
		return serr
	}

	path, err := r.files.SaveUpload(ctx, ev.UserID, variant.FileID, data)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("save photo")
		_, serr := r.transport.SendText(ctx, ev.ChatID, textUploadFailed, nil)
		return serr
	}

	// файл остаётся в uploads до уборки
	info, err := r.ops.Info(path)
	if err != nil {
		r.logger.Warn().Err(err).Int64("user_id", ev.UserID).Msg("upload is not an image")
		_, serr := r.transport.SendText(ctx, ev.ChatID, textNotImage, nil)
		return serr
	}

	if _, err := r.sessions.AttachPhoto(ctx, ev.UserID, ev.ChatID, path); err != nil {
		return err
	}
	metrics.SessionsCurrent.Set(float64(r.sessions.Count(ctx)))

	r.logger.Info().
		Int64("user_id", ev.UserID).
		Int("width", info.Width).
		Int("height", info.Height).
		Str("format", string(info.Format)).
		Msg("photo received")

	_, err = r.transport.SendText(ctx, ev.ChatID, textPhotoReceived, mainKeyboard)
	return err
}

func (r *Router) handleAction(ctx context.Context, ev entity.Event) error {
	if err := r.transport.AnswerCallback(ctx, ev.CallbackID); err != nil {
		r.logger.Warn().Err(err).Msg("answer callback")
	}

	h, session, err := r.resolve(ctx, ev)
	if err != nil {
		if !entity.IsUserInput(err) {
			return err
		}
		r.logger.Debug().Err(err).Int64("user_id", ev.UserID).Msg("action rejected")
		return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, userText(err), nil)
	}

	return h(ctx, ev, session)
}

// resolve находит обработчик и сессию с действующим фото. Ошибки ввода пользователя
// возвращаются сигнальными значениями entity; просроченное фото забывается.
func (r *Router) resolve(ctx context.Context, ev entity.Event) (handler, *entity.Session, error) {
	h, ok := r.handlers[ev.Action]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", entity.ErrUnknownAction, ev.Action)
	}

	session, err := r.sessions.Get(ctx, ev.UserID, ev.ChatID)
	if err != nil {
		return nil, nil, err
	}

	if !session.HasPhoto() {
		return nil, nil, entity.ErrNoPhoto
	}
	if !r.files.Exists(session.PhotoPath) {
		if _, err := r.sessions.ForgetPhoto(ctx, ev.UserID, ev.ChatID); err != nil {
			return nil, nil, err
		}
		return nil, nil, entity.ErrPhotoExpired
	}

	return h, session, nil
}

func (r *Router) openSubMenu(state entity.MenuState) handler {
	menu, ok := subMenus[state]
	if !ok {
		panic(fmt.Sprintf("router: no menu for state %q", state))
	}

	return func(ctx context.Context, ev entity.Event, _ *entity.Session) error {
		if _, err := r.sessions.SetMenu(ctx, ev.UserID, ev.ChatID, state); err != nil {
			return err
		}
		return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, menu.title, menu.keyboard)
	}
}

func (r *Router) back(ctx context.Context, ev entity.Event, _ *entity.Session) error {
	if _, err := r.sessions.SetMenu(ctx, ev.UserID, ev.ChatID, entity.StateMainMenu); err != nil {
		return err
	}
	return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, textMainMenu, mainKeyboard)
}

// leaf собирает обработчик конечного пункта меню: уведомление о работе, операция,
// отправка результата и итоговое уведомление. При ошибке сессия не меняется.
func (r *Router) leaf(action entity.Action, n notices, run func(ctx context.Context, path string) (*entity.EditResult, error)) handler {
	return func(ctx context.Context, ev entity.Event, session *entity.Session) error {
		if err := r.transport.EditText(ctx, ev.ChatID, ev.MessageID, n.progress, nil); err != nil {
			r.logger.Warn().Err(err).Msg("edit progress notice")
		}

		start := time.Now()
		res, err := run(ctx, session.PhotoPath)
		metrics.OperationDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())

		log := r.logger.With().Int64("user_id", ev.UserID).Str("action", string(action)).Logger()

		if err != nil {
			metrics.OperationsTotal.WithLabelValues(string(action), entity.OutcomeFailed.String()).Inc()
			if entity.IsUserInput(err) {
				log.Warn().Err(err).Msg("operation rejected")
			} else {
				log.Error().Err(err).Msg("operation failed")
			}
			return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, failureText(err, n), mainKeyboard)
		}

		caption := res.Caption
		if res.Outcome == entity.OutcomeDegraded {
			caption += textDegradedNote
		}

		if err := r.transport.SendPhoto(ctx, ev.ChatID, res.OutputPath, caption); err != nil {
			metrics.OperationsTotal.WithLabelValues(string(action), entity.OutcomeFailed.String()).Inc()
			log.Error().Err(err).Str("path", res.OutputPath).Msg("send result")
			r.discard(res.OutputPath, session.PhotoPath)
			return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, n.failure, mainKeyboard)
		}
		r.discard(res.OutputPath, session.PhotoPath)

		metrics.OperationsTotal.WithLabelValues(string(action), res.Outcome.String()).Inc()
		log.Info().
			Str("outcome", res.Outcome.String()).
			Str("provider", res.Provider).
			Dur("took", time.Since(start)).
			Msg("operation done")

		if _, err := r.sessions.SetMenu(ctx, ev.UserID, ev.ChatID, entity.StateMainMenu); err != nil {
			return err
		}
		return r.transport.EditText(ctx, ev.ChatID, ev.MessageID, n.success, mainKeyboard)
	}
}

// discard удаляет доставленный результат, если это не само загруженное фото.
func (r *Router) discard(output, photo string) {
	if output == "" || output == photo {
		return
	}
	if err := r.files.Discard(output); err != nil {
		r.logger.Warn().Err(err).Str("path", output).Msg("discard result")
	}
}

func failureText(err error, n notices) string {
	if entity.IsUserInput(err) {
		return userText(err)
	}
	return n.failure
}

// userText сообщение пользователю для ошибки его ввода
func userText(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoPhoto):
		return textNoPhoto
	case errors.Is(err, entity.ErrPhotoExpired):
		return textPhotoExpired
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return textUnsupported
	case errors.Is(err, entity.ErrUnknownAction):
		return textUnknownAction
	default:
		return textHint
	}
}
