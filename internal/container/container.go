package container

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"photo-bot/config"
	telegram "photo-bot/internal/api"
	"photo-bot/internal/api/httpserver"
	app "photo-bot/internal/application"
	"photo-bot/internal/infrastructure/imageops"
	"photo-bot/internal/infrastructure/remote"
	"photo-bot/internal/infrastructure/storage"
	"photo-bot/internal/infrastructure/vision"
)

const queueSize = 64

// Container держит собранные компоненты бота
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	Sessions   *app.SessionService
	Router     *app.Router
	Editor     *remote.Editor
	Bot        *telegram.Bot
	Dispatcher *telegram.Dispatcher
	Janitor    *storage.Janitor
	HTTP       *httpserver.Server
}

func New(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	clock := clockwork.NewRealClock()

	files, err := storage.NewFileStore(cfg.UploadsDir, cfg.ProcessedDir, clock)
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}

	processor := imageops.NewProcessor(files, vision.NewSubjectDetector(), logger.With().Str("component", "imageops").Logger())
	editor := newEditor(cfg, processor, files, logger.With().Str("component", "remote").Logger())

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.SendRate, logger.With().Str("component", "telegram").Logger())
	if err != nil {
		return nil, err
	}

	sessions := app.NewSessionService(storage.NewMemorySessionStore())
	router := app.NewRouter(sessions, bot, processor, editor, files, cfg.BackgroundPrompt,
		logger.With().Str("component", "router").Logger())
	dispatcher := telegram.NewDispatcher(cfg.Workers, queueSize, router.Dispatch,
		logger.With().Str("component", "dispatcher").Logger())

	janitor := storage.NewJanitor(files.Dirs(), cfg.FileMaxAge, cfg.CleanupInterval, clock,
		logger.With().Str("component", "janitor").Logger())

	deps := httpserver.Deps{
		Bot:       router,
		Providers: editor,
		Logger:    logger.With().Str("component", "http").Logger(),
	}
	if cfg.RunMode == config.RunModeWebhook {
		deps.Webhook = bot.WebhookHandler(dispatcher)
		deps.ValidToken = bot.ValidToken
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Sessions:   sessions,
		Router:     router,
		Editor:     editor,
		Bot:        bot,
		Dispatcher: dispatcher,
		Janitor:    janitor,
		HTTP:       httpserver.New(cfg.HTTPAddr, httpserver.NewRouter(deps), deps.Logger),
	}, nil
}

// newEditor собирает цепочку удалённых сервисов с предпочтительным первым
func newEditor(cfg *config.Config, local *imageops.Processor, files *storage.FileStore, logger zerolog.Logger) *remote.Editor {
	client := newHTTPClient()
	removal := remote.Options{Timeout: cfg.RemoteTimeout, HTTPClient: client, Logger: logger}

	removeBG := removal
	removeBG.APIKey = cfg.RemoveBGAPIKey
	photoRoom := removal
	photoRoom.APIKey = cfg.PhotoRoomAPIKey

	removers := remote.Ordered(cfg.BGRemovalProvider,
		remote.NewRemoveBG(removeBG),
		remote.NewPhotoRoom(photoRoom),
		remote.NewRembg(cfg.RembgURL, removal),
	)

	generator := remote.NewPhotoRoomGenerator(remote.Options{
		APIKey:          cfg.PhotoRoomAPIKey,
		Timeout:         cfg.GenerateTimeout,
		HTTPClient:      client,
		Logger:          logger,
		BreakerCooldown: 2 * time.Minute,
	})

	return remote.NewEditor(removers, generator, local, files, logger)
}

// newHTTPClient общий клиент удалённых сервисов; время ответа ограничивает контекст запроса
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          20,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}
