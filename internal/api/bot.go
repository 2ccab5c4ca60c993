package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
	"photo-bot/internal/infrastructure/metrics"
)

var _ port.MessageTransport = (*Bot)(nil)

// Sink принимает события для обработки
type Sink interface {
	Submit(ctx context.Context, ev entity.Event) error
}

// Bot представляет Telegram-бота: исходящие вызовы API и приём обновлений
type Bot struct {
	api        *tgbotapi.BotAPI
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewBot создаёт нового бота. sendRate ограничивает число исходящих вызовов в секунду.
func NewBot(token string, sendRate int, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return newBot(api, sendRate, logger), nil
}

func newBot(api *tgbotapi.BotAPI, sendRate int, logger zerolog.Logger) *Bot {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if sendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(sendRate), sendRate)
	}

	logger.Info().Str("account", api.Self.UserName).Msg("authorized on account")

	return &Bot{
		api:        api,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: time.Minute},
		logger:     logger,
	}
}

// Username имя бота
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run принимает обновления длинным опросом до отмены контекста
func (b *Bot) Run(ctx context.Context, sink Sink) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn().Err(err).Msg("delete webhook")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info().Msg("long polling started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.forward(ctx, sink, update)
		}
	}
}

// SetWebhook регистрирует адрес baseURL/webhook/<token>
func (b *Bot) SetWebhook(baseURL string) error {
	link := strings.TrimRight(baseURL, "/") + "/webhook/" + b.api.Token
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("telegram: webhook url: %w", err)
	}
	wh.AllowedUpdates = []string{"message", "callback_query"}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	b.logger.Info().Str("base_url", baseURL).Msg("webhook registered")
	return nil
}

// WebhookHandler принимает обновления, присланные Telegram на webhook
func (b *Bot) WebhookHandler(sink Sink) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.logger.Warn().Err(err).Msg("bad webhook update")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		b.forward(r.Context(), sink, *update)
		w.WriteHeader(http.StatusOK)
	})
}

// ValidToken сравнивает токен из адреса webhook с токеном бота
func (b *Bot) ValidToken(token string) bool {
	return token != "" && token == b.api.Token
}

func (b *Bot) forward(ctx context.Context, sink Sink, update tgbotapi.Update) {
	ev, ok := eventFromUpdate(update)
	if !ok {
		return
	}
	if err := sink.Submit(ctx, ev); err != nil {
		b.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("submit update")
	}
}

// SendText отправляет сообщение в Markdown и возвращает его ID
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, keyboard entity.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = toMarkup(keyboard)
	}

	sent, err := b.send(ctx, "sendMessage", msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText меняет текст сообщения; клавиатура убирается, если keyboard пуста
func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard entity.Keyboard) error {
	var edit tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toMarkup(keyboard))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.send(ctx, "editMessageText", edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// SendPhoto отправляет файл как фото или, если Telegram его так не примет, документом
func (b *Bot) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	doc, err := asDocument(path)
	if err != nil {
		return fmt.Errorf("telegram: inspect %s: %w", path, err)
	}

	if doc {
		cfg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeMarkdown
		_, err = b.send(ctx, "sendDocument", cfg)
		return err
	}

	cfg := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	cfg.Caption = caption
	cfg.ParseMode = tgbotapi.ModeMarkdown
	_, err = b.send(ctx, "sendPhoto", cfg)
	return err
}

// AnswerCallback подтверждает нажатие кнопки
func (b *Bot) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		metrics.SendErrors.WithLabelValues("answerCallbackQuery").Inc()
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// DownloadFile скачивает файл из Telegram
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) send(ctx context.Context, method string, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}

	msg, err := b.api.Send(c)
	if err != nil {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
			b.logger.Warn().Int("retry_after", tgErr.RetryAfter).Str("method", method).Msg("telegram flood limit")
		}
		metrics.SendErrors.WithLabelValues(method).Inc()
		return tgbotapi.Message{}, fmt.Errorf("telegram: %s: %w", method, err)
	}
	return msg, nil
}
