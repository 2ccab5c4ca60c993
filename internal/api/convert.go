package telegram

import (
	"image"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-bot/internal/domain/entity"
)

// Ограничения Telegram для sendPhoto
const (
	maxPhotoBytes = 10 << 20
	maxPhotoSides = 10000
)

// toMarkup переводит клавиатуру в inline-разметку Telegram
func toMarkup(kb entity.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, string(b.Action)))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// eventFromUpdate переводит обновление Telegram в событие. false означает, что обновление
// боту не интересно.
func eventFromUpdate(u tgbotapi.Update) (entity.Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil {
			return entity.Event{}, false
		}
		ev := entity.Event{
			Kind:       entity.EventAction,
			UserID:     cq.From.ID,
			ChatID:     cq.From.ID,
			Action:     entity.Action(cq.Data),
			CallbackID: cq.ID,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				ev.ChatID = cq.Message.Chat.ID
			}
		}
		return ev, true
	}

	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return entity.Event{}, false
	}

	ev := entity.Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}

	switch {
	case msg.IsCommand():
		ev.Kind = entity.EventCommand
		ev.Command = msg.Command()
	case len(msg.Photo) > 0:
		ev.Kind = entity.EventPhoto
		ev.Photos = make([]entity.PhotoVariant, 0, len(msg.Photo))
		for _, p := range msg.Photo {
			ev.Photos = append(ev.Photos, entity.PhotoVariant{
				FileID:   p.FileID,
				Width:    p.Width,
				Height:   p.Height,
				FileSize: p.FileSize,
			})
		}
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		// изображение, отправленное файлом без сжатия
		ev.Kind = entity.EventPhoto
		ev.Photos = []entity.PhotoVariant{{FileID: msg.Document.FileID, FileSize: msg.Document.FileSize}}
	default:
		ev.Kind = entity.EventText
		ev.Text = msg.Text
	}

	return ev, true
}

// userKey ключ маршрутизации обновления по воркерам
func userKey(ev entity.Event) int64 {
	return ev.UserID
}

// asDocument решает, отправлять ли файл документом: Telegram принимает как фото только
// JPEG до 10 МБ с суммой сторон не больше 10000.
func asDocument(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.Size() > maxPhotoBytes {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return true, nil
	}
	return format != "jpeg" || cfg.Width+cfg.Height > maxPhotoSides, nil
}
