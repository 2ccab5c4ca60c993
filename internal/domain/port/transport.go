package port

import (
	"context"

	"photo-bot/internal/domain/entity"
)

// MessageTransport исходящие примитивы чат-платформы
type MessageTransport interface {
	// SendText отправляет сообщение и возвращает его ID
	SendText(ctx context.Context, chatID int64, text string, keyboard entity.Keyboard) (int, error)

	// EditText меняет текст (и клавиатуру) ранее отправленного сообщения
	EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard entity.Keyboard) error

	// SendPhoto отправляет файл с подписью
	SendPhoto(ctx context.Context, chatID int64, path, caption string) error

	// AnswerCallback подтверждает нажатие кнопки
	AnswerCallback(ctx context.Context, callbackID string) error

	// DownloadFile скачивает файл по ID
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
