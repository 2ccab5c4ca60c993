package entity

import (
	"errors"
	"fmt"
)

// Ошибки пользовательского ввода: сообщаются пользователю, повтор не выполняется.
var (
	ErrNoPhoto           = errors.New("no photo on file")
	ErrPhotoExpired      = errors.New("photo expired")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnknownAction     = errors.New("unknown action")
)

// ErrRemoteUnavailable удалённый сервис недоступен: сеть, таймаут, не-2xx ответ или нет ключа.
var ErrRemoteUnavailable = errors.New("remote provider unavailable")

// ProcessingError ошибка локальной обработки изображения
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsUserInput сообщает, что ошибка вызвана действиями пользователя.
func IsUserInput(err error) bool {
	return errors.Is(err, ErrNoPhoto) ||
		errors.Is(err, ErrPhotoExpired) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnknownAction)
}
