package entity

// EventKind тип входящего события
type EventKind int

const (
	EventCommand EventKind = iota + 1 // текстовая команда (/start, /help, /status)
	EventPhoto                        // загрузка фото
	EventAction                       // нажатие кнопки
	EventText                         // прочий текст
)

// Event входящее событие от транспорта, не зависящее от платформы
type Event struct {
	Kind       EventKind
	UserID     int64
	ChatID     int64
	MessageID  int            // сообщение с клавиатурой для EventAction
	Command    string         // без ведущего "/"
	Photos     []PhotoVariant // для EventPhoto
	Action     Action         // для EventAction
	CallbackID string         // для EventAction
	Text       string
}
