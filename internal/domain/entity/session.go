package entity

// MenuState положение пользователя в меню
type MenuState string

const (
	StateRoot        MenuState = "root"         // Фото ещё не прислано
	StateMainMenu    MenuState = "main_menu"    // Фото есть, показано главное меню
	StateResizeMenu  MenuState = "resize_menu"  // Выбор размера
	StateCropMenu    MenuState = "crop_menu"    // Выбор обрезки
	StateConvertMenu MenuState = "convert_menu" // Выбор формата
	StateEnhanceMenu MenuState = "enhance_menu" // Выбор разрешения улучшения
)

// Session представляет пользователя бота и его последнее фото
type Session struct {
	UserID    int64     // Telegram User ID
	ChatID    int64     // Telegram Chat ID
	PhotoPath string    // Путь к последнему загруженному фото; перезаписывается при каждой загрузке
	Menu      MenuState // Текущее меню
}

// NewSession создаёт новую сессию с начальным состоянием
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		Menu:   StateRoot,
	}
}

// HasPhoto сообщает, что пользователь уже присылал фото
func (s *Session) HasPhoto() bool {
	return s.PhotoPath != ""
}

// AttachPhoto запоминает новое фото и возвращает пользователя в главное меню
func (s *Session) AttachPhoto(path string) {
	s.PhotoPath = path
	s.Menu = StateMainMenu
}

// SetMenu обновляет положение в меню
func (s *Session) SetMenu(state MenuState) {
	s.Menu = state
}
