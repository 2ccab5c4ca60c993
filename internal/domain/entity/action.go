package entity

// Action токен кнопки меню
type Action string

const (
	ActionResize     Action = "resize"
	ActionCrop       Action = "crop"
	ActionRemoveBG   Action = "remove_bg"
	ActionGenerateBG Action = "generate_bg"
	ActionEnhance    Action = "enhance"
	ActionConvert    Action = "convert"
	ActionBack       Action = "back"

	ActionResize8K     Action = "resize_8k"
	ActionResize4K     Action = "resize_4k"
	ActionResize1080p  Action = "resize_1080p"
	ActionResize720p   Action = "resize_720p"
	ActionResizeMobile Action = "resize_mobile"

	ActionCropSmart     Action = "crop_smart"
	ActionCropSquare    Action = "crop_square"
	ActionCropPortrait  Action = "crop_portrait"
	ActionCropLandscape Action = "crop_landscape"

	ActionConvertJPEG Action = "convert_jpeg"
	ActionConvertPNG  Action = "convert_png"
	ActionConvertWEBP Action = "convert_webp"

	ActionEnhance8K       Action = "enhance_8k"
	ActionEnhance4K       Action = "enhance_4k"
	ActionEnhance1080p    Action = "enhance_1080p"
	ActionEnhance720p     Action = "enhance_720p"
	ActionEnhanceOriginal Action = "enhance_original"
)

// Size целевой прямоугольник в пикселях
type Size struct {
	Width  int
	Height int
}

// CropStyle стиль обрезки
type CropStyle string

const (
	CropSmart     CropStyle = "smart"
	CropSquare    CropStyle = "square"
	CropPortrait  CropStyle = "portrait"
	CropLandscape CropStyle = "landscape"
)

// Resolution целевое разрешение улучшения
type Resolution string

const (
	Resolution8K       Resolution = "8k"
	Resolution4K       Resolution = "4k"
	Resolution1080p    Resolution = "1080p"
	Resolution720p     Resolution = "720p"
	ResolutionOriginal Resolution = "original" // удвоенный исходный размер
)

// ResolutionSizes фиксированные размеры разрешений; ResolutionOriginal вычисляется от исходника.
var ResolutionSizes = map[Resolution]Size{
	Resolution8K:    {7680, 4320},
	Resolution4K:    {3840, 2160},
	Resolution1080p: {1920, 1080},
	Resolution720p:  {1280, 720},
}

// ResizeTargets параметры кнопок меню изменения размера
var ResizeTargets = map[Action]Size{
	ActionResize8K:     {7680, 4320},
	ActionResize4K:     {3840, 2160},
	ActionResize1080p:  {1920, 1080},
	ActionResize720p:   {1280, 720},
	ActionResizeMobile: {720, 1280},
}

// CropStyles параметры кнопок меню обрезки
var CropStyles = map[Action]CropStyle{
	ActionCropSmart:     CropSmart,
	ActionCropSquare:    CropSquare,
	ActionCropPortrait:  CropPortrait,
	ActionCropLandscape: CropLandscape,
}

// ConvertFormats параметры кнопок меню конвертации
var ConvertFormats = map[Action]Format{
	ActionConvertJPEG: FormatJPEG,
	ActionConvertPNG:  FormatPNG,
	ActionConvertWEBP: FormatWEBP,
}

// EnhanceTargets параметры кнопок меню улучшения
var EnhanceTargets = map[Action]Resolution{
	ActionEnhance8K:       Resolution8K,
	ActionEnhance4K:       Resolution4K,
	ActionEnhance1080p:    Resolution1080p,
	ActionEnhance720p:     Resolution720p,
	ActionEnhanceOriginal: ResolutionOriginal,
}

// SubMenus переходы из главного меню в подменю
var SubMenus = map[Action]MenuState{
	ActionResize:  StateResizeMenu,
	ActionCrop:    StateCropMenu,
	ActionConvert: StateConvertMenu,
	ActionEnhance: StateEnhanceMenu,
}

// KnownActions возвращает полный набор допустимых токенов.
func KnownActions() []Action {
	actions := []Action{ActionRemoveBG, ActionGenerateBG, ActionBack}
	for a := range SubMenus {
		actions = append(actions, a)
	}
	for a := range ResizeTargets {
		actions = append(actions, a)
	}
	for a := range CropStyles {
		actions = append(actions, a)
	}
	for a := range ConvertFormats {
		actions = append(actions, a)
	}
	for a := range EnhanceTargets {
		actions = append(actions, a)
	}
	return actions
}

// IsKnown сообщает, входит ли токен в фиксированный набор.
func (a Action) IsKnown() bool {
	for _, known := range KnownActions() {
		if a == known {
			return true
		}
	}
	return false
}

// Button кнопка встроенной клавиатуры
type Button struct {
	Text   string
	Action Action
}

// Keyboard строки кнопок
type Keyboard [][]Button

// Actions перечисляет токены всех кнопок клавиатуры.
func (k Keyboard) Actions() []Action {
	var out []Action
	for _, row := range k {
		for _, b := range row {
			out = append(out, b.Action)
		}
	}
	return out
}
