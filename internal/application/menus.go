package app

import (
	"fmt"
	"sort"
	"strings"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
)

const (
	textWelcome = `🎨 *Welcome to AI Photo Editor Bot!*

I can help you edit your photos with these features:

📸 *Image Processing:*
• Resize images (8K, 4K, 1080p, 720p, mobile)
• Crop images (smart, square, portrait, landscape)
• Remove backgrounds
• Generate background images
• Convert formats (JPEG, PNG, WebP)

🤖 *AI Features:*
• Background removal
• Image quality enhancement
• Smart cropping

📋 *How to use:*
1. Send me a photo
2. Choose what you want to do
3. Get your edited image!

Type /help for more information or just send me a photo to get started! 🚀`

	textHelp = `📖 *Help - Photo Editor Bot*

*Available Commands:*
• /start - Start the bot
• /help - Show this help message
• /status - Check bot status

*How to Edit Photos:*
1. Send any photo to the bot
2. Choose from the editing options:
   - 📏 Resize (8K/4K/1080p/720p/Mobile)
   - ✂️ Crop image
   - 🎭 Remove background
   - 🖼️ Generate background
   - ⬆️ Enhance quality
   - 🔄 Convert format

*Supported Formats:*
• Input: JPEG, PNG, WebP, GIF
• Output: JPEG, PNG, WebP

*Tips:*
• Send high-quality images for best results
• Background removal works best with clear subjects
• Quality enhancement preserves original aspect ratio

Need help? Just send a photo and follow the menu! 📷✨`

	textHint          = "📷 Send me a photo to get started! Type /help for more information."
	textPhotoReceived = "📸 *Photo received!* What would you like to do?"
	textMainMenu      = "📸 *What would you like to do with your photo?*"
	textNoPhoto       = "❌ Please send a photo first!"
	textPhotoExpired  = "⌛ Your photo has expired. Please send it again!"
	textUploadFailed  = "❌ Sorry, there was an error processing your photo. Please try again."
	textUnknownAction = "❌ Unknown action. Please use the menu buttons."
	textUnsupported   = "❌ This format is not supported."
	textNotImage      = "❌ I can't read this file as an image. Please send a JPEG, PNG or WEBP photo."
	textDegradedNote  = "\n_⚠️ Remote service unavailable, processed locally_"
)

var mainKeyboard = entity.Keyboard{
	{{Text: "📏 Resize", Action: entity.ActionResize}, {Text: "✂️ Crop", Action: entity.ActionCrop}},
	{{Text: "🎭 Remove BG", Action: entity.ActionRemoveBG}, {Text: "🖼️ Generate BG", Action: entity.ActionGenerateBG}},
	{{Text: "⬆️ Enhance Quality", Action: entity.ActionEnhance}, {Text: "🔄 Convert Format", Action: entity.ActionConvert}},
}

var backButton = entity.Button{Text: "🔙 Back", Action: entity.ActionBack}

// subMenu заголовок и клавиатура подменю
type subMenu struct {
	title    string
	keyboard entity.Keyboard
}

var subMenus = map[entity.MenuState]subMenu{
	entity.StateResizeMenu: {
		title: "📏 *Choose resize option:*",
		keyboard: entity.Keyboard{
			{{Text: "8K (7680x4320)", Action: entity.ActionResize8K}, {Text: "4K (3840x2160)", Action: entity.ActionResize4K}},
			{{Text: "1080p (1920x1080)", Action: entity.ActionResize1080p}, {Text: "720p (1280x720)", Action: entity.ActionResize720p}},
			{{Text: "📱 Mobile (720x1280)", Action: entity.ActionResizeMobile}, backButton},
		},
	},
	entity.StateCropMenu: {
		title: "✂️ *Choose crop option:*",
		keyboard: entity.Keyboard{
			{{Text: "⭐ Smart Crop", Action: entity.ActionCropSmart}, {Text: "⬜ Square (1:1)", Action: entity.ActionCropSquare}},
			{{Text: "📱 Portrait (9:16)", Action: entity.ActionCropPortrait}, {Text: "🖥️ Landscape (16:9)", Action: entity.ActionCropLandscape}},
			{backButton},
		},
	},
	entity.StateConvertMenu: {
		title: "🔄 *Choose format:*",
		keyboard: entity.Keyboard{
			{{Text: "📄 JPEG", Action: entity.ActionConvertJPEG}, {Text: "🖼️ PNG", Action: entity.ActionConvertPNG}},
			{{Text: "🌐 WebP", Action: entity.ActionConvertWEBP}, backButton},
		},
	},
	entity.StateEnhanceMenu: {
		title: "⬆️ *Choose enhancement quality:*",
		keyboard: entity.Keyboard{
			{{Text: "8K Enhancement", Action: entity.ActionEnhance8K}, {Text: "4K Enhancement", Action: entity.ActionEnhance4K}},
			{{Text: "1080p Enhancement", Action: entity.ActionEnhance1080p}, {Text: "720p Enhancement", Action: entity.ActionEnhance720p}},
			{{Text: "Original+ (2x)", Action: entity.ActionEnhanceOriginal}, backButton},
		},
	},
}

// notices тексты трёх шагов операции
type notices struct {
	progress string
	success  string
	failure  string
}

var (
	resizeNotices = notices{
		progress: "🔄 Resizing image... Please wait.",
		success:  "✅ Image resized successfully!",
		failure:  "❌ Failed to resize image. Please try again.",
	}
	cropNotices = notices{
		progress: "✂️ Cropping image... Please wait.",
		success:  "✅ Image cropped successfully!",
		failure:  "❌ Failed to crop image. Please try again.",
	}
	removeBGNotices = notices{
		progress: "🎭 Removing background... Please wait.",
		success:  "✅ Background removed!",
		failure:  "❌ Failed to remove background. Please try again.",
	}
	generateBGNotices = notices{
		progress: "🖼️ Generating new background... Please wait.",
		success:  "✅ Background generated!",
		failure:  "❌ Failed to generate background. Please try again.",
	}
	convertNotices = notices{
		progress: "🔄 Converting format... Please wait.",
		success:  "✅ Format converted successfully!",
		failure:  "❌ Failed to convert format. Please try again.",
	}
	enhanceNotices = notices{
		progress: "⬆️ Enhancing image quality... Please wait.",
		success:  "✅ Quality enhanced!",
		failure:  "❌ Failed to enhance quality. Please try again.",
	}
)

func statusText(stats Stats, providers map[string]port.ProviderStatus) string {
	state := "🔴 Offline"
	if stats.Running {
		state = "🟢 Online"
	}

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		mark := "❌"
		if providers[name].Available {
			mark = "✅"
		}
		parts = append(parts, fmt.Sprintf("%s %s", strings.ReplaceAll(name, "_", "\\_"), mark))
	}
	services := "none"
	if len(parts) > 0 {
		services = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(`📊 *Bot Status*

• Status: %s
• Users served: %d
• Messages processed: %d
• Image services: %s

Ready to edit your photos! 📸`, state, stats.Users, stats.MessagesProcessed, services)
}
