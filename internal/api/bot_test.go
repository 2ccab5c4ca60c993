package telegram

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"photo-bot/internal/domain/entity"
)

const testToken = "123:abc"

// fakeAPI имитирует Bot API: запоминает вызванные методы и их параметры.
type fakeAPI struct {
	mu      sync.Mutex
	methods []string
	forms   map[string]map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(10 << 20)
	} else {
		_ = r.ParseForm()
	}
	values := make(map[string]string)
	for k, v := range r.Form {
		values[k] = v[0]
	}
	if r.MultipartForm != nil {
		for k := range r.MultipartForm.File {
			values[k] = "<file>"
		}
	}

	f.mu.Lock()
	f.methods = append(f.methods, method)
	f.forms[method] = values
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Photo","username":"photo_bot"}}`))
	case "sendMessage", "sendPhoto", "sendDocument", "editMessageText":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":5,"type":"private"}}}`))
	case "answerCallbackQuery":
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: unknown method"}`))
	}
}

func (f *fakeAPI) form(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[method]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{forms: make(map[string]map[string]string)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient(testToken, srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return newBot(api, 0, zerolog.Nop()), fake
}

func TestBot_SendTextWithKeyboard(t *testing.T) {
	bot, fake := newTestBot(t)
	require.Equal(t, "photo_bot", bot.Username())

	kb := entity.Keyboard{{{Text: "📏 Resize", Action: entity.ActionResize}}}
	id, err := bot.SendText(context.Background(), 5, "📸 *Photo received!*", kb)
	require.NoError(t, err)
	require.Equal(t, 42, id)

	form := fake.form("sendMessage")
	require.Equal(t, "5", form["chat_id"])
	require.Equal(t, "Markdown", form["parse_mode"])
	require.Contains(t, form["reply_markup"], `"callback_data":"resize"`)
}

func TestBot_EditTextWithoutKeyboard(t *testing.T) {
	bot, fake := newTestBot(t)

	require.NoError(t, bot.EditText(context.Background(), 5, 42, "🔄 Resizing image... Please wait.", nil))

	form := fake.form("editMessageText")
	require.Equal(t, "42", form["message_id"])
	require.Empty(t, form["reply_markup"])
}

func TestBot_SendPhotoChoosesMethod(t *testing.T) {
	bot, fake := newTestBot(t)
	dir := t.TempDir()

	jpg := filepath.Join(dir, "out.jpg")
	require.NoError(t, imaging.Save(imaging.New(40, 30, color.White), jpg))
	require.NoError(t, bot.SendPhoto(context.Background(), 5, jpg, "✅ *Done*"))
	require.Equal(t, "<file>", fake.form("sendPhoto")["photo"])

	png := filepath.Join(dir, "out.png")
	require.NoError(t, imaging.Save(imaging.New(40, 30, color.Transparent), png))
	require.NoError(t, bot.SendPhoto(context.Background(), 5, png, "✅ *Done*"))
	require.Equal(t, "<file>", fake.form("sendDocument")["document"])
	require.Equal(t, "✅ *Done*", fake.form("sendDocument")["caption"])
}

func TestBot_AnswerCallback(t *testing.T) {
	bot, fake := newTestBot(t)

	require.NoError(t, bot.AnswerCallback(context.Background(), "cb-1"))
	require.Equal(t, "cb-1", fake.form("answerCallbackQuery")["callback_query_id"])
}

type recordingSink struct {
	mu     sync.Mutex
	events []entity.Event
}

func (s *recordingSink) Submit(_ context.Context, ev entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func TestBot_WebhookHandler(t *testing.T) {
	bot, _ := newTestBot(t)
	sink := &recordingSink{}
	h := bot.WebhookHandler(sink)

	body := `{"update_id":1,"callback_query":{"id":"cb","from":{"id":9,"is_bot":false,"first_name":"U"},"data":"crop_square","message":{"message_id":3,"date":0,"chat":{"id":9,"type":"private"}}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/"+testToken, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.events, 1)
	require.Equal(t, entity.ActionCropSquare, sink.events[0].Action)
	require.Equal(t, int64(9), sink.events[0].UserID)

	bad := httptest.NewRequest(http.MethodPost, "/webhook/"+testToken, strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.True(t, bot.ValidToken(testToken))
	require.False(t, bot.ValidToken("nope"))
}
