package remote

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/infrastructure/imageops"
	"photo-bot/internal/infrastructure/storage"
)

type fixture struct {
	files *storage.FileStore
	local *imageops.Processor
	photo string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	files, err := storage.NewFileStore(filepath.Join(root, "uploads"), filepath.Join(root, "processed"), nil)
	require.NoError(t, err)

	img := imaging.New(120, 80, color.NRGBA{240, 240, 240, 255})
	img = imaging.Paste(img, imaging.New(40, 30, color.NRGBA{200, 30, 30, 255}), image.Pt(40, 25))
	photo := filepath.Join(root, "uploads", "photo.jpg")
	require.NoError(t, imaging.Save(img, photo))

	return fixture{
		files: files,
		local: imageops.NewProcessor(files, nil, zerolog.Nop()),
		photo: photo,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(8, 8, color.NRGBA{0, 0, 0, 0}), imaging.PNG))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(8, 8, color.NRGBA{10, 200, 10, 255}), imaging.JPEG))
	return buf.Bytes()
}

func TestEditor_RemoveBackgroundRemoteSuccess(t *testing.T) {
	f := newFixture(t)
	body := pngBytes(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, _, err := r.FormFile("image_file")
		require.NoError(t, err)
		require.Equal(t, "auto", r.FormValue("size"))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := NewRemoveBG(Options{Endpoint: srv.URL, APIKey: "secret", Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{client}, nil, f.local, f.files, zerolog.Nop())

	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeSuccess, res.Outcome)
	require.Equal(t, ProviderRemoveBG, res.Provider)
	require.Equal(t, entity.FormatPNG, res.Format)
	require.True(t, f.files.Exists(res.OutputPath))
}

func TestEditor_RemoveBackgroundServerErrorDegrades(t *testing.T) {
	f := newFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewRemoveBG(Options{Endpoint: srv.URL, APIKey: "secret", Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{client}, nil, f.local, f.files, zerolog.Nop())

	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeDegraded, res.Outcome)
	require.Equal(t, "local", res.Provider)
	require.NotEqual(t, f.photo, res.OutputPath)
}

func TestEditor_RemoveBackgroundMissingKeySkipsRemote(t *testing.T) {
	f := newFixture(t)
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	client := NewRemoveBG(Options{Endpoint: srv.URL, Logger: zerolog.Nop()})
	require.False(t, client.HasCredentials())

	editor := NewEditor([]*Client{client}, nil, f.local, f.files, zerolog.Nop())
	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeDegraded, res.Outcome)
	require.Zero(t, atomic.LoadInt32(&hits))

	_, err = client.Submit(context.Background(), f.photo, nil)
	require.ErrorIs(t, err, entity.ErrRemoteUnavailable)
}

func TestEditor_RemoveBackgroundTimeoutDegrades(t *testing.T) {
	f := newFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewRemoveBG(Options{Endpoint: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond, Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{client}, nil, f.local, f.files, zerolog.Nop())

	start := time.Now()
	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeDegraded, res.Outcome)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestEditor_RemoveBackgroundNonImageResponse(t *testing.T) {
	f := newFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"title":"quota"}]}`))
	}))
	defer srv.Close()

	client := NewPhotoRoom(Options{Endpoint: srv.URL, APIKey: "k", Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{client}, nil, f.local, f.files, zerolog.Nop())

	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeDegraded, res.Outcome)
}

func TestEditor_RemoveBackgroundFallsThroughProviders(t *testing.T) {
	f := newFixture(t)
	body := pngBytes(t)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/remove", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		_, _ = w.Write(body)
	}))
	defer good.Close()

	removebg := NewRemoveBG(Options{Endpoint: bad.URL, APIKey: "k", Logger: zerolog.Nop()})
	rembg := NewRembg(good.URL+"/", Options{Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{removebg, rembg}, nil, f.local, f.files, zerolog.Nop())

	res, err := editor.RemoveBackground(context.Background(), f.photo)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeSuccess, res.Outcome)
	require.Equal(t, ProviderRembg, res.Provider)
}

func TestEditor_MissingInputFails(t *testing.T) {
	f := newFixture(t)
	editor := NewEditor(nil, nil, f.local, f.files, zerolog.Nop())

	_, err := editor.RemoveBackground(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"))
	require.ErrorIs(t, err, entity.ErrPhotoExpired)

	_, err = editor.GenerateBackground(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), "gradient")
	require.ErrorIs(t, err, entity.ErrPhotoExpired)
}

func TestEditor_GenerateBackgroundRemote(t *testing.T) {
	f := newFixture(t)
	body := jpegBytes(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "k", r.Header.Get("X-API-Key"))
		require.NoError(t, r.ParseMultipartForm(10<<20))
		require.Equal(t, "professional gradient", r.FormValue("background_prompt"))
		require.Equal(t, "jpg", r.FormValue("output_format"))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	gen := NewPhotoRoomGenerator(Options{Endpoint: srv.URL, APIKey: "k", Logger: zerolog.Nop()})
	editor := NewEditor(nil, gen, f.local, f.files, zerolog.Nop())

	res, err := editor.GenerateBackground(context.Background(), f.photo, "professional gradient")
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeSuccess, res.Outcome)
	require.Equal(t, entity.FormatJPEG, res.Format)
	require.Equal(t, ".jpg", filepath.Ext(res.OutputPath))
}

func TestEditor_GenerateBackgroundLocalFallback(t *testing.T) {
	f := newFixture(t)
	gen := NewPhotoRoomGenerator(Options{Logger: zerolog.Nop()})
	editor := NewEditor(nil, gen, f.local, f.files, zerolog.Nop())

	res, err := editor.GenerateBackground(context.Background(), f.photo, "soft blur")
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeDegraded, res.Outcome)
	require.Equal(t, entity.FormatJPEG, res.Format)
	require.True(t, f.files.Exists(res.OutputPath))
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	f := newFixture(t)
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRemoveBG(Options{
		Endpoint:        srv.URL,
		APIKey:          "k",
		Logger:          zerolog.Nop(),
		BreakerFailures: 2,
		BreakerCooldown: time.Hour,
	})

	for i := 0; i < 4; i++ {
		_, err := client.Submit(context.Background(), f.photo, nil)
		require.ErrorIs(t, err, entity.ErrRemoteUnavailable)
	}

	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
	require.Equal(t, gobreaker.StateOpen, client.State())
	require.False(t, client.Status().Available)
	require.True(t, client.Status().APIKeySet)
}

func TestEditor_Status(t *testing.T) {
	f := newFixture(t)
	removebg := NewRemoveBG(Options{APIKey: "k", Logger: zerolog.Nop()})
	rembg := NewRembg("", Options{Logger: zerolog.Nop()})
	editor := NewEditor([]*Client{removebg, rembg}, nil, f.local, f.files, zerolog.Nop())

	status := editor.Status()
	require.True(t, status["local"].Available)
	require.True(t, status[ProviderRemoveBG].Available)
	require.True(t, status[ProviderRemoveBG].APIKeySet)
	require.False(t, status[ProviderRembg].Available)
	require.Equal(t, "closed", status[ProviderRemoveBG].Breaker)
}

func TestOrdered(t *testing.T) {
	a := NewRemoveBG(Options{Logger: zerolog.Nop()})
	b := NewPhotoRoom(Options{Logger: zerolog.Nop()})
	c := NewRembg("http://rembg:7000", Options{Logger: zerolog.Nop()})

	got := Ordered("rembg", a, b, c)
	require.Equal(t, []*Client{c, a, b}, got)

	require.Equal(t, []*Client{a, b, c}, Ordered("unknown", a, b, c))
	require.Empty(t, Ordered("local", a, b, c))
}
