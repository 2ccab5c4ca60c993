package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	app "photo-bot/internal/application"
	"photo-bot/internal/domain/port"
)

// BotStats источник счётчиков бота
type BotStats interface {
	Stats(ctx context.Context) app.Stats
}

// ProviderStatus источник состояния сервисов обработки
type ProviderStatus interface {
	Status() map[string]port.ProviderStatus
}

// Deps зависимости HTTP-маршрутов. Webhook равен nil в режиме длинного опроса.
type Deps struct {
	Bot        BotStats
	Providers  ProviderStatus
	Webhook    http.Handler
	ValidToken func(token string) bool
	Logger     zerolog.Logger
}

// NewRouter собирает маршруты служебного HTTP-сервера
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger(d.Logger))

	r.Get("/health", health)
	r.Get("/api/ai-status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Providers.Status())
	})
	r.Get("/api/bot/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Bot.Stats(r.Context()))
	})
	r.Handle("/metrics", promhttp.Handler())

	if d.Webhook != nil && d.ValidToken != nil {
		r.Post("/webhook/{token}", func(w http.ResponseWriter, r *http.Request) {
			if !d.ValidToken(chi.URLParam(r, "token")) {
				http.NotFound(w, r)
				return
			}
			d.Webhook.ServeHTTP(w, r)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "photo-bot",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Server HTTP-сервер с корректной остановкой
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// New создаёт сервер на addr
func New(addr string, handler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run слушает addr до отмены контекста, затем останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("http server started")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info().Msg("http server stopped")
		return nil
	}
}
