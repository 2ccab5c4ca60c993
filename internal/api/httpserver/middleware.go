package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogger пишет строку лога на каждый запрос
func requestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			l.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", redactToken(r.URL.Path)).
				Int("status", rw.status).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}

// redactToken скрывает токен бота в пути webhook
func redactToken(path string) string {
	const prefix = "/webhook/"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return prefix + "***"
	}
	return path
}
