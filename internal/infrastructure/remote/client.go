package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"photo-bot/internal/domain/entity"
	"photo-bot/internal/domain/port"
	"photo-bot/internal/infrastructure/metrics"
)

// ErrMissingAPIKey клиент настроен без ключа
var ErrMissingAPIKey = errors.New("remote: api key is required")

const maxResponseSize = 50 << 20

// Options настройки клиента удалённого сервиса
type Options struct {
	Name       string
	Endpoint   string
	KeyHeader  string
	APIKey     string
	RequireKey bool
	FileField  string
	Fields     map[string]string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger

	// Параметры предохранителя: число подряд идущих ошибок до размыкания и пауза до пробного запроса
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client отправляет изображение multipart-запросом и возвращает полученное изображение.
type Client struct {
	name       string
	endpoint   string
	keyHeader  string
	apiKey     string
	requireKey bool
	fileField  string
	fields     map[string]string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
	cb         *gobreaker.CircuitBreaker
}

// NewClient создаёт клиента с настройками по умолчанию.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	fileField := opts.FileField
	if fileField == "" {
		fileField = "image_file"
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 3
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}

	c := &Client{
		name:       opts.Name,
		endpoint:   strings.TrimSpace(opts.Endpoint),
		keyHeader:  opts.KeyHeader,
		apiKey:     strings.TrimSpace(opts.APIKey),
		requireKey: opts.RequireKey,
		fileField:  fileField,
		fields:     opts.Fields,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     opts.Logger.With().Str("provider", opts.Name).Logger(),
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(opts.Name).Set(0)

	return c
}

// Name возвращает имя сервиса
func (c *Client) Name() string {
	return c.name
}

// HasCredentials сообщает, что ключ задан или не требуется.
func (c *Client) HasCredentials() bool {
	return !c.requireKey || c.apiKey != ""
}

// Configured сообщает, что к сервису можно обращаться.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.HasCredentials()
}

// State возвращает состояние предохранителя
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Status собирает состояние сервиса для /api/ai-status
func (c *Client) Status() port.ProviderStatus {
	return port.ProviderStatus{
		Available: c.Configured() && c.State() != gobreaker.StateOpen,
		APIKeySet: c.apiKey != "" || (!c.requireKey && c.endpoint != ""),
		Breaker:   c.State().String(),
	}
}

// Submit отправляет файл и дополнительные поля формы. Любая ошибка оборачивает
// entity.ErrRemoteUnavailable.
func (c *Client) Submit(ctx context.Context, path string, extra map[string]string) ([]byte, error) {
	if !c.Configured() {
		metrics.RemoteRequestsTotal.WithLabelValues(c.name, "skipped").Inc()
		err := ErrMissingAPIKey
		if c.endpoint == "" {
			err = errors.New("remote: endpoint is not configured")
		}
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrRemoteUnavailable, c.name, err)
	}

	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, path, extra)
	})
	metrics.RemoteRequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RemoteRequestsTotal.WithLabelValues(c.name, "open").Inc()
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrRemoteUnavailable, c.name, err)
	case err != nil:
		metrics.RemoteRequestsTotal.WithLabelValues(c.name, "error").Inc()
		c.logger.Warn().Err(err).Msg("remote request failed")
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrRemoteUnavailable, c.name, err)
	}

	metrics.RemoteRequestsTotal.WithLabelValues(c.name, "ok").Inc()
	return out.([]byte), nil
}

func (c *Client) do(ctx context.Context, path string, extra map[string]string) ([]byte, error) {
	body, contentType, err := c.form(path, extra)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.keyHeader != "" && c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	c.logger.Debug().Str("endpoint", c.endpoint).Msg("remote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: status %d: %s", c.name, resp.StatusCode, truncate(string(data), 200))
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, fmt.Errorf("%s: response is not an image", c.name)
	}
	return data, nil
}

func (c *Client) form(path string, extra map[string]string) (io.Reader, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(c.fileField, filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	for _, fields := range []map[string]string{c.fields, extra} {
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
