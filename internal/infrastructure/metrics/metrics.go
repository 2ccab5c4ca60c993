package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telegram
var (
	// UpdatesTotal входящие обновления по типу события
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobot_updates_total",
			Help: "Incoming updates by event kind",
		},
		[]string{"kind"},
	)

	// SendErrors ошибки отправки сообщений
	SendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobot_send_errors_total",
			Help: "Outgoing Telegram calls that failed, by method",
		},
		[]string{"method"},
	)
)

// Операции над изображениями
var (
	// OperationsTotal операции по токену действия и итогу (success, degraded, failed)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobot_operations_total",
			Help: "Image operations by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// OperationDuration длительность операции в секундах
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photobot_operation_duration_seconds",
			Help:    "Image operation duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"action"},
	)
)

// Удалённые сервисы
var (
	// RemoteRequestsTotal запросы к удалённым сервисам по статусу (ok, error, skipped, open)
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobot_remote_requests_total",
			Help: "Remote background API requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	// RemoteRequestDuration длительность запроса к удалённому сервису
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photobot_remote_request_duration_seconds",
			Help:    "Remote background API request duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 45},
		},
		[]string{"provider"},
	)

	// CircuitBreakerState текущее состояние (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photobot_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)
)

// Служебные
var (
	// SessionsCurrent число известных пользователей
	SessionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photobot_sessions_current",
			Help: "Number of users with a session",
		},
	)

	// FilesCleanedTotal удалённые уборщиком файлы
	FilesCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photobot_files_cleaned_total",
			Help: "Temporary files removed by the janitor",
		},
	)
)
