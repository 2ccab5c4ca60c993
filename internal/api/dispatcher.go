package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"photo-bot/internal/domain/entity"
)

// ErrDispatcherStopped dispatcher больше не принимает события
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// HandlerFunc обрабатывает одно событие
type HandlerFunc func(ctx context.Context, ev entity.Event) error

// Dispatcher пул последовательных воркеров. События одного пользователя всегда попадают
// к одному воркеру и обрабатываются по порядку; разные пользователи обрабатываются параллельно.
type Dispatcher struct {
	queues []chan entity.Event
	handle HandlerFunc
	logger zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ Sink = (*Dispatcher)(nil)

// NewDispatcher создаёт пул из workers воркеров с очередью queueSize у каждого
func NewDispatcher(workers, queueSize int, handle HandlerFunc, logger zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	queues := make([]chan entity.Event, workers)
	for i := range queues {
		queues[i] = make(chan entity.Event, queueSize)
	}

	return &Dispatcher{queues: queues, handle: handle, logger: logger}
}

// Start запускает воркеров. Обработчики получают контекст без отмены, чтобы очередь
// дорабатывала при остановке.
func (d *Dispatcher) Start(ctx context.Context) {
	hctx := context.WithoutCancel(ctx)
	for i, q := range d.queues {
		d.wg.Add(1)
		go d.work(hctx, i, q)
	}
}

// Submit ставит событие в очередь воркера пользователя; блокируется, пока очередь полна.
func (d *Dispatcher) Submit(ctx context.Context, ev entity.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	q := d.queues[d.index(userKey(ev))]
	select {
	case q <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop закрывает очереди и ждёт обработки уже принятых событий
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) index(key int64) int {
	return int(uint64(key) % uint64(len(d.queues)))
}

func (d *Dispatcher) work(ctx context.Context, id int, q <-chan entity.Event) {
	defer d.wg.Done()

	for ev := range q {
		if err := d.safeHandle(ctx, ev); err != nil {
			d.logger.Error().Err(err).Int("worker", id).Int64("user_id", ev.UserID).Msg("handle event")
		}
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, ev entity.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return d.handle(ctx, ev)
}
