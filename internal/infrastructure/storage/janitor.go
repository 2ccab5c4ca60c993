package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"photo-bot/internal/infrastructure/metrics"
)

// Janitor периодически удаляет временные файлы старше maxAge
type Janitor struct {
	dirs     []string
	maxAge   time.Duration
	interval time.Duration
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewJanitor создаёт уборщика для указанных каталогов
func NewJanitor(dirs []string, maxAge, interval time.Duration, clock clockwork.Clock, logger zerolog.Logger) *Janitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Janitor{dirs: dirs, maxAge: maxAge, interval: interval, clock: clock, logger: logger}
}

// Run запускает уборку по таймеру до отмены контекста
func (j *Janitor) Run(ctx context.Context) error {
	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			j.Sweep()
		}
	}
}

// Sweep удаляет устаревшие файлы и возвращает их количество
func (j *Janitor) Sweep() int {
	cutoff := j.clock.Now().Add(-j.maxAge)
	removed := 0

	for _, dir := range j.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			j.logger.Warn().Err(err).Str("dir", dir).Msg("janitor: read dir")
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err != nil {
				j.logger.Warn().Err(err).Str("path", path).Msg("janitor: remove")
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		metrics.FilesCleanedTotal.Add(float64(removed))
		j.logger.Info().Int("removed", removed).Msg("janitor: old files removed")
	}
	return removed
}
