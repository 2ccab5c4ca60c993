package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"photo-bot/internal/domain/port"
)

// FileStore хранит загрузки и результаты обработки на локальном диске.
// Файлы временные: их удаляет Janitor, а результаты удаляются после доставки.
type FileStore struct {
	uploadsDir   string
	processedDir string
	clock        clockwork.Clock
}

// NewFileStore создаёт каталоги и возвращает хранилище
func NewFileStore(uploadsDir, processedDir string, clock clockwork.Clock) (*FileStore, error) {
	uploadsDir = strings.TrimSpace(uploadsDir)
	processedDir = strings.TrimSpace(processedDir)
	if uploadsDir == "" || processedDir == "" {
		return nil, errors.New("storage: uploads and processed dirs are required")
	}
	for _, dir := range []string{uploadsDir, processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: ensure dir %s: %w", dir, err)
		}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FileStore{uploadsDir: uploadsDir, processedDir: processedDir, clock: clock}, nil
}

// Dirs возвращает каталоги, которые обслуживает хранилище
func (s *FileStore) Dirs() []string {
	return []string{s.uploadsDir, s.processedDir}
}

// SaveUpload сохраняет присланное фото под уникальным именем
func (s *FileStore) SaveUpload(ctx context.Context, userID int64, fileID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("storage: empty upload")
	}
	name := fmt.Sprintf("temp_%d_%s_%s.%s", userID, sanitizeName(fileID), shortID(), extFromContent(data))
	path := filepath.Join(s.uploadsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write upload: %w", err)
	}
	return path, nil
}

// NewOutputPath выдаёт уникальный путь вида <prefix>_<timestamp>_<uuid8>.<ext>
func (s *FileStore) NewOutputPath(prefix, ext string) (string, error) {
	prefix = sanitizeName(prefix)
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if prefix == "" || ext == "" {
		return "", errors.New("storage: prefix and extension are required")
	}
	name := fmt.Sprintf("%s_%s_%s.%s", prefix, s.clock.Now().Format("20060102_150405"), shortID(), ext)
	return filepath.Join(s.processedDir, name), nil
}

// Exists проверяет, что путь указывает на существующий файл
func (s *FileStore) Exists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Discard удаляет результат; файлы вне каталога результатов не трогает.
func (s *FileStore) Discard(path string) error {
	if !within(s.processedDir, path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: discard %s: %w", path, err)
	}
	return nil
}

func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 32 {
		out = out[len(out)-32:]
	}
	return out
}

func extFromContent(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

var _ port.FileStore = (*FileStore)(nil)
