package storage

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

var imageFilePattern = regexp.MustCompile(`(?i)\.(jpe?g|png)$`)

// FileArchive хранит кадры в каталоге.
// Запись идёт во временный файл с последующим переименованием; тот же
// мьютекс держится при чтении каталога, поэтому читатель не видит
// недописанных файлов.
type FileArchive struct {
	mu      sync.Mutex
	dir     string
	quality int
}

// NewFileArchive создаёт архив, каталог создаётся при необходимости
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create archive dir %s", dir)
	}
	return &FileArchive{dir: dir, quality: 85}, nil
}

// Save кодирует кадр по расширению имени и атомарно записывает его
func (a *FileArchive) Save(ctx context.Context, name string, frame image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return errors.Wrapf(err, "archive name %s", name)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, format, imaging.JPEGQuality(a.quality)); err != nil {
		return errors.Wrap(err, "encode frame")
	}

	path := filepath.Join(a.dir, filepath.Base(name))
	tmp := path + ".tmp"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}

// Load читает все JPEG/PNG файлы каталога, отсортированные по имени
func (a *FileArchive) Load(ctx context.Context) ([]entity.ArchivedFrame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read archive dir %s", a.dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && imageFilePattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	frames := make([]entity.ArchivedFrame, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(a.dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		frames = append(frames, entity.ArchivedFrame{Name: name, Data: data})
	}
	return frames, nil
}

// Remove удаляет кадр, отсутствие файла ошибкой не считается
func (a *FileArchive) Remove(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := os.Remove(filepath.Join(a.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", name)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.FrameArchive = (*FileArchive)(nil)
