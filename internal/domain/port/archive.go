package port

import (
	"context"
	"image"

	"vision-assist/internal/domain/entity"
)

// FrameArchive интерфейс архива кадров на диске
type FrameArchive interface {
	// Save атомарно записывает кадр под указанным именем
	Save(ctx context.Context, name string, frame image.Image) error

	// Load читает все сохранённые кадры
	Load(ctx context.Context) ([]entity.ArchivedFrame, error)

	// Remove удаляет кадр, если он есть
	Remove(ctx context.Context, name string) error
}
