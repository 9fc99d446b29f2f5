package port

import (
	"context"
	"image"

	"vision-assist/internal/domain/entity"
)

// ObjectDetector интерфейс внешнего детектора объектов
type ObjectDetector interface {
	// Detect возвращает рамки и классы для кадра
	Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error)
}

// ObjectTracker сопоставляет детекции соседних кадров одного потока
type ObjectTracker interface {
	// Update проставляет TrackID детекциям с рамкой
	Update(dets []entity.Detection)
}

// DepthEstimator интерфейс внешней оценки глубины
type DepthEstimator interface {
	// Estimate возвращает карту глубины, выровненную по кадру, или nil
	Estimate(ctx context.Context, frame image.Image) (*entity.DepthField, error)
}
