//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"

	"vision-assist/internal/domain/entity"
)

// YOLODetector заглушка детектора (без OpenCV)
type YOLODetector struct{}

// NewYOLODetector возвращает ErrUnavailable, если сборка без тега gocv
func NewYOLODetector(modelPath string) (*YOLODetector, error) {
	return nil, ErrUnavailable
}

// Detect возвращает ErrUnavailable
func (d *YOLODetector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	return nil, ErrUnavailable
}

// Close ничего не делает
func (d *YOLODetector) Close() error { return nil }

// DepthModel заглушка оценки глубины (без OpenCV)
type DepthModel struct{}

// NewDepthModel возвращает ErrUnavailable, если сборка без тега gocv
func NewDepthModel(modelPath string) (*DepthModel, error) {
	return nil, ErrUnavailable
}

// Estimate возвращает ErrUnavailable
func (m *DepthModel) Estimate(ctx context.Context, frame image.Image) (*entity.DepthField, error) {
	return nil, ErrUnavailable
}

// Close ничего не делает
func (m *DepthModel) Close() error { return nil }
