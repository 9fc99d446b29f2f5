//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"vision-assist/internal/domain/entity"
)

const depthInputSide = 518

// DepthModel метрическая оценка глубины (ONNX) поверх OpenCV DNN
type DepthModel struct {
	mu  sync.Mutex
	net gocv.Net
}

// NewDepthModel загружает модель глубины
func NewDepthModel(modelPath string) (*DepthModel, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrapf(err, "depth model")
	}
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load depth model %s", modelPath)
	}
	return &DepthModel{net: net}, nil
}

// Estimate возвращает карту глубины в метрах с размером кадра
func (m *DepthModel) Estimate(ctx context.Context, frame image.Image) (*entity.DepthField, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty frame")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(depthInputSide, depthInputSide), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	m.mu.Unlock()
	defer out.Close()

	raw := out.ToBytes()
	if len(raw) != depthInputSide*depthInputSide*4 {
		return nil, errors.Errorf("unexpected depth output size %d", len(raw))
	}
	plane, err := gocv.NewMatFromBytes(depthInputSide, depthInputSide, gocv.MatTypeCV32F, raw)
	if err != nil {
		return nil, errors.Wrap(err, "depth plane")
	}
	defer plane.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(plane, &resized, image.Pt(mat.Cols(), mat.Rows()), 0, 0, gocv.InterpolationLinear)

	data, err := resized.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "depth data")
	}
	field := entity.NewDepthField(mat.Cols(), mat.Rows())
	copy(field.Data, data)
	return field, nil
}

// Close освобождает сеть
func (m *DepthModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}
