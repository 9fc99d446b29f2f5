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

const (
	yoloInputSide = 640
	yoloOutputs   = 8400
)

// YOLODetector детектор YOLOv8 (ONNX) поверх OpenCV DNN
type YOLODetector struct {
	ScoreThreshold float32
	NMSThreshold   float32

	mu  sync.Mutex
	net gocv.Net
}

// NewYOLODetector загружает модель
func NewYOLODetector(modelPath string) (*YOLODetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Wrapf(err, "detector model")
	}
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load detector model %s", modelPath)
	}
	return &YOLODetector{
		ScoreThreshold: 0.25,
		NMSThreshold:   0.45,
		net:            net,
	}, nil
}

// Detect запускает сеть на кадре; TrackID не заполняется
func (d *YOLODetector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty frame")
	}

	// Дополняем кадр до квадрата, чтобы масштаб по осям совпадал.
	side := maxInt(mat.Cols(), mat.Rows())
	square := gocv.NewMatWithSize(side, side, gocv.MatTypeCV8UC3)
	defer square.Close()
	roi := square.Region(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	mat.CopyTo(&roi)
	roi.Close()
	scale := float32(side) / yoloInputSide

	blob := gocv.BlobFromImage(square, 1.0/255.0, image.Pt(yoloInputSide, yoloInputSide), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	return d.parse(out, scale), nil
}

// parse разбирает выход [1, 4+классы, 8400] и применяет NMS
func (d *YOLODetector) parse(out gocv.Mat, scale float32) []entity.Detection {
	var (
		boxes   []image.Rectangle
		scores  []float32
		classes []int
	)
	for i := 0; i < yoloOutputs; i++ {
		best, bestScore := -1, d.ScoreThreshold
		for c := range cocoLabels {
			if s := out.GetFloatAt3(0, 4+c, i); s >= bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 {
			continue
		}
		cx, cy := out.GetFloatAt3(0, 0, i), out.GetFloatAt3(0, 1, i)
		w, h := out.GetFloatAt3(0, 2, i), out.GetFloatAt3(0, 3, i)
		boxes = append(boxes, image.Rect(
			int((cx-w/2)*scale), int((cy-h/2)*scale),
			int((cx+w/2)*scale), int((cy+h/2)*scale),
		))
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}
	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, scores, d.ScoreThreshold, d.NMSThreshold)
	dets := make([]entity.Detection, 0, len(indices))
	for _, idx := range indices {
		b := boxes[idx]
		dets = append(dets, entity.Detection{
			Box: &entity.Rect{
				X1: float64(b.Min.X), Y1: float64(b.Min.Y),
				X2: float64(b.Max.X), Y2: float64(b.Max.Y),
			},
			Class:      Label(classes[idx]),
			Confidence: float64(scores[idx]),
		})
	}
	return dets
}

// Close освобождает сеть
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
