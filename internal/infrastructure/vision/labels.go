// Package vision содержит адаптеры детектора объектов и оценки глубины.
package vision

import "github.com/pkg/errors"

// ErrUnavailable сборка без тега gocv
var ErrUnavailable = errors.New("gocv build tag is not enabled")

// cocoLabels классы COCO в порядке выходов YOLOv8
var cocoLabels = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck",
	"boat", "traffic light", "fire hydrant", "stop sign", "parking meter", "bench",
	"bird", "cat", "dog", "horse", "sheep", "cow", "elephant", "bear", "zebra",
	"giraffe", "backpack", "umbrella", "handbag", "tie", "suitcase", "frisbee",
	"skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup",
	"fork", "knife", "spoon", "bowl", "banana", "apple", "sandwich", "orange",
	"broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair", "couch",
	"potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear",
	"hair drier", "toothbrush",
}

// Label возвращает имя класса по индексу
func Label(idx int) string {
	if idx < 0 || idx >= len(cocoLabels) {
		return "unknown"
	}
	return cocoLabels[idx]
}
