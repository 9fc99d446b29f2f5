package entity

import (
	"image"
	"strconv"
)

// NoTrackID идентификатор объекта, если трекер его не выдал.
const NoTrackID = "-1"

// Rect прямоугольник детекции в пикселях кадра
type Rect struct {
	X1, Y1 float64 // левый верхний угол
	X2, Y2 float64 // правый нижний угол
}

// Center возвращает координаты центра прямоугольника
func (r Rect) Center() (x, y float64) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Image возвращает целочисленный прямоугольник (как при отрисовке)
func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2))
}

// Detection одна детекция внешнего детектора.
// Живёт в пределах обработки одного кадра.
type Detection struct {
	Box        *Rect // nil, если детектор не вернул рамку
	Class      string
	Confidence float64
	TrackID    *int // nil, если трек не назначен
}

// ID возвращает идентификатор трека в формате сообщения клиенту
func (d Detection) ID() string {
	if d.TrackID == nil {
		return NoTrackID
	}
	return strconv.Itoa(*d.TrackID)
}
