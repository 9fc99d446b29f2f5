package entity

import "image"

// Overlay отладочная разметка кадра.
// Заполняется по ходу обработки вместо рисования прямо на кадре.
type Overlay struct {
	Boxes    []image.Rectangle // рамки детекций
	Centers  []image.Point     // центры детекций
	Interior image.Rectangle   // внутренняя область панели
	Exterior image.Rectangle   // внешняя область для выборки цвета
}

// AddDetection добавляет рамку и центр детекции
func (o *Overlay) AddDetection(box image.Rectangle, center image.Point) {
	if o == nil {
		return
	}
	o.Boxes = append(o.Boxes, box)
	o.Centers = append(o.Centers, center)
}
