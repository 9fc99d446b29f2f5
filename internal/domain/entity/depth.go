package entity

import "image"

// DepthField карта глубины, выровненная по пикселям цветного кадра.
type DepthField struct {
	Width  int
	Height int
	Data   []float32 // row-major, метры
}

// NewDepthField создаёт пустую карту глубины заданного размера
func NewDepthField(width, height int) *DepthField {
	return &DepthField{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// At возвращает значение глубины в точке (x, y)
func (d *DepthField) At(x, y int) float32 {
	return d.Data[y*d.Width+x]
}

// Set записывает значение глубины в точку (x, y)
func (d *DepthField) Set(x, y int, v float32) {
	d.Data[y*d.Width+x] = v
}

// Bounds возвращает границы карты
func (d *DepthField) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}
