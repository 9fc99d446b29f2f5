package entity

// RGB цвет в диапазоне 0-255 по каждому каналу
type RGB struct {
	R, G, B uint8
}

// ColorPair цвета фона и текста панели интерфейса.
// Контраст не хранится, а пересчитывается по требованию.
type ColorPair struct {
	Background RGB
	Text       RGB
}

// Point2 точка в нормализованных координатах экрана [0,1]
type Point2 struct {
	X, Y float64
}

// UIQuad четыре угла панели интерфейса в любом порядке
type UIQuad [4]Point2
