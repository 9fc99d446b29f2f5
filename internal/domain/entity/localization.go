package entity

import "github.com/golang/geo/r3"

// ObjectLocalization положение и размер объекта в мировых координатах.
// Пересчитывается на каждом кадре и нигде не хранится.
type ObjectLocalization struct {
	Position r3.Vector
	Width    float64 // расстояние по плоскости X-Z
	Height   float64 // разница по оси Y
}
