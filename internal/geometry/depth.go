package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"vision-assist/internal/domain/entity"
)

// DefaultFallbackDepth глубина в метрах, когда карта глубины недоступна.
const DefaultFallbackDepth = 1.5

// MeanDepth возвращает среднюю глубину внутри рамки.
// Учитываются только конечные положительные значения; если их нет,
// возвращается fallback.
func MeanDepth(field *entity.DepthField, box image.Rectangle, fallback float64) float64 {
	if field == nil || len(field.Data) < field.Width*field.Height {
		return fallback
	}
	area := box.Canon().Intersect(field.Bounds())
	if area.Empty() {
		return fallback
	}

	samples := make([]float64, 0, area.Dx()*area.Dy())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if v := float64(field.At(x, y)); ValidDepth(v) {
				samples = append(samples, v)
			}
		}
	}
	if len(samples) == 0 {
		return fallback
	}
	return SanitizeDepth(stat.Mean(samples, nil), fallback)
}

// ValidDepth сообщает, можно ли использовать значение глубины
func ValidDepth(d float64) bool {
	return positiveFinite(d)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SanitizeDepth заменяет недопустимую глубину на fallback
func SanitizeDepth(d, fallback float64) float64 {
	if ValidDepth(d) {
		return d
	}
	return fallback
}
