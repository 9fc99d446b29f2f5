package palette

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"vision-assist/internal/domain/entity"
)

// ExteriorOffset расширение внешней области в долях ширины/высоты кадра
const ExteriorOffset = 0.05

// SampleRegions возвращает внутреннюю область панели и расширенную внешнюю.
// Обе области обрезаны по кадру и даны в координатах исходного кадра.
// Вырожденный четырёхугольник или углы за кадром дают пустую область.
func SampleRegions(bounds image.Rectangle, quad entity.UIQuad, flip180 bool) (interior, exterior image.Rectangle) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, image.Rectangle{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range quad {
		if !finite(p.X) || !finite(p.Y) {
			return image.Rectangle{}, image.Rectangle{}
		}
		x := clampPixel(math.Round(p.X*float64(w)), w)
		y := clampPixel(math.Round(p.Y*float64(h)), h)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	local := image.Rect(0, 0, w, h)
	in := image.Rect(int(minX), int(minY), int(maxX), int(maxY)).Intersect(local)

	offX := ExteriorOffset * float64(w)
	offY := ExteriorOffset * float64(h)
	ex := image.Rect(
		int(minX-offX), int(minY-offY),
		int(maxX+offX), int(maxY+offY),
	).Intersect(local)

	if flip180 {
		in = rotate180(in, w, h)
		ex = rotate180(ex, w, h)
	}
	return toBounds(in, bounds), toBounds(ex, bounds)
}

// rotate180 переносит прямоугольник из повёрнутого на 180° кадра в исходный
func rotate180(r image.Rectangle, w, h int) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
}

func toBounds(r image.Rectangle, bounds image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return r.Add(bounds.Min)
}

// MeanColor средний цвет области. Для пустой области возвращает чёрный и false.
func MeanColor(img image.Image, r image.Rectangle) (colorful.Color, bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return colorful.Color{}, false
	}

	var sr, sg, sb float64
	switch src := img.(type) {
	case *image.NRGBA:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := src.Pix[src.PixOffset(r.Min.X, y):src.PixOffset(r.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				sr += float64(row[i])
				sg += float64(row[i+1])
				sb += float64(row[i+2])
			}
		}
	default:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				sr += float64(c.R)
				sg += float64(c.G)
				sb += float64(c.B)
			}
		}
	}

	n := float64(r.Dx() * r.Dy() * 255)
	return colorful.Color{R: sr / n, G: sg / n, B: sb / n}, true
}

// clampPixel ограничивает координату так, чтобы она влезала в int,
// не меняя результат пересечения с кадром
func clampPixel(v float64, size int) float64 {
	return math.Max(-float64(size), math.Min(2*float64(size), v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
