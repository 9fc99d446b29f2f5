// Package palette подбирает цвета фона и текста панели по содержимому кадра.
package palette

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"vision-assist/internal/domain/entity"
)

// ToColorful переводит 8-битный цвет в colorful.Color
func ToColorful(c entity.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// FromColorful обрезает цвет до гаммы sRGB и округляет до 8 бит
func FromColorful(c colorful.Color) entity.RGB {
	r, g, b := c.Clamped().RGB255()
	return entity.RGB{R: r, G: g, B: b}
}

// ColorToLab переводит цвет в CIE LAB (D65), L в диапазоне 0-100.
func ColorToLab(c colorful.Color) (l, a, b float64) {
	l, a, b = c.Lab()
	return l * 100, a * 100, b * 100
}

// RGBToLab переводит 8-битный цвет в CIE LAB (D65), L в диапазоне 0-100.
func RGBToLab(c entity.RGB) (l, a, b float64) {
	return ColorToLab(ToColorful(c))
}

// LabToRGB восстанавливает sRGB из LAB через XYZ с белой точкой D65
// и кривой гаммы sRGB.
func LabToRGB(l, a, b float64) entity.RGB {
	return FromColorful(colorful.Lab(l/100, a/100, b/100))
}

// RGBToHSL возвращает тон в градусах, насыщенность и светлоту в [0,1]
func RGBToHSL(c entity.RGB) (h, s, l float64) {
	return ToColorful(c).Hsl()
}

// HSLToRGB собирает 8-битный цвет из HSL
func HSLToRGB(h, s, l float64) entity.RGB {
	return FromColorful(colorful.Hsl(math.Mod(h, 360), s, l))
}

// RelativeLuminance относительная яркость по WCAG 2.0.
func RelativeLuminance(c entity.RGB) float64 {
	return 0.2126*linearize(float64(c.R)/255) +
		0.7152*linearize(float64(c.G)/255) +
		0.0722*linearize(float64(c.B)/255)
}

// linearize снимает гамму sRGB с канала
func linearize(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio контраст двух цветов по WCAG, от 1 до 21
func ContrastRatio(a, b entity.RGB) float64 {
	l1 := RelativeLuminance(a)
	l2 := RelativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// PairContrast контраст между фоном и текстом
func PairContrast(p entity.ColorPair) float64 {
	return ContrastRatio(p.Text, p.Background)
}
