// Package overlay рисует отладочную разметку поверх копии кадра.
package overlay

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"vision-assist/internal/domain/entity"
)

var (
	boxColor      = color.RGBA{G: 255, A: 255}
	centerColor   = color.RGBA{R: 255, A: 255}
	interiorColor = color.RGBA{B: 255, A: 255}
	exteriorColor = color.RGBA{R: 255, G: 255, A: 255}
)

// Renderer рисует рамки, центры и области выборки цвета
type Renderer struct {
	LineWidth float64
	font      *truetype.Font
}

// NewRenderer разбирает встроенный шрифт подписей
func NewRenderer() (*Renderer, error) {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse overlay font")
	}
	return &Renderer{LineWidth: 2, font: font}, nil
}

// Render возвращает новое изображение; исходный кадр не изменяется
func (r *Renderer) Render(frame image.Image, ov *entity.Overlay) image.Image {
	dc := gg.NewContextForImage(frame)
	if ov == nil {
		return dc.Image()
	}

	fontSize := float64(frame.Bounds().Dy()) / 40
	if fontSize < 10 {
		fontSize = 10
	}
	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: fontSize}))

	for _, box := range ov.Boxes {
		r.strokeRect(dc, box, boxColor)
	}
	for _, c := range ov.Centers {
		dc.SetColor(centerColor)
		dc.DrawCircle(float64(c.X), float64(c.Y), r.LineWidth*2)
		dc.Fill()
	}
	if !ov.Exterior.Empty() {
		r.strokeRect(dc, ov.Exterior, exteriorColor)
		r.label(dc, "exterior", ov.Exterior.Min, exteriorColor)
	}
	if !ov.Interior.Empty() {
		r.strokeRect(dc, ov.Interior, interiorColor)
		r.label(dc, "interior", ov.Interior.Min, interiorColor)
	}
	return dc.Image()
}

func (r *Renderer) strokeRect(dc *gg.Context, rect image.Rectangle, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(r.LineWidth)
	dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
	dc.Stroke()
}

func (r *Renderer) label(dc *gg.Context, text string, at image.Point, c color.Color) {
	dc.SetColor(c)
	dc.DrawStringAnchored(text, float64(at.X)+r.LineWidth, float64(at.Y)+r.LineWidth, 0, 1)
}
