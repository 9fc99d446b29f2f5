package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-assist/internal/domain/entity"
)

func quadFromPixels(x1, y1, x2, y2, w, h float64) entity.UIQuad {
	return entity.UIQuad{
		{X: x2 / w, Y: y1 / h},
		{X: x1 / w, Y: y1 / h},
		{X: x2 / w, Y: y2 / h},
		{X: x1 / w, Y: y2 / h},
	}
}

func TestSampleRegions_InteriorAndExterior(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	in, ex := SampleRegions(bounds, quadFromPixels(100, 100, 200, 300, 640, 480), false)
	require.Equal(t, image.Rect(100, 100, 200, 300), in)
	require.Equal(t, image.Rect(68, 76, 232, 324), ex)
}

func TestSampleRegions_ClampedToFrame(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	in, ex := SampleRegions(bounds, quadFromPixels(-50, 10, 100, 500, 640, 480), false)
	require.Equal(t, image.Rect(0, 10, 100, 480), in)
	require.Equal(t, image.Rect(0, 0, 132, 480), ex)
}

func TestSampleRegions_Flip180(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	in, _ := SampleRegions(bounds, quadFromPixels(0, 0, 160, 240, 640, 480), true)
	require.Equal(t, image.Rect(480, 240, 640, 480), in)
}

func TestSampleRegions_Degenerate(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	p := entity.Point2{X: 0.5, Y: 0.5}

	in, ex := SampleRegions(bounds, entity.UIQuad{p, p, p, p}, false)
	require.True(t, in.Empty())
	require.Equal(t, image.Rect(288, 216, 352, 264), ex)

	in, ex = SampleRegions(bounds, quadFromPixels(2000, 2000, 3000, 3000, 640, 480), false)
	require.True(t, in.Empty())
	require.True(t, ex.Empty())

	in, ex = SampleRegions(image.Rectangle{}, entity.UIQuad{p, p, p, p}, false)
	require.True(t, in.Empty())
	require.True(t, ex.Empty())
}

func TestMeanColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	mean, ok := MeanColor(img, img.Bounds())
	require.True(t, ok)
	require.InDelta(t, 0.5, mean.R, 1e-9)
	require.InDelta(t, 0.0, mean.G, 1e-9)
	require.InDelta(t, 0.5, mean.B, 1e-9)

	mean, ok = MeanColor(img, image.Rect(2, 0, 4, 2))
	require.True(t, ok)
	require.InDelta(t, 1.0, mean.B, 1e-9)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	rgba.Set(0, 0, color.RGBA{G: 255, A: 255})
	mean, ok = MeanColor(rgba, rgba.Bounds())
	require.True(t, ok)
	require.InDelta(t, 0.25, mean.G, 1e-9)

	_, ok = MeanColor(img, image.Rectangle{})
	require.False(t, ok)
}
