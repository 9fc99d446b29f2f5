package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-assist/internal/domain/entity"
)

func TestRenderer_DrawsOnCopy(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	frame := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	ov := &entity.Overlay{}
	ov.AddDetection(image.Rect(10, 10, 40, 60), image.Pt(25, 35))
	ov.Interior = image.Rect(50, 20, 90, 70)

	out := r.Render(frame, ov)
	require.Equal(t, frame.Bounds(), out.Bounds())

	_, _, _, a := frame.At(10, 30).RGBA()
	require.Zero(t, a)

	gr, gg, gb, _ := out.At(10, 30).RGBA()
	require.Zero(t, gr)
	require.NotZero(t, gg)
	require.Zero(t, gb)

	cr, _, _, _ := out.At(25, 35).RGBA()
	require.NotZero(t, cr)
}

func TestRenderer_NilOverlay(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	frame := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	frame.Set(1, 1, color.White)
	out := r.Render(frame, nil)
	wr, wg, wb, wa := frame.At(1, 1).RGBA()
	or, og, ob, oa := out.At(1, 1).RGBA()
	require.Equal(t, []uint32{wr, wg, wb, wa}, []uint32{or, og, ob, oa})
}
