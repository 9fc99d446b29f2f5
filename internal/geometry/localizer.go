package geometry

import (
	"image"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"vision-assist/internal/domain/entity"
)

// unprojector переводит пиксель на заданной глубине в мировую точку.
type unprojector interface {
	unproject(px, py, depth float64) (r3.Vector, error)
}

// Localizer переводит рамку детекции в мировую позицию и размер.
// Не хранит состояния между вызовами.
type Localizer struct {
	FallbackDepth float64 // глубина, если карта недоступна или невалидна
	MirrorX       bool    // отражать X пикселя (width - x) под экран клиента
}

// NewLocalizer создаёт локализатор с глубиной по умолчанию.
func NewLocalizer(fallbackDepth float64, mirrorX bool) *Localizer {
	if !ValidDepth(fallbackDepth) {
		fallbackDepth = DefaultFallbackDepth
	}
	return &Localizer{FallbackDepth: fallbackDepth, MirrorX: mirrorX}
}

// Localize возвращает положение и размер объекта.
// Детекция без рамки даёт (nil, nil). Рамка и центр успешно
// локализованной детекции попадают в overlay, если он передан; кадр не меняется.
func (l *Localizer) Localize(
	det entity.Detection,
	depth *entity.DepthField,
	cam entity.CameraTransform,
	frame image.Point,
	overlay *entity.Overlay,
) (*entity.ObjectLocalization, error) {
	if det.Box == nil {
		return nil, nil
	}
	if frame.X <= 0 || frame.Y <= 0 {
		return nil, errors.Errorf("invalid frame size %dx%d", frame.X, frame.Y)
	}

	box := *det.Box
	cx, cy := box.Center()
	d := MeanDepth(depth, box.Image(), l.fallbackDepth())

	u, err := newUnprojector(cam, frame)
	if err != nil {
		return nil, err
	}

	pos, err := u.unproject(l.flipX(cx, frame.X), cy, d)
	if err != nil {
		return nil, errors.Wrap(err, "unproject center")
	}
	topLeft, err := u.unproject(l.flipX(box.X1, frame.X), box.Y1, d)
	if err != nil {
		return nil, errors.Wrap(err, "unproject top-left corner")
	}
	bottomRight, err := u.unproject(l.flipX(box.X2, frame.X), box.Y2, d)
	if err != nil {
		return nil, errors.Wrap(err, "unproject bottom-right corner")
	}
	overlay.AddDetection(box.Image(), image.Pt(int(cx), int(cy)))

	return &entity.ObjectLocalization{
		Position: pos,
		Width:    math.Hypot(bottomRight.X-topLeft.X, bottomRight.Z-topLeft.Z),
		Height:   math.Abs(bottomRight.Y - topLeft.Y),
	}, nil
}

func (l *Localizer) fallbackDepth() float64 {
	if ValidDepth(l.FallbackDepth) {
		return l.FallbackDepth
	}
	return DefaultFallbackDepth
}

func (l *Localizer) flipX(x float64, width int) float64 {
	if l.MirrorX {
		return float64(width) - x
	}
	return x
}

func newUnprojector(cam entity.CameraTransform, frame image.Point) (unprojector, error) {
	switch c := cam.(type) {
	case entity.MatrixCamera:
		return rayCaster{cam: c, frame: frame}, nil
	case *entity.MatrixCamera:
		return rayCaster{cam: *c, frame: frame}, nil
	case entity.QuaternionCamera:
		return newPinhole(c)
	case *entity.QuaternionCamera:
		return newPinhole(*c)
	default:
		return nil, ErrUnknownCamera
	}
}
