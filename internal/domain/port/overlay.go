package port

import (
	"image"

	"vision-assist/internal/domain/entity"
)

// OverlayRenderer рисует отладочную разметку на копии кадра
type OverlayRenderer interface {
	Render(frame image.Image, overlay *entity.Overlay) image.Image
}
