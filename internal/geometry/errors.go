package geometry

import "github.com/pkg/errors"

var (
	// ErrDegenerateRay луч нельзя построить (w = 0 или нулевое направление)
	ErrDegenerateRay = errors.New("degenerate ray")
	// ErrInvalidIntrinsics фокусные расстояния не положительны
	ErrInvalidIntrinsics = errors.New("invalid camera intrinsics")
	// ErrUnknownCamera неизвестный вариант CameraTransform
	ErrUnknownCamera = errors.New("unknown camera transform")
)
