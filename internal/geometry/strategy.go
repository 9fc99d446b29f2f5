package geometry

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"vision-assist/internal/domain/entity"
)

// rayCaster бросает луч из камеры через пиксель на ближней плоскости
// и откладывает по нему глубину.
type rayCaster struct {
	cam   entity.MatrixCamera
	frame image.Point
}

func (r rayCaster) unproject(px, py, depth float64) (r3.Vector, error) {
	ndcX, ndcY := PixelToNDC(px, py, r.frame.X, r.frame.Y)
	dir, err := RayDirection(Mat4FromRowMajor(r.cam.InvViewProjection), r.cam.Position, ndcX, ndcY)
	if err != nil {
		return r3.Vector{}, err
	}
	return r.cam.Position.Add(dir.Mul(depth)), nil
}

// pinhole переводит пиксель через интринсики в пространство камеры,
// затем поворотом и сдвигом в мировое.
type pinhole struct {
	rotation   mgl64.Mat3
	position   r3.Vector
	intrinsics entity.Intrinsics
}

func newPinhole(c entity.QuaternionCamera) (pinhole, error) {
	if !positiveFinite(c.Intrinsics.Fx) || !positiveFinite(c.Intrinsics.Fy) {
		return pinhole{}, ErrInvalidIntrinsics
	}
	return pinhole{
		rotation:   QuaternionToRotationMatrix(NormalizeQuaternion(c.Rotation)),
		position:   c.Position,
		intrinsics: c.Intrinsics,
	}, nil
}

// CameraPoint возвращает точку в координатах камеры для пикселя на глубине.
func CameraPoint(in entity.Intrinsics, px, py, depth float64) r3.Vector {
	return r3.Vector{
		X: (px - in.Cx) / in.Fx * depth,
		Y: (py - in.Cy) / in.Fy * depth,
		Z: depth,
	}
}

func (p pinhole) unproject(px, py, depth float64) (r3.Vector, error) {
	camPoint := CameraPoint(p.intrinsics, px, py, depth)
	world := p.rotation.Mul3x1(toVec3(camPoint))
	return toR3(world).Add(p.position), nil
}
