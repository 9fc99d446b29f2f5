// Package geometry переводит 2D-детекции в мировые координаты.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"vision-assist/internal/domain/entity"
)

const epsilon = 1e-9

// NormalizeQuaternion приводит кватернион к единичной длине.
// Нулевой кватернион превращается в единичный поворот.
func NormalizeQuaternion(q entity.Quaternion) entity.Quaternion {
	n := quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
	norm := quat.Abs(n)
	if norm < epsilon || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return entity.Quaternion{W: 1}
	}
	n = quat.Scale(1/norm, n)
	return entity.Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// QuaternionToRotationMatrix строит матрицу поворота 3x3 из единичного кватерниона.
// Матрица переводит координаты камеры в мировые (camera-to-world).
func QuaternionToRotationMatrix(q entity.Quaternion) mgl64.Mat3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return mgl64.Mat3FromRows(
		mgl64.Vec3{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		mgl64.Vec3{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		mgl64.Vec3{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	)
}

// Mat4FromRowMajor собирает матрицу 4x4 из 16 значений по строкам.
func Mat4FromRowMajor(m [16]float64) mgl64.Mat4 {
	return mgl64.Mat4FromRows(
		mgl64.Vec4{m[0], m[1], m[2], m[3]},
		mgl64.Vec4{m[4], m[5], m[6], m[7]},
		mgl64.Vec4{m[8], m[9], m[10], m[11]},
		mgl64.Vec4{m[12], m[13], m[14], m[15]},
	)
}

// PixelToNDC переводит пиксель в нормализованные координаты устройства.
// Ось Y изображения направлена вниз, ось Y NDC вверх.
func PixelToNDC(x, y float64, width, height int) (float64, float64) {
	return 2*x/float64(width) - 1, 1 - 2*y/float64(height)
}

// UnprojectNear переводит точку NDC на ближней плоскости отсечения (z = -1)
// в мировые координаты через обратную view-projection матрицу.
func UnprojectNear(invViewProj mgl64.Mat4, ndcX, ndcY float64) (r3.Vector, error) {
	h := invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	if math.Abs(h.W()) < epsilon || !finiteVec4(h) {
		return r3.Vector{}, ErrDegenerateRay
	}
	p := h.Vec3().Mul(1 / h.W())
	return r3.Vector{X: p.X(), Y: p.Y(), Z: p.Z()}, nil
}

// RayDirection возвращает единичное направление луча из камеры через пиксель.
func RayDirection(invViewProj mgl64.Mat4, camPos r3.Vector, ndcX, ndcY float64) (r3.Vector, error) {
	near, err := UnprojectNear(invViewProj, ndcX, ndcY)
	if err != nil {
		return r3.Vector{}, err
	}
	dir := near.Sub(camPos)
	if dir.Norm() < epsilon {
		return r3.Vector{}, ErrDegenerateRay
	}
	return dir.Normalize(), nil
}

func finiteVec4(v mgl64.Vec4) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func toR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
