package entity

import "github.com/golang/geo/r3"

// CameraTransform описывает положение камеры для одного кадра.
// Реализации: MatrixCamera и QuaternionCamera, других вариантов нет.
type CameraTransform interface {
	// CameraPosition возвращает позицию камеры в мировых координатах
	CameraPosition() r3.Vector

	isCameraTransform()
}

// Quaternion кватернион поворота в порядке (x, y, z, w).
// Нормализованность не гарантируется отправителем.
type Quaternion struct {
	X, Y, Z, W float64
}

// Intrinsics внутренние параметры pinhole-камеры в пикселях.
type Intrinsics struct {
	Fx, Fy float64 // фокусные расстояния
	Cx, Cy float64 // главная точка
}

// MatrixCamera камера, заданная обратной view-projection матрицей.
type MatrixCamera struct {
	InvViewProjection [16]float64 // row-major 4x4
	Position          r3.Vector
}

// QuaternionCamera камера, заданная поворотом, позицией и интринсиками.
type QuaternionCamera struct {
	Rotation   Quaternion
	Position   r3.Vector
	Intrinsics Intrinsics
}

// CameraPosition возвращает позицию камеры
func (c MatrixCamera) CameraPosition() r3.Vector { return c.Position }

// CameraPosition возвращает позицию камеры
func (c QuaternionCamera) CameraPosition() r3.Vector { return c.Position }

func (MatrixCamera) isCameraTransform()     {}
func (QuaternionCamera) isCameraTransform() {}
