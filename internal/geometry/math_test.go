package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"

	"vision-assist/internal/domain/entity"
)

func TestQuaternionToRotationMatrix_Identity(t *testing.T) {
	m := QuaternionToRotationMatrix(entity.Quaternion{W: 1})
	require.True(t, m.ApproxEqual(mgl64.Ident3()))
}

func TestQuaternionToRotationMatrix_QuarterTurnAboutY(t *testing.T) {
	s := math.Sqrt2 / 2
	m := QuaternionToRotationMatrix(entity.Quaternion{Y: s, W: s})

	forward := m.Mul3x1(mgl64.Vec3{0, 0, 1})
	require.InDelta(t, 1.0, forward.X(), 1e-9)
	require.InDelta(t, 0.0, forward.Y(), 1e-9)
	require.InDelta(t, 0.0, forward.Z(), 1e-9)
}

func TestNormalizeQuaternion(t *testing.T) {
	q := NormalizeQuaternion(entity.Quaternion{W: 2})
	require.Equal(t, entity.Quaternion{W: 1}, q)

	q = NormalizeQuaternion(entity.Quaternion{X: 1, Y: 1, Z: 1, W: 1})
	require.InDelta(t, 0.5, q.X, 1e-12)
	require.InDelta(t, 0.5, q.W, 1e-12)

	require.Equal(t, entity.Quaternion{W: 1}, NormalizeQuaternion(entity.Quaternion{}))
}

func TestPixelToNDC(t *testing.T) {
	x, y := PixelToNDC(320, 240, 640, 480)
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.0, y)

	x, y = PixelToNDC(0, 0, 640, 480)
	require.Equal(t, -1.0, x)
	require.Equal(t, 1.0, y)
}

func TestRayDirection_ImageCenterIdentity(t *testing.T) {
	ndcX, ndcY := PixelToNDC(320, 240, 640, 480)
	dir, err := RayDirection(mgl64.Ident4(), r3.Vector{}, ndcX, ndcY)
	require.NoError(t, err)
	require.InDelta(t, 0.0, dir.X, 1e-12)
	require.InDelta(t, 0.0, dir.Y, 1e-12)
	require.InDelta(t, -1.0, dir.Z, 1e-12)
}

func TestRayDirection_Degenerate(t *testing.T) {
	_, err := RayDirection(mgl64.Mat4{}, r3.Vector{}, 0, 0)
	require.ErrorIs(t, err, ErrDegenerateRay)

	_, err = RayDirection(mgl64.Ident4(), r3.Vector{Z: -1}, 0, 0)
	require.ErrorIs(t, err, ErrDegenerateRay)
}

func TestMat4FromRowMajor(t *testing.T) {
	var rows [16]float64
	for i := range rows {
		rows[i] = float64(i)
	}
	m := Mat4FromRowMajor(rows)
	require.Equal(t, 1.0, m.At(0, 1))
	require.Equal(t, 4.0, m.At(1, 0))
	require.Equal(t, 11.0, m.At(2, 3))
}
