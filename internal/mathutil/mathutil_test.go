package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-5

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], tol, "component %d of %v", i, got)
	}
}

func TestConvertScale(t *testing.T) {
	assertVec3(t, mgl32.Vec3{0, 0, 0.01}, Convert(mgl32.Vec3{1.905, 0, 0}))
	assertVec3(t, mgl32.Vec3{0.01, 0, 0}, Convert(mgl32.Vec3{0, 1.905, 0}))
	assertVec3(t, mgl32.Vec3{0, 0.01, 0}, Convert(mgl32.Vec3{0, 0, 1.905}))
	assert.Equal(t, mgl32.Vec3{}, Convert(mgl32.Vec3{}))
}

func TestConvertLinear(t *testing.T) {
	vectors := []mgl32.Vec3{
		{1, 2, 3},
		{-40, 512.5, 0.25},
		{1024, -1024, 77},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			assertVec3(t, Convert(a).Add(Convert(b)), Convert(a.Add(b)))
		}
		for _, s := range []float32{-2, 0, 0.5, 3} {
			assertVec3(t, Convert(a).Mul(s), Convert(a.Mul(s)))
		}
	}
}

func TestConvertMatchesPermutation(t *testing.T) {
	v := mgl32.Vec3{3, -7, 11}
	assertVec3(t, Convert(v), Permutation.Mul3x1(v).Mul(UnitScale))
	assertVec3(t, ConvertDirection(v), Permutation.Mul3x1(v))
}

func TestAngleMatrix(t *testing.T) {
	forward := mgl32.Vec3{1, 0, 0}

	// yaw turns forward towards +Y (left)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, AngleMatrix(QAngle{Yaw: 90}).Mul3x1(forward))
	// positive pitch looks down
	assertVec3(t, mgl32.Vec3{0, 0, -1}, AngleMatrix(QAngle{Pitch: 90}).Mul3x1(forward))
	// roll keeps forward and rotates left towards up
	assertVec3(t, forward, AngleMatrix(QAngle{Roll: 90}).Mul3x1(forward))
	assertVec3(t, mgl32.Vec3{0, 0, 1}, AngleMatrix(QAngle{Roll: 90}).Mul3x1(mgl32.Vec3{0, 1, 0}))
}

func TestPlacementTransformMatchesNativeTransform(t *testing.T) {
	origin := mgl32.Vec3{128, -64, 32}
	angles := QAngle{Pitch: 15, Yaw: 30, Roll: 45}
	scale := mgl32.Vec3{2, 1, 0.5}

	m := PlacementTransform(origin, angles, scale)

	p := mgl32.Vec3{10, 20, 30}
	native := AngleMatrix(angles).Mul3(mgl32.Diag3(scale)).Mul3x1(p).Add(origin)
	assertVec3(t, Convert(native), TransformPoint(m, Convert(p)))
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	m := PlacementTransform(mgl32.Vec3{}, QAngle{}, mgl32.Vec3{2, 1, 1})
	nm := NormalMatrix(m)

	// axis aligned normal orthogonal to the stretched axis is unchanged
	n := TransformNormal(nm, ConvertDirection(mgl32.Vec3{0, 1, 0}))
	assertVec3(t, ConvertDirection(mgl32.Vec3{0, 1, 0}), n)
	assert.InDelta(t, 1, n.Len(), tol)

	// slanted surface: x + y = 1 stretched along x becomes x/2 + y = 1
	slanted := ConvertDirection(mgl32.Vec3{1, 1, 0}.Normalize())
	got := TransformNormal(nm, slanted)
	want := ConvertDirection(mgl32.Vec3{0.5, 1, 0}.Normalize())
	assertVec3(t, want, got)
	assert.InDelta(t, 1, got.Len(), tol)

	// a naive linear transform would lean the other way
	naive := Normalize(m.Mat3().Mul3x1(slanted))
	assert.Greater(t, math.Abs(float64(naive.Sub(got).Len())), 0.1)

	// still perpendicular to a transformed tangent of the surface
	tangent := m.Mat3().Mul3x1(ConvertDirection(mgl32.Vec3{1, -1, 0}))
	assert.InDelta(t, 0, got.Dot(tangent), tol)
}

func TestIsMirrored(t *testing.T) {
	assert.False(t, IsMirrored(PlacementTransform(mgl32.Vec3{}, QAngle{Yaw: 45}, mgl32.Vec3{1, 2, 3})))
	assert.True(t, IsMirrored(PlacementTransform(mgl32.Vec3{}, QAngle{}, mgl32.Vec3{-1, 1, 1})))
}

func TestNormalizeDegenerate(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, Normalize(mgl32.Vec3{}))
	assertVec3(t, mgl32.Vec3{0, 0, 1}, Normalize(mgl32.Vec3{0, 0, 5}))
}

func TestTransformTangentMirrored(t *testing.T) {
	m := mgl32.Scale3D(-1, 1, 1)
	got := TransformTangent(m, mgl32.Vec4{1, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{-1, 0, 0}, got.Vec3())
	assert.Equal(t, float32(-1), got[3])

	got = TransformTangent(mgl32.Scale3D(3, 1, 1), mgl32.Vec4{1, 0, 0, -1})
	assertVec3(t, mgl32.Vec3{1, 0, 0}, got.Vec3())
	assert.Equal(t, float32(-1), got[3])
}
