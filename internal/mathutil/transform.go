package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PlacementTransform builds the output-space rigid transform of an instanced
// model: translation(Convert(origin)) × rotation(angles) × scale(scale).
// Scale is given along native axes.
func PlacementTransform(origin mgl32.Vec3, angles QAngle, scale mgl32.Vec3) mgl32.Mat4 {
	rotation := ConvertLinear(AngleMatrix(angles))
	scaling := ConvertLinear(mgl32.Diag3(scale))
	t := Convert(origin)
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rotation.Mul3(scaling).Mat4())
}

// NormalMatrix returns the inverse-transpose of the linear part of m. A
// singular linear part is returned unchanged.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	linear := m.Mat3()
	if float32(math.Abs(float64(linear.Det()))) < Epsilon {
		return linear
	}
	return linear.Inv().Transpose()
}

// IsMirrored reports whether m flips handedness, which reverses triangle winding.
func IsMirrored(m mgl32.Mat4) bool {
	return m.Mat3().Det() < 0
}

// TransformPoint applies m to a point (w = 1).
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformNormal applies a normal matrix and renormalizes.
func TransformNormal(nm mgl32.Mat3, n mgl32.Vec3) mgl32.Vec3 {
	return Normalize(nm.Mul3x1(n))
}

// TransformTangent applies the linear part of m to the tangent direction and
// renormalizes. Handedness flips when m is mirrored.
func TransformTangent(m mgl32.Mat4, t mgl32.Vec4) mgl32.Vec4 {
	dir := Normalize(m.Mat3().Mul3x1(t.Vec3()))
	w := t[3]
	if IsMirrored(m) {
		w = -w
	}
	return dir.Vec4(w)
}
