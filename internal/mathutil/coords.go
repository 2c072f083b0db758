package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Convert maps a native position into output space: (y, z, x) * UnitScale.
// Applied to every position crossing the format boundary.
func Convert(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[1] * UnitScale, v[2] * UnitScale, v[0] * UnitScale}
}

// ConvertDirection applies the axis permutation of Convert without the unit
// scale. Used for normals and tangents, which are renormalized anyway.
func ConvertDirection(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[1], v[2], v[0]}
}

// ConvertLinear carries a native-space linear map M into output space (P·M·Pᵀ).
func ConvertLinear(m mgl32.Mat3) mgl32.Mat3 {
	return Permutation.Mul3(m).Mul3(Permutation.Transpose())
}

// Normalize returns v scaled to unit length, or the zero vector if v is degenerate.
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
