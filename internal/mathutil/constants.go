package mathutil

import "github.com/go-gl/mathgl/mgl32"

// UnitScale converts native engine units to meters. One unit is ~1.905cm.
const UnitScale float32 = 1.0 / (1.905 * 100.0)

// Permutation maps native axes (X forward, Y left, Z up) onto output axes:
// Convert(v) == Permutation.Mul3x1(v).Mul(UnitScale).
var Permutation = mgl32.Mat3FromRows(
	mgl32.Vec3{0, 1, 0},
	mgl32.Vec3{0, 0, 1},
	mgl32.Vec3{1, 0, 0},
)

// Epsilon is the tolerance used for degenerate length and determinant checks.
const Epsilon float32 = 1e-8
