package mathutil

import "github.com/go-gl/mathgl/mgl32"

// QAngle is the engine-native orientation: pitch, yaw, roll in degrees.
type QAngle struct {
	Pitch, Yaw, Roll float32
}

// AngleMatrix returns the native-space rotation for a QAngle:
// Rz(yaw) · Ry(pitch) · Rx(roll).
func AngleMatrix(a QAngle) mgl32.Mat3 {
	return mgl32.Rotate3DZ(mgl32.DegToRad(a.Yaw)).
		Mul3(mgl32.Rotate3DY(mgl32.DegToRad(a.Pitch))).
		Mul3(mgl32.Rotate3DX(mgl32.DegToRad(a.Roll)))
}
