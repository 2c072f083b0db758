package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// View is an orthographic camera orbiting the scene. Yaw turns around the
// up axis, Pitch tilts toward a top-down view at 90 degrees.
type View struct {
	Yaw   float32
	Pitch float32
}

// DefaultView looks down at the scene from an isometric-like angle.
var DefaultView = View{Yaw: 45, Pitch: 55}

// TopView looks straight down.
var TopView = View{Pitch: 90}

// Matrix maps output space into view space: X right, Y up on screen, Z
// toward the camera.
func (v View) Matrix() mgl32.Mat3 {
	return mgl32.Rotate3DX(mgl32.DegToRad(v.Pitch)).Mul3(mgl32.Rotate3DY(mgl32.DegToRad(v.Yaw)))
}

// projection fits view-space bounds into a w×h frame with a margin.
type projection struct {
	rot    mgl32.Mat3
	center mgl32.Vec3
	scale  float32
	halfW  float32
	halfH  float32
}

func newProjection(rot mgl32.Mat3, lo, hi mgl32.Vec3, w, h, margin int) projection {
	center := lo.Add(hi).Mul(0.5)
	spanX := max(hi[0]-lo[0], 0.001)
	spanY := max(hi[1]-lo[1], 0.001)
	scale := float32(math.Min(
		float64(float32(w-2*margin)/spanX),
		float64(float32(h-2*margin)/spanY),
	))
	return projection{
		rot:    rot,
		center: center,
		scale:  scale,
		halfW:  float32(w) / 2,
		halfH:  float32(h) / 2,
	}
}

// project maps an output-space point to screen coordinates.
func (p projection) project(pos mgl32.Vec3) (x, y, z float32) {
	t := p.rot.Mul3x1(pos)
	x = (t[0]-p.center[0])*p.scale + p.halfW
	y = -(t[1]-p.center[1])*p.scale + p.halfH
	return x, y, t[2]
}
