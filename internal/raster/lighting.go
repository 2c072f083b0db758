package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightConfig holds precomputed lighting parameters. Directions are in
// output space, Y up.
type LightConfig struct {
	LightDir mgl32.Vec3
	RimDir   mgl32.Vec3
	HalfMain mgl32.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient  float32
	Hemi     float32
	Direct   float32
	Rim      float32
	SpecInt  float32
	SpecPow  float64
	Exposure float32
	InvGamma float64
}

// DefaultLightConfig is a warm key light from above with a cool rim.
func DefaultLightConfig() LightConfig {
	lightDir := mgl32.Vec3{0.35, 0.8, 0.45}.Normalize()
	rimDir := mgl32.Vec3{-0.5, 0.4, -0.6}.Normalize()
	viewDir := mgl32.Vec3{0, -0.5, -1}.Normalize()

	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: lightDir.Sub(viewDir).Normalize(),
		Ambient:  0.35,
		Hemi:     0.30,
		Direct:   0.90,
		Rim:      0.25,
		SpecInt:  0.15,
		SpecPow:  12.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// Shade returns the combined lighting scalar for a face normal.
func (lc *LightConfig) Shade(normal mgl32.Vec3) float32 {
	// Lambertian, abs for double-sided
	ndlMain := abs32(normal.Dot(lc.LightDir))
	ndlRim := abs32(normal.Dot(lc.RimDir))

	// Hemisphere fill, brighter for upward faces
	hemi := (normal[1]+1)*0.25 + 0.5

	ndh := normal.Dot(lc.HalfMain)
	if ndh < 0 {
		ndh = 0
	}
	spec := float32(math.Pow(float64(ndh), lc.SpecPow)) * lc.SpecInt

	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = float32(math.Pow(float64(i)/255.0, 2.2))
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float32) float32 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// encode shades a texel and returns it in sRGB.
func (lc *LightConfig) encode(c uint8, shade float32) uint8 {
	lin := ACESTonemap(srgbToLinear[c] * shade * lc.Exposure)
	return clamp255(float32(math.Pow(float64(lin), lc.InvGamma)) * 255)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
