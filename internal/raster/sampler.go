package raster

import (
	"image"
	"math"
)

// wrap maps a texture coordinate into [0, 1).
func wrap(t float32) float32 {
	return t - float32(math.Floor(float64(t)))
}

// SampleTexture returns the bilinearly filtered texel at (u, v), repeating
// the texture outside [0, 1].
func SampleTexture(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()

	fx := wrap(u) * float32(w-1)
	fy := wrap(v) * float32(h-1)
	x0, y0 := int(fx), int(fy)
	dx, dy := fx-float32(x0), fy-float32(y0)

	rows := [2]int{y0 * tex.Stride, ((y0 + 1) % h) * tex.Stride}
	cols := [2]int{x0 * 4, ((x0 + 1) % w) * 4}
	weights := [4]float32{(1 - dx) * (1 - dy), dx * (1 - dy), (1 - dx) * dy, dx * dy}

	var acc [4]float32
	for n, wt := range weights {
		off := rows[n/2] + cols[n%2]
		for k := range acc {
			acc[k] += float32(tex.Pix[off+k]) * wt
		}
	}
	return uint8(acc[0] + 0.5), uint8(acc[1] + 0.5), uint8(acc[2] + 0.5), uint8(acc[3] + 0.5)
}

// averageColor is the mean opaque color of a texture, used by flat renders.
func averageColor(tex *image.NRGBA) [4]uint8 {
	n := len(tex.Pix) / 4
	if n == 0 {
		return untextured
	}

	var sum [3]uint64
	for i := 0; i < len(tex.Pix); i += 4 {
		sum[0] += uint64(tex.Pix[i])
		sum[1] += uint64(tex.Pix[i+1])
		sum[2] += uint64(tex.Pix[i+2])
	}
	half := uint64(n) / 2
	return [4]uint8{
		uint8((sum[0] + half) / uint64(n)),
		uint8((sum[1] + half) / uint64(n)),
		uint8((sum[2] + half) / uint64(n)),
		255,
	}
}
