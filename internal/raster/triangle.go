package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode selects how texel alpha is treated.
type BlendMode int

const (
	// BlendOpaque ignores texel alpha.
	BlendOpaque BlendMode = iota
	// BlendMask discards texels below the cutoff.
	BlendMask
	// BlendAlpha composites over the frame without writing depth.
	BlendAlpha
)

// ScreenVertex is a projected vertex: pixel position, depth (larger is
// closer) and texture coordinate.
type ScreenVertex struct {
	X, Y, Z float32
	UV      mgl32.Vec2
}

// Surface is the per-primitive shading state.
type Surface struct {
	Texture *image.NRGBA
	Tint    [4]uint8
	Mode    BlendMode
	Cutoff  uint8
}

// RasterizeTriangle fills one flat-shaded triangle.
//
// This is the hot path: no allocation inside the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]ScreenVertex, s *Surface, shade float32, lc *LightConfig) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := max(int(min(x0, x1, x2)), 0)
	maxX := min(int(max(x0, x1, x2))+1, fb.Width-1)
	minY := max(int(min(y0, y1, y2)), 0)
	maxY := min(int(max(y0, y1, y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float32(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float32(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := s.Tint[0], s.Tint[1], s.Tint[2], s.Tint[3]
			if s.Texture != nil {
				u := w0*v[0].UV[0] + w1*v[1].UV[0] + w2*v[2].UV[0]
				t := w0*v[0].UV[1] + w1*v[1].UV[1] + w2*v[2].UV[1]
				tr, tg, tb, ta := SampleTexture(s.Texture, u, t)
				cr = modulate(tr, s.Tint[0])
				cg = modulate(tg, s.Tint[1])
				cb = modulate(tb, s.Tint[2])
				ca = modulate(ta, s.Tint[3])
			}

			switch s.Mode {
			case BlendOpaque:
				ca = 255
			case BlendMask:
				if ca < s.Cutoff {
					continue
				}
				ca = 255
			case BlendAlpha:
				if ca < 8 {
					continue
				}
			}

			r := lc.encode(cr, shade)
			g := lc.encode(cg, shade)
			b := lc.encode(cb, shade)

			px := zIdx * 4
			if s.Mode == BlendAlpha {
				a := float32(ca) / 255
				fb.Color[px] = clamp255(float32(r)*a + float32(fb.Color[px])*(1-a))
				fb.Color[px+1] = clamp255(float32(g)*a + float32(fb.Color[px+1])*(1-a))
				fb.Color[px+2] = clamp255(float32(b)*a + float32(fb.Color[px+2])*(1-a))
				fb.Color[px+3] = max(fb.Color[px+3], ca)
				continue
			}

			fb.ZBuf[zIdx] = z
			fb.Color[px] = r
			fb.Color[px+1] = g
			fb.Color[px+2] = b
			fb.Color[px+3] = 255
		}
	}
}

func modulate(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}
