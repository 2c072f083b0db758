// Package raster draws loaded level geometry into preview images with a
// flat-shaded software rasterizer.
package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/mathutil"
	"bsp-map-loader/internal/postprocess"
)

// Scene is a set of primitives and the material list they index.
type Scene struct {
	Primitives []geometry.Primitive
	Materials  []material.Descriptor
}

// Options controls a preview render.
type Options struct {
	Width, Height int
	Supersample   int
	View          View
	Light         *LightConfig
	// Flat replaces each texture with its average color.
	Flat bool
}

var untextured = [4]uint8{160, 160, 170, 255}

func surfaceFor(d material.Descriptor, flat bool) Surface {
	s := Surface{Tint: d.Color}
	if d.Texture != nil {
		s.Texture = d.Texture.Image()
	}
	if flat && s.Texture != nil {
		avg := averageColor(s.Texture)
		for k := range s.Tint {
			s.Tint[k] = modulate(s.Tint[k], avg[k])
		}
		s.Texture = nil
	}
	switch {
	case d.AlphaTest != nil:
		s.Mode = BlendMask
		s.Cutoff = clamp255(*d.AlphaTest * 255)
	case d.Translucent:
		s.Mode = BlendAlpha
	}
	if s.Texture == nil && d.Fallback {
		s.Mode = BlendOpaque
	}
	return s
}

// worldPositions applies the primitive transform to its positions.
func worldPositions(p *geometry.Primitive) []mgl32.Vec3 {
	if p.Transform == mgl32.Ident4() || p.Transform == (mgl32.Mat4{}) {
		return p.Mesh.Positions
	}
	out := make([]mgl32.Vec3, len(p.Mesh.Positions))
	for i, v := range p.Mesh.Positions {
		out[i] = mathutil.TransformPoint(p.Transform, v)
	}
	return out
}

// Render draws the scene fitted to the frame. Opaque and masked primitives
// are drawn first, translucent ones last.
func Render(scene Scene, opts Options) *image.NRGBA {
	if opts.Width <= 0 {
		opts.Width = 512
	}
	if opts.Height <= 0 {
		opts.Height = opts.Width
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	lc := DefaultLightConfig()
	if opts.Light != nil {
		lc = *opts.Light
	}

	rot := opts.View.Matrix()
	positions := make([][]mgl32.Vec3, len(scene.Primitives))
	var bounds geometry.Mesh
	for i := range scene.Primitives {
		positions[i] = worldPositions(&scene.Primitives[i])
		for _, p := range positions[i] {
			bounds.Positions = append(bounds.Positions, rot.Mul3x1(p))
		}
	}

	w, h := opts.Width*opts.Supersample, opts.Height*opts.Supersample
	fb := NewFrameBuffer(w, h)
	lo, hi, ok := bounds.Bounds()
	if !ok {
		return postprocess.Downsample(fb.Image(), opts.Width, opts.Height)
	}
	proj := newProjection(rot, lo, hi, w, h, 8*opts.Supersample)

	surfaces := make([]*Surface, len(scene.Materials))
	surface := func(idx int) *Surface {
		if idx < 0 || idx >= len(surfaces) {
			return &Surface{Tint: untextured}
		}
		if surfaces[idx] == nil {
			s := surfaceFor(scene.Materials[idx], opts.Flat)
			surfaces[idx] = &s
		}
		return surfaces[idx]
	}

	for pass := 0; pass < 2; pass++ {
		for i := range scene.Primitives {
			prim := &scene.Primitives[i]
			s := surface(prim.Material)
			if (s.Mode == BlendAlpha) != (pass == 1) {
				continue
			}
			drawMesh(fb, &prim.Mesh, positions[i], s, proj, &lc)
		}
	}

	return postprocess.Downsample(fb.Image(), opts.Width, opts.Height)
}

func drawMesh(fb *FrameBuffer, m *geometry.Mesh, pos []mgl32.Vec3, s *Surface, proj projection, lc *LightConfig) {
	hasUV := len(m.UVs) == len(pos)
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		if int(max(a, b, c)) >= len(pos) {
			continue
		}

		normal := pos[b].Sub(pos[a]).Cross(pos[c].Sub(pos[a]))
		if normal.Len() < 1e-12 {
			continue
		}
		shade := lc.Shade(normal.Normalize())

		var v [3]ScreenVertex
		for k, idx := range [3]uint32{a, b, c} {
			v[k].X, v[k].Y, v[k].Z = proj.project(pos[idx])
			if hasUV {
				v[k].UV = m.UVs[idx]
			}
		}
		RasterizeTriangle(fb, v, s, shade, lc)
	}
}
