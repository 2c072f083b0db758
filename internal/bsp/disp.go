package bsp

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Displacement is the tessellated grid of a displaced face.
type Displacement struct {
	Side int
	// Base holds the undisplaced grid positions used for texture mapping.
	Base []mgl32.Vec3
	// Positions holds the displaced grid positions, row-major.
	Positions []mgl32.Vec3
	// Indices lists grid triangles wound to face the same way as the
	// face plane normal under a right-handed cross product.
	Indices []uint32
}

// Displacement builds the grid for a displaced face. The face polygon must
// be a quad; its corners are rotated so that the first one is closest to
// the start position of the displacement.
func (f *File) Displacement(face int) (*Displacement, error) {
	if !f.IsDisplacement(face) {
		return nil, errors.Errorf("bsp: face %d has no displacement", face)
	}
	info := f.DispInfos[f.Faces[face].DispInfo]
	if info.Power < 2 || info.Power > 4 {
		return nil, errors.Wrapf(ErrCorrupt, "face %d: displacement power %d", face, info.Power)
	}

	corners, err := f.FaceVertices(face)
	if err != nil {
		return nil, err
	}
	if len(corners) != 4 {
		return nil, errors.Wrapf(ErrCorrupt, "face %d: displacement on %d-gon", face, len(corners))
	}

	first, best := 0, float32(-1)
	for i, c := range corners {
		if d := c.Sub(info.StartPosition).LenSqr(); best < 0 || d < best {
			first, best = i, d
		}
	}
	var c [4]mgl32.Vec3
	for i := range c {
		c[i] = corners[(first+i)%4]
	}

	side := info.Side()
	start := int(info.DispVertStart)
	if start < 0 || start+side*side > len(f.DispVerts) {
		return nil, errors.Wrapf(ErrCorrupt, "face %d: displacement vertices out of range", face)
	}

	d := &Displacement{
		Side:      side,
		Base:      make([]mgl32.Vec3, 0, side*side),
		Positions: make([]mgl32.Vec3, 0, side*side),
	}
	step := 1 / float32(side-1)
	for row := 0; row < side; row++ {
		t := float32(row) * step
		left := lerp(c[0], c[1], t)
		right := lerp(c[3], c[2], t)
		for col := 0; col < side; col++ {
			base := lerp(left, right, float32(col)*step)
			dv := f.DispVerts[start+row*side+col]
			d.Base = append(d.Base, base)
			d.Positions = append(d.Positions, base.Add(dv.Vector.Mul(dv.Dist)))
		}
	}

	normal := f.FaceNormal(face)
	d.Indices = make([]uint32, 0, (side-1)*(side-1)*6)
	emit := func(a, b, e int) {
		n := d.Base[b].Sub(d.Base[a]).Cross(d.Base[e].Sub(d.Base[a]))
		if n.Dot(normal) < 0 {
			b, e = e, b
		}
		d.Indices = append(d.Indices, uint32(a), uint32(b), uint32(e))
	}
	for row := 0; row < side-1; row++ {
		for col := 0; col < side-1; col++ {
			a := row*side + col
			b := a + 1
			cc := a + side
			dd := cc + 1
			// alternate the diagonal like the engine does
			if (row+col)%2 == 0 {
				emit(a, cc, dd)
				emit(a, dd, b)
			} else {
				emit(a, cc, b)
				emit(b, cc, dd)
			}
		}
	}
	return d, nil
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
