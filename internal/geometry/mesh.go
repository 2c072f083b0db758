// Package geometry holds the renderer-facing records produced by the loader.
package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NoMaterial marks a primitive that has no material table entry.
const NoMaterial = -1

// Mesh is a structure-of-arrays triangle mesh in output space. A nil Indices
// slice means Positions is a plain triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Tangents  []mgl32.Vec4
	Indices   []uint32
}

// Primitive is one drawable unit: a mesh, its model transform and a material
// table index.
type Primitive struct {
	Name      string
	Mesh      Mesh
	Transform mgl32.Mat4
	Material  int
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) TriangleCount() int {
	if m.Indices != nil {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	if m.Indices != nil {
		return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	}
	base := uint32(3 * i)
	return base, base + 1, base + 2
}

// Bounds returns the axis-aligned bounds of the positions. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	if len(m.Positions) == 0 {
		return lo, hi, false
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi, true
}
