package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-8

func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// FlatNormals fills Normals from triangle winding. A triangle list gets one
// normal per triangle on all three corners; an indexed mesh gets area
// weighted vertex normals.
func FlatNormals(m *Mesh) {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		n := faceNormal(m.Positions[a], m.Positions[b], m.Positions[c])
		if m.Indices == nil {
			n = normalize(n)
			normals[a], normals[b], normals[c] = n, n, n
			continue
		}
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	if m.Indices != nil {
		for i := range normals {
			normals[i] = normalize(normals[i])
		}
	}
	m.Normals = normals
}

// Tangents fills Tangents from positions, normals and UVs using per-triangle
// UV derivatives. W holds the bitangent handedness. Meshes without UVs or
// normals are left untouched.
func Tangents(m *Mesh) {
	n := len(m.Positions)
	if len(m.UVs) != n || len(m.Normals) != n {
		return
	}
	tan := make([]mgl32.Vec3, n)
	bitan := make([]mgl32.Vec3, n)
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		d1 := m.UVs[b].Sub(m.UVs[a])
		d2 := m.UVs[c].Sub(m.UVs[a])
		det := d1[0]*d2[1] - d2[0]*d1[1]
		if det > -epsilon && det < epsilon {
			continue
		}
		r := 1 / det
		s := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
		t := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
		for _, v := range [3]uint32{a, b, c} {
			tan[v] = tan[v].Add(s)
			bitan[v] = bitan[v].Add(t)
		}
	}

	out := make([]mgl32.Vec4, n)
	for i := range out {
		nrm := m.Normals[i]
		t := normalize(tan[i].Sub(nrm.Mul(nrm.Dot(tan[i]))))
		if t == (mgl32.Vec3{}) {
			t = anyPerpendicular(nrm)
		}
		w := float32(1)
		if nrm.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		out[i] = t.Vec4(w)
	}
	m.Tangents = out
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return normalize(axis.Sub(n.Mul(n.Dot(axis))))
}
