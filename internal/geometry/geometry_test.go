package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() Mesh {
	// unit square in the XY plane, CCW seen from +Z
	return Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}},
	}
}

func TestFlatNormalsTriangleList(t *testing.T) {
	m := quad()
	FlatNormals(&m)
	require.Len(t, m.Normals, 6)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n[2], 1e-6)
	}
}

func TestFlatNormalsIndexed(t *testing.T) {
	m := Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	FlatNormals(&m)
	require.Len(t, m.Normals, 4)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n[2], 1e-6)
	}
}

func TestTangentsFollowU(t *testing.T) {
	m := quad()
	FlatNormals(&m)
	Tangents(&m)
	require.Len(t, m.Tangents, 6)
	for _, tg := range m.Tangents {
		assert.InDelta(t, 1, tg[0], 1e-6)
		assert.Equal(t, float32(1), tg[3])
	}

	// mirrored V flips handedness
	for i := range m.UVs {
		m.UVs[i][1] = 1 - m.UVs[i][1]
	}
	Tangents(&m)
	for _, tg := range m.Tangents {
		assert.Equal(t, float32(-1), tg[3])
	}
}

func TestTangentsDegenerateUV(t *testing.T) {
	m := quad()
	for i := range m.UVs {
		m.UVs[i] = mgl32.Vec2{}
	}
	FlatNormals(&m)
	Tangents(&m)
	for i, tg := range m.Tangents {
		assert.InDelta(t, 1, tg.Vec3().Len(), 1e-6)
		assert.InDelta(t, 0, tg.Vec3().Dot(m.Normals[i]), 1e-6)
	}
}

func TestTangentsNeedUVs(t *testing.T) {
	m := quad()
	m.UVs = nil
	FlatNormals(&m)
	Tangents(&m)
	assert.Nil(t, m.Tangents)
}

func TestBounds(t *testing.T) {
	var empty Mesh
	_, _, ok := empty.Bounds()
	assert.False(t, ok)

	a := Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {-2, 0, 0}, {0, 3, 0}, {0, 0, 4}},
		Indices:   []uint32{0, 1, 2, 3, 5, 4},
	}
	assert.Equal(t, 2, a.TriangleCount())

	lo, hi, ok := a.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 3, 4}, hi)
}
