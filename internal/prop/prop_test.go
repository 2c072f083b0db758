package prop

import (
	"bytes"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/bsp"
	"bsp-map-loader/internal/bsp/bsptest"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/mathutil"
	"bsp-map-loader/internal/mdl"
	"bsp-map-loader/internal/mdl/mdltest"
)

func crate() mdltest.Model {
	return mdltest.Model{
		Name:        "props/crate.mdl",
		Textures:    []string{"crate", "crate_red"},
		SearchPaths: []string{"models/props/"},
		Skins:       [][]int16{{0}, {1}},
		Meshes:      []mdltest.Mesh{mdltest.Quad(0)},
	}
}

// ramp is a single triangle whose native normal is (1, 0, 1)/sqrt(2).
func ramp() mdltest.Model {
	n := mgl32.Vec3{1, 0, 1}.Normalize()
	return mdltest.Model{
		Name:     "props/ramp.mdl",
		Textures: []string{"ramp"},
		Meshes: []mdltest.Mesh{{
			Vertices: []mdl.Vertex{
				{Position: mgl32.Vec3{0, 0, 0}, Normal: n},
				{Position: mgl32.Vec3{1, 0, -1}, Normal: n, UV: mgl32.Vec2{1, 0}},
				{Position: mgl32.Vec3{0, 1, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
			},
			Triangles: []uint32{0, 1, 2},
		}},
	}
}

func newResolver(t *testing.T, logs *bytes.Buffer, models map[string]mdltest.Model) (*Resolver, *material.Table) {
	t.Helper()
	fsys := fstest.MapFS{}
	for path, m := range models {
		for name, data := range m.Files(path) {
			fsys[name] = &fstest.MapFile{Data: data}
		}
	}
	d, err := asset.NewDir(fsys)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(logs, nil))
	table := material.NewTable()
	return NewResolver(d, table, logger), table
}

// windingNormal is the normal implied by a triangle's counter-clockwise order.
func windingNormal(m geometry.Mesh, tri int) mgl32.Vec3 {
	a, b, c := m.Triangle(tri)
	return m.Positions[b].Sub(m.Positions[a]).Cross(m.Positions[c].Sub(m.Positions[a])).Normalize()
}

func TestResolveNonUniformScaleNormals(t *testing.T) {
	var logs bytes.Buffer
	r, _ := newResolver(t, &logs, map[string]mdltest.Model{"models/props/ramp.mdl": ramp()})

	prims := r.ResolveAll([]Placement{{Model: "models/props/ramp.mdl", Scale: mgl32.Vec3{2, 1, 1}}}, 1)
	require.Len(t, prims, 1)

	m := prims[0].Mesh
	want := mathutil.ConvertDirection(mgl32.Vec3{1, 0, 2}.Normalize())
	face := windingNormal(m, 0)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Dot(want), 1e-5)
		assert.InDelta(t, 1, n.Dot(face), 1e-5)
	}
	assert.Equal(t, mgl32.Ident4(), prims[0].Transform)
}

func TestResolveMirroredFlipsWinding(t *testing.T) {
	var logs bytes.Buffer
	r, _ := newResolver(t, &logs, map[string]mdltest.Model{"models/props/crate.mdl": crate()})

	prims := r.ResolveAll([]Placement{{Model: "models/props/crate.mdl", Scale: mgl32.Vec3{-1, 1, 1}}}, 1)
	require.Len(t, prims, 1)

	m := prims[0].Mesh
	require.Equal(t, 2, m.TriangleCount())
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, _, _ := m.Triangle(tri)
		assert.InDelta(t, 1, windingNormal(m, tri).Dot(m.Normals[a]), 1e-5)
	}
	for _, tg := range m.Tangents {
		assert.InDelta(t, 0, tg.Vec3().Dot(m.Normals[0]), 1e-5)
	}
}

func TestResolveTranslatesAndRotates(t *testing.T) {
	var logs bytes.Buffer
	r, _ := newResolver(t, &logs, map[string]mdltest.Model{"models/props/crate.mdl": crate()})

	origin := mgl32.Vec3{100, 50, 10}
	prims := r.ResolveAll([]Placement{{
		Model:  "models/props/crate.mdl",
		Origin: origin,
		Angles: mathutil.QAngle{Yaw: 90},
		Scale:  mgl32.Vec3{1, 1, 1},
	}}, 1)
	require.Len(t, prims, 1)

	m := prims[0].Mesh
	// vertex 1 is native (1, 0, 0), which yaw 90 turns to (0, 1, 0)
	want := mathutil.Convert(origin.Add(mgl32.Vec3{0, 1, 0}))
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want[k], m.Positions[1][k], 1e-5)
	}
	assert.Equal(t, mgl32.Vec2{1, 0}, m.UVs[1])
}

func TestResolveSkins(t *testing.T) {
	var logs bytes.Buffer
	r, table := newResolver(t, &logs, map[string]mdltest.Model{"models/props/crate.mdl": crate()})

	prims := r.ResolveAll([]Placement{
		{Model: "models/props/crate.mdl", Skin: 1},
		{Model: "models/props/crate.mdl", Skin: 7},
		{Model: "models/props/crate.mdl"},
	}, 2)
	require.Len(t, prims, 3)

	keys := table.Keys()
	require.Len(t, keys, 2)
	red := material.NewKey("crate_red", []string{"models/props/"})
	plain := material.NewKey("crate", []string{"models/props/"})
	assert.Equal(t, red, keys[prims[0].Material])
	assert.Equal(t, plain, keys[prims[1].Material])
	assert.Equal(t, prims[1].Material, prims[2].Material)
	assert.Contains(t, logs.String(), "invalid skin index")
}

func TestResolveSlotOutOfRange(t *testing.T) {
	m := crate()
	m.Skins = nil
	m.Meshes = []mdltest.Mesh{mdltest.Quad(5)}

	var logs bytes.Buffer
	r, table := newResolver(t, &logs, map[string]mdltest.Model{"models/props/crate.mdl": m})

	prims := r.ResolveAll([]Placement{{Model: "models/props/crate.mdl"}}, 1)
	require.Len(t, prims, 1)
	assert.Equal(t, geometry.NoMaterial, prims[0].Material)
	assert.Equal(t, 0, table.Len())
}

func TestResolveSkipsBrokenModels(t *testing.T) {
	var logs bytes.Buffer
	r, _ := newResolver(t, &logs, map[string]mdltest.Model{"models/props/crate.mdl": crate()})

	prims := r.ResolveAll([]Placement{
		{Model: "models/props/missing.mdl"},
		{Model: ""},
		{Model: "models/props/crate.mdl"},
		{Model: "models/props/missing.mdl"},
	}, 4)
	require.Len(t, prims, 1)
	assert.Equal(t, "props/crate.mdl#0", prims[0].Name)
	assert.Contains(t, logs.String(), "failed to load model")
	assert.Contains(t, logs.String(), "models/props/missing.mdl")
}

func TestFromLevel(t *testing.T) {
	b := bsptest.New()
	b.AddFace(bsptest.Face{
		Texture:  "A",
		Vertices: []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
		Normal:   mgl32.Vec3{0, 0, 1},
	})
	b.AddModel(0, 1)
	b.SetStaticProps(10, []bsptest.StaticProp{
		{Model: "models/a.mdl", Origin: mgl32.Vec3{1, 2, 3}, Angles: mgl32.Vec3{10, 20, 30}, Skin: 1},
	})
	b.Entities = `{
"classname" "prop_dynamic"
"model" "models/b.mdl"
"modelscale" "2"
"angles" "0 45 0"
}`
	f, err := bsp.Parse(b.Bytes())
	require.NoError(t, err)
	ents, err := f.ParseEntities()
	require.NoError(t, err)

	placements, err := FromLevel(f, ents)
	require.NoError(t, err)
	require.Len(t, placements, 2)

	assert.Equal(t, Placement{
		Model:  "models/a.mdl",
		Origin: mgl32.Vec3{1, 2, 3},
		Angles: mathutil.QAngle{Pitch: 10, Yaw: 20, Roll: 30},
		Scale:  mgl32.Vec3{1, 1, 1},
		Skin:   1,
	}, placements[0])
	assert.Equal(t, "models/b.mdl", placements[1].Model)
	assert.Equal(t, mathutil.QAngle{Yaw: 45}, placements[1].Angles)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, placements[1].Scale)
}
