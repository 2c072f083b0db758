package mdl_test

import (
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/mdl"
	"bsp-map-loader/internal/mdl/mdltest"
)

func crate() mdltest.Model {
	second := mdltest.Quad(1)
	for i := range second.Vertices {
		second.Vertices[i].Position = second.Vertices[i].Position.Add(mgl32.Vec3{0, 0, 5})
	}
	return mdltest.Model{
		Name:        "props/crate.mdl",
		Checksum:    1234,
		Textures:    []string{"crate", "crate_lid", "crate_red"},
		SearchPaths: []string{"models/props/", "models/shared/"},
		Skins:       [][]int16{{0, 1}, {2, 1}},
		Meshes:      []mdltest.Mesh{mdltest.Quad(0), second},
	}
}

func provider(t *testing.T, files map[string][]byte) asset.Provider {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: data}
	}
	d, err := asset.NewDir(fsys)
	require.NoError(t, err)
	return d
}

func TestParseSections(t *testing.T) {
	m := crate()

	hdr, err := mdl.ParseMDL(m.MDL())
	require.NoError(t, err)
	assert.Equal(t, int32(1234), hdr.Checksum)
	assert.Equal(t, "props/crate.mdl", hdr.Name)
	assert.Equal(t, []string{"crate", "crate_lid", "crate_red"}, hdr.Textures)
	assert.Equal(t, []string{"models/props/", "models/shared/"}, hdr.SearchPaths)
	assert.Equal(t, [][]int16{{0, 1}, {2, 1}}, hdr.Skins)
	require.Len(t, hdr.BodyParts, 1)
	require.Len(t, hdr.BodyParts[0].Models, 1)
	assert.Equal(t, []mdl.StudioMesh{
		{Material: 0, NumVertices: 4, VertexOffset: 0},
		{Material: 1, NumVertices: 4, VertexOffset: 4},
	}, hdr.BodyParts[0].Models[0].Meshes)

	vvd, err := mdl.ParseVVD(m.VVD())
	require.NoError(t, err)
	require.Len(t, vvd.Vertices, 8)
	assert.Equal(t, mgl32.Vec3{1, 1, 5}, vvd.Vertices[6].Position)
	assert.Equal(t, mgl32.Vec2{1, 1}, vvd.Vertices[6].UV)
	require.Len(t, vvd.Tangents, 8)

	vtx, err := mdl.ParseVTX(m.VTX())
	require.NoError(t, err)
	require.Len(t, vtx.BodyParts, 1)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, vtx.BodyParts[0].Models[0].Meshes[1].Indices)
}

func TestLoadAssemblesModel(t *testing.T) {
	p := provider(t, crate().Files("models/props/crate.mdl"))

	model, err := mdl.Load(p, "Models\\Props\\Crate.mdl")
	require.NoError(t, err)
	require.Len(t, model.Meshes, 2)
	assert.Equal(t, 1, model.Meshes[1].Material)
	assert.Equal(t, float32(5), model.Meshes[1].Vertices[0].Position[2])
	assert.Len(t, model.Meshes[1].Tangents, 4)

	// counter-clockwise seen from +Z
	me := model.Meshes[0]
	for i := 0; i < len(me.Indices); i += 3 {
		a := me.Vertices[me.Indices[i]].Position
		b := me.Vertices[me.Indices[i+1]].Position
		c := me.Vertices[me.Indices[i+2]].Position
		assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Z(), float32(0))
	}
}

func TestLoadFallsBackToPlainVTX(t *testing.T) {
	files := crate().Files("models/a.mdl")
	files["models/a.vtx"] = files["models/a.dx90.vtx"]
	delete(files, "models/a.dx90.vtx")

	_, err := mdl.Load(provider(t, files), "models/a.mdl")
	assert.NoError(t, err)
}

func TestLoadChecksumMismatch(t *testing.T) {
	files := crate().Files("models/a.mdl")
	other := crate()
	other.Checksum = 99
	files["models/a.vvd"] = other.VVD()

	_, err := mdl.Load(provider(t, files), "models/a.mdl")
	assert.ErrorIs(t, err, mdl.ErrChecksum)
}

func TestLoadMissingSections(t *testing.T) {
	files := crate().Files("models/a.mdl")
	delete(files, "models/a.dx90.vtx")
	_, err := mdl.Load(provider(t, files), "models/a.mdl")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	_, err = mdl.Load(provider(t, nil), "models/none.mdl")
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func TestParseGarbage(t *testing.T) {
	_, err := mdl.ParseMDL([]byte("IDST"))
	assert.Error(t, err)
	_, err = mdl.ParseVVD([]byte("nope"))
	assert.Error(t, err)
	_, err = mdl.ParseVTX(make([]byte, 40))
	assert.Error(t, err)

	m := crate().MDL()
	truncated := m[:300]
	_, err = mdl.ParseMDL(truncated)
	assert.Error(t, err)
}

func TestSkinTables(t *testing.T) {
	p := provider(t, crate().Files("models/a.mdl"))
	model, err := mdl.Load(p, "models/a.mdl")
	require.NoError(t, err)
	assert.Equal(t, 2, model.SkinCount())

	skin, ok := model.SkinTable(1)
	require.True(t, ok)
	name, ok := skin.Texture(0)
	assert.True(t, ok)
	assert.Equal(t, "crate_red", name)
	name, _ = skin.Texture(1)
	assert.Equal(t, "crate_lid", name)
	_, ok = skin.Texture(5)
	assert.False(t, ok)

	_, ok = model.SkinTable(2)
	assert.False(t, ok)
	_, ok = model.SkinTable(-1)
	assert.False(t, ok)
}

func TestIdentitySkinTable(t *testing.T) {
	model := &mdl.Model{Textures: []string{"a", "b"}}
	assert.Equal(t, 1, model.SkinCount())
	skin, ok := model.SkinTable(0)
	require.True(t, ok)
	name, _ := skin.Texture(1)
	assert.Equal(t, "b", name)
}

func TestSiblingPaths(t *testing.T) {
	vvd, vtx := mdl.SiblingPaths("Models/Props/Crate.MDL")
	assert.Equal(t, "models/props/crate.vvd", vvd)
	assert.Equal(t, []string{"models/props/crate.dx90.vtx", "models/props/crate.vtx"}, vtx)
}
