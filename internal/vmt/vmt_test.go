package vmt

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bsp-map-loader/internal/asset"
)

func files(m map[string]string) Fetcher {
	return func(name string) ([]byte, error) {
		if s, ok := m[name]; ok {
			return []byte(s), nil
		}
		return nil, asset.ErrNotFound
	}
}

func mustParse(t *testing.T, s string) *Material {
	t.Helper()
	m, err := Parse([]byte(s))
	require.NoError(t, err)
	return m
}

func TestParseAccessors(t *testing.T) {
	m := mustParse(t, `"VertexLitGeneric"
{
	"$BaseTexture" "models/props/crate"
	"$normalmap" "models/props/crate_normal"
	"$alphatest" "1"
	"$alphatestreference" ".5"
	"$surfaceprop" "Glass"
	"$color" "[1 0.5 0]"
	"Proxies" { "Sine" { } }
}`)
	assert.Equal(t, "vertexlitgeneric", m.Shader)

	tex, ok := m.BaseTexture()
	assert.True(t, ok)
	assert.Equal(t, "models/props/crate", tex)

	bump, ok := m.BumpMap()
	assert.True(t, ok)
	assert.Equal(t, "models/props/crate_normal", bump)

	cut, ok := m.AlphaTest()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, cut, 1e-6)

	assert.True(t, m.Translucent(), "glass surfaces are translucent")

	c, ok := m.Color()
	assert.True(t, ok)
	assert.Equal(t, [3]uint8{255, 128, 0}, c)

	assert.Contains(t, m.Blocks, "proxies")
	assert.False(t, m.IsWater())
}

func TestAlphaTestDefaultCutoff(t *testing.T) {
	m := mustParse(t, `"LightmappedGeneric" { "$basetexture" "a" "$alphatest" 1 }`)
	cut, ok := m.AlphaTest()
	assert.True(t, ok)
	assert.Equal(t, float32(1.0), cut)

	m = mustParse(t, `"LightmappedGeneric" { "$basetexture" "a" "$alphatest" 0 }`)
	_, ok = m.AlphaTest()
	assert.False(t, ok)
}

func TestColorByteForm(t *testing.T) {
	m := mustParse(t, `"UnlitGeneric" { "$color" "{10 20 300}" }`)
	c, ok := m.Color()
	assert.True(t, ok)
	assert.Equal(t, [3]uint8{10, 20, 255}, c)
}

func TestBaseTextureTransform(t *testing.T) {
	m := mustParse(t, `"LightmappedGeneric" { "$basetexturetransform" "center .5 .5 scale 2 2 rotate 45 translate 0 .25" }`)
	tt, ok := m.BaseTextureTransform()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{2, 2}, tt.Scale)
	assert.Equal(t, float32(45), tt.Rotate)
	assert.Equal(t, mgl32.Vec2{0, 0.25}, tt.Translate)

	m = mustParse(t, `"LightmappedGeneric" { "$basetexturetransform" "center .5 .5 scale 1 1 rotate 0 translate 0 0" }`)
	_, ok = m.BaseTextureTransform()
	assert.False(t, ok, "identity transform is dropped")
}

func TestParseNoRoot(t *testing.T) {
	_, err := Parse([]byte(`"key" "value"`))
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestResolvePatch(t *testing.T) {
	fetch := files(map[string]string{
		"materials/base.vmt": `"LightmappedGeneric" { "$basetexture" "base/tex" "$surfaceprop" "metal" }`,
		"materials/mid.vmt": `"patch" { "include" "materials/base.vmt"
			"insert" { "$translucent" 1 } }`,
	})
	m := mustParse(t, `"Patch"
{
	"include" "Materials\Mid.vmt"
	"replace" { "$basetexture" "top/tex" }
}`)

	out, err := Resolve("materials/top.vmt", m, fetch)
	require.NoError(t, err)
	assert.Equal(t, "lightmappedgeneric", out.Shader)
	tex, _ := out.BaseTexture()
	assert.Equal(t, "top/tex", tex)
	assert.True(t, out.Translucent())
	assert.Equal(t, "metal", out.SurfaceProp())
}

func TestResolveSelfCycle(t *testing.T) {
	self := `"patch" { "include" "materials/self.vmt" }`
	m := mustParse(t, self)
	_, err := Resolve("materials/self.vmt", m, files(map[string]string{"materials/self.vmt": self}))
	assert.ErrorIs(t, err, ErrPatchCycle)
}

func TestResolveIndirectCycle(t *testing.T) {
	fetch := files(map[string]string{
		"materials/a.vmt": `"patch" { "include" "materials/b.vmt" }`,
		"materials/b.vmt": `"patch" { "include" "materials/a.vmt" }`,
	})
	m := mustParse(t, `"patch" { "include" "materials/a.vmt" }`)
	_, err := Resolve("materials/start.vmt", m, fetch)
	assert.ErrorIs(t, err, ErrPatchCycle)
}

func TestResolveDepth(t *testing.T) {
	chain := map[string]string{}
	for i := 0; i < MaxPatchDepth+4; i++ {
		chain[name(i)] = `"patch" { "include" "` + name(i+1) + `" }`
	}
	m := mustParse(t, chain[name(0)])
	_, err := Resolve(name(0), m, files(chain))
	assert.ErrorIs(t, err, ErrPatchDepth)
}

func TestResolveMissingInclude(t *testing.T) {
	m := mustParse(t, `"patch" { "include" "materials/gone.vmt" }`)
	_, err := Resolve("materials/x.vmt", m, files(nil))
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func name(i int) string {
	return "materials/chain" + string(rune('a'+i)) + ".vmt"
}
