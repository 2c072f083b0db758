package keyvalues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterial(t *testing.T) {
	doc := `// comment line
"LightmappedGeneric"
{
	"$basetexture" "brick/wall01"
	$surfaceprop concrete
	"$BaseTexture" "brick/wall02" // trailing comment
	"Proxies"
	{
		"AnimatedTexture" { "animatedtexturevar" "$basetexture" }
	}
}`
	nodes, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	root := nodes[0]
	assert.Equal(t, "LightmappedGeneric", root.Key)
	assert.True(t, root.Block)
	assert.Len(t, root.Children, 4)

	v, ok := root.Lookup("$basetexture")
	require.True(t, ok)
	assert.Equal(t, "brick/wall02", v, "last duplicate wins")

	v, ok = root.Lookup("$SurfaceProp")
	require.True(t, ok)
	assert.Equal(t, "concrete", v)

	proxies := root.Child("proxies")
	require.NotNil(t, proxies)
	assert.True(t, proxies.Block)
	_, ok = root.Lookup("proxies")
	assert.False(t, ok, "blocks are not scalars")
}

func TestParseEntityLump(t *testing.T) {
	doc := `{
"classname" "worldspawn"
}
{
"classname" "func_brush"
"model" "*3"
"origin" "1 2 3"
}
`
	nodes, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "", nodes[1].Key)
	model, _ := nodes[1].Lookup("model")
	assert.Equal(t, "*3", model)
}

func TestParseConditions(t *testing.T) {
	doc := `"VertexLitGeneric"
{
	"$basetexture" "console/tex" [$X360]
	"$basetexture" "pc/tex" [!$X360]
	"$envmap" "env_cubemap" [$WIN32||$OSX]
	"$detail" "console/detail" [$GAMECONSOLE]
}`
	nodes, err := Parse([]byte(doc))
	require.NoError(t, err)
	root := nodes[0]
	assert.Len(t, root.Children, 2)
	v, _ := root.Lookup("$basetexture")
	assert.Equal(t, "pc/tex", v)
	_, ok := root.Lookup("$detail")
	assert.False(t, ok)
}

func TestParseEmptyValue(t *testing.T) {
	nodes, err := Parse([]byte(`"a" { "b" "" }`))
	require.NoError(t, err)
	v, ok := nodes[0].Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unclosed block": `"a" { "b" "c"`,
		"stray close":    `"a" "b" }`,
		"missing value":  `"a"`,
		"unterminated":   `"a" "b`,
		"close as value": `"a" { "b" }`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
