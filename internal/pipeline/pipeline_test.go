package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/bsp"
	"bsp-map-loader/internal/bsp/bsptest"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/mdl/mdltest"
)

var up = mgl32.Vec3{0, 0, 1}

func square(x, y, size float32) []mgl32.Vec3 {
	return []mgl32.Vec3{{x, y, 0}, {x, y + size, 0}, {x + size, y + size, 0}, {x + size, y, 0}}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pak(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func encoded(t *testing.T, encode func(io.Writer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func level(t *testing.T) []byte {
	t.Helper()
	return levelWithTexture(t, pngBytes(t))
}

func levelWithTexture(t *testing.T, wall []byte) []byte {
	t.Helper()
	b := bsptest.New()
	b.AddFace(bsptest.Face{Texture: "BRICK/WALL01", Vertices: square(0, 0, 64), Normal: up})
	b.AddFace(bsptest.Face{Texture: "TOOLS/TOOLSNODRAW", Flags: bsp.SurfNoDraw, Vertices: square(64, 0, 64), Normal: up})
	b.AddFace(bsptest.Face{Texture: "BRICK/WALL01", Vertices: square(128, 0, 64), Normal: up})
	b.AddModel(0, 3)
	b.SetStaticProps(10, []bsptest.StaticProp{
		{Model: "models/props/crate.mdl", Origin: mgl32.Vec3{32, 32, 0}},
		{Model: "models/props/missing.mdl"},
	})
	b.Entities = `{
"classname" "worldspawn"
}
{
"classname" "prop_dynamic"
"model" "models/props/crate.mdl"
"skin" "9"
}`
	b.Pak = pak(t, map[string][]byte{
		"materials/brick/wall01.vmt": []byte(`"LightmappedGeneric" { "$basetexture" "brick/wall01" }`),
		"materials/brick/wall01.vtf": wall,
	})
	return b.Bytes()
}

func gameDir(t *testing.T, extra map[string][]byte) asset.Provider {
	t.Helper()
	crate := mdltest.Model{
		Name:        "props/crate.mdl",
		Textures:    []string{"crate"},
		SearchPaths: []string{"models/props/"},
		Meshes:      []mdltest.Mesh{mdltest.Quad(0)},
	}
	fsys := fstest.MapFS{}
	for name, data := range crate.Files("models/props/crate.mdl") {
		fsys[name] = &fstest.MapFile{Data: data}
	}
	for name, data := range extra {
		fsys[name] = &fstest.MapFile{Data: data}
	}
	d, err := asset.NewDir(fsys)
	require.NoError(t, err)
	return d
}

func TestLoad(t *testing.T) {
	var logs bytes.Buffer
	var done, total int
	res, err := Load(context.Background(), level(t), gameDir(t, nil), Options{
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
		Workers:  2,
		Progress: func(d, n int, _ float64) { done, total = d, n },
	})
	require.NoError(t, err)

	require.Len(t, res.World, 1)
	assert.Equal(t, "BRICK/WALL01", res.World[0].Name)
	assert.Len(t, res.World[0].Mesh.Positions, 12)

	// two crate placements; the missing model is skipped
	require.Len(t, res.Props, 2)
	assert.Equal(t, res.Props[0].Material, res.Props[1].Material)

	require.Len(t, res.Materials, 2)
	require.Len(t, res.Keys, 2)
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)

	wall := res.Materials[res.World[0].Material]
	assert.False(t, wall.Fallback)
	require.NotNil(t, wall.Texture)
	assert.Equal(t, 2, wall.Texture.Width)

	crate := res.Materials[res.Props[0].Material]
	assert.True(t, crate.Fallback)

	out := logs.String()
	assert.Contains(t, out, "failed to load model")
	assert.Contains(t, out, "failed to load material")
	assert.Contains(t, out, "invalid skin index")
}

func TestLoadPrefersPakfile(t *testing.T) {
	// a loose copy without a base texture would fail
	res, err := Load(context.Background(), level(t), gameDir(t, map[string][]byte{
		"materials/brick/wall01.vmt": []byte(`"LightmappedGeneric" {}`),
	}), Options{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	require.NoError(t, err)
	assert.False(t, res.Materials[res.World[0].Material].Fallback)
}

func TestLoadFatalErrors(t *testing.T) {
	ctx := context.Background()
	p := gameDir(t, nil)

	_, err := Load(ctx, []byte("not a level"), p, Options{})
	assert.ErrorIs(t, err, bsp.ErrCorrupt)

	b := bsptest.New()
	b.AddFace(bsptest.Face{Texture: "A", Vertices: square(0, 0, 64), Normal: up})
	_, err = Load(ctx, b.Bytes(), p, Options{})
	assert.ErrorIs(t, err, bsp.ErrNoWorldModel)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Load(cancelled, level(t), p, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMap(t *testing.T) {
	p := gameDir(t, map[string][]byte{"maps/cp_test.bsp": level(t)})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	res, err := LoadMap(context.Background(), "cp_test", p, Options{Logger: logger})
	require.NoError(t, err)
	assert.Len(t, res.World, 1)

	_, err = LoadMap(context.Background(), "cp_missing", p, Options{Logger: logger})
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func TestLoadMaterialIndicesInRange(t *testing.T) {
	res, err := Load(context.Background(), level(t), gameDir(t, nil), Options{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	for _, prims := range [][]geometry.Primitive{res.World, res.Props} {
		for _, p := range prims {
			assert.GreaterOrEqual(t, p.Material, 0)
			assert.Less(t, p.Material, len(res.Materials))
		}
	}
}

func TestLoadLooseTextureFormats(t *testing.T) {
	formats := map[string]func(io.Writer, image.Image) error{
		"png":  png.Encode,
		"bmp":  bmp.Encode,
		"tga":  tga.Encode,
		"jpeg": func(w io.Writer, img image.Image) error { return jpeg.Encode(w, img, nil) },
	}
	for name, encode := range formats {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			res, err := Load(context.Background(), levelWithTexture(t, encoded(t, encode)), gameDir(t, nil), Options{
				Logger: slog.New(slog.NewTextHandler(&logs, nil)),
			})
			require.NoError(t, err)

			wall := res.Materials[res.World[0].Material]
			assert.False(t, wall.Fallback)
			require.NotNil(t, wall.Texture)
			assert.Equal(t, 4, wall.Texture.Width)
			assert.Equal(t, 2, wall.Texture.Height)
			assert.NotContains(t, logs.String(), "material=brick/wall01")
		})
	}
}

func TestLoadLogsOneLinePerFailure(t *testing.T) {
	var logs bytes.Buffer
	_, err := Load(context.Background(), level(t), gameDir(t, nil), Options{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		assert.True(t, strings.HasPrefix(line, "time="), "unexpected continuation line %q", line)
	}
}
