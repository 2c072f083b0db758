package vmt

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureTransform is a parsed $basetexturetransform.
type TextureTransform struct {
	Center    mgl32.Vec2
	Scale     mgl32.Vec2
	Rotate    float32
	Translate mgl32.Vec2
}

// DefaultTextureTransform is the identity transform.
var DefaultTextureTransform = TextureTransform{
	Center: mgl32.Vec2{0.5, 0.5},
	Scale:  mgl32.Vec2{1, 1},
}

// BaseTextureTransform parses "center x y scale x y rotate r translate x y".
// Missing components keep their identity values. Returns false when the
// parameter is absent, malformed or the identity.
func (m *Material) BaseTextureTransform() (TextureTransform, bool) {
	v, ok := m.Param("$basetexturetransform")
	if !ok {
		return TextureTransform{}, false
	}
	t, err := parseTextureTransform(v)
	if err != nil || t == DefaultTextureTransform {
		return TextureTransform{}, false
	}
	return t, true
}

func parseTextureTransform(s string) (TextureTransform, error) {
	t := DefaultTextureTransform
	fields := strings.Fields(strings.ToLower(s))

	readVec := func(i int) (mgl32.Vec2, int, error) {
		if i >= len(fields) {
			return mgl32.Vec2{}, i, strconv.ErrSyntax
		}
		x, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, i, err
		}
		// a single scale value applies to both axes
		if i+1 >= len(fields) {
			return mgl32.Vec2{float32(x), float32(x)}, i + 1, nil
		}
		y, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return mgl32.Vec2{float32(x), float32(x)}, i + 1, nil
		}
		return mgl32.Vec2{float32(x), float32(y)}, i + 2, nil
	}

	for i := 0; i < len(fields); {
		var err error
		switch fields[i] {
		case "center":
			t.Center, i, err = readVec(i + 1)
		case "scale":
			t.Scale, i, err = readVec(i + 1)
		case "translate":
			t.Translate, i, err = readVec(i + 1)
		case "rotate":
			if i+1 >= len(fields) {
				return t, strconv.ErrSyntax
			}
			var r float64
			r, err = strconv.ParseFloat(fields[i+1], 32)
			t.Rotate = float32(r)
			i += 2
		default:
			return t, strconv.ErrSyntax
		}
		if err != nil {
			return t, err
		}
	}
	return t, nil
}
