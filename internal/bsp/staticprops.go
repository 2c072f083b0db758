package bsp

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/binread"
)

// GameLumpStaticProps is the id of the static prop game lump ("sprp").
const GameLumpStaticProps = 's'<<24 | 'p'<<16 | 'r'<<8 | 'p'

// GameLump is an entry of the game lump directory. Offset is absolute.
type GameLump struct {
	ID      int32
	Flags   uint16
	Version uint16
	Offset  int
	Length  int
}

func (f *File) readGameLumps() error {
	b, err := f.Lump(LumpGame)
	if err != nil || len(b) == 0 {
		return err
	}
	r := binread.New(b)
	n := int(r.I32())
	if n < 0 || n*16 > len(b)-4 {
		return errors.Wrapf(ErrCorrupt, "game lump count %d", n)
	}
	f.GameLumps = make([]GameLump, n)
	for i := range f.GameLumps {
		f.GameLumps[i] = GameLump{
			ID:      r.I32(),
			Flags:   r.U16(),
			Version: r.U16(),
			Offset:  int(r.I32()),
			Length:  int(r.I32()),
		}
	}
	return r.Err()
}

// StaticProp is a model placement baked into the level.
type StaticProp struct {
	Model  string
	Origin mgl32.Vec3
	// Angles holds pitch, yaw and roll in degrees.
	Angles mgl32.Vec3
	Skin   int
	Flags  uint8
	Scale  float32
}

var staticPropSizes = map[uint16]int{
	4: 56, 5: 60, 6: 64, 7: 68, 8: 68, 9: 72, 10: 76, 11: 80,
}

// StaticProps decodes the static prop game lump. A level without one has
// no static props.
func (f *File) StaticProps() ([]StaticProp, error) {
	var gl *GameLump
	for i := range f.GameLumps {
		if f.GameLumps[i].ID == GameLumpStaticProps {
			gl = &f.GameLumps[i]
			break
		}
	}
	if gl == nil {
		return nil, nil
	}

	b, err := binread.Slice(f.data, gl.Offset, gl.Length)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "static props: %v", err)
	}
	r := binread.New(b)

	names := int(r.I32())
	if names < 0 || names*128 > len(b) {
		return nil, errors.Wrapf(ErrCorrupt, "static props: %d model names", names)
	}
	dict := make([]string, names)
	for i := range dict {
		dict[i] = r.Str(128)
	}
	leaves := int(r.I32())
	r.Skip(leaves * 2)
	count := int(r.I32())
	if err := r.Err(); err != nil || count < 0 {
		return nil, errors.Wrapf(ErrCorrupt, "static props v%d header", gl.Version)
	}
	if count == 0 {
		return nil, nil
	}

	stride, ok := staticPropSizes[gl.Version]
	remaining := len(b) - r.Offset()
	if !ok || stride*count > remaining {
		if remaining%count != 0 || remaining/count < 56 {
			return nil, errors.Wrapf(ErrCorrupt, "static props v%d: %d bytes for %d props", gl.Version, remaining, count)
		}
		stride = remaining / count
	}

	base := r.Offset()
	out := make([]StaticProp, count)
	for i := range out {
		pr := binread.At(b, base+i*stride)
		p := StaticProp{Scale: 1}
		p.Origin = pr.Vec3()
		p.Angles = pr.Vec3()
		propType := int(pr.U16())
		pr.Skip(5) // first leaf, leaf count, solid
		p.Flags = pr.U8()
		p.Skin = int(pr.I32())
		if gl.Version >= 11 && stride >= 80 {
			pr.Seek(base + i*stride + 76)
			if s := pr.F32(); s > 0 {
				p.Scale = s
			}
		}
		if err := pr.Err(); err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "static prop %d", i)
		}
		if propType >= len(dict) {
			return nil, errors.Wrapf(ErrCorrupt, "static prop %d: model %d of %d", i, propType, len(dict))
		}
		p.Model = dict[propType]
		out[i] = p
	}
	return out, nil
}
