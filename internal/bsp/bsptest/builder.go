// Package bsptest assembles small level containers in memory for tests.
package bsptest

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/bsp"
)

// Face describes one surface. Vertices is the polygon loop as stored in
// the container; Normal is the plane normal.
type Face struct {
	Texture  string
	Flags    int32
	Vertices []mgl32.Vec3
	Normal   mgl32.Vec3
	// Texture axes (xyz, offset) and size; zero values map world X/Y at
	// one texel per unit on a 64x64 texture.
	S, T          mgl32.Vec4
	Width, Height int32
	Disp          *Disp
}

// Disp describes a displacement on a quad face.
type Disp struct {
	Power         int32
	StartPosition mgl32.Vec3
	// Offsets holds one displacement vector per grid vertex, row-major.
	Offsets []mgl32.Vec3
}

type StaticProp struct {
	Model  string
	Origin mgl32.Vec3
	Angles mgl32.Vec3
	Skin   int32
	Scale  float32
}

type Builder struct {
	Entities string
	Pak      []byte

	faces       []Face
	models      [][2]int32
	propVersion uint16
	props       []StaticProp
}

func New() *Builder {
	return &Builder{}
}

// AddFace appends a face and returns its index.
func (b *Builder) AddFace(f Face) int {
	b.faces = append(b.faces, f)
	return len(b.faces) - 1
}

// AddModel appends a model spanning count faces starting at first.
func (b *Builder) AddModel(first, count int) int {
	b.models = append(b.models, [2]int32{int32(first), int32(count)})
	return len(b.models) - 1
}

// SetStaticProps writes a static prop game lump of the given version.
func (b *Builder) SetStaticProps(version uint16, props []StaticProp) {
	b.propVersion = version
	b.props = props
}

type writer []byte

func (w *writer) u8(v uint8) { *w = append(*w, v) }
func (w *writer) u16(v uint16) { *w = binary.LittleEndian.AppendUint16(*w, v) }
func (w *writer) i16(v int16) { w.u16(uint16(v)) }
func (w *writer) u32(v uint32) { *w = binary.LittleEndian.AppendUint32(*w, v) }
func (w *writer) i32(v int32) { w.u32(uint32(v)) }
func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w *writer) pad(n int) { *w = append(*w, make([]byte, n)...) }
func (w *writer) vec3(v mgl32.Vec3) {
	for _, x := range v {
		w.f32(x)
	}
}

func (w *writer) vec4(v mgl32.Vec4) {
	for _, x := range v {
		w.f32(x)
	}
}

func (w *writer) str(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	*w = append(*w, b...)
}

// Bytes lays out the container.
func (b *Builder) Bytes() []byte {
	var lumps [bsp.NumLumps]writer

	names := map[string]int32{}
	var strData, strTable writer
	var vertexes, edges, surfEdges, planes, texinfos, texdatas, faces, dispInfos, dispVerts writer
	vertexCount, edgeCount, dispVertCount := 0, 1, 0
	edges.u16(0)
	edges.u16(0) // edge 0 cannot be referenced with a sign
	dispCount := 0

	for i, f := range b.faces {
		id, ok := names[f.Texture]
		if !ok {
			id = int32(len(names))
			names[f.Texture] = id
			strTable.i32(int32(len(strData)))
			strData = append(strData, f.Texture...)
			strData.u8(0)
		}

		w, h := f.Width, f.Height
		if w == 0 {
			w = 64
		}
		if h == 0 {
			h = 64
		}
		texdatas.vec3(mgl32.Vec3{0.5, 0.5, 0.5})
		texdatas.i32(id)
		texdatas.i32(w)
		texdatas.i32(h)
		texdatas.i32(w)
		texdatas.i32(h)

		s, t := f.S, f.T
		if s == (mgl32.Vec4{}) && t == (mgl32.Vec4{}) {
			s, t = mgl32.Vec4{1, 0, 0, 0}, mgl32.Vec4{0, 1, 0, 0}
		}
		texinfos.vec4(s)
		texinfos.vec4(t)
		texinfos.vec4(mgl32.Vec4{})
		texinfos.vec4(mgl32.Vec4{})
		texinfos.i32(f.Flags)
		texinfos.i32(int32(i))

		planes.vec3(f.Normal)
		planes.f32(f.Normal.Dot(firstOr(f.Vertices)))
		planes.i32(0)

		firstEdge := len(surfEdges) / 4
		for k, v := range f.Vertices {
			vertexes.vec3(v)
			next := vertexCount + (k+1)%len(f.Vertices)
			edges.u16(uint16(vertexCount + k))
			edges.u16(uint16(next))
			// alternate signs to exercise both edge directions
			if k%2 == 0 {
				surfEdges.i32(int32(edgeCount))
			} else {
				edges = edges[:len(edges)-4]
				edges.u16(uint16(next))
				edges.u16(uint16(vertexCount + k))
				surfEdges.i32(-int32(edgeCount))
			}
			edgeCount++
		}
		vertexCount += len(f.Vertices)

		disp := int16(-1)
		if f.Disp != nil {
			disp = int16(dispCount)
			dispCount++
			dispInfos.vec3(f.Disp.StartPosition)
			dispInfos.i32(int32(dispVertCount))
			dispInfos.i32(0)
			dispInfos.i32(f.Disp.Power)
			dispInfos.pad(176 - 24)
			for _, o := range f.Disp.Offsets {
				l := o.Len()
				dir := mgl32.Vec3{}
				if l > 0 {
					dir = o.Mul(1 / l)
				}
				dispVerts.vec3(dir)
				dispVerts.f32(l)
				dispVerts.f32(1)
			}
			dispVertCount += len(f.Disp.Offsets)
		}

		faces.u16(uint16(i))
		faces.u8(0)
		faces.u8(0)
		faces.i32(int32(firstEdge))
		faces.i16(int16(len(f.Vertices)))
		faces.i16(int16(i))
		faces.i16(disp)
		faces.i16(-1)
		faces.pad(4)
		faces.i32(-1)
		faces.f32(0)
		faces.pad(16)
		faces.i32(int32(i))
		faces.pad(4)
		faces.u32(0)
	}

	var models writer
	for _, m := range b.models {
		models.vec3(mgl32.Vec3{})
		models.vec3(mgl32.Vec3{})
		models.vec3(mgl32.Vec3{})
		models.i32(0)
		models.i32(m[0])
		models.i32(m[1])
	}

	lumps[bsp.LumpEntities] = writer(b.Entities + "\x00")
	lumps[bsp.LumpPlanes] = planes
	lumps[bsp.LumpTexData] = texdatas
	lumps[bsp.LumpVertexes] = vertexes
	lumps[bsp.LumpTexInfo] = texinfos
	lumps[bsp.LumpFaces] = faces
	lumps[bsp.LumpEdges] = edges
	lumps[bsp.LumpSurfEdges] = surfEdges
	lumps[bsp.LumpModels] = models
	lumps[bsp.LumpDispInfo] = dispInfos
	lumps[bsp.LumpDispVerts] = dispVerts
	lumps[bsp.LumpPakfile] = b.Pak
	lumps[bsp.LumpTexDataStringData] = strData
	lumps[bsp.LumpTexDataStringTable] = strTable

	out := writer(make([]byte, bsp.HeaderSize))
	copy(out, bsp.Magic)
	binary.LittleEndian.PutUint32(out[4:], 20)

	place := func(i int, data []byte) {
		for len(out)%4 != 0 {
			out.u8(0)
		}
		binary.LittleEndian.PutUint32(out[8+i*16:], uint32(len(out)))
		binary.LittleEndian.PutUint32(out[8+i*16+4:], uint32(len(data)))
		out = append(out, data...)
	}
	for i := range lumps {
		if i == bsp.LumpGame {
			continue
		}
		place(i, lumps[i])
	}
	if b.props != nil {
		for len(out)%4 != 0 {
			out.u8(0)
		}
		place(bsp.LumpGame, b.gameLump(len(out)))
	}
	return out
}

func firstOr(vs []mgl32.Vec3) mgl32.Vec3 {
	if len(vs) == 0 {
		return mgl32.Vec3{}
	}
	return vs[0]
}

// gameLump builds the game lump directory with one sprp entry, for a lump
// starting at base.
func (b *Builder) gameLump(base int) []byte {
	var sprp writer
	dict := map[string]uint16{}
	var order []string
	for _, p := range b.props {
		if _, ok := dict[p.Model]; !ok {
			dict[p.Model] = uint16(len(order))
			order = append(order, p.Model)
		}
	}
	sprp.i32(int32(len(order)))
	for _, m := range order {
		sprp.str(m, 128)
	}
	sprp.i32(0) // leaves
	sprp.i32(int32(len(b.props)))

	sizes := map[uint16]int{4: 56, 5: 60, 6: 64, 7: 68, 8: 68, 9: 72, 10: 76, 11: 80}
	stride := sizes[b.propVersion]
	for _, p := range b.props {
		start := len(sprp)
		sprp.vec3(p.Origin)
		sprp.vec3(p.Angles)
		sprp.u16(dict[p.Model])
		sprp.pad(5)
		sprp.u8(0)
		sprp.i32(p.Skin)
		sprp.pad(stride - (len(sprp) - start))
		if b.propVersion >= 11 {
			binary.LittleEndian.PutUint32(sprp[start+76:], math.Float32bits(p.Scale))
		}
	}

	var out writer
	out.i32(1)
	out.i32(bsp.GameLumpStaticProps)
	out.u16(0)
	out.u16(b.propVersion)
	out.i32(int32(base + 4 + 16))
	out.i32(int32(len(sprp)))
	return append(out, sprp...)
}
