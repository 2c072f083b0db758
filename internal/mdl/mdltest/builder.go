// Package mdltest writes minimal studio model sections for tests.
package mdltest

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/mdl"
)

// Mesh is a triangle list with counter-clockwise Triangles.
type Mesh struct {
	Material  int
	Vertices  []mdl.Vertex
	Tangents  []mgl32.Vec4
	Triangles []uint32
}

// Model describes a single body part with one model.
type Model struct {
	Name        string
	Checksum    int32
	Textures    []string
	SearchPaths []string
	Skins       [][]int16
	Meshes      []Mesh
}

type buf []byte

func (b buf) putI32(off int, v int32)   { binary.LittleEndian.PutUint32(b[off:], uint32(v)) }
func (b buf) putI16(off int, v int16)   { binary.LittleEndian.PutUint16(b[off:], uint16(v)) }
func (b buf) putF32(off int, v float32) { binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v)) }
func (b buf) putVec(off int, v ...float32) {
	for i, x := range v {
		b.putF32(off+i*4, x)
	}
}

// MDL writes the header section.
func (m Model) MDL() []byte {
	const headerSize = 408
	texOff := headerSize
	cdOff := texOff + len(m.Textures)*64
	skinOff := cdOff + len(m.SearchPaths)*4
	refs := 0
	if len(m.Skins) > 0 {
		refs = len(m.Skins[0])
	}
	bpOff := skinOff + len(m.Skins)*refs*2
	bpOff = (bpOff + 3) &^ 3
	modelOff := bpOff + 16
	meshOff := modelOff + 148
	strOff := meshOff + len(m.Meshes)*116

	var strs []byte
	addStr := func(s string) int {
		at := strOff + len(strs)
		strs = append(strs, s...)
		strs = append(strs, 0)
		return at
	}

	b := buf(make([]byte, strOff))
	copy(b, mdl.MagicMDL)
	b.putI32(4, 48)
	b.putI32(8, m.Checksum)
	copy(b[12:76], m.Name)
	b.putI32(204, int32(len(m.Textures)))
	b.putI32(208, int32(texOff))
	b.putI32(212, int32(len(m.SearchPaths)))
	b.putI32(216, int32(cdOff))
	b.putI32(220, int32(refs))
	b.putI32(224, int32(len(m.Skins)))
	b.putI32(228, int32(skinOff))
	b.putI32(232, 1)
	b.putI32(236, int32(bpOff))

	for i, t := range m.Textures {
		at := texOff + i*64
		b.putI32(at, int32(addStr(t)-at))
	}
	for i, p := range m.SearchPaths {
		b.putI32(cdOff+i*4, int32(addStr(p)))
	}
	for f, row := range m.Skins {
		for s, v := range row {
			b.putI16(skinOff+(f*refs+s)*2, v)
		}
	}

	b.putI32(bpOff, int32(addStr("body")-bpOff))
	b.putI32(bpOff+4, 1)
	b.putI32(bpOff+8, 1)
	b.putI32(bpOff+12, int32(modelOff-bpOff))

	copy(b[modelOff:modelOff+64], "model")
	total := 0
	for _, me := range m.Meshes {
		total += len(me.Vertices)
	}
	b.putI32(modelOff+72, int32(len(m.Meshes)))
	b.putI32(modelOff+76, int32(meshOff-modelOff))
	b.putI32(modelOff+80, int32(total))
	b.putI32(modelOff+84, 0)

	offset := 0
	for k, me := range m.Meshes {
		at := meshOff + k*116
		b.putI32(at, int32(me.Material))
		b.putI32(at+8, int32(len(me.Vertices)))
		b.putI32(at+12, int32(offset))
		offset += len(me.Vertices)
	}
	return append(b, strs...)
}

// VVD writes the vertex section.
func (m Model) VVD() []byte {
	var verts []mdl.Vertex
	var tangents []mgl32.Vec4
	for _, me := range m.Meshes {
		verts = append(verts, me.Vertices...)
		for i := range me.Vertices {
			t := mgl32.Vec4{1, 0, 0, 1}
			if i < len(me.Tangents) {
				t = me.Tangents[i]
			}
			tangents = append(tangents, t)
		}
	}

	const header = 64
	vertStart := header
	tanStart := vertStart + len(verts)*48
	b := buf(make([]byte, tanStart+len(tangents)*16))
	copy(b, mdl.MagicVVD)
	b.putI32(4, 4)
	b.putI32(8, m.Checksum)
	b.putI32(12, 1)
	b.putI32(16, int32(len(verts)))
	b.putI32(56, int32(vertStart))
	b.putI32(60, int32(tanStart))
	for i, v := range verts {
		at := vertStart + i*48
		b.putF32(at, 1)
		b[at+15] = 1
		b.putVec(at+16, v.Position[0], v.Position[1], v.Position[2])
		b.putVec(at+28, v.Normal[0], v.Normal[1], v.Normal[2])
		b.putVec(at+40, v.UV[0], v.UV[1])
	}
	for i, t := range tangents {
		b.putVec(tanStart+i*16, t[0], t[1], t[2], t[3])
	}
	return b
}

// VTX writes the strip section with one triangle-list strip per mesh.
// Triangles are stored clockwise as the engine expects.
func (m Model) VTX() []byte {
	const (
		bodyPart = 36
		model    = bodyPart + 8
		lod      = model + 8
		meshes   = lod + 12
	)
	groups := meshes + len(m.Meshes)*9
	data := groups + len(m.Meshes)*25

	b := buf(make([]byte, data))
	b.putI32(0, 7)
	b.putI32(16, m.Checksum)
	b.putI32(20, 1)
	b.putI32(28, 1)
	b.putI32(32, bodyPart)
	b.putI32(bodyPart, 1)
	b.putI32(bodyPart+4, model-bodyPart)
	b.putI32(model, 1)
	b.putI32(model+4, lod-model)
	b.putI32(lod, int32(len(m.Meshes)))
	b.putI32(lod+4, meshes-lod)

	for k, me := range m.Meshes {
		mAt := meshes + k*9
		gAt := groups + k*25
		b.putI32(mAt, 1)
		b.putI32(mAt+4, int32(gAt-mAt))

		vertAt := len(b)
		for i := range me.Vertices {
			v := make(buf, 9)
			v.putI16(4, int16(i))
			b = append(b, v...)
		}
		indexAt := len(b)
		for i := 0; i+2 < len(me.Triangles); i += 3 {
			for _, x := range []uint32{me.Triangles[i], me.Triangles[i+2], me.Triangles[i+1]} {
				b = binary.LittleEndian.AppendUint16(b, uint16(x))
			}
		}
		stripAt := len(b)
		strip := make(buf, 27)
		strip.putI32(0, int32(len(me.Triangles)))
		strip.putI32(8, int32(len(me.Vertices)))
		strip[18] = 0x01
		b = append(b, strip...)

		b.putI32(gAt, int32(len(me.Vertices)))
		b.putI32(gAt+4, int32(vertAt-gAt))
		b.putI32(gAt+8, int32(len(me.Triangles)))
		b.putI32(gAt+12, int32(indexAt-gAt))
		b.putI32(gAt+16, 1)
		b.putI32(gAt+20, int32(stripAt-gAt))
	}
	return b
}

// Files returns the three sections keyed by provider names derived from
// path, which must end in ".mdl".
func (m Model) Files(path string) map[string][]byte {
	base := strings.TrimSuffix(path, ".mdl")
	return map[string][]byte{
		base + ".mdl":      m.MDL(),
		base + ".vvd":      m.VVD(),
		base + ".dx90.vtx": m.VTX(),
	}
}

// Quad returns a unit square in the XY plane facing +Z as two triangles.
func Quad(material int) Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return Mesh{
		Material: material,
		Vertices: []mdl.Vertex{
			{Position: mgl32.Vec3{0, 0, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{1, 1, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0, 1, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
		},
		Triangles: []uint32{0, 1, 2, 0, 2, 3},
	}
}
