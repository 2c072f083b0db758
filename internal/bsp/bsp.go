// Package bsp reads compiled level containers: lump directory, surfaces,
// displacements, entities, static props and the embedded pakfile.
package bsp

import (
	"bytes"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/binread"
)

const Magic = "VBSP"

var (
	// ErrCorrupt marks an unreadable container.
	ErrCorrupt = errors.New("bsp: corrupt container")
	// ErrNoWorldModel is returned when the container has no models.
	ErrNoWorldModel = errors.New("bsp: no world model")
)

// File is a parsed level container.
type File struct {
	Header
	Entities  []byte
	Planes    []Plane
	TexData   []TexData
	Vertices  []mgl32.Vec3
	TexInfos  []TexInfo
	Faces     []Face
	Edges     []Edge
	SurfEdges []int32
	Models    []Model
	DispInfos []DispInfo
	DispVerts []DispVert
	// TexNames holds the texture name of each TexData entry.
	TexNames  []string
	GameLumps []GameLump

	data []byte
}

// Parse reads the header and the lumps needed for geometry extraction.
// Any lump outside the data is reported as ErrCorrupt.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize || string(data[:4]) != Magic {
		return nil, errors.Wrap(ErrCorrupt, "bad header")
	}

	f := &File{data: data}
	r := binread.At(data, 4)
	f.Version = r.I32()
	for i := range f.Lumps {
		l := &f.Lumps[i]
		l.Offset = int(r.I32())
		l.Length = int(r.I32())
		l.Version = r.I32()
		copy(l.FourCC[:], r.Bytes(4))
	}
	f.Revision = r.I32()

	var err error
	if f.Entities, err = f.Lump(LumpEntities); err != nil {
		return nil, err
	}
	f.Entities = bytes.TrimRight(f.Entities, "\x00")

	if f.Planes, err = readLump(f, LumpPlanes, planeSize, readPlane); err != nil {
		return nil, err
	}
	if f.TexData, err = readLump(f, LumpTexData, texDataSize, readTexData); err != nil {
		return nil, err
	}
	if f.Vertices, err = readLump(f, LumpVertexes, vertexSize, (*binread.Reader).Vec3); err != nil {
		return nil, err
	}
	if f.TexInfos, err = readLump(f, LumpTexInfo, texInfoSize, readTexInfo); err != nil {
		return nil, err
	}
	if f.Faces, err = readLump(f, LumpFaces, faceSize, readFace); err != nil {
		return nil, err
	}
	if f.Edges, err = readLump(f, LumpEdges, edgeSize, readEdge); err != nil {
		return nil, err
	}
	if f.SurfEdges, err = readLump(f, LumpSurfEdges, surfEdgeSize, (*binread.Reader).I32); err != nil {
		return nil, err
	}
	if f.Models, err = readLump(f, LumpModels, modelSize, readModel); err != nil {
		return nil, err
	}
	if f.DispInfos, err = readLump(f, LumpDispInfo, dispInfoSize, readDispInfo); err != nil {
		return nil, err
	}
	if f.DispVerts, err = readLump(f, LumpDispVerts, dispVertSize, readDispVert); err != nil {
		return nil, err
	}
	if err := f.readTexNames(); err != nil {
		return nil, err
	}
	if err := f.readGameLumps(); err != nil {
		return nil, err
	}
	return f, nil
}

// Lump returns the raw bytes of lump i.
func (f *File) Lump(i int) ([]byte, error) {
	l := f.Lumps[i]
	b, err := binread.Slice(f.data, l.Offset, l.Length)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "lump %d: %v", i, err)
	}
	if l.Length >= 4 && i != LumpPakfile && string(b[:4]) == "LZMA" {
		return nil, errors.Wrapf(ErrCorrupt, "lump %d: compressed lumps are not supported", i)
	}
	return b, nil
}

func readLump[T any](f *File, lump, stride int, read func(r *binread.Reader) T) ([]T, error) {
	b, err := f.Lump(lump)
	if err != nil {
		return nil, err
	}
	n := len(b) / stride
	out := make([]T, n)
	for i := range out {
		out[i] = read(binread.At(b, i*stride))
	}
	return out, nil
}

func readPlane(r *binread.Reader) Plane {
	return Plane{Normal: r.Vec3(), Dist: r.F32(), Type: r.I32()}
}

func readTexData(r *binread.Reader) TexData {
	return TexData{
		Reflectivity: r.Vec3(),
		NameID:       r.I32(),
		Width:        r.I32(),
		Height:       r.I32(),
		ViewWidth:    r.I32(),
		ViewHeight:   r.I32(),
	}
}

func readTexInfo(r *binread.Reader) TexInfo {
	return TexInfo{
		TextureVecs:  [2]mgl32.Vec4{r.Vec4(), r.Vec4()},
		LightmapVecs: [2]mgl32.Vec4{r.Vec4(), r.Vec4()},
		Flags:        r.I32(),
		TexData:      r.I32(),
	}
}

func readFace(r *binread.Reader) Face {
	var fc Face
	fc.Plane = r.U16()
	fc.Side = r.U8()
	fc.OnNode = r.U8()
	fc.FirstEdge = r.I32()
	fc.NumEdges = r.I16()
	fc.TexInfo = r.I16()
	fc.DispInfo = r.I16()
	fc.FogID = r.I16()
	copy(fc.Styles[:], r.Bytes(4))
	fc.LightOfs = r.I32()
	fc.Area = r.F32()
	r.Skip(16) // lightmap mins and size
	fc.OrigFace = r.I32()
	r.Skip(4) // primitives
	fc.Smoothing = r.U32()
	return fc
}

func readEdge(r *binread.Reader) Edge {
	return Edge{r.U16(), r.U16()}
}

func readModel(r *binread.Reader) Model {
	return Model{
		Mins:      r.Vec3(),
		Maxs:      r.Vec3(),
		Origin:    r.Vec3(),
		HeadNode:  r.I32(),
		FirstFace: r.I32(),
		NumFaces:  r.I32(),
	}
}

func readDispInfo(r *binread.Reader) DispInfo {
	var d DispInfo
	d.StartPosition = r.Vec3()
	d.DispVertStart = r.I32()
	d.DispTriStart = r.I32()
	d.Power = r.I32()
	d.MinTess = r.I32()
	d.SmoothAngle = r.F32()
	d.Contents = r.I32()
	d.MapFace = r.U16()
	return d
}

func readDispVert(r *binread.Reader) DispVert {
	return DispVert{Vector: r.Vec3(), Dist: r.F32(), Alpha: r.F32()}
}

func (f *File) readTexNames() error {
	table, err := readLump(f, LumpTexDataStringTable, 4, (*binread.Reader).I32)
	if err != nil {
		return err
	}
	strData, err := f.Lump(LumpTexDataStringData)
	if err != nil {
		return err
	}

	f.TexNames = make([]string, len(f.TexData))
	for i, td := range f.TexData {
		if td.NameID < 0 || int(td.NameID) >= len(table) {
			return errors.Wrapf(ErrCorrupt, "texdata %d: name index %d out of range", i, td.NameID)
		}
		f.TexNames[i] = binread.CString(strData, int(table[td.NameID]))
	}
	return nil
}

// WorldModel returns model 0.
func (f *File) WorldModel() (Model, error) {
	if len(f.Models) == 0 {
		return Model{}, ErrNoWorldModel
	}
	return f.Models[0], nil
}

// Pak opens the embedded pakfile. It returns nil when the lump is empty.
func (f *File) Pak() (*asset.Pak, error) {
	b, err := f.Lump(LumpPakfile)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	p, err := asset.OpenPak(b)
	if err != nil {
		return nil, errors.Wrap(err, "bsp: pakfile")
	}
	return p, nil
}
