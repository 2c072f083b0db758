package bsp

import "github.com/go-gl/mathgl/mgl32"

// Lump indices used by the reader.
const (
	LumpEntities           = 0
	LumpPlanes             = 1
	LumpTexData            = 2
	LumpVertexes           = 3
	LumpTexInfo            = 6
	LumpFaces              = 7
	LumpEdges              = 12
	LumpSurfEdges          = 13
	LumpModels             = 14
	LumpDispInfo           = 26
	LumpDispVerts          = 33
	LumpGame               = 35
	LumpPakfile            = 40
	LumpTexDataStringData  = 43
	LumpTexDataStringTable = 44

	NumLumps   = 64
	HeaderSize = 8 + NumLumps*16 + 4
)

// Record sizes.
const (
	planeSize    = 20
	texDataSize  = 32
	vertexSize   = 12
	texInfoSize  = 72
	faceSize     = 56
	edgeSize     = 4
	surfEdgeSize = 4
	modelSize    = 48
	dispInfoSize = 176
	dispVertSize = 20
)

// Texinfo flags of surfaces that are never drawn as level geometry.
const (
	SurfSky2D   = 0x2
	SurfSky     = 0x4
	SurfTrigger = 0x40
	SurfNoDraw  = 0x80
	SurfHint    = 0x100
	SurfSkip    = 0x200

	SurfHidden = SurfSky2D | SurfSky | SurfTrigger | SurfNoDraw | SurfHint | SurfSkip
)

type Lump struct {
	Offset  int
	Length  int
	Version int32
	FourCC  [4]byte
}

type Header struct {
	Version  int32
	Lumps    [NumLumps]Lump
	Revision int32
}

type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
	Type   int32
}

type TexData struct {
	Reflectivity mgl32.Vec3
	NameID       int32
	Width        int32
	Height       int32
	ViewWidth    int32
	ViewHeight   int32
}

// TexInfo maps surface points to texture space. Each vector is (axis, offset).
type TexInfo struct {
	TextureVecs  [2]mgl32.Vec4
	LightmapVecs [2]mgl32.Vec4
	Flags        int32
	TexData      int32
}

type Face struct {
	Plane     uint16
	Side      uint8
	OnNode    uint8
	FirstEdge int32
	NumEdges  int16
	TexInfo   int16
	DispInfo  int16
	FogID     int16
	Styles    [4]uint8
	LightOfs  int32
	Area      float32
	OrigFace  int32
	Smoothing uint32
}

type Edge [2]uint16

type Model struct {
	Mins      mgl32.Vec3
	Maxs      mgl32.Vec3
	Origin    mgl32.Vec3
	HeadNode  int32
	FirstFace int32
	NumFaces  int32
}

type DispInfo struct {
	StartPosition mgl32.Vec3
	DispVertStart int32
	DispTriStart  int32
	Power         int32
	MinTess       int32
	SmoothAngle   float32
	Contents      int32
	MapFace       uint16
}

// Side is the number of vertices along one edge of the displacement grid.
func (d DispInfo) Side() int {
	return 1<<d.Power + 1
}

type DispVert struct {
	Vector mgl32.Vec3
	Dist   float32
	Alpha  float32
}
