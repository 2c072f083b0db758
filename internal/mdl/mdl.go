// Package mdl reads rigid studio models from their three sections: the
// model header (.mdl), vertex data (.vvd) and strip indices (.vtx).
package mdl

import (
	"github.com/pkg/errors"

	"bsp-map-loader/internal/binread"
)

const (
	MagicMDL = "IDST"

	textureSize  = 64
	bodyPartSize = 16
	modelSize    = 148
	meshSize     = 116
	vertexStride = 48
)

// Header is the studio header of a .mdl section.
type Header struct {
	Version      int32
	Checksum     int32
	Name         string
	Flags        int32
	NumSkinRef   int
	NumSkinFams  int
	NumBodyParts int
}

// StudioMesh binds a run of model vertices to a material slot.
type StudioMesh struct {
	Material     int
	NumVertices  int
	VertexOffset int
}

// StudioModel is one variant of a body part.
type StudioModel struct {
	Name        string
	NumVertices int
	// VertexStart is the index of the first vertex in the vertex section.
	VertexStart int
	Meshes      []StudioMesh
}

type BodyPart struct {
	Name   string
	Models []StudioModel
}

// MDL is the parsed .mdl section.
type MDL struct {
	Header
	Textures    []string
	SearchPaths []string
	// Skins maps [family][slot] to a texture index.
	Skins     [][]int16
	BodyParts []BodyPart
}

func ParseMDL(data []byte) (*MDL, error) {
	if len(data) < 240 || string(data[:4]) != MagicMDL {
		return nil, errors.New("mdl: bad header")
	}

	r := binread.At(data, 4)
	m := &MDL{}
	m.Version = r.I32()
	m.Checksum = r.I32()
	m.Name = r.Str(64)
	r.Seek(152)
	m.Flags = r.I32()

	r.Seek(204)
	numTextures, textureIndex := int(r.I32()), int(r.I32())
	numCD, cdIndex := int(r.I32()), int(r.I32())
	m.NumSkinRef = int(r.I32())
	m.NumSkinFams = int(r.I32())
	skinIndex := int(r.I32())
	m.NumBodyParts = int(r.I32())
	bodyPartIndex := int(r.I32())
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "mdl: header")
	}
	if err := checkTable(data, "textures", textureIndex, numTextures, textureSize); err != nil {
		return nil, err
	}
	if err := checkTable(data, "search paths", cdIndex, numCD, 4); err != nil {
		return nil, err
	}
	if err := checkTable(data, "skins", skinIndex, m.NumSkinFams*m.NumSkinRef, 2); err != nil {
		return nil, err
	}
	if err := checkTable(data, "body parts", bodyPartIndex, m.NumBodyParts, bodyPartSize); err != nil {
		return nil, err
	}

	m.Textures = make([]string, numTextures)
	for i := range m.Textures {
		at := textureIndex + i*textureSize
		nameOff := int(binread.At(data, at).I32())
		m.Textures[i] = binread.CString(data, at+nameOff)
	}

	m.SearchPaths = make([]string, numCD)
	for i := range m.SearchPaths {
		off := int(binread.At(data, cdIndex+i*4).I32())
		m.SearchPaths[i] = binread.CString(data, off)
	}

	r.Seek(skinIndex)
	m.Skins = make([][]int16, m.NumSkinFams)
	for f := range m.Skins {
		row := make([]int16, m.NumSkinRef)
		for s := range row {
			row[s] = r.I16()
		}
		m.Skins[f] = row
	}

	m.BodyParts = make([]BodyPart, m.NumBodyParts)
	for i := range m.BodyParts {
		bp, err := parseBodyPart(data, bodyPartIndex+i*bodyPartSize)
		if err != nil {
			return nil, errors.Wrapf(err, "mdl: body part %d", i)
		}
		m.BodyParts[i] = bp
	}
	return m, nil
}

func checkTable(data []byte, what string, off, count, stride int) error {
	if count < 0 || count > len(data) {
		return errors.Errorf("mdl: %s count %d", what, count)
	}
	if count == 0 {
		return nil
	}
	if _, err := binread.Slice(data, off, count*stride); err != nil {
		return errors.Wrapf(err, "mdl: %s", what)
	}
	return nil
}

func parseBodyPart(data []byte, at int) (BodyPart, error) {
	r := binread.At(data, at)
	nameOff := int(r.I32())
	numModels := int(r.I32())
	r.Skip(4) // base
	modelIndex := int(r.I32())
	if err := checkTable(data, "models", at+modelIndex, numModels, modelSize); err != nil {
		return BodyPart{}, err
	}

	bp := BodyPart{Name: binread.CString(data, at+nameOff), Models: make([]StudioModel, numModels)}
	for i := range bp.Models {
		mAt := at + modelIndex + i*modelSize
		mr := binread.At(data, mAt)
		sm := StudioModel{Name: mr.Str(64)}
		mr.Skip(8) // type, bounding radius
		numMeshes := int(mr.I32())
		meshIndex := int(mr.I32())
		sm.NumVertices = int(mr.I32())
		sm.VertexStart = int(mr.I32()) / vertexStride
		if err := checkTable(data, "meshes", mAt+meshIndex, numMeshes, meshSize); err != nil {
			return BodyPart{}, err
		}

		sm.Meshes = make([]StudioMesh, numMeshes)
		for k := range sm.Meshes {
			me := binread.At(data, mAt+meshIndex+k*meshSize)
			material := int(me.I32())
			me.Skip(4) // model index
			numVerts := int(me.I32())
			vertexOffset := int(me.I32())
			sm.Meshes[k] = StudioMesh{Material: material, NumVertices: numVerts, VertexOffset: vertexOffset}
		}
		bp.Models[i] = sm
	}
	return bp, nil
}
