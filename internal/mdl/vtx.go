package mdl

import (
	"github.com/pkg/errors"

	"bsp-map-loader/internal/binread"
)

// VTX structures are byte packed.
const (
	vtxHeaderSize     = 36
	vtxBodyPartSize   = 8
	vtxModelSize      = 8
	vtxLODSize        = 12
	vtxMeshSize       = 9
	vtxStripGroupSize = 25
	vtxVertexSize     = 9
	vtxStripSize      = 27

	stripTriList  = 0x01
	stripTriStrip = 0x02
)

// VTXMesh holds triangles of one mesh at LOD 0 as mesh-relative vertex
// indices, wound counter-clockwise.
type VTXMesh struct {
	Indices []uint32
}

type VTXModel struct {
	Meshes []VTXMesh
}

type VTXBodyPart struct {
	Models []VTXModel
}

// VTX is the parsed strip section.
type VTX struct {
	Version   int32
	Checksum  int32
	BodyParts []VTXBodyPart
}

// count reads a table count and offset at r and validates the table
// against data.
func count(data []byte, r *binread.Reader, base, stride int, what string) (int, int, error) {
	n := int(r.I32())
	off := base + int(r.I32())
	if err := r.Err(); err != nil {
		return 0, 0, errors.Wrapf(err, "vtx: %s", what)
	}
	if n < 0 || n > len(data) {
		return 0, 0, errors.Errorf("vtx: %s count %d", what, n)
	}
	if _, err := binread.Slice(data, off, n*stride); n > 0 && err != nil {
		return 0, 0, errors.Wrapf(err, "vtx: %s", what)
	}
	return n, off, nil
}

func ParseVTX(data []byte) (*VTX, error) {
	if len(data) < vtxHeaderSize {
		return nil, errors.New("vtx: bad header")
	}
	r := binread.New(data)
	v := &VTX{Version: r.I32()}
	if v.Version != 7 {
		return nil, errors.Errorf("vtx: unsupported version %d", v.Version)
	}
	r.Seek(16)
	v.Checksum = r.I32()
	r.Seek(28)
	numBodyParts, bodyPartOff, err := count(data, r, 0, vtxBodyPartSize, "body parts")
	if err != nil {
		return nil, err
	}

	v.BodyParts = make([]VTXBodyPart, numBodyParts)
	for b := range v.BodyParts {
		at := bodyPartOff + b*vtxBodyPartSize
		numModels, modelOff, err := count(data, binread.At(data, at), at, vtxModelSize, "models")
		if err != nil {
			return nil, err
		}
		models := make([]VTXModel, numModels)
		for m := range models {
			mAt := modelOff + m*vtxModelSize
			numLODs, lodOff, err := count(data, binread.At(data, mAt), mAt, vtxLODSize, "lods")
			if err != nil {
				return nil, err
			}
			if numLODs == 0 {
				continue
			}
			meshes, err := parseLOD(data, lodOff)
			if err != nil {
				return nil, errors.Wrapf(err, "body part %d model %d", b, m)
			}
			models[m].Meshes = meshes
		}
		v.BodyParts[b].Models = models
	}
	return v, nil
}

func parseLOD(data []byte, at int) ([]VTXMesh, error) {
	numMeshes, meshOff, err := count(data, binread.At(data, at), at, vtxMeshSize, "meshes")
	if err != nil {
		return nil, err
	}
	meshes := make([]VTXMesh, numMeshes)
	for k := range meshes {
		mAt := meshOff + k*vtxMeshSize
		numGroups, groupOff, err := count(data, binread.At(data, mAt), mAt, vtxStripGroupSize, "strip groups")
		if err != nil {
			return nil, err
		}
		for g := 0; g < numGroups; g++ {
			idx, err := parseStripGroup(data, groupOff+g*vtxStripGroupSize)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d strip group %d", k, g)
			}
			meshes[k].Indices = append(meshes[k].Indices, idx...)
		}
	}
	return meshes, nil
}

func parseStripGroup(data []byte, at int) ([]uint32, error) {
	r := binread.At(data, at)
	numVerts, vertOff, err := count(data, r, at, vtxVertexSize, "vertices")
	if err != nil {
		return nil, err
	}
	numIndices, indexOff, err := count(data, r, at, 2, "indices")
	if err != nil {
		return nil, err
	}
	numStrips, stripOff, err := count(data, r, at, vtxStripSize, "strips")
	if err != nil {
		return nil, err
	}

	meshVert := make([]uint32, numVerts)
	for i := range meshVert {
		meshVert[i] = uint32(binread.At(data, vertOff+i*vtxVertexSize+4).U16())
	}
	index := func(i int) (uint32, error) {
		if i < 0 || i >= numIndices {
			return 0, errors.Errorf("vtx: index %d of %d", i, numIndices)
		}
		vi := int(binread.At(data, indexOff+i*2).U16())
		if vi >= numVerts {
			return 0, errors.Errorf("vtx: vertex %d of %d", vi, numVerts)
		}
		return meshVert[vi], nil
	}

	var out []uint32
	// counter-clockwise: emit (a, c, b) for each clockwise (a, b, c)
	tri := func(i0, i1, i2 int) error {
		a, err := index(i0)
		if err != nil {
			return err
		}
		b, err := index(i1)
		if err != nil {
			return err
		}
		c, err := index(i2)
		if err != nil {
			return err
		}
		if a == b || b == c || a == c {
			return nil
		}
		out = append(out, a, c, b)
		return nil
	}

	for s := 0; s < numStrips; s++ {
		sr := binread.At(data, stripOff+s*vtxStripSize)
		n := int(sr.I32())
		first := int(sr.I32())
		sr.Seek(stripOff + s*vtxStripSize + 18)
		flags := sr.U8()
		if err := sr.Err(); err != nil {
			return nil, errors.Wrap(err, "vtx: strip")
		}

		switch {
		case flags&stripTriList != 0:
			for i := 0; i+2 < n; i += 3 {
				if err := tri(first+i, first+i+1, first+i+2); err != nil {
					return nil, err
				}
			}
		case flags&stripTriStrip != 0:
			for i := 0; i+2 < n; i++ {
				var err error
				if i%2 == 0 {
					err = tri(first+i, first+i+1, first+i+2)
				} else {
					err = tri(first+i+1, first+i, first+i+2)
				}
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
