package mdl

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/binread"
)

const (
	MagicVVD = "IDSV"

	fixupSize = 12
)

// Vertex is a model vertex in native units.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VVD holds the level-of-detail 0 vertices of a model.
type VVD struct {
	Version  int32
	Checksum int32
	Vertices []Vertex
	// Tangents is parallel to Vertices; w is the bitangent sign.
	Tangents []mgl32.Vec4
}

func ParseVVD(data []byte) (*VVD, error) {
	if len(data) < 64 || string(data[:4]) != MagicVVD {
		return nil, errors.New("vvd: bad header")
	}
	r := binread.At(data, 4)
	v := &VVD{}
	v.Version = r.I32()
	v.Checksum = r.I32()
	r.Skip(4) // LOD count
	lod0 := int(r.I32())
	r.Seek(48)
	numFixups := int(r.I32())
	fixupStart := int(r.I32())
	vertexStart := int(r.I32())
	tangentStart := int(r.I32())
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "vvd: header")
	}

	end := len(data)
	if tangentStart > vertexStart {
		end = min(end, tangentStart)
	}
	total := (end - vertexStart) / vertexStride
	if lod0 < 0 || vertexStart < 0 || lod0 > total {
		return nil, errors.Errorf("vvd: %d vertices do not fit", lod0)
	}
	if numFixups < 0 || numFixups > len(data)/fixupSize {
		return nil, errors.Errorf("vvd: fixup count %d", numFixups)
	}

	// without fixups the first lod0 vertices are used as is
	ids := make([]int, 0, lod0)
	if numFixups == 0 {
		for i := 0; i < lod0; i++ {
			ids = append(ids, i)
		}
	} else {
		fr := binread.At(data, fixupStart)
		for i := 0; i < numFixups; i++ {
			lod := fr.I32()
			src := int(fr.I32())
			n := int(fr.I32())
			if lod < 0 {
				continue
			}
			if src < 0 || n < 0 || src+n > total {
				return nil, errors.Errorf("vvd: fixup %d out of range", i)
			}
			for k := 0; k < n; k++ {
				ids = append(ids, src+k)
			}
		}
		if err := fr.Err(); err != nil {
			return nil, errors.Wrap(err, "vvd: fixups")
		}
	}

	v.Vertices = make([]Vertex, len(ids))
	for i, id := range ids {
		vr := binread.At(data, vertexStart+id*vertexStride+16)
		v.Vertices[i] = Vertex{Position: vr.Vec3(), Normal: vr.Vec3(), UV: vr.Vec2()}
	}

	if tangentStart > 0 {
		v.Tangents = make([]mgl32.Vec4, len(ids))
		for i, id := range ids {
			tr := binread.At(data, tangentStart+id*16)
			v.Tangents[i] = tr.Vec4()
			if tr.Err() != nil {
				v.Tangents = nil
				break
			}
		}
	}
	return v, nil
}
