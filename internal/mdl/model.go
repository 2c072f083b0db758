package mdl

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/asset"
)

// ErrChecksum is returned when the three sections describe different models.
var ErrChecksum = errors.New("mdl: section checksums differ")

// Mesh is one drawable run of a model at LOD 0. Indices are relative to
// Vertices and form counter-clockwise triangles.
type Mesh struct {
	BodyPart int
	// Material is the slot resolved through a skin table.
	Material int
	Vertices []Vertex
	Tangents []mgl32.Vec4
	Indices  []uint32
}

// Model is an assembled rigid model. Only the first model of each body
// part is used.
type Model struct {
	Name        string
	Textures    []string
	SearchPaths []string
	Skins       [][]int16
	Meshes      []Mesh
}

// Assemble joins the three sections into meshes.
func Assemble(m *MDL, vvd *VVD, vtx *VTX) (*Model, error) {
	if m.Checksum != vvd.Checksum || m.Checksum != vtx.Checksum {
		return nil, errors.Wrapf(ErrChecksum, "mdl %d, vvd %d, vtx %d", m.Checksum, vvd.Checksum, vtx.Checksum)
	}
	if len(vtx.BodyParts) < len(m.BodyParts) {
		return nil, errors.Errorf("mdl: %d body parts, vtx has %d", len(m.BodyParts), len(vtx.BodyParts))
	}

	out := &Model{
		Name:        m.Name,
		Textures:    m.Textures,
		SearchPaths: m.SearchPaths,
		Skins:       m.Skins,
	}
	for b, bp := range m.BodyParts {
		if len(bp.Models) == 0 {
			continue
		}
		sm := bp.Models[0]
		vm := vtx.BodyParts[b].Models
		if len(vm) == 0 {
			continue
		}
		if len(vm[0].Meshes) < len(sm.Meshes) {
			return nil, errors.Errorf("mdl: body part %d: %d meshes, vtx has %d", b, len(sm.Meshes), len(vm[0].Meshes))
		}

		for k, me := range sm.Meshes {
			start := sm.VertexStart + me.VertexOffset
			if start < 0 || start+me.NumVertices > len(vvd.Vertices) {
				return nil, errors.Errorf("mdl: body part %d mesh %d: vertices %d+%d of %d",
					b, k, start, me.NumVertices, len(vvd.Vertices))
			}
			indices := vm[0].Meshes[k].Indices
			for _, i := range indices {
				if int(i) >= me.NumVertices {
					return nil, errors.Errorf("mdl: body part %d mesh %d: index %d of %d", b, k, i, me.NumVertices)
				}
			}

			mesh := Mesh{
				BodyPart: b,
				Material: me.Material,
				Vertices: vvd.Vertices[start : start+me.NumVertices],
				Indices:  indices,
			}
			if len(vvd.Tangents) == len(vvd.Vertices) {
				mesh.Tangents = vvd.Tangents[start : start+me.NumVertices]
			}
			out.Meshes = append(out.Meshes, mesh)
		}
	}
	return out, nil
}

// SiblingPaths returns the vertex and strip section names for a model path.
func SiblingPaths(path string) (vvd string, vtx []string) {
	base := strings.TrimSuffix(asset.Normalize(path), ".mdl")
	return base + ".vvd", []string{base + ".dx90.vtx", base + ".vtx"}
}

// Load fetches and assembles a model and its sibling sections.
func Load(p asset.Provider, path string) (*Model, error) {
	path = asset.Normalize(path)
	if !strings.HasSuffix(path, ".mdl") {
		path += ".mdl"
	}

	data, err := p.Fetch(path)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	m, err := ParseMDL(data)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}

	vvdPath, vtxPaths := SiblingPaths(path)
	data, err = p.Fetch(vvdPath)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	vvd, err := ParseVVD(data)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", vvdPath)
	}

	var vtxPath string
	for _, candidate := range vtxPaths {
		data, err = p.Fetch(candidate)
		if err == nil {
			vtxPath = candidate
			break
		}
		if !asset.IsNotFound(err) {
			return nil, errors.Wrapf(err, "model %s", candidate)
		}
	}
	if vtxPath == "" {
		return nil, errors.Wrapf(err, "model %s: no strip section", path)
	}
	vtx, err := ParseVTX(data)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", vtxPath)
	}

	model, err := Assemble(m, vvd, vtx)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	if model.Name == "" {
		model.Name = path
	}
	return model, nil
}
