package export

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/pipeline"
)

// ManifestMaterial describes one entry of the material list.
type ManifestMaterial struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	SearchPaths []string `json:"search_paths,omitempty"`
	Resolved    string   `json:"resolved,omitempty"`
	Fallback    bool     `json:"fallback"`
	Texture     string   `json:"texture,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	BumpMap     string   `json:"bump_map,omitempty"`
	Translucent bool     `json:"translucent"`
	AlphaTest   *float32 `json:"alpha_test,omitempty"`
	Primitives  int      `json:"primitives"`
}

// Manifest summarizes a loaded level.
type Manifest struct {
	Level      string             `json:"level"`
	World      int                `json:"world_primitives"`
	Props      int                `json:"prop_primitives"`
	Vertices   int                `json:"vertices"`
	Triangles  int                `json:"triangles"`
	Fallbacks  int                `json:"fallbacks"`
	Materials  []ManifestMaterial `json:"materials"`
	Unassigned int                `json:"unassigned_primitives"`
}

// NewManifest counts the primitives and materials of res.
func NewManifest(level string, res *pipeline.Result) Manifest {
	m := Manifest{
		Level:     level,
		World:     len(res.World),
		Props:     len(res.Props),
		Materials: make([]ManifestMaterial, len(res.Materials)),
	}
	for i, d := range res.Materials {
		entry := ManifestMaterial{
			Index:       i,
			Resolved:    d.Name,
			Fallback:    d.Fallback,
			Translucent: d.Translucent,
			AlphaTest:   d.AlphaTest,
		}
		if i < len(res.Keys) {
			entry.Name = res.Keys[i].Name
			entry.SearchPaths = res.Keys[i].SearchPaths
		}
		if d.Texture != nil {
			entry.Texture = d.Texture.Name
			entry.Width = d.Texture.Width
			entry.Height = d.Texture.Height
		}
		if d.BumpMap != nil {
			entry.BumpMap = d.BumpMap.Name
		}
		if d.Fallback {
			m.Fallbacks++
		}
		m.Materials[i] = entry
	}

	count := func(prims []geometry.Primitive) {
		for _, p := range prims {
			m.Vertices += p.Mesh.VertexCount()
			m.Triangles += p.Mesh.TriangleCount()
			if p.Material >= 0 && p.Material < len(m.Materials) {
				m.Materials[p.Material].Primitives++
			} else {
				m.Unassigned++
			}
		}
	}
	count(res.World)
	count(res.Props)
	return m
}

// WriteManifest writes the manifest of res as indented JSON.
func WriteManifest(path, level string, res *pipeline.Result) error {
	data, err := json.MarshalIndent(NewManifest(level, res), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "export: manifest")
	}
	return nil
}
