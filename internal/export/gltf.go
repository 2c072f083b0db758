// Package export writes loaded levels to interchange formats.
package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/pipeline"
)

// textureCache writes every texture image once per document.
type textureCache struct {
	doc     *gltf.Document
	sampler uint32
	byName  map[string]uint32
}

func newTextureCache(doc *gltf.Document) *textureCache {
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinearMipMapLinear,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})
	return &textureCache{
		doc:     doc,
		sampler: uint32(len(doc.Samplers) - 1),
		byName:  map[string]uint32{},
	}
}

func (c *textureCache) index(t *material.Texture) (uint32, error) {
	if idx, ok := c.byName[t.Name]; ok {
		return idx, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, t.Image()); err != nil {
		return 0, errors.Wrapf(err, "export: encode %s", t.Name)
	}
	img, err := modeler.WriteImage(c.doc, t.Name, "image/png", &buf)
	if err != nil {
		return 0, errors.Wrapf(err, "export: write image %s", t.Name)
	}

	idx := uint32(len(c.doc.Textures))
	c.doc.Textures = append(c.doc.Textures, &gltf.Texture{
		Name:    t.Name,
		Sampler: gltf.Index(c.sampler),
		Source:  gltf.Index(img),
	})
	c.byName[t.Name] = idx
	return idx, nil
}

func (c *textureCache) material(d material.Descriptor) (*gltf.Material, error) {
	color := &[4]float32{
		float32(d.Color[0]) / 255,
		float32(d.Color[1]) / 255,
		float32(d.Color[2]) / 255,
		float32(d.Color[3]) / 255,
	}
	metallic := float32(0)
	m := &gltf.Material{
		Name: d.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
			MetallicFactor:  &metallic,
		},
	}

	switch {
	case d.AlphaTest != nil:
		cutoff := *d.AlphaTest
		m.AlphaMode = gltf.AlphaMask
		m.AlphaCutoff = &cutoff
	case d.Translucent:
		m.AlphaMode = gltf.AlphaBlend
	}

	if d.Texture != nil {
		idx, err := c.index(d.Texture)
		if err != nil {
			return nil, err
		}
		m.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: idx}
	}
	if d.BumpMap != nil {
		idx, err := c.index(d.BumpMap)
		if err != nil {
			return nil, err
		}
		m.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(idx)}
	}
	return m, nil
}

func vec3s(vs []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func writeMesh(doc *gltf.Document, name string, m geometry.Mesh, mat int) uint32 {
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, vec3s(m.Positions)),
	}
	if len(m.Normals) == len(m.Positions) {
		attributes["NORMAL"] = modeler.WriteNormal(doc, vec3s(m.Normals))
	}
	if len(m.UVs) == len(m.Positions) {
		uvs := make([][2]float32, len(m.UVs))
		for i, uv := range m.UVs {
			uvs[i] = uv
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}
	if len(m.Tangents) == len(m.Positions) {
		tangents := make([][4]float32, len(m.Tangents))
		for i, t := range m.Tangents {
			tangents[i] = t
		}
		attributes["TANGENT"] = modeler.WriteTangent(doc, tangents)
	}

	prim := &gltf.Primitive{Attributes: attributes}
	if m.Indices != nil {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, m.Indices))
	}
	if mat != geometry.NoMaterial {
		prim.Material = gltf.Index(uint32(mat))
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       name,
		Primitives: []*gltf.Primitive{prim},
	})
	return uint32(len(doc.Meshes) - 1)
}

// Document converts a loaded level into a glTF document with one node per
// primitive. Material indices carry over unchanged.
func Document(res *pipeline.Result) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	textures := newTextureCache(doc)
	for _, d := range res.Materials {
		m, err := textures.material(d)
		if err != nil {
			return nil, err
		}
		doc.Materials = append(doc.Materials, m)
	}

	groups := []struct {
		name  string
		prims []geometry.Primitive
	}{
		{"world", res.World},
		{"props", res.Props},
	}
	for _, g := range groups {
		parent := &gltf.Node{Name: g.name}
		for _, p := range g.prims {
			if p.Mesh.VertexCount() == 0 {
				continue
			}
			mesh := writeMesh(doc, p.Name, p.Mesh, p.Material)
			doc.Nodes = append(doc.Nodes, &gltf.Node{
				Name:   p.Name,
				Mesh:   gltf.Index(mesh),
				Matrix: [16]float32(p.Transform),
			})
			parent.Children = append(parent.Children, uint32(len(doc.Nodes)-1))
		}
		doc.Nodes = append(doc.Nodes, parent)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	return doc, nil
}

// WriteFile saves res as binary glTF when path ends in .glb and as a
// self-contained .gltf otherwise.
func WriteFile(res *pipeline.Result, path string) error {
	doc, err := Document(res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "export")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	defer f.Close()

	enc := gltf.NewEncoder(f)
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		enc.AsBinary = true
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(err, "export: write %s", path)
	}
	return f.Close()
}
