// Package world turns the brush faces of a level into per-texture primitives.
package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/bsp"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/mathutil"
)

type group struct {
	name string
	mesh geometry.Mesh
}

// builder accumulates faces into texture groups in first-appearance order.
type builder struct {
	file   *bsp.File
	groups map[string]*group
	order  []*group
}

func (b *builder) group(name string) *group {
	if g, ok := b.groups[name]; ok {
		return g
	}
	g := &group{name: name}
	b.groups[name] = g
	b.order = append(b.order, g)
	return g
}

// Extract builds one primitive per texture used by the visible faces of the
// world model and the given brush sub-models. Sub-model faces are moved by
// their origin before conversion. Vertices are baked in output space, so
// every primitive carries the identity transform.
func Extract(f *bsp.File, brushes []bsp.BrushModel, table *material.Table) ([]geometry.Primitive, error) {
	world, err := f.WorldModel()
	if err != nil {
		return nil, err
	}

	b := &builder{file: f, groups: map[string]*group{}}
	if err := b.addModel(world, mgl32.Vec3{}); err != nil {
		return nil, errors.Wrap(err, "world model")
	}
	for _, bm := range brushes {
		if bm.Model <= 0 || bm.Model >= len(f.Models) {
			continue
		}
		if err := b.addModel(f.Models[bm.Model], bm.Origin); err != nil {
			return nil, errors.Wrapf(err, "brush model *%d", bm.Model)
		}
	}

	out := make([]geometry.Primitive, 0, len(b.order))
	for _, g := range b.order {
		geometry.FlatNormals(&g.mesh)
		geometry.Tangents(&g.mesh)
		out = append(out, geometry.Primitive{
			Name:      g.name,
			Mesh:      g.mesh,
			Transform: mgl32.Ident4(),
			Material:  table.Index(g.name, nil),
		})
	}
	return out, nil
}

func (b *builder) addModel(m bsp.Model, origin mgl32.Vec3) error {
	first, n := int(m.FirstFace), int(m.NumFaces)
	if first < 0 || n < 0 || first+n > len(b.file.Faces) {
		return errors.Wrapf(bsp.ErrCorrupt, "faces %d+%d out of range", first, n)
	}
	for face := first; face < first+n; face++ {
		if !b.file.FaceVisible(face) {
			continue
		}
		if err := b.addFace(face, origin); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addFace(face int, origin mgl32.Vec3) error {
	g := b.group(b.file.FaceTexture(face))

	if b.file.IsDisplacement(face) {
		disp, err := b.file.Displacement(face)
		if err != nil {
			return err
		}
		for _, idx := range disp.Indices {
			b.emit(g, face, disp.Positions[idx], disp.Base[idx], origin)
		}
		return nil
	}

	tris, err := b.file.FaceTriangles(face)
	if err != nil {
		return err
	}
	for _, p := range tris {
		b.emit(g, face, p, p, origin)
	}
	return nil
}

// emit appends one vertex. Texture coordinates come from the undisplaced
// position in model space.
func (b *builder) emit(g *group, face int, pos, texPos, origin mgl32.Vec3) {
	g.mesh.Positions = append(g.mesh.Positions, mathutil.Convert(pos.Add(origin)))
	g.mesh.UVs = append(g.mesh.UVs, b.file.FaceUV(face, texPos))
}
