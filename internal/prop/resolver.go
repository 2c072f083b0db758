package prop

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/batch"
	"bsp-map-loader/internal/failsoft"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/mathutil"
	"bsp-map-loader/internal/mdl"
)

type cachedModel struct {
	once  sync.Once
	model *mdl.Model
	err   error
}

// Resolver turns placements into baked primitives. Models shared by several
// placements are loaded once per Resolver.
type Resolver struct {
	provider asset.Provider
	table    *material.Table
	logger   *slog.Logger

	mu     sync.Mutex
	models map[string]*cachedModel
}

func NewResolver(p asset.Provider, table *material.Table, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		provider: p,
		table:    table,
		logger:   logger,
		models:   map[string]*cachedModel{},
	}
}

func (r *Resolver) model(path string) (*mdl.Model, error) {
	key := asset.Normalize(path)
	r.mu.Lock()
	c, ok := r.models[key]
	if !ok {
		c = &cachedModel{}
		r.models[key] = c
	}
	r.mu.Unlock()

	c.once.Do(func() {
		c.model, c.err = mdl.Load(r.provider, key)
	})
	return c.model, c.err
}

// ResolveAll places every placement on a worker pool. Placements whose model
// fails to load are logged and skipped. Output follows placement order.
func (r *Resolver) ResolveAll(placements []Placement, workers int) []geometry.Primitive {
	perPlacement := batch.Map(workers, placements, func(_ int, pl Placement) []geometry.Primitive {
		if pl.Model == "" {
			return nil
		}
		model, ok := failsoft.Resolve(r.logger, "model", pl.Model,
			func() (*mdl.Model, error) { return r.model(pl.Model) },
			func() *mdl.Model { return nil })
		if !ok {
			return nil
		}
		return r.Place(pl, model)
	})

	var out []geometry.Primitive
	for _, prims := range perPlacement {
		out = append(out, prims...)
	}
	return out
}

// Place bakes one placement of model into primitives, one per mesh.
func (r *Resolver) Place(pl Placement, model *mdl.Model) []geometry.Primitive {
	skin, ok := model.SkinTable(pl.Skin)
	if !ok {
		r.logger.Warn("invalid skin index", "model", pl.Model, "skin", pl.Skin, "skins", model.SkinCount())
		skin, _ = model.SkinTable(0)
	}

	xf := pl.Transform()
	nm := mathutil.NormalMatrix(xf)
	mirrored := mathutil.IsMirrored(xf)

	out := make([]geometry.Primitive, 0, len(model.Meshes))
	for k, me := range model.Meshes {
		matIndex := geometry.NoMaterial
		if texture, ok := skin.Texture(me.Material); ok {
			matIndex = r.table.Index(texture, model.SearchPaths)
		} else {
			r.logger.Warn("mesh material slot out of range", "model", pl.Model, "mesh", k, "slot", me.Material)
		}

		out = append(out, geometry.Primitive{
			Name:      fmt.Sprintf("%s#%d", model.Name, k),
			Mesh:      bake(me, xf, nm, mirrored),
			Transform: mgl32.Ident4(),
			Material:  matIndex,
		})
	}
	return out
}

// bake converts a mesh into output space and applies the placement.
func bake(me mdl.Mesh, xf mgl32.Mat4, nm mgl32.Mat3, mirrored bool) geometry.Mesh {
	n := len(me.Vertices)
	m := geometry.Mesh{
		Positions: make([]mgl32.Vec3, n),
		Normals:   make([]mgl32.Vec3, n),
		UVs:       make([]mgl32.Vec2, n),
		Indices:   make([]uint32, len(me.Indices)),
	}
	for i, v := range me.Vertices {
		m.Positions[i] = mathutil.TransformPoint(xf, mathutil.Convert(v.Position))
		// inverse-transpose only, not negated: the axis permutation keeps handedness
		m.Normals[i] = mathutil.TransformNormal(nm, mathutil.ConvertDirection(v.Normal))
		m.UVs[i] = v.UV
	}

	copy(m.Indices, me.Indices)
	if mirrored {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
		}
	}

	if len(me.Tangents) == n {
		m.Tangents = make([]mgl32.Vec4, n)
		for i, t := range me.Tangents {
			m.Tangents[i] = mathutil.TransformTangent(xf, mathutil.ConvertDirection(t.Vec3()).Vec4(t[3]))
		}
	} else {
		geometry.Tangents(&m)
	}
	return m
}
