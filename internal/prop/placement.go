// Package prop places rigid models into the level and bakes them into
// output-space primitives.
package prop

import (
	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/bsp"
	"bsp-map-loader/internal/mathutil"
)

// Placement is one instance of a model in the level. Origin and Scale are in
// native axes.
type Placement struct {
	Model  string
	Origin mgl32.Vec3
	Angles mathutil.QAngle
	Scale  mgl32.Vec3
	Skin   int
}

// Transform is the output-space model matrix of the placement.
func (p Placement) Transform() mgl32.Mat4 {
	scale := p.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	return mathutil.PlacementTransform(p.Origin, p.Angles, scale)
}

func angles(v mgl32.Vec3) mathutil.QAngle {
	return mathutil.QAngle{Pitch: v[0], Yaw: v[1], Roll: v[2]}
}

func uniform(s float32) mgl32.Vec3 {
	if s == 0 {
		s = 1
	}
	return mgl32.Vec3{s, s, s}
}

// FromLevel collects the static props of the level followed by the prop
// entities.
func FromLevel(f *bsp.File, ents []bsp.Entity) ([]Placement, error) {
	static, err := f.StaticProps()
	if err != nil {
		return nil, err
	}

	out := make([]Placement, 0, len(static))
	for _, sp := range static {
		out = append(out, Placement{
			Model:  sp.Model,
			Origin: sp.Origin,
			Angles: angles(sp.Angles),
			Scale:  uniform(sp.Scale),
			Skin:   sp.Skin,
		})
	}
	return append(out, FromEntities(ents)...), nil
}

// FromEntities collects placements authored through prop entities.
func FromEntities(ents []bsp.Entity) []Placement {
	var out []Placement
	for _, dp := range bsp.DynamicProps(ents) {
		out = append(out, Placement{
			Model:  dp.Model,
			Origin: dp.Origin,
			Angles: angles(dp.Angles),
			Scale:  uniform(dp.Scale),
			Skin:   dp.Skin,
		})
	}
	return out
}
