package bsp

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"bsp-map-loader/internal/keyvalues"
)

// Entity is one block of the entity lump with lower-cased keys. Later
// duplicates win.
type Entity map[string]string

func (e Entity) Class() string {
	return strings.ToLower(e["classname"])
}

// Vec3 parses a space separated triple.
func (e Entity) Vec3(key string) (mgl32.Vec3, bool) {
	fields := strings.Fields(e[key])
	if len(fields) != 3 {
		return mgl32.Vec3{}, false
	}
	var v mgl32.Vec3
	for i, s := range fields {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return mgl32.Vec3{}, false
		}
		v[i] = float32(x)
	}
	return v, true
}

func (e Entity) Float(key string) (float32, bool) {
	x, err := strconv.ParseFloat(strings.TrimSpace(e[key]), 32)
	if err != nil {
		return 0, false
	}
	return float32(x), true
}

func (e Entity) Int(key string) (int, bool) {
	s := strings.TrimSpace(e[key])
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	// some tools write integral keys as floats
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return int(x), true
	}
	return 0, false
}

// ParseEntities reads the entity lump.
func (f *File) ParseEntities() ([]Entity, error) {
	nodes, err := keyvalues.Parse(f.Entities)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(nodes))
	for _, n := range nodes {
		if !n.Block {
			continue
		}
		e := make(Entity, len(n.Children))
		for _, c := range n.Children {
			if !c.Block {
				e[strings.ToLower(c.Key)] = c.Value
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// BrushModel is a sub-model referenced by a movable brush entity.
type BrushModel struct {
	Model  int
	Origin mgl32.Vec3
}

// BrushModels returns the sub-models placed by entities with a "*N" model
// key. Model 0 and out of range references are ignored.
func (f *File) BrushModels(ents []Entity) []BrushModel {
	var out []BrushModel
	for _, e := range ents {
		m, ok := strings.CutPrefix(e["model"], "*")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(m)
		if err != nil || i <= 0 || i >= len(f.Models) {
			continue
		}
		origin, _ := e.Vec3("origin")
		out = append(out, BrushModel{Model: i, Origin: origin})
	}
	return out
}

// DynamicProp is a model placement authored through a prop entity.
type DynamicProp struct {
	Model  string
	Origin mgl32.Vec3
	// Angles holds pitch, yaw and roll in degrees.
	Angles mgl32.Vec3
	Skin   int
	Scale  float32
}

var propClasses = []string{"prop_dynamic", "prop_physics"}

func isPropClass(class string) bool {
	for _, p := range propClasses {
		if strings.HasPrefix(class, p) {
			return true
		}
	}
	return false
}

// DynamicProps returns placements of prop_dynamic* and prop_physics*
// entities.
func DynamicProps(ents []Entity) []DynamicProp {
	var out []DynamicProp
	for _, e := range ents {
		if !isPropClass(e.Class()) || e["model"] == "" {
			continue
		}
		p := DynamicProp{Model: e["model"], Scale: 1}
		p.Origin, _ = e.Vec3("origin")
		p.Angles, _ = e.Vec3("angles")
		p.Skin, _ = e.Int("skin")
		if s, ok := e.Float("modelscale"); ok && s > 0 {
			p.Scale = s
		}
		out = append(out, p)
	}
	return out
}
