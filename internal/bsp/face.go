package bsp

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func (f *File) texInfo(face int) (TexInfo, bool) {
	ti := int(f.Faces[face].TexInfo)
	if ti < 0 || ti >= len(f.TexInfos) {
		return TexInfo{}, false
	}
	return f.TexInfos[ti], true
}

func (f *File) texData(face int) (TexData, string, bool) {
	ti, ok := f.texInfo(face)
	if !ok {
		return TexData{}, "", false
	}
	td := int(ti.TexData)
	if td < 0 || td >= len(f.TexData) {
		return TexData{}, "", false
	}
	return f.TexData[td], f.TexNames[td], true
}

// FaceVisible reports whether a face is drawn. Faces without texinfo and
// tool surfaces (nodraw, sky, trigger, hint, skip) are hidden.
func (f *File) FaceVisible(face int) bool {
	ti, ok := f.texInfo(face)
	if !ok {
		return false
	}
	return ti.Flags&SurfHidden == 0
}

// FaceTexture returns the texture name of a face.
func (f *File) FaceTexture(face int) string {
	_, name, _ := f.texData(face)
	return name
}

// FaceNormal is the plane normal on the front side of the face.
func (f *File) FaceNormal(face int) mgl32.Vec3 {
	fc := f.Faces[face]
	if int(fc.Plane) >= len(f.Planes) {
		return mgl32.Vec3{}
	}
	n := f.Planes[fc.Plane].Normal
	if fc.Side != 0 {
		n = n.Mul(-1)
	}
	return n
}

// FaceVertices returns the polygon loop of a face in native units.
func (f *File) FaceVertices(face int) ([]mgl32.Vec3, error) {
	fc := f.Faces[face]
	if fc.NumEdges < 3 {
		return nil, errors.Wrapf(ErrCorrupt, "face %d: %d edges", face, fc.NumEdges)
	}

	out := make([]mgl32.Vec3, 0, fc.NumEdges)
	for k := 0; k < int(fc.NumEdges); k++ {
		si := int(fc.FirstEdge) + k
		if si < 0 || si >= len(f.SurfEdges) {
			return nil, errors.Wrapf(ErrCorrupt, "face %d: surfedge %d out of range", face, si)
		}
		se := int(f.SurfEdges[si])
		e, end := se, 0
		if se < 0 {
			e, end = -se, 1
		}
		if e >= len(f.Edges) {
			return nil, errors.Wrapf(ErrCorrupt, "face %d: edge %d out of range", face, se)
		}
		v := f.Edges[e][end]
		if int(v) >= len(f.Vertices) {
			return nil, errors.Wrapf(ErrCorrupt, "face %d: vertex %d out of range", face, v)
		}
		out = append(out, f.Vertices[v])
	}
	return out, nil
}

// FaceUV projects a native-unit point onto the face texture axes and
// normalizes by the texture size.
func (f *File) FaceUV(face int, p mgl32.Vec3) mgl32.Vec2 {
	ti, ok := f.texInfo(face)
	if !ok {
		return mgl32.Vec2{}
	}
	td, _, ok := f.texData(face)
	if !ok || td.Width == 0 || td.Height == 0 {
		return mgl32.Vec2{}
	}

	s, t := ti.TextureVecs[0], ti.TextureVecs[1]
	u := (s.Vec3().Dot(p) + s.W()) / float32(td.Width)
	v := (t.Vec3().Dot(p) + t.W()) / float32(td.Height)
	return mgl32.Vec2{u, v}
}

// IsDisplacement reports whether the face carries displacement geometry.
func (f *File) IsDisplacement(face int) bool {
	d := int(f.Faces[face].DispInfo)
	return d >= 0 && d < len(f.DispInfos)
}

// FaceTriangles fan-triangulates a planar face into a triangle list whose
// right-handed winding agrees with the face normal.
func (f *File) FaceTriangles(face int) ([]mgl32.Vec3, error) {
	poly, err := f.FaceVertices(face)
	if err != nil {
		return nil, err
	}

	// Newell normal of the loop as stored
	var loop mgl32.Vec3
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		loop = loop.Add(a.Cross(b))
	}
	flip := loop.Dot(f.FaceNormal(face)) < 0

	out := make([]mgl32.Vec3, 0, (len(poly)-2)*3)
	for i := 1; i+1 < len(poly); i++ {
		if flip {
			out = append(out, poly[0], poly[i+1], poly[i])
		} else {
			out = append(out, poly[0], poly[i], poly[i+1])
		}
	}
	return out, nil
}
