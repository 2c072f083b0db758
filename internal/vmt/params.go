package vmt

import (
	"strconv"
	"strings"
)

// Param returns a scalar parameter by case-insensitive name.
func (m *Material) Param(key string) (string, bool) {
	v, ok := m.Params[strings.ToLower(key)]
	return v, ok
}

func (m *Material) flag(key string) bool {
	v, ok := m.Param(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	}
	return true
}

func (m *Material) float(key string) (float32, bool) {
	v, ok := m.Param(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// IsWater reports whether the shader is the water class.
func (m *Material) IsWater() bool {
	return m.Shader == "water"
}

func (m *Material) BaseTexture() (string, bool) {
	v, ok := m.Param("$basetexture")
	return v, ok && v != ""
}

// BumpMap returns $bumpmap, or $normalmap when no bump map is declared.
func (m *Material) BumpMap() (string, bool) {
	for _, key := range []string{"$bumpmap", "$normalmap"} {
		if v, ok := m.Param(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (m *Material) SurfaceProp() string {
	v, _ := m.Param("$surfaceprop")
	return strings.ToLower(v)
}

// Translucent is true for an explicit $translucent flag or a glass surface.
func (m *Material) Translucent() bool {
	return m.flag("$translucent") || m.SurfaceProp() == "glass"
}

// AlphaTest returns the alpha cutoff when $alphatest is set. The cutoff
// defaults to 1.0 unless $alphatestreference overrides it.
func (m *Material) AlphaTest() (float32, bool) {
	if !m.flag("$alphatest") {
		return 0, false
	}
	if ref, ok := m.float("$alphatestreference"); ok {
		return ref, true
	}
	return 1.0, true
}

// Color returns the $color tint. "[r g b]" holds floats in 0..1 and
// "{r g b}" holds bytes.
func (m *Material) Color() ([3]uint8, bool) {
	v, ok := m.Param("$color")
	if !ok {
		return [3]uint8{}, false
	}
	v = strings.TrimSpace(v)
	bytesForm := strings.HasPrefix(v, "{")
	vals, ok := parseVector(v)
	if !ok || len(vals) < 3 {
		return [3]uint8{}, false
	}

	var c [3]uint8
	for i := range c {
		f := vals[i]
		if !bytesForm {
			f *= 255
		}
		c[i] = clampByte(f)
	}
	return c, true
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}

func parseVector(s string) ([]float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), "[]{}")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
