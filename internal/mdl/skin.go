package mdl

// SkinTable maps material slots to texture names for one skin family.
type SkinTable struct {
	slots    []int16
	textures []string
}

// SkinCount is the number of skin families. A model without any has one
// identity family.
func (m *Model) SkinCount() int {
	return max(1, len(m.Skins))
}

// SkinTable returns the table of a skin family.
func (m *Model) SkinTable(i int) (SkinTable, bool) {
	if len(m.Skins) == 0 {
		if i != 0 {
			return SkinTable{}, false
		}
		slots := make([]int16, len(m.Textures))
		for k := range slots {
			slots[k] = int16(k)
		}
		return SkinTable{slots: slots, textures: m.Textures}, true
	}
	if i < 0 || i >= len(m.Skins) {
		return SkinTable{}, false
	}
	return SkinTable{slots: m.Skins[i], textures: m.Textures}, true
}

// Texture resolves a material slot to a texture name.
func (s SkinTable) Texture(slot int) (string, bool) {
	if slot < 0 || slot >= len(s.slots) {
		return "", false
	}
	t := int(s.slots[slot])
	if t < 0 || t >= len(s.textures) {
		return "", false
	}
	return s.textures[t], true
}
