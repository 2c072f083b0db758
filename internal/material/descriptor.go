// Package material resolves material names into decoded descriptors and
// deduplicates them into a shared table.
package material

import (
	"bsp-map-loader/internal/vmt"
)

// PixelFormat of a decoded texture.
type PixelFormat int

const (
	RGB8 PixelFormat = iota
	RGBA8
)

func (f PixelFormat) String() string {
	if f == RGBA8 {
		return "RGBA8"
	}
	return "RGB8"
}

// Texture is a decoded mip 0 image in tightly packed rows.
type Texture struct {
	Name   string
	Width  int
	Height int
	Format PixelFormat
	Pix    []byte
}

// Descriptor is a fully resolved material.
type Descriptor struct {
	Name        string
	Color       [4]uint8
	Texture     *Texture
	BumpMap     *Texture
	AlphaTest   *float32
	Translucent bool
	Transform   *vmt.TextureTransform
	// Fallback marks the placeholder substituted for a failed material.
	Fallback bool
}

var (
	White   = [4]uint8{255, 255, 255, 255}
	Magenta = [4]uint8{255, 0, 255, 255}
	Water   = [4]uint8{82, 180, 217, 128}
)

// FallbackDescriptor is the conspicuous placeholder for a material that
// could not be resolved.
func FallbackDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Color: Magenta, Fallback: true}
}
