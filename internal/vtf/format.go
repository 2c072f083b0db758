package vtf

import "fmt"

// Format is a pixel format of an image inside a texture container.
type Format int32

const (
	FormatNone Format = -1

	FormatRGBA8888 Format = iota - 1
	FormatABGR8888
	FormatRGB888
	FormatBGR888
	FormatRGB565
	FormatI8
	FormatIA88
	FormatP8
	FormatA8
	FormatRGB888Bluescreen
	FormatBGR888Bluescreen
	FormatARGB8888
	FormatBGRA8888
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatBGRX8888
	FormatBGR565
	FormatBGRX5551
	FormatBGRA4444
	FormatDXT1OneBitAlpha
	FormatBGRA5551
	FormatUV88
	FormatUVWQ8888
	FormatRGBA16161616F
	FormatRGBA16161616
	FormatUVLX8888
)

var formatNames = [...]string{
	"RGBA8888", "ABGR8888", "RGB888", "BGR888", "RGB565", "I8", "IA88", "P8", "A8",
	"RGB888_BLUESCREEN", "BGR888_BLUESCREEN", "ARGB8888", "BGRA8888", "DXT1", "DXT3", "DXT5",
	"BGRX8888", "BGR565", "BGRX5551", "BGRA4444", "DXT1_ONEBITALPHA", "BGRA5551", "UV88",
	"UVWQ8888", "RGBA16161616F", "RGBA16161616", "UVLX8888",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	if f == FormatNone {
		return "NONE"
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

// blockSize is the byte size of one 4x4 block for compressed formats.
func (f Format) blockSize() int {
	switch f {
	case FormatDXT1, FormatDXT1OneBitAlpha:
		return 8
	case FormatDXT3, FormatDXT5:
		return 16
	}
	return 0
}

// Compressed reports whether f is a block-compressed format.
func (f Format) Compressed() bool {
	return f.blockSize() != 0
}

// BytesPerPixel is zero for compressed formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatI8, FormatP8, FormatA8:
		return 1
	case FormatRGB565, FormatBGR565, FormatIA88, FormatBGRX5551, FormatBGRA4444,
		FormatBGRA5551, FormatUV88:
		return 2
	case FormatRGB888, FormatBGR888, FormatRGB888Bluescreen, FormatBGR888Bluescreen:
		return 3
	case FormatRGBA8888, FormatABGR8888, FormatARGB8888, FormatBGRA8888, FormatBGRX8888,
		FormatUVWQ8888, FormatUVLX8888:
		return 4
	case FormatRGBA16161616F, FormatRGBA16161616:
		return 8
	}
	return 0
}

// HasAlpha reports whether decoded images of this format carry a
// meaningful alpha channel.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatRGBA8888, FormatABGR8888, FormatIA88, FormatA8, FormatRGB888Bluescreen,
		FormatBGR888Bluescreen, FormatARGB8888, FormatBGRA8888, FormatDXT3, FormatDXT5,
		FormatBGRA4444, FormatDXT1OneBitAlpha, FormatBGRA5551, FormatUVWQ8888,
		FormatRGBA16161616F, FormatRGBA16161616, FormatUVLX8888:
		return true
	}
	return false
}

// ImageSize is the byte size of a w x h image in format f, or -1 when the
// format is unknown.
func ImageSize(f Format, w, h int) int {
	if f == FormatNone {
		return 0
	}
	if bs := f.blockSize(); bs != 0 {
		return max(1, (w+3)/4) * max(1, (h+3)/4) * bs
	}
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return -1
	}
	return w * h * bpp
}
