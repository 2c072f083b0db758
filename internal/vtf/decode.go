package vtf

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

func decodeImage(f Format, pix []byte, w, h int) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	switch f {
	case FormatDXT1, FormatDXT1OneBitAlpha:
		decodeBlocks(img, pix, 8, decodeBlockDXT1)
		return img, nil
	case FormatDXT3:
		decodeBlocks(img, pix, 16, decodeBlockDXT3)
		return img, nil
	case FormatDXT5:
		decodeBlocks(img, pix, 16, decodeBlockDXT5)
		return img, nil
	}

	px := pixelDecoder(f)
	if px == nil {
		return nil, errors.Wrapf(ErrFormat, "%s", f)
	}
	bpp := f.BytesPerPixel()
	for i := 0; i < w*h; i++ {
		c := px(pix[i*bpp : i*bpp+bpp])
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

// Channel names list components from the lowest byte or bit upwards.
func pixelDecoder(f Format) func(p []byte) color.NRGBA {
	switch f {
	case FormatRGBA8888, FormatUVWQ8888, FormatUVLX8888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[0], p[1], p[2], p[3]} }
	case FormatABGR8888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[3], p[2], p[1], p[0]} }
	case FormatARGB8888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[1], p[2], p[3], p[0]} }
	case FormatBGRA8888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[2], p[1], p[0], p[3]} }
	case FormatBGRX8888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[2], p[1], p[0], 0xff} }
	case FormatRGB888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[0], p[1], p[2], 0xff} }
	case FormatBGR888:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[2], p[1], p[0], 0xff} }
	case FormatRGB888Bluescreen:
		return func(p []byte) color.NRGBA { return bluescreen(p[0], p[1], p[2]) }
	case FormatBGR888Bluescreen:
		return func(p []byte) color.NRGBA { return bluescreen(p[2], p[1], p[0]) }
	case FormatI8:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[0], p[0], p[0], 0xff} }
	case FormatIA88:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[0], p[0], p[0], p[1]} }
	case FormatA8:
		return func(p []byte) color.NRGBA { return color.NRGBA{0, 0, 0, p[0]} }
	case FormatUV88:
		return func(p []byte) color.NRGBA { return color.NRGBA{p[0], p[1], 0, 0xff} }
	case FormatRGB565:
		return func(p []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(p)
			return color.NRGBA{expand5(v), expand6(v >> 5), expand5(v >> 11), 0xff}
		}
	case FormatBGR565:
		return func(p []byte) color.NRGBA {
			r, g, b := rgb565(binary.LittleEndian.Uint16(p))
			return color.NRGBA{r, g, b, 0xff}
		}
	case FormatBGRX5551, FormatBGRA5551:
		alpha := f == FormatBGRA5551
		return func(p []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(p)
			c := color.NRGBA{expand5(v >> 10), expand5(v >> 5), expand5(v), 0xff}
			if alpha && v&0x8000 == 0 {
				c.A = 0
			}
			return c
		}
	case FormatBGRA4444:
		return func(p []byte) color.NRGBA {
			v := binary.LittleEndian.Uint16(p)
			return color.NRGBA{expand4(v >> 8), expand4(v >> 4), expand4(v), expand4(v >> 12)}
		}
	case FormatRGBA16161616:
		return func(p []byte) color.NRGBA {
			return color.NRGBA{p[1], p[3], p[5], p[7]}
		}
	case FormatRGBA16161616F:
		return func(p []byte) color.NRGBA {
			var c [4]uint8
			for i := range c {
				c[i] = unitByte(halfToFloat(binary.LittleEndian.Uint16(p[i*2:])))
			}
			return color.NRGBA{c[0], c[1], c[2], c[3]}
		}
	}
	return nil
}

func bluescreen(r, g, b uint8) color.NRGBA {
	if r == 0 && g == 0 && b == 0xff {
		return color.NRGBA{}
	}
	return color.NRGBA{r, g, b, 0xff}
}

func expand4(v uint16) uint8 {
	v &= 0xf
	return uint8(v<<4 | v)
}

func expand5(v uint16) uint8 {
	v &= 0x1f
	return uint8(v<<3 | v>>2)
}

func expand6(v uint16) uint8 {
	v &= 0x3f
	return uint8(v<<2 | v>>4)
}

func unitByte(f float32) uint8 {
	switch {
	case !(f > 0):
		return 0
	case f >= 1:
		return 0xff
	}
	return uint8(f*255 + 0.5)
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// subnormal
		f := float32(frac) / 1024 / 16384
		if sign != 0 {
			return -f
		}
		return f
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}
