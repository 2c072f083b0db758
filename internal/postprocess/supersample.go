// Package postprocess resizes rendered previews and texture thumbnails.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales img down to w×h. Filtering happens on premultiplied
// colors so fully transparent texels do not bleed dark fringes into the
// result. Images already within w×h are returned as is.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premultiply(img), b, draw.Src, nil)
	return unpremultiply(dst)
}

func premultiply(img *image.NRGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		for k := 0; k < 3; k++ {
			out.Pix[i+k] = uint8((uint32(img.Pix[i+k])*a + 127) / 255)
		}
		out.Pix[i+3] = uint8(a)
	}
	return out
}

func unpremultiply(img *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		out.Pix[i+3] = uint8(a)
		if a <= 1 {
			continue
		}
		for k := 0; k < 3; k++ {
			out.Pix[i+k] = uint8(min((uint32(img.Pix[i+k])*255+a/2)/a, 255))
		}
	}
	return out
}
