package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Thumbnail scales img to fit a size×size canvas, preserving aspect ratio and
// centering it on a transparent background. Images already within size are
// centered without scaling.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 || size <= 0 {
		return canvas
	}

	scale := math.Min(1, float64(size)/math.Max(float64(srcW), float64(srcH)))
	newW := max(int(float64(srcW)*scale+0.5), 1)
	newH := max(int(float64(srcH)*scale+0.5), 1)

	offX := (size - newW) / 2
	offY := (size - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	if newW == srcW && newH == srcH {
		draw.Draw(canvas, dst, img, b.Min, draw.Src)
		return canvas
	}
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Src, nil)
	return canvas
}

// CropAlpha trims fully transparent rows and columns from the edges.
func CropAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return img
	}

	cropW := maxX - minX + 1
	cropH := maxY - minY + 1
	cropped := image.NewNRGBA(image.Rect(0, 0, cropW, cropH))
	for y := 0; y < cropH; y++ {
		srcOff := (minY+y)*img.Stride + minX*4
		dstOff := y * cropped.Stride
		copy(cropped.Pix[dstOff:dstOff+cropW*4], img.Pix[srcOff:srcOff+cropW*4])
	}
	return cropped
}
