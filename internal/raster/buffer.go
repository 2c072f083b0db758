package raster

import (
	"image"
	"math"
)

// FrameBuffer is a color target with a depth buffer. Larger depth values
// are closer to the viewer.
type FrameBuffer struct {
	Width, Height int
	// Color is RGBA interleaved, row-major.
	Color []uint8
	ZBuf  []float32
}

// NewFrameBuffer allocates a transparent w×h target with empty depth.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, 4*w*h),
		ZBuf:   make([]float32, w*h),
	}
	far := float32(math.Inf(-1))
	for i := range fb.ZBuf {
		fb.ZBuf[i] = far
	}
	return fb
}

// Image returns the color buffer as an image sharing no memory with fb.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    append([]uint8(nil), fb.Color...),
		Stride: 4 * fb.Width,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}
