// Package vtf decodes the mip-mapped texture container used by materials.
// Only the largest mip of the first frame, face and slice is decoded.
package vtf

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"bsp-map-loader/internal/binread"
)

const (
	Magic = "VTF\x00"

	FlagEnvMap = 0x4000

	resourceHighRes = 0x30
	resourceLowRes  = 0x01
)

var ErrFormat = errors.New("vtf: unsupported image format")

type Header struct {
	Version      [2]uint32
	HeaderSize   uint32
	Width        int
	Height       int
	Flags        uint32
	Frames       int
	FirstFrame   uint16
	Reflectivity mgl32.Vec3
	BumpScale    float32
	Format       Format
	MipCount     int
	LowFormat    Format
	LowWidth     int
	LowHeight    int
	Depth        int
	Resources    []Resource
}

// Resource is an entry of the 7.3+ resource directory.
type Resource struct {
	Tag    [3]byte
	Flags  uint8
	Offset uint32
}

// File is a parsed container.
type File struct {
	Header
	data []byte
}

// IsVTF reports whether data starts with the container magic.
func IsVTF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

func Parse(data []byte) (*File, error) {
	if !IsVTF(data) {
		return nil, errors.New("vtf: bad magic")
	}

	r := binread.At(data, 4)
	var h Header
	h.Version = [2]uint32{r.U32(), r.U32()}
	h.HeaderSize = r.U32()
	h.Width = int(r.U16())
	h.Height = int(r.U16())
	h.Flags = r.U32()
	h.Frames = int(r.U16())
	h.FirstFrame = r.U16()
	r.Skip(4)
	h.Reflectivity = r.Vec3()
	r.Skip(4)
	h.BumpScale = r.F32()
	h.Format = Format(r.I32())
	h.MipCount = int(r.U8())
	h.LowFormat = Format(r.I32())
	h.LowWidth = int(r.U8())
	h.LowHeight = int(r.U8())
	h.Depth = 1
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "vtf: header")
	}
	if h.Version[0] != 7 {
		return nil, errors.Errorf("vtf: unsupported version %d.%d", h.Version[0], h.Version[1])
	}

	if h.Version[1] >= 2 {
		if d := int(r.U16()); d > 0 {
			h.Depth = d
		}
	}
	if h.Version[1] >= 3 {
		r.Seek(68)
		n := int(r.U32())
		r.Seek(80)
		for i := 0; i < n && r.Err() == nil; i++ {
			var res Resource
			copy(res.Tag[:], r.Bytes(3))
			res.Flags = r.U8()
			res.Offset = r.U32()
			h.Resources = append(h.Resources, res)
		}
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "vtf: header")
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, errors.New("vtf: empty image")
	}
	h.Frames = max(h.Frames, 1)
	h.MipCount = max(h.MipCount, 1)

	return &File{Header: h, data: data}, nil
}

// Faces is 6 for cube maps, 7 for older cube maps carrying a sphere map.
func (f *File) Faces() int {
	if f.Flags&FlagEnvMap == 0 {
		return 1
	}
	if f.Version[1] < 5 && f.FirstFrame != 0xffff {
		return 7
	}
	return 6
}

func (f *File) highResOffset() (int, error) {
	for _, res := range f.Resources {
		if res.Tag == [3]byte{resourceHighRes, 0, 0} {
			return int(res.Offset), nil
		}
	}
	if len(f.Resources) > 0 {
		return 0, errors.New("vtf: no high-res image resource")
	}
	low := ImageSize(f.LowFormat, f.LowWidth, f.LowHeight)
	if low < 0 {
		return 0, errors.Wrapf(ErrFormat, "low-res %s", f.LowFormat)
	}
	return int(f.HeaderSize) + low, nil
}

// mipDims returns the dimensions of mip level m.
func (f *File) mipDims(m int) (int, int, int) {
	return max(1, f.Width>>m), max(1, f.Height>>m), max(1, f.Depth>>m)
}

// Image decodes mip 0 of the first frame, face and slice.
func (f *File) Image() (*image.NRGBA, error) {
	off, err := f.highResOffset()
	if err != nil {
		return nil, err
	}

	// mips are stored smallest first
	perImage := f.Frames * f.Faces()
	for m := f.MipCount - 1; m > 0; m-- {
		w, h, d := f.mipDims(m)
		size := ImageSize(f.Format, w, h)
		if size < 0 {
			return nil, errors.Wrapf(ErrFormat, "%s", f.Format)
		}
		off += size * d * perImage
	}

	size := ImageSize(f.Format, f.Width, f.Height)
	if size < 0 {
		return nil, errors.Wrapf(ErrFormat, "%s", f.Format)
	}
	pix, err := binread.Slice(f.data, off, size)
	if err != nil {
		return nil, errors.Wrapf(err, "vtf: mip 0 of %dx%d %s", f.Width, f.Height, f.Format)
	}
	return decodeImage(f.Format, pix, f.Width, f.Height)
}

// Decode parses data and decodes its largest image.
func Decode(data []byte) (*image.NRGBA, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Image()
}

func init() {
	image.RegisterFormat("vtf", Magic, func(r io.Reader) (image.Image, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}, func(r io.Reader) (image.Config, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return image.Config{}, err
		}
		f, err := Parse(data)
		if err != nil {
			return image.Config{}, err
		}
		return image.Config{ColorModel: color.NRGBAModel, Width: f.Width, Height: f.Height}, nil
	})
}
