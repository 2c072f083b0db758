// Package binread is a bounds-checked little-endian reader for the binary
// asset formats. Reads past the end return zero values and latch a short
// read error that callers check once after a record.
package binread

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrShort is reported when a read runs past the end of the data.
var ErrShort = errors.New("binread: unexpected end of data")

type Reader struct {
	data  []byte
	off   int
	short bool
}

func New(data []byte) *Reader {
	return &Reader{data: data}
}

// At returns a reader positioned at off.
func At(data []byte, off int) *Reader {
	r := &Reader{data: data}
	r.Seek(off)
	return r
}

func (r *Reader) Len() int    { return len(r.data) }
func (r *Reader) Offset() int { return r.off }

// Err returns ErrShort if any read ran out of data.
func (r *Reader) Err() error {
	if r.short {
		return ErrShort
	}
	return nil
}

func (r *Reader) Seek(off int) {
	if off < 0 || off > len(r.data) {
		r.short = true
		r.off = len(r.data)
		return
	}
	r.off = off
}

func (r *Reader) Skip(n int) {
	r.Seek(r.off + n)
}

func (r *Reader) take(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.short = true
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) I16() int16 {
	return int16(r.U16())
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{r.F32(), r.F32()}
}

func (r *Reader) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.F32(), r.F32(), r.F32()}
}

func (r *Reader) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{r.F32(), r.F32(), r.F32(), r.F32()}
}

// Str reads a fixed-size field and cuts it at the first NUL.
func (r *Reader) Str(n int) string {
	b := r.take(n)
	return cut(b)
}

// CString reads a NUL-terminated string starting at off without moving
// the reader.
func CString(data []byte, off int) string {
	if off < 0 || off >= len(data) {
		return ""
	}
	return cut(data[off:])
}

func cut(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Slice returns data[off:off+n] or ErrShort when out of range.
func Slice(data []byte, off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(data) || off+n < off {
		return nil, errors.Wrapf(ErrShort, "range %d+%d of %d", off, n, len(data))
	}
	return data[off : off+n], nil
}
