package vtf

import (
	"encoding/binary"
	"image"
)

// decodeBlocks walks row-major 4x4 blocks and clips them to the image.
func decodeBlocks(img *image.NRGBA, data []byte, blockSize int, block func(b []byte, out *[16][4]uint8)) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := max(1, (w+3)/4), max(1, (h+3)/4)

	var out [16][4]uint8
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			i := (by*bw + bx) * blockSize
			block(data[i:i+blockSize], &out)
			for y := 0; y < 4; y++ {
				py := by*4 + y
				if py >= h {
					break
				}
				for x := 0; x < 4; x++ {
					px := bx*4 + x
					if px >= w {
						break
					}
					o := img.PixOffset(px, py)
					c := out[y*4+x]
					copy(img.Pix[o:o+4], c[:])
				}
			}
		}
	}
}

func rgb565(v uint16) (r, g, b uint8) {
	return expand5(v >> 11), expand6(v >> 5), expand5(v)
}

// colorPalette builds the four colors of a color block. In three-color
// mode the fourth entry is transparent black.
func colorPalette(b []byte, forceFour bool) [4][4]uint8 {
	c0 := binary.LittleEndian.Uint16(b[0:])
	c1 := binary.LittleEndian.Uint16(b[2:])
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)

	var p [4][4]uint8
	p[0] = [4]uint8{r0, g0, b0, 0xff}
	p[1] = [4]uint8{r1, g1, b1, 0xff}
	if c0 > c1 || forceFour {
		p[2] = [4]uint8{mix(r0, r1, 2, 1), mix(g0, g1, 2, 1), mix(b0, b1, 2, 1), 0xff}
		p[3] = [4]uint8{mix(r0, r1, 1, 2), mix(g0, g1, 1, 2), mix(b0, b1, 1, 2), 0xff}
	} else {
		p[2] = [4]uint8{mix(r0, r1, 1, 1), mix(g0, g1, 1, 1), mix(b0, b1, 1, 1), 0xff}
		p[3] = [4]uint8{0, 0, 0, 0}
	}
	return p
}

func mix(a, b uint8, wa, wb int) uint8 {
	return uint8((int(a)*wa + int(b)*wb) / (wa + wb))
}

func decodeColors(b []byte, forceFour bool, out *[16][4]uint8) {
	p := colorPalette(b, forceFour)
	code := binary.LittleEndian.Uint32(b[4:])
	for i := 0; i < 16; i++ {
		out[i] = p[(code>>(2*i))&3]
	}
}

func decodeBlockDXT1(b []byte, out *[16][4]uint8) {
	decodeColors(b, false, out)
}

func decodeBlockDXT3(b []byte, out *[16][4]uint8) {
	decodeColors(b[8:], true, out)
	for i := 0; i < 16; i++ {
		a := (b[i/2] >> (4 * (i % 2))) & 0xf
		out[i][3] = a<<4 | a
	}
}

func decodeBlockDXT5(b []byte, out *[16][4]uint8) {
	decodeColors(b[8:], true, out)

	a0, a1 := uint32(b[0]), uint32(b[1])
	var alphas [8]uint8
	alphas[0], alphas[1] = uint8(a0), uint8(a1)
	if a0 > a1 {
		for i := uint32(2); i < 8; i++ {
			alphas[i] = uint8(((8-i)*a0 + (i-1)*a1) / 7)
		}
	} else {
		for i := uint32(2); i < 6; i++ {
			alphas[i] = uint8(((6-i)*a0 + (i-1)*a1) / 5)
		}
		alphas[6], alphas[7] = 0, 0xff
	}

	// 48 bits of 3-bit indices
	bits := uint64(b[2]) | uint64(b[3])<<8 | uint64(b[4])<<16 | uint64(b[5])<<24 |
		uint64(b[6])<<32 | uint64(b[7])<<40
	for i := 0; i < 16; i++ {
		out[i][3] = alphas[(bits>>(3*i))&7]
	}
}
