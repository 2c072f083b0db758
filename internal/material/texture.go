package material

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/vtf"
)

// decoded is a texture image and whether its alpha channel carries data.
type decoded struct {
	img   *image.NRGBA
	alpha bool
}

// textureCache decodes each texture path at most once per run.
type textureCache struct {
	mu       sync.RWMutex
	items    map[string]*cacheEntry
	provider asset.Provider
}

type cacheEntry struct {
	once sync.Once
	tex  decoded
	err  error
}

func newTextureCache(p asset.Provider) *textureCache {
	return &textureCache{
		items:    make(map[string]*cacheEntry),
		provider: p,
	}
}

// TexturePath maps a texture name to its container path.
func TexturePath(name string) string {
	name = strings.TrimSuffix(asset.Normalize(name), ".vtf")
	name = strings.TrimPrefix(name, "materials/")
	return "materials/" + name + ".vtf"
}

func (c *textureCache) load(name string) (decoded, error) {
	path := TexturePath(name)

	// Fast path: read lock
	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()

	if !ok {
		// Write lock with double-check
		c.mu.Lock()
		if entry, ok = c.items[path]; !ok {
			entry = &cacheEntry{}
			c.items[path] = entry
		}
		c.mu.Unlock()
	}

	entry.once.Do(func() {
		entry.tex, entry.err = c.decode(path)
	})
	return entry.tex, entry.err
}

func (c *textureCache) decode(path string) (decoded, error) {
	data, err := c.provider.Fetch(path)
	if err != nil {
		return decoded{}, errors.Wrapf(err, "texture %s", path)
	}

	if vtf.IsVTF(data) {
		f, err := vtf.Parse(data)
		if err != nil {
			return decoded{}, errors.Wrapf(err, "texture %s", path)
		}
		img, err := f.Image()
		if err != nil {
			return decoded{}, errors.Wrapf(err, "texture %s", path)
		}
		return decoded{img: img, alpha: f.Format.HasAlpha()}, nil
	}

	img, err := decodeLoose(data)
	if err != nil {
		return decoded{}, errors.Wrapf(err, "texture %s", path)
	}
	n := toNRGBA(img)
	return decoded{img: n, alpha: !n.Opaque()}, nil
}

// looseFormats are the image overrides accepted under a texture name, keyed
// by magic number. TGA has none and is tried last. The decoders are called
// directly because the tga package registers an empty magic with the image
// package, which would make image.Decode depend on init order.
var looseFormats = []struct {
	magic  string
	decode func(io.Reader) (image.Image, error)
}{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"BM", bmp.Decode},
}

// decodeLoose decodes an image override stored under the container name.
func decodeLoose(data []byte) (image.Image, error) {
	for _, f := range looseFormats {
		if bytes.HasPrefix(data, []byte(f.magic)) {
			return f.decode(bytes.NewReader(data))
		}
	}
	return tga.Decode(bytes.NewReader(data))
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// pack converts a decoded image into a tightly packed texture. Alpha is
// kept only when requested and the source actually has it.
func pack(name string, d decoded, keepAlpha bool) *Texture {
	b := d.img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := &Texture{Name: name, Width: w, Height: h}

	if keepAlpha && d.alpha {
		t.Format = RGBA8
		t.Pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			o := d.img.PixOffset(b.Min.X, b.Min.Y+y)
			t.Pix = append(t.Pix, d.img.Pix[o:o+w*4]...)
		}
		return t
	}

	t.Format = RGB8
	t.Pix = make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		o := d.img.PixOffset(b.Min.X, b.Min.Y+y)
		row := d.img.Pix[o : o+w*4]
		for x := 0; x < w; x++ {
			t.Pix = append(t.Pix, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return t
}

// Image returns the texture as an NRGBA image.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	if t.Format == RGBA8 {
		copy(img.Pix, t.Pix)
		return img
	}
	for i := 0; i < t.Width*t.Height; i++ {
		img.Pix[i*4] = t.Pix[i*3]
		img.Pix[i*4+1] = t.Pix[i*3+1]
		img.Pix[i*4+2] = t.Pix[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}
