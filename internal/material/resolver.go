package material

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/batch"
	"bsp-map-loader/internal/failsoft"
	"bsp-map-loader/internal/vmt"
)

// ErrNoBaseTexture is returned for a non-water material without $basetexture.
var ErrNoBaseTexture = errors.New("material: no base texture")

// Resolver loads material descriptions and their textures from a provider.
// Textures are cached for the lifetime of the resolver.
type Resolver struct {
	provider asset.Provider
	logger   *slog.Logger
	textures *textureCache
}

func NewResolver(p asset.Provider, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		provider: p,
		logger:   logger,
		textures: newTextureCache(p),
	}
}

// prefixes returns the directories probed for a key, relative to the
// provider root. No search paths means the materials root.
func prefixes(k Key) []string {
	if len(k.SearchPaths) == 0 {
		return []string{"materials"}
	}
	out := make([]string, len(k.SearchPaths))
	for i, p := range k.SearchPaths {
		if !strings.HasPrefix(p, "materials/") && p != "materials" {
			p = asset.Join("materials", p)
		}
		out[i] = p
	}
	return out
}

// Load resolves a material. Any failure is returned to the caller.
func (r *Resolver) Load(k Key) (Descriptor, error) {
	path, err := asset.FindFirst(r.provider, k.Name+".vmt", prefixes(k))
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "material %s", k)
	}
	data, err := r.provider.Fetch(path)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "material %s", path)
	}

	m, err := vmt.Parse(data)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "material %s", path)
	}
	m, err = vmt.Resolve(path, m, func(name string) ([]byte, error) {
		return r.provider.Fetch(name)
	})
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "material %s", path)
	}

	base, hasBase := m.BaseTexture()
	if m.IsWater() && !hasBase {
		return Descriptor{Name: path, Color: Water, Translucent: true}, nil
	}
	if !hasBase {
		return Descriptor{}, errors.Wrapf(ErrNoBaseTexture, "material %s", path)
	}

	d := Descriptor{
		Name:        path,
		Color:       White,
		Translucent: m.Translucent(),
	}
	if c, ok := m.Color(); ok {
		d.Color = [4]uint8{c[0], c[1], c[2], 255}
	}
	if cut, ok := m.AlphaTest(); ok {
		d.AlphaTest = &cut
	}
	if t, ok := m.BaseTextureTransform(); ok {
		d.Transform = &t
	}

	tex, err := r.textures.load(base)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "material %s", path)
	}
	d.Texture = pack(base, tex, d.Translucent || d.AlphaTest != nil)

	if bump, ok := m.BumpMap(); ok {
		if tex, err := r.textures.load(bump); err == nil {
			d.BumpMap = pack(bump, tex, true)
		} else {
			r.logger.Debug("bump map unavailable", "material", path, "texture", bump, failsoft.Err(err))
		}
	}
	return d, nil
}

// LoadFallback resolves a material and never fails: errors are logged and
// replaced by the magenta placeholder.
func (r *Resolver) LoadFallback(k Key) Descriptor {
	d, _ := failsoft.Resolve(r.logger, "material", k.String(),
		func() (Descriptor, error) { return r.Load(k) },
		func() Descriptor { return FallbackDescriptor(k.Name) })
	return d
}

// ResolveAll materializes keys on pool. The result has the same order as
// keys and failed keys hold the fallback descriptor.
func (r *Resolver) ResolveAll(keys []Key, pool batch.Pool) []Descriptor {
	out := make([]Descriptor, len(keys))
	pool.Run(len(keys), func(i int) {
		out[i] = r.LoadFallback(keys[i])
	})
	return out
}
