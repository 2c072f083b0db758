package postprocess

import (
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
)

// WriteWebP encodes img as lossless WebP, creating parent directories.
func WriteWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "webp")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "webp")
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return errors.Wrapf(err, "webp encode %s", path)
	}
	return f.Close()
}
