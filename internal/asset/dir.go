package asset

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// Dir serves files from a filesystem tree. Lookups ignore case: the tree is
// indexed once by normalized name.
type Dir struct {
	fsys    fs.FS
	entries map[string]string // normalized name → path inside fsys
}

// OpenDir indexes a directory on disk.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "asset: open %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("asset: %s is not a directory", root)
	}
	return NewDir(os.DirFS(root))
}

// NewDir indexes every regular file of fsys.
func NewDir(fsys fs.FS) (*Dir, error) {
	d := &Dir{fsys: fsys, entries: make(map[string]string)}
	err := fs.WalkDir(fsys, ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		key := Normalize(p)
		// Lower-case names win over mixed-case duplicates.
		if existing, ok := d.entries[key]; !ok || existing != key {
			d.entries[key] = p
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "asset: index directory")
	}
	return d, nil
}

func (d *Dir) Fetch(name string) ([]byte, error) {
	p, ok := d.entries[Normalize(name)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, Normalize(name))
	}
	data, err := fs.ReadFile(d.fsys, p)
	if err != nil {
		return nil, errors.Wrapf(err, "asset: read %s", p)
	}
	return data, nil
}

// Len returns the number of indexed files.
func (d *Dir) Len() int {
	return len(d.entries)
}
