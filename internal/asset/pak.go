package asset

import (
	"archive/zip"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Pak serves files from a ZIP archive held in memory, such as the asset
// package embedded in a level file.
type Pak struct {
	files map[string]*zip.File
}

// OpenPak reads the central directory of a ZIP archive.
func OpenPak(data []byte) (*Pak, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "asset: open pak")
	}
	p := &Pak{files: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		p.files[Normalize(f.Name)] = f
	}
	return p, nil
}

func (p *Pak) Fetch(name string) ([]byte, error) {
	f, ok := p.files[Normalize(name)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, Normalize(name))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "asset: open %s in pak", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "asset: read %s in pak", f.Name)
	}
	return data, nil
}

// Len returns the number of files in the pack.
func (p *Pak) Len() int {
	return len(p.files)
}
