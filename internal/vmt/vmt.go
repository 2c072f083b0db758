// Package vmt parses material descriptions and resolves patch inheritance.
package vmt

import (
	"strings"

	"github.com/pkg/errors"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/keyvalues"
)

// MaxPatchDepth bounds the chain of patch includes.
const MaxPatchDepth = 16

var (
	ErrPatchCycle = errors.New("vmt: patch include cycle")
	ErrPatchDepth = errors.New("vmt: patch include chain too deep")
	ErrNoRoot     = errors.New("vmt: no shader block")
)

// Material is a parsed description. Parameter keys are lower-cased.
type Material struct {
	Shader string
	Params map[string]string
	Blocks map[string]*keyvalues.Node
}

// Fetcher returns the bytes of a material file by normalized name.
type Fetcher func(name string) ([]byte, error)

// Parse reads a material description. The first block at the top level
// names the shader class.
func Parse(data []byte) (*Material, error) {
	nodes, err := keyvalues.Parse(data)
	if err != nil {
		return nil, err
	}

	var root *keyvalues.Node
	for _, n := range nodes {
		if n.Block && n.Key != "" {
			root = n
			break
		}
	}
	if root == nil {
		return nil, ErrNoRoot
	}

	m := &Material{
		Shader: strings.ToLower(root.Key),
		Params: make(map[string]string, len(root.Children)),
		Blocks: make(map[string]*keyvalues.Node),
	}
	for _, c := range root.Children {
		m.set(c)
	}
	return m, nil
}

func (m *Material) set(n *keyvalues.Node) {
	key := strings.ToLower(n.Key)
	if n.Block {
		delete(m.Params, key)
		m.Blocks[key] = n
		return
	}
	delete(m.Blocks, key)
	m.Params[key] = n.Value
}

func (m *Material) clone() *Material {
	out := &Material{
		Shader: m.Shader,
		Params: make(map[string]string, len(m.Params)),
		Blocks: make(map[string]*keyvalues.Node, len(m.Blocks)),
	}
	for k, v := range m.Params {
		out.Params[k] = v
	}
	for k, v := range m.Blocks {
		out.Blocks[k] = v
	}
	return out
}

// IsPatch reports whether the material inherits from another one.
func (m *Material) IsPatch() bool {
	return m.Shader == "patch"
}

// Resolve follows patch includes until a concrete shader is reached. name is
// the path m was loaded from and seeds cycle detection.
func Resolve(name string, m *Material, fetch Fetcher) (*Material, error) {
	seen := []string{asset.Normalize(name)}
	return resolve(m, fetch, seen)
}

func resolve(m *Material, fetch Fetcher, seen []string) (*Material, error) {
	if !m.IsPatch() {
		return m, nil
	}
	if len(seen) > MaxPatchDepth {
		return nil, errors.Wrapf(ErrPatchDepth, "after %s", seen[len(seen)-1])
	}

	include, ok := m.Param("include")
	if !ok || include == "" {
		return nil, errors.New("vmt: patch without include")
	}
	key := asset.Normalize(include)
	for _, s := range seen {
		if s == key {
			return nil, errors.Wrapf(ErrPatchCycle, "%s", strings.Join(append(seen, key), " -> "))
		}
	}

	data, err := fetch(key)
	if err != nil {
		return nil, errors.Wrapf(err, "vmt: patch include %s", key)
	}
	base, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "vmt: parse include %s", key)
	}
	base, err = resolve(base, fetch, append(seen, key))
	if err != nil {
		return nil, err
	}

	// TODO: nested tables inside insert/replace overwrite whole blocks; merge them key by key.
	out := base.clone()
	for _, section := range []string{"insert", "replace"} {
		if b, ok := m.Blocks[section]; ok {
			for _, c := range b.Children {
				out.set(c)
			}
		}
	}
	return out, nil
}
