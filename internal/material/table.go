package material

import (
	"strings"
	"sync"

	"bsp-map-loader/internal/asset"
)

// Key identifies a material by name and the ordered search paths used to
// locate it. Two keys are equal when both parts are equal after
// normalization; the order of search paths matters.
type Key struct {
	Name        string
	SearchPaths []string
}

// NewKey normalizes name and search paths.
func NewKey(name string, searchPaths []string) Key {
	k := Key{Name: strings.TrimSuffix(asset.Normalize(name), ".vmt")}
	for _, p := range searchPaths {
		p = strings.TrimSuffix(asset.Normalize(p), "/")
		if p != "" {
			k.SearchPaths = append(k.SearchPaths, p)
		}
	}
	return k
}

func (k Key) id() string {
	var sb strings.Builder
	sb.WriteString(k.Name)
	for _, p := range k.SearchPaths {
		sb.WriteByte(0)
		sb.WriteString(p)
	}
	return sb.String()
}

func (k Key) String() string {
	if len(k.SearchPaths) == 0 {
		return k.Name
	}
	return k.Name + " [" + strings.Join(k.SearchPaths, ", ") + "]"
}

// Table is an insertion-ordered set of material keys. It is safe for
// concurrent use.
type Table struct {
	mu    sync.Mutex
	keys  []Key
	index map[string]int
}

func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Index returns the stable index of the key, registering it on first use.
func (t *Table) Index(name string, searchPaths []string) int {
	k := NewKey(name, searchPaths)
	id := k.id()

	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[id]; ok {
		return i
	}
	i := len(t.keys)
	t.keys = append(t.keys, k)
	t.index[id] = i
	return i
}

// Keys returns a snapshot of the registered keys in index order.
func (t *Table) Keys() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Key(nil), t.keys...)
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.keys)
}
