// Package asset defines the byte-provider capability the loaders consume and a
// few providers backed by directories, filesystems and ZIP packs.
package asset

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by providers for names they do not hold.
var ErrNotFound = errors.New("asset: not found")

// Provider returns the bytes of a logical asset name such as
// "materials/brick/wall01.vmt". Implementations must be idempotent and safe
// for concurrent use.
type Provider interface {
	Fetch(name string) ([]byte, error)
}

// Normalize lower-cases a logical name, converts backslashes and strips
// redundant separators so that lookups are case and separator insensitive.
func Normalize(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}

// Join concatenates a search prefix and a name into a normalized logical name.
func Join(prefix, name string) string {
	return Normalize(Normalize(prefix) + "/" + Normalize(name))
}

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// FindFirst probes <prefix>/<name> for each prefix in order and returns the
// first name the provider holds.
func FindFirst(p Provider, name string, prefixes []string) (string, error) {
	for _, prefix := range prefixes {
		candidate := Join(prefix, name)
		if _, err := p.Fetch(candidate); err == nil {
			return candidate, nil
		} else if !IsNotFound(err) {
			return "", err
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s in [%s]", name, strings.Join(prefixes, ", "))
}

// Chain tries each provider in order; the first one holding a name wins.
type Chain []Provider

func (c Chain) Fetch(name string) ([]byte, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		data, err := p.Fetch(name)
		if err == nil {
			return data, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, errors.Wrap(ErrNotFound, Normalize(name))
}
