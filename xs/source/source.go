// Package source maps nuclide identifiers to the data source their reaction
// tables are read from.
//
// A Descriptor is either a named library keyword (fetched remotely and cached
// on disk) or a filesystem path. The Resolver applies per-nuclide overrides
// before a single global default.
package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/m4mc/m4mc/xs/xserr"
)

// Kind tags a Descriptor variant.
type Kind int

const (
	KindLibrary Kind = iota + 1
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindPath:
		return "path"
	}
	return "unknown"
}

// Descriptor identifies where a nuclide's data comes from.
type Descriptor struct {
	kind  Kind
	value string
}

// Library returns a descriptor for a named library keyword.
func Library(name string) Descriptor {
	return Descriptor{kind: KindLibrary, value: name}
}

// Path returns a descriptor for a reaction data file on disk.
func Path(path string) Descriptor {
	return Descriptor{kind: KindPath, value: path}
}

// Parse returns a Library descriptor for known keywords and a Path otherwise.
func Parse(s string) Descriptor {
	if IsKeyword(s) {
		return Library(s)
	}
	return Path(s)
}

// Kind returns the variant tag. The zero Descriptor has kind 0.
func (d Descriptor) Kind() Kind { return d.kind }

// Value returns the library keyword or the path.
func (d Descriptor) Value() string { return d.value }

// IsZero reports whether d is unset.
func (d Descriptor) IsZero() bool { return d.kind == 0 }

// Identity returns a stable string identifying the source for cache keys.
// Paths are made absolute so equivalent relative spellings share an entry.
func (d Descriptor) Identity() string {
	if d.kind == KindPath {
		if abs, err := filepath.Abs(d.value); err == nil {
			return "path:" + abs
		}
	}
	return d.kind.String() + ":" + d.value
}

func (d Descriptor) String() string { return d.value }

// keywords are the library names that resolve to remote data.
var keywords = map[string]bool{
	"tendl-21":   true,
	"fendl-3.2c": true,
}

// IsKeyword reports whether s names a known library.
func IsKeyword(s string) bool {
	return keywords[s]
}

// Keywords returns the known library names, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolver holds the source configuration. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	def       Descriptor
	overrides map[string]Descriptor
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{overrides: make(map[string]Descriptor)}
}

// SetDefault sets the source used by nuclides without an override.
func (r *Resolver) SetDefault(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def = d
}

// ClearDefault removes the global default.
func (r *Resolver) ClearDefault() {
	r.SetDefault(Descriptor{})
}

// SetOverride sets the source for one nuclide.
func (r *Resolver) SetOverride(nuclide string, d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[nuclide] = d
}

// SetOverrides merges per-nuclide sources into the configuration.
func (r *Resolver) SetOverrides(m map[string]Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for n, d := range m {
		r.overrides[n] = d
	}
}

// Reset removes all configuration.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def = Descriptor{}
	r.overrides = make(map[string]Descriptor)
}

// Resolve returns the source for nuclide. Overrides take precedence over the
// default; with neither configured it fails with xserr.ErrConfig.
func (r *Resolver) Resolve(nuclide string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.overrides[nuclide]; ok && !d.IsZero() {
		return d, nil
	}
	if !r.def.IsZero() {
		return r.def, nil
	}
	return Descriptor{}, xserr.New(xserr.ErrConfig, "source.Resolve",
		"no data source configured; set a default library or a per-nuclide source").WithNuclide(nuclide)
}

// Snapshot returns a copy of the current configuration.
func (r *Resolver) Snapshot() (def Descriptor, overrides map[string]Descriptor) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	overrides = make(map[string]Descriptor, len(r.overrides))
	for n, d := range r.overrides {
		overrides[n] = d
	}
	return r.def, overrides
}

// Describe renders the configuration for logging.
func (r *Resolver) Describe() string {
	def, ov := r.Snapshot()
	names := make([]string, 0, len(ov))
	for n := range ov {
		names = append(names, n)
	}
	sort.Strings(names)
	s := fmt.Sprintf("default=%q", def.Value())
	for _, n := range names {
		s += fmt.Sprintf(" %s=%q", n, ov[n].Value())
	}
	return s
}
