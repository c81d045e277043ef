package accessor

import (
	"fmt"

	"ctxsync/internal/config"
)

// Registry maps accessor kinds to their implementation. Build it once per run.
type Registry struct {
	byKind map[config.AccessorKind]Accessor
}

// NewRegistry returns all accessors; previewRows <= 0 uses the default.
func NewRegistry(previewRows int) *Registry {
	if previewRows <= 0 {
		previewRows = config.DefaultPreviewRows
	}
	r := &Registry{byKind: map[config.AccessorKind]Accessor{}}
	for _, a := range []Accessor{
		Columns{},
		Description{},
		Preview{Rows: previewRows},
		Profiling{},
	} {
		r.byKind[a.Kind()] = a
	}
	return r
}

// Resolve returns the accessors for kinds in canonical order, dropping
// duplicates. An unknown kind is an error.
func (r *Registry) Resolve(kinds []config.AccessorKind) ([]Accessor, error) {
	want := make(map[config.AccessorKind]bool, len(kinds))
	for _, k := range kinds {
		if _, ok := r.byKind[k]; !ok {
			return nil, fmt.Errorf("unknown accessor %q", k)
		}
		want[k] = true
	}

	var out []Accessor
	for _, k := range config.AllAccessorKinds {
		if want[k] {
			out = append(out, r.byKind[k])
		}
	}
	return out, nil
}
