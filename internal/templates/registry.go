package templates

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the bundled definitions.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedDefinitions, "definitions")
		if err != nil {
			panic(err)
		}
		reg, err := Load(sub)
		if err != nil {
			// The definitions ship with the binary; a parse failure is a build defect.
			panic(err)
		}
		defaultReg = reg
	})
	return defaultReg
}

// Get returns the template for id, falling back to the default template.
func (r *Registry) Get(id string) Template {
	if tpl, ok := r.byID[id]; ok {
		return tpl
	}
	return r.byID[r.defaultID]
}

// Lookup returns the template for id and whether it exists.
func (r *Registry) Lookup(id string) (Template, bool) {
	tpl, ok := r.byID[id]
	return tpl, ok
}

// All returns templates in their declared order.
func (r *Registry) All() []Template {
	return append([]Template(nil), r.ordered...)
}

// DefaultID returns the id used when a lookup misses.
func (r *Registry) DefaultID() string {
	return r.defaultID
}
