package projection

import (
	"github.com/lorta04/h3-point-in-cell/internal/cache"
)

// Registry hands out one Transformer per CRS pair, building each at most once
type Registry struct {
	transformers *cache.Cache[*Transformer]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{transformers: cache.New[*Transformer]()}
}

// Get returns the Transformer for opts, creating it on first use
func (r *Registry) Get(opts Options) (*Transformer, error) {
	return r.transformers.GetOrCreate(registryKey(opts), func() (*Transformer, error) {
		return New(opts)
	})
}

// Len returns the number of live transformers
func (r *Registry) Len() int {
	return r.transformers.Stats().TotalEntries
}

// Close releases every transformer in the registry
func (r *Registry) Close() {
	for _, t := range r.transformers.Drain() {
		t.Close()
	}
}

func registryKey(opts Options) string {
	order := "lonlat"
	if opts.SourceLatFirst {
		order = "latlon"
	}
	return opts.Source + "->" + opts.Target + "/" + order
}
