package platform

import (
	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Registry holds the adapters for configured platforms keyed by platform
// name. Only platforms in domain.SupportedPlatforms ever get an entry.
type Registry struct {
	adapters map[domain.Platform]domain.PlatformAdapter
}

// NewRegistry builds a registry from configured base URLs. Platforms not
// present in the configuration or outside the supported set are skipped.
func NewRegistry(baseURLs map[string]string) *Registry {
	adapters := make(map[domain.Platform]domain.PlatformAdapter)
	for _, p := range domain.SupportedPlatforms {
		base, ok := baseURLs[string(p)]
		if !ok || base == "" {
			continue
		}
		adapters[p] = NewAdapter(p, base)
	}
	return &Registry{adapters: adapters}
}

// Lookup returns the adapter for a platform, or false when the platform
// has no configured adapter.
func (r *Registry) Lookup(p domain.Platform) (domain.PlatformAdapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Register installs an adapter, replacing any existing one for the same
// platform. Used in tests and for custom adapter wiring.
func (r *Registry) Register(a domain.PlatformAdapter) {
	if r.adapters == nil {
		r.adapters = make(map[domain.Platform]domain.PlatformAdapter)
	}
	r.adapters[a.Platform()] = a
}

// Platforms lists the configured platforms in the declared support order.
func (r *Registry) Platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(r.adapters))
	for _, p := range domain.SupportedPlatforms {
		if _, ok := r.adapters[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
