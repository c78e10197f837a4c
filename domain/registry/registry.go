// Package registry holds the static table of supported platforms. It is
// built once at startup from configuration and never mutated afterwards.
package registry

import (
	"fmt"
	"sort"

	"social-hub/domain/model"
)

type Registry struct {
	platforms map[string]model.PlatformConfig
}

// New builds a registry from the given configs. Duplicate identifiers are a
// programming error and fail construction.
func New(configs []model.PlatformConfig) (*Registry, error) {
	m := make(map[string]model.PlatformConfig, len(configs))
	for _, c := range configs {
		if c.ID == "" {
			return nil, fmt.Errorf("platform config with empty id")
		}
		if _, dup := m[c.ID]; dup {
			return nil, fmt.Errorf("duplicate platform id %q", c.ID)
		}
		m[c.ID] = c
	}
	return &Registry{platforms: m}, nil
}

// Lookup returns the config for a platform identifier.
func (r *Registry) Lookup(id string) (model.PlatformConfig, error) {
	c, ok := r.platforms[id]
	if !ok {
		return model.PlatformConfig{}, fmt.Errorf("%w: %s", model.ErrUnsupportedPlatform, id)
	}
	return c, nil
}

// Supported reports whether the identifier is registered.
func (r *Registry) Supported(id string) bool {
	_, ok := r.platforms[id]
	return ok
}

// All returns every registered config, ordered by identifier for stable
// output.
func (r *Registry) All() []model.PlatformConfig {
	out := make([]model.PlatformConfig, 0, len(r.platforms))
	for _, c := range r.platforms {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
