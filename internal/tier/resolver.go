package tier

import (
	"context"
	"errors"
	"sync"
)

// Resolver maps a tier name to its Permissions. Unknown tiers resolve to
// DefaultPermissions so that a missing policy row degrades to conservative
// defaults instead of failing the request.
type Resolver interface {
	Resolve(ctx context.Context, tierName string) Permissions
}

type resolver struct {
	repo Repository

	mu    sync.RWMutex
	cache map[string]Permissions
}

// NewResolver creates a Resolver backed by the given repository.
func NewResolver(repo Repository) Resolver {
	return &resolver{
		repo:  repo,
		cache: make(map[string]Permissions),
	}
}

func (r *resolver) Resolve(ctx context.Context, tierName string) Permissions {
	r.mu.RLock()
	if p, ok := r.cache[tierName]; ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	p, err := r.repo.GetByName(ctx, tierName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Known miss: cache the fallback so we don't re-query every request.
			fallback := DefaultPermissions(tierName)
			r.mu.Lock()
			r.cache[tierName] = fallback
			r.mu.Unlock()
			return fallback
		}
		// Transient repository failure: fall back without caching.
		return DefaultPermissions(tierName)
	}

	r.mu.Lock()
	r.cache[tierName] = *p
	r.mu.Unlock()
	return *p
}
