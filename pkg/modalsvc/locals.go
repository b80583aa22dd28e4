package modalsvc

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LocalsResolver resolves a set of named dependencies through a Registry.
type LocalsResolver struct {
	registry Registry
	logger   *slog.Logger
}

// NewLocalsResolver creates a resolver over registry.
func NewLocalsResolver(registry Registry, logger *slog.Logger) *LocalsResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalsResolver{registry: registry, logger: logger}
}

// Resolve returns nil when locals is empty. Otherwise every entry is resolved
// concurrently and the full mapping is returned, or the first error exactly
// as the failing entry produced it.
func (r *LocalsResolver) Resolve(ctx context.Context, locals map[string]Local) (map[string]any, error) {
	if len(locals) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	resolved := make(map[string]any, len(locals))

	g, gctx := errgroup.WithContext(ctx)
	for key, local := range locals {
		g.Go(func() error {
			v, err := r.resolveOne(gctx, local)
			if err != nil {
				r.logger.Debug("local failed", "key", key, "err", err)
				return err
			}
			mu.Lock()
			resolved[key] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *LocalsResolver) resolveOne(ctx context.Context, local Local) (any, error) {
	var v any
	var err error
	if name, ok := local.Name(); ok {
		v, err = r.registry.Lookup(ctx, name)
	} else {
		res, _ := local.Resolver()
		v, err = r.registry.Invoke(ctx, res)
	}
	if err != nil {
		return nil, err
	}
	if a, ok := v.(Awaitable); ok {
		return a.AwaitValue(ctx)
	}
	return v, nil
}
