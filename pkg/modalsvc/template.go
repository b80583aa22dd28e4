package modalsvc

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// TemplateResolver obtains modal markup from a literal or from a cached
// remote source.
type TemplateResolver struct {
	cache   TemplateCache
	fetcher Fetcher
	logger  *slog.Logger
	flight  singleflight.Group
}

// NewTemplateResolver creates a resolver backed by cache and fetcher.
func NewTemplateResolver(cache TemplateCache, fetcher Fetcher, logger *slog.Logger) *TemplateResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateResolver{cache: cache, fetcher: fetcher, logger: logger}
}

// Resolve returns template when it is set, otherwise the markup stored at
// templateURL. Fetch errors are returned unchanged and never cached.
func (r *TemplateResolver) Resolve(ctx context.Context, template, templateURL string) (string, error) {
	if template != "" {
		return template, nil
	}
	if templateURL == "" {
		return "", ErrNoTemplate
	}

	if cached, ok := r.cache.Get(templateURL); ok {
		r.logger.Debug("template cache hit", "url", templateURL)
		return cached, nil
	}

	r.logger.Debug("template cache miss", "url", templateURL)
	// The shared fetch outlives any one caller; each caller stops waiting on
	// its own context.
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(templateURL, func() (any, error) {
		body, err := r.fetcher.Get(fetchCtx, templateURL)
		if err != nil {
			return nil, err
		}
		r.cache.Put(templateURL, body)
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			r.logger.Debug("template fetch failed", "url", templateURL, "err", res.Err)
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
