package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/overlay/internal/config"
	"github.com/marcus/overlay/internal/controllers"
	"github.com/marcus/overlay/internal/fetch"
	"github.com/marcus/overlay/internal/registry"
	"github.com/marcus/overlay/internal/templatecache"
	"github.com/marcus/overlay/pkg/modalsvc"
	"github.com/marcus/overlay/pkg/overlay"
)

// runtime wires the modal service to the terminal host and its collaborators.
type runtime struct {
	cfg         *config.Config
	logger      *slog.Logger
	injector    *registry.Injector
	controllers *overlay.Controllers
	fetcher     *fetch.Mux
	store       *templatecache.Store
	root        *overlay.Scope
	host        *overlay.Host
	service     *modalsvc.Service
}

func newRuntime(baseDir string, cfg *config.Config, logger *slog.Logger) *runtime {
	rt := &runtime{
		cfg:         cfg,
		logger:      logger,
		controllers: controllers.Register(overlay.NewControllers()),
		fetcher: &fetch.Mux{
			Remote: fetch.NewHTTP(cfg.TemplateBaseURL),
			Local:  fetch.NewDir(cfg.TemplateRoot(baseDir)),
		},
		root: overlay.NewRootScope(),
		host: overlay.NewHost(background),
	}

	var cache modalsvc.TemplateCache
	store, err := templatecache.Open(cfg.CacheDBPath(baseDir), logger)
	if err != nil {
		logger.Warn("template cache unavailable, using memory", "err", err)
		cache = modalsvc.NewMemoryCache()
	} else {
		rt.store = store
		cache = store
	}

	rt.injector = rt.newInjector(baseDir)

	compiler := overlay.NewCompiler(
		overlay.WithWidth(cfg.ElementWidth()),
		overlay.WithMarkdown(cfg.MarkdownEnabled()),
	)

	rt.service = modalsvc.New(modalsvc.Environment{
		Registry:    rt.injector,
		Fetcher:     rt.fetcher,
		Controllers: rt.controllers,
		Compiler:    compiler,
		Scopes:      rt.root,
		Body:        rt.host,
	},
		modalsvc.WithLogger(logger),
		modalsvc.WithTemplateCache(cache),
	)
	return rt
}

// newInjector registers the dependencies --local can name.
func (rt *runtime) newInjector(baseDir string) *registry.Injector {
	return registry.New().
		Value("cwd", baseDir).
		Value("version", version).
		Value("config", rt.cfg).
		Factory("user", func(context.Context, *registry.Injector) (any, error) {
			if u, err := user.Current(); err == nil {
				return u.Username, nil
			}
			return os.Getenv("USER"), nil
		}).
		Factory("hostname", func(context.Context, *registry.Injector) (any, error) {
			return os.Hostname()
		}).
		Factory("controllers", func(context.Context, *registry.Injector) (any, error) {
			return rt.controllers.Names(), nil
		}).
		Factory("templates", func(context.Context, *registry.Injector) (any, error) {
			if rt.store == nil {
				return []string{}, nil
			}
			entries, err := rt.store.List()
			if err != nil {
				return nil, err
			}
			urls := make([]string, len(entries))
			for i, e := range entries {
				urls[i] = e.URL
			}
			return urls, nil
		})
}

func (rt *runtime) Close() {
	rt.root.Destroy()
	if rt.store != nil {
		rt.store.Close()
	}
}

func background(width, height int) string {
	if height < 1 {
		return ""
	}
	help := overlay.MutedText.Render("ctrl+c: quit")
	return strings.Repeat("\n", height-1) + lipgloss.PlaceHorizontal(width, lipgloss.Right, help)
}
