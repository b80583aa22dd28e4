package modalsvc

import (
	"context"
	"log/slog"
	"time"
)

// Environment bundles the host collaborators a Service depends on.
type Environment struct {
	Registry    Registry
	Fetcher     Fetcher
	Controllers ControllerFactory
	Compiler    Compiler
	Scopes      ScopeFactory
	Body        Container // Default mount target
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemplateCache replaces the default in-memory template cache.
func WithTemplateCache(c TemplateCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithScheduler replaces the timer used for delayed closes.
func WithScheduler(sch Scheduler) Option {
	return func(s *Service) {
		if sch != nil {
			s.scheduler = sch
		}
	}
}

// Service shows modals.
type Service struct {
	env       Environment
	cache     TemplateCache
	scheduler Scheduler
	logger    *slog.Logger
	templates *TemplateResolver
	locals    *LocalsResolver
}

// New creates a Service over env.
func New(env Environment, opts ...Option) *Service {
	s := &Service{
		env:       env,
		cache:     NewMemoryCache(),
		scheduler: TimerScheduler{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.templates = NewTemplateResolver(s.cache, env.Fetcher, s.logger)
	s.locals = NewLocalsResolver(env.Registry, s.logger)
	return s
}

// Show presents a modal and waits until it is mounted.
func (s *Service) Show(ctx context.Context, opts ShowOptions) (*Modal, error) {
	return s.ShowModal(ctx, opts).Await(ctx)
}

// ShowModal starts presenting a modal. The returned future fails with
// ErrNoController straight away when opts.Controller is empty; otherwise it
// settles once the pipeline has mounted the element or a stage has failed.
func (s *Service) ShowModal(ctx context.Context, opts ShowOptions) *Future[*Modal] {
	if opts.Controller == "" {
		return Rejected[*Modal](ErrNoController)
	}

	identity := opts.Controller
	if opts.ControllerAs != "" {
		identity = identity + " as " + opts.ControllerAs
	}

	out := NewFuture[*Modal]()
	go func() {
		m, err := s.present(ctx, identity, opts)
		if err != nil {
			s.logger.Debug("show modal failed", "controller", identity, "err", err)
			out.Reject(err)
			return
		}
		out.Resolve(m)
	}()
	return out
}

func (s *Service) present(ctx context.Context, identity string, opts ShowOptions) (*Modal, error) {
	locals, err := s.locals.Resolve(ctx, opts.Locals)
	if err != nil {
		return nil, err
	}

	markup, err := s.templates.Resolve(ctx, opts.Template, opts.TemplateURL)
	if err != nil {
		return nil, err
	}

	scope := s.env.Scopes.NewChildScope()
	closed := NewFuture[any]()

	inputs := Inputs{
		InputScope:  scope,
		InputClose:  s.closeFunc(identity, closed),
		InputLocals: locals,
	}
	for k, v := range opts.Inputs {
		inputs[k] = v
	}

	link, err := s.env.Compiler.Compile(markup)
	if err != nil {
		scope.Destroy()
		return nil, err
	}

	// The controller is built before linking, so it cannot see its element
	// during construction. It reads inputs["element"] later if it needs it.
	controller, err := s.env.Controllers.Instantiate(identity, inputs)
	if err != nil {
		scope.Destroy()
		return nil, err
	}

	element, err := link(scope)
	if err != nil {
		scope.Destroy()
		return nil, err
	}
	inputs[InputElement] = element

	target := opts.AppendElement
	if target == nil {
		target = s.env.Body
	}
	if err := element.Mount(target); err != nil {
		scope.Destroy()
		return nil, err
	}

	closed.OnSettle(func(result any, _ error) {
		scope.Destroy()
		element.Detach()
		s.logger.Debug("modal closed", "controller", identity, "result", result)
	})

	s.logger.Debug("modal shown", "controller", identity)
	return &Modal{
		Controller: controller,
		Scope:      scope,
		Element:    element,
		Close:      closed,
	}, nil
}

func (s *Service) closeFunc(identity string, closed *Future[any]) CloseFunc {
	return func(result any, delay time.Duration) {
		if delay < 0 {
			delay = 0
		}
		s.scheduler.AfterFunc(delay, func() {
			if !closed.Resolve(result) {
				s.logger.Debug("modal already closed", "controller", identity)
			}
		})
	}
}
