package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marcus/overlay/pkg/modalsvc"
	"github.com/sahilm/fuzzy"
)

// Factory builds a dependency on first lookup. It may look up other
// dependencies through inj.
type Factory func(ctx context.Context, inj *Injector) (any, error)

// UnknownDependencyError is returned when a name has no value or factory.
type UnknownDependencyError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownDependencyError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("unknown dependency %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("unknown dependency %q", e.Name)
}

// CycleError is returned when factories depend on each other in a loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// Injector holds named values and lazily built singletons. It implements
// modalsvc.Registry.
type Injector struct {
	mu        sync.Mutex
	values    map[string]any
	factories map[string]Factory
	building  map[string]*build
}

type build struct {
	done  chan struct{}
	value any
	err   error
}

type resolvingKey struct{}

// New creates an empty injector.
func New() *Injector {
	return &Injector{
		values:    make(map[string]any),
		factories: make(map[string]Factory),
		building:  make(map[string]*build),
	}
}

// Value registers a ready value under name.
func (i *Injector) Value(name string, v any) *Injector {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.values[name] = v
	delete(i.factories, name)
	return i
}

// Factory registers a lazily built singleton under name.
func (i *Injector) Factory(name string, f Factory) *Injector {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.factories[name] = f
	delete(i.values, name)
	return i
}

// Names returns every registered name, sorted.
func (i *Injector) Names() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	names := make([]string, 0, len(i.values)+len(i.factories))
	for n := range i.values {
		names = append(names, n)
	}
	for n := range i.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup implements modalsvc.Registry. Factories run once on a context
// detached from the callers; each caller waits on its own ctx, so one
// cancelled lookup never fails another.
func (i *Injector) Lookup(ctx context.Context, name string) (any, error) {
	path, _ := ctx.Value(resolvingKey{}).([]string)
	for _, p := range path {
		if p == name {
			return nil, &CycleError{Path: append(append([]string(nil), path...), name)}
		}
	}

	i.mu.Lock()
	if v, ok := i.values[name]; ok {
		i.mu.Unlock()
		return v, nil
	}
	b, ok := i.building[name]
	if !ok {
		f, found := i.factories[name]
		if !found {
			i.mu.Unlock()
			return nil, i.unknown(name)
		}
		b = &build{done: make(chan struct{})}
		i.building[name] = b
		fctx := context.WithValue(context.WithoutCancel(ctx), resolvingKey{}, append(append([]string(nil), path...), name))
		go i.run(fctx, name, f, b)
	}
	i.mu.Unlock()

	select {
	case <-b.done:
		if b.err != nil {
			return nil, b.err
		}
		return b.value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (i *Injector) run(ctx context.Context, name string, f Factory, b *build) {
	b.value, b.err = f(ctx, i)

	i.mu.Lock()
	delete(i.building, name)
	if b.err == nil {
		i.values[name] = b.value
		delete(i.factories, name)
	}
	i.mu.Unlock()
	close(b.done)
}

// Invoke implements modalsvc.Registry: r.Inject names are looked up in order
// and passed to r.Func.
func (i *Injector) Invoke(ctx context.Context, r modalsvc.Resolver) (any, error) {
	if r.Func == nil {
		return nil, fmt.Errorf("resolver has no function")
	}
	args := make([]any, len(r.Inject))
	for n, name := range r.Inject {
		v, err := i.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		args[n] = v
	}
	return r.Func(ctx, args...)
}

func (i *Injector) unknown(name string) error {
	matches := fuzzy.Find(name, i.Names())
	var suggestions []string
	for n, m := range matches {
		if n == 3 {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return &UnknownDependencyError{Name: name, Suggestions: suggestions}
}
