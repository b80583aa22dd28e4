package modalsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type fakeRegistry struct {
	values map[string]any
}

func (r *fakeRegistry) Lookup(_ context.Context, name string) (any, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown dependency %q", name)
	}
	return v, nil
}

func (r *fakeRegistry) Invoke(ctx context.Context, res Resolver) (any, error) {
	args := make([]any, 0, len(res.Inject))
	for _, name := range res.Inject {
		v, err := r.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return res.Func(ctx, args...)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	body  map[string]string
	err   error
}

func newFakeFetcher(body map[string]string) *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), body: body}
}

func (f *fakeFetcher) Get(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if f.err != nil {
		return "", f.err
	}
	b, ok := f.body[url]
	if !ok {
		return "", fmt.Errorf("404 %s", url)
	}
	return b, nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeScope struct {
	mu        sync.Mutex
	values    map[string]any
	destroyed bool
}

func (s *fakeScope) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *fakeScope) set(k string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[k] = v
}

func (s *fakeScope) get(k string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[k]
}

func (s *fakeScope) isDestroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

type fakeScopes struct {
	created atomic.Int32
	last    atomic.Pointer[fakeScope]
}

func (f *fakeScopes) NewChildScope() Scope {
	f.created.Add(1)
	s := &fakeScope{values: make(map[string]any)}
	f.last.Store(s)
	return s
}

type fakeElement struct {
	mu     sync.Mutex
	markup string
	parent Container
}

func (e *fakeElement) Mount(target Container) error {
	if err := target.Append(e); err != nil {
		return err
	}
	e.mu.Lock()
	e.parent = target
	e.mu.Unlock()
	return nil
}

func (e *fakeElement) Detach() {
	e.mu.Lock()
	p := e.parent
	e.parent = nil
	e.mu.Unlock()
	if p != nil {
		p.Remove(e)
	}
}

func (e *fakeElement) attached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent != nil
}

type fakeContainer struct {
	mu       sync.Mutex
	name     string
	children []Element
	fail     error
}

func (c *fakeContainer) Append(el Element) error {
	if c.fail != nil {
		return c.fail
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = append(c.children, el)
	return nil
}

func (c *fakeContainer) Remove(el Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, child := range c.children {
		if child == el {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

func (c *fakeContainer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.children)
}

type fakeCompiler struct {
	compiled atomic.Int32
}

func (c *fakeCompiler) Compile(markup string) (LinkFunc, error) {
	c.compiled.Add(1)
	if strings.Contains(markup, "{{broken") {
		return nil, errors.New("parse error")
	}
	return func(Scope) (Element, error) {
		return &fakeElement{markup: markup}, nil
	}, nil
}

// fakeControllers instantiates controllers registered by name. Identities of
// the form "Name as alias" publish the instance on the scope under alias.
type fakeControllers struct {
	mu         sync.Mutex
	ctors      map[string]func(Inputs) (any, error)
	identities []string
	inputs     Inputs
}

func (f *fakeControllers) Instantiate(identity string, in Inputs) (any, error) {
	f.mu.Lock()
	f.identities = append(f.identities, identity)
	f.inputs = in
	f.mu.Unlock()

	name, alias, _ := strings.Cut(identity, " as ")
	ctor, ok := f.ctors[name]
	if !ok {
		return nil, fmt.Errorf("controller %q not registered", name)
	}
	ctrl, err := ctor(in)
	if err != nil {
		return nil, err
	}
	if alias != "" {
		if s, ok := in[InputScope].(*fakeScope); ok {
			s.set(alias, ctrl)
		}
	}
	return ctrl, nil
}

func (f *fakeControllers) lastInputs() Inputs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs
}

// manualScheduler queues callbacks until flush is called.
type manualScheduler struct {
	mu     sync.Mutex
	queue  []func()
	delays []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, f)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) flush() {
	s.mu.Lock()
	q := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, f := range q {
		f()
	}
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
