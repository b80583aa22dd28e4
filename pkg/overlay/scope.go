package overlay

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// MsgHandler receives messages routed to an element's scope.
type MsgHandler func(msg tea.Msg) tea.Cmd

// WatchFunc is called after a watched binding changes.
type WatchFunc func(prev, next any)

type watcher struct {
	key string
	fn  WatchFunc
}

type handler struct {
	id uint64
	fn MsgHandler
}

// Scope holds the bindings an element renders from. Lookups fall back to
// the parent chain. Destroying a scope releases its watchers and handlers and
// destroys its children.
type Scope struct {
	id     uint64
	ids    *atomic.Uint64
	parent *Scope

	mu        sync.RWMutex
	values    map[string]any
	children  map[uint64]*Scope
	watchers  map[uint64]watcher
	handlers  []handler
	onDestroy []func()
	destroyed bool
}

// NewRootScope creates the ambient root scope.
func NewRootScope() *Scope {
	ids := &atomic.Uint64{}
	return newScope(ids, nil)
}

func newScope(ids *atomic.Uint64, parent *Scope) *Scope {
	return &Scope{
		id:       ids.Add(1),
		ids:      ids,
		parent:   parent,
		values:   make(map[string]any),
		children: make(map[uint64]*Scope),
		watchers: make(map[uint64]watcher),
	}
}

// NewChild creates a child scope.
func (s *Scope) NewChild() *Scope {
	child := newScope(s.ids, s)
	s.mu.Lock()
	if !s.destroyed {
		s.children[child.id] = child
	}
	s.mu.Unlock()
	return child
}

// NewChildScope implements modalsvc.ScopeFactory.
func (s *Scope) NewChildScope() modalsvc.Scope {
	return s.NewChild()
}

// ID returns the scope's identifier, unique within its root.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Set binds key to v. Writes to a destroyed scope are dropped.
func (s *Scope) Set(key string, v any) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	old := s.values[key]
	s.values[key] = v
	var fns []WatchFunc
	for _, w := range s.watchers {
		if w.key == key {
			fns = append(fns, w.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(old, v)
	}
}

// Get returns the binding for key, searching parents when absent.
func (s *Scope) Get(key string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.values[key]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Text returns the binding for key if it is a string.
func (s *Scope) Text(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Data returns the merged bindings visible from this scope. Nearer scopes
// shadow their ancestors.
func (s *Scope) Data() map[string]any {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	data := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].mu.RLock()
		for k, v := range chain[i].values {
			data[k] = v
		}
		chain[i].mu.RUnlock()
	}
	return data
}

// Watch calls fn whenever key is set on this scope. The returned function
// removes the watcher.
func (s *Scope) Watch(key string, fn WatchFunc) func() {
	id := s.ids.Add(1)
	s.mu.Lock()
	if !s.destroyed {
		s.watchers[id] = watcher{key: key, fn: fn}
	}
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// OnMsg registers h for messages dispatched to this scope. The returned
// function removes the handler.
func (s *Scope) OnMsg(h MsgHandler) func() {
	id := s.ids.Add(1)
	s.mu.Lock()
	if !s.destroyed {
		s.handlers = append(s.handlers, handler{id: id, fn: h})
	}
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, hd := range s.handlers {
			if hd.id == id {
				s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Dispatch routes msg to every handler in registration order.
func (s *Scope) Dispatch(msg tea.Msg) tea.Cmd {
	s.mu.RLock()
	handlers := make([]handler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	var cmds []tea.Cmd
	for _, h := range handlers {
		if cmd := h.fn(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// OnDestroy registers fn to run when the scope is destroyed.
func (s *Scope) OnDestroy(fn func()) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onDestroy = append(s.onDestroy, fn)
	s.mu.Unlock()
}

// Destroy tears the scope down. It is safe to call more than once.
func (s *Scope) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	children := make([]*Scope, 0, len(s.children))
	for _, c := range s.children {
		children = append(children, c)
	}
	fns := s.onDestroy
	s.children = nil
	s.watchers = nil
	s.handlers = nil
	s.onDestroy = nil
	s.mu.Unlock()

	for _, c := range children {
		c.Destroy()
	}
	if s.parent != nil {
		s.parent.mu.Lock()
		delete(s.parent.children, s.id)
		s.parent.mu.Unlock()
	}
	for _, fn := range fns {
		fn()
	}
}

// Destroyed reports whether Destroy has run.
func (s *Scope) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Children returns the number of live child scopes.
func (s *Scope) Children() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children)
}
