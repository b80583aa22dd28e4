package overlay

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marcus/overlay/pkg/modalsvc"
)

// ControllerFunc constructs a controller from its inputs.
type ControllerFunc func(in modalsvc.Inputs) (any, error)

// UnknownControllerError is returned for identities with no registration.
type UnknownControllerError struct {
	Name string
}

func (e *UnknownControllerError) Error() string {
	return fmt.Sprintf("controller %q is not registered", e.Name)
}

// Controllers is a named ControllerFunc registry implementing
// modalsvc.ControllerFactory.
type Controllers struct {
	mu    sync.RWMutex
	ctors map[string]ControllerFunc
}

// NewControllers creates an empty registry.
func NewControllers() *Controllers {
	return &Controllers{ctors: make(map[string]ControllerFunc)}
}

// Register adds or replaces the constructor for name.
func (c *Controllers) Register(name string, fn ControllerFunc) *Controllers {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctors[name] = fn
	return c
}

// Names returns the registered controller names, sorted.
func (c *Controllers) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.ctors))
	for n := range c.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseIdentity splits "Name as alias" into its parts.
func ParseIdentity(identity string) (name, alias string) {
	name, alias, _ = strings.Cut(identity, " as ")
	return strings.TrimSpace(name), strings.TrimSpace(alias)
}

// Instantiate implements modalsvc.ControllerFactory. When identity carries an
// alias and the "scope" input is a *Scope, the controller is bound on the
// scope under that alias.
func (c *Controllers) Instantiate(identity string, in modalsvc.Inputs) (any, error) {
	name, alias := ParseIdentity(identity)

	c.mu.RLock()
	ctor, ok := c.ctors[name]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownControllerError{Name: name}
	}

	ctrl, err := ctor(in)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", name, err)
	}

	if alias != "" {
		if s, ok := in[modalsvc.InputScope].(*Scope); ok {
			s.Set(alias, ctrl)
		}
	}
	return ctrl, nil
}
