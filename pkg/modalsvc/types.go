package modalsvc

import (
	"context"
	"time"
)

// Input keys the pipeline always sets on a controller's Inputs.
const (
	InputScope   = "scope"
	InputClose   = "close"
	InputLocals  = "locals"
	InputElement = "element"
)

// ShowOptions configures a single ShowModal call.
type ShowOptions struct {
	Controller    string           // Controller name (required)
	ControllerAs  string           // Optional alias, composed as "Controller as alias"
	Template      string           // Literal markup; wins over TemplateURL
	TemplateURL   string           // Fetched and cached when Template is empty
	Locals        map[string]Local // Named dependencies resolved before construction
	Inputs        Inputs           // Extra controller inputs, may shadow built-ins
	AppendElement Container        // Mount target; defaults to the service body
}

// Inputs is the value set handed to a controller.
type Inputs map[string]any

// Scope returns the "scope" input, if it still holds a Scope.
func (in Inputs) Scope() (Scope, bool) {
	s, ok := in[InputScope].(Scope)
	return s, ok
}

// Close returns the "close" input, if it still holds a CloseFunc.
func (in Inputs) Close() (CloseFunc, bool) {
	c, ok := in[InputClose].(CloseFunc)
	return c, ok
}

// Locals returns the "locals" input. A nil map means no locals were requested.
func (in Inputs) Locals() map[string]any {
	l, _ := in[InputLocals].(map[string]any)
	return l
}

// Element returns the "element" input once linking has happened.
func (in Inputs) Element() (Element, bool) {
	e, ok := in[InputElement].(Element)
	return e, ok
}

// CloseFunc settles the modal's close future with result after delay.
// Settlement is always asynchronous; calls after the first are ignored.
type CloseFunc func(result any, delay time.Duration)

// Resolver is an invocable local. Inject names the registry entries passed to
// Func, in order. Func may return a plain value or an Awaitable.
type Resolver struct {
	Inject []string
	Func   func(ctx context.Context, args ...any) (any, error)
}

// Local is either a named registry lookup or a Resolver.
type Local struct {
	name     string
	resolver *Resolver
}

// Named returns a Local resolved by looking dep up in the registry.
func Named(dep string) Local {
	return Local{name: dep}
}

// Resolve returns a Local resolved by invoking r through the registry.
func Resolve(r Resolver) Local {
	return Local{resolver: &r}
}

// ResolveFunc is shorthand for a Resolver without injected arguments.
func ResolveFunc(fn func(ctx context.Context) (any, error)) Local {
	return Resolve(Resolver{Func: func(ctx context.Context, _ ...any) (any, error) {
		return fn(ctx)
	}})
}

// Name returns the dependency name for a named local.
func (l Local) Name() (string, bool) {
	return l.name, l.resolver == nil
}

// Resolver returns the resolver for an invocable local.
func (l Local) Resolver() (Resolver, bool) {
	if l.resolver == nil {
		return Resolver{}, false
	}
	return *l.resolver, true
}

// Modal is the handle returned once an overlay is presented. Scope and
// Element belong to this modal until Close settles, after which both are
// destroyed and detached.
type Modal struct {
	Controller any
	Scope      Scope
	Element    Element
	Close      *Future[any]
}

// Registry looks up named dependencies and invokes resolvers.
type Registry interface {
	Lookup(ctx context.Context, name string) (any, error)
	Invoke(ctx context.Context, r Resolver) (any, error)
}

// Fetcher retrieves remote template markup.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// TemplateCache stores fetched markup keyed by template URL.
type TemplateCache interface {
	Get(key string) (string, bool)
	Put(key, value string)
}

// ControllerFactory builds a controller from an identity such as
// "Confirm" or "Confirm as dlg".
type ControllerFactory interface {
	Instantiate(identity string, inputs Inputs) (any, error)
}

// Compiler turns markup into a link function.
type Compiler interface {
	Compile(markup string) (LinkFunc, error)
}

// LinkFunc binds compiled markup to a scope, producing a live element.
type LinkFunc func(scope Scope) (Element, error)

// Scope is a presentation scope owned by one modal.
type Scope interface {
	Destroy()
}

// ScopeFactory creates child scopes off the ambient root.
type ScopeFactory interface {
	NewChildScope() Scope
}

// Element is a linked, mountable piece of UI.
type Element interface {
	Mount(target Container) error
	Detach()
}

// Container accepts mounted elements.
type Container interface {
	Append(el Element) error
	Remove(el Element)
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}
