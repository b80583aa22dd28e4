// Package modalsvc presents transient, user-dismissible overlays.
//
// A modal is assembled by a short pipeline: resolve the caller's locals,
// resolve the template (literal or fetched through a cache), create a child
// scope, instantiate the controller, link the template against the scope and
// mount the element. The caller gets back a Modal whose Close future settles
// once the controller calls its injected close function.
//
// # Quick Start
//
//	svc := modalsvc.New(modalsvc.Environment{
//	    Registry:    injector,
//	    Fetcher:     fetcher,
//	    Controllers: controllers,
//	    Compiler:    compiler,
//	    Scopes:      rootScope,
//	    Body:        host,
//	})
//
//	m, err := svc.Show(ctx, modalsvc.ShowOptions{
//	    Controller:  "Confirm",
//	    TemplateURL: "confirm.md",
//	    Locals:      map[string]modalsvc.Local{"user": modalsvc.Named("CurrentUser")},
//	    Inputs:      modalsvc.Inputs{"question": "Delete it?"},
//	})
//	if err != nil {
//	    return err
//	}
//	result, _ := m.Close.Await(ctx)
//
// # Controllers
//
// Controllers receive an Inputs map holding "scope", "close" and "locals",
// overlaid with the caller's Inputs. The "element" key is added only after
// the controller has been constructed, so a controller that needs its element
// must read it later from the same map (for example in a message handler).
//
// # Collaborators
//
// The package defines no rendering, templating or injection of its own.
// Registry, Fetcher, TemplateCache, ControllerFactory, Compiler,
// ScopeFactory, Container and Scheduler are supplied by the host; see
// package overlay for a terminal host built on bubbletea.
package modalsvc
