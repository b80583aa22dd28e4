// Package overlay is a terminal host for modalsvc: scopes, a template
// compiler, mountable elements and a bubbletea model that composites mounted
// elements over a background view.
//
// # Quick Start
//
//	root := overlay.NewRootScope()
//	host := overlay.NewHost(nil)
//	controllers := overlay.NewControllers().
//	    Register("Confirm", newConfirm)
//
//	svc := modalsvc.New(modalsvc.Environment{
//	    Registry:    injector,
//	    Fetcher:     fetcher,
//	    Controllers: controllers,
//	    Compiler:    overlay.NewCompiler(overlay.WithWidth(60)),
//	    Scopes:      root,
//	    Body:        host,
//	})
//
//	p := tea.NewProgram(host, tea.WithAltScreen())
//	host.SetNotifier(p.Send)
//
// # Templates
//
// Markup is a Go text/template executed against the element's scope
// bindings and, unless disabled with WithMarkdown(false), rendered as
// markdown with glamour. Bindings implementing Widget (such as *List) are
// rendered by their own View.
//
// Reserved bindings:
//
//   - title   - heading drawn above the body
//   - hint    - muted footer line
//   - variant - frame color: default, danger, warning, info
//
// # Controllers
//
// Controllers register message handlers on their scope with OnMsg. The host
// routes key messages to the top-most element, which dispatches them to its
// scope. Destroying the scope drops the handlers.
package overlay
