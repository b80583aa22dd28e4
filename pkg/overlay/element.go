package overlay

import (
	"errors"
	"strings"
	"sync"
	"text/template"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// ErrAlreadyMounted is returned when mounting an element that has a parent.
var ErrAlreadyMounted = errors.New("overlay: element already mounted")

// Element is a linked template bound to a scope. It can be mounted on a Host
// or inside another Element.
type Element struct {
	compiler *Compiler
	tmpl     *template.Template
	scope    *Scope

	mu       sync.Mutex
	parent   modalsvc.Container
	children []*Element
}

func newElement(c *Compiler, tmpl *template.Template, scope *Scope) *Element {
	return &Element{compiler: c, tmpl: tmpl, scope: scope}
}

// Scope returns the scope the element was linked against.
func (e *Element) Scope() *Scope {
	return e.scope
}

// Mount implements modalsvc.Element.
func (e *Element) Mount(target modalsvc.Container) error {
	if target == nil {
		return errors.New("overlay: nil mount target")
	}
	e.mu.Lock()
	if e.parent != nil {
		e.mu.Unlock()
		return ErrAlreadyMounted
	}
	e.parent = target
	e.mu.Unlock()

	if err := target.Append(e); err != nil {
		e.mu.Lock()
		e.parent = nil
		e.mu.Unlock()
		return err
	}
	return nil
}

// Detach implements modalsvc.Element. Detaching an unmounted element is a
// no-op.
func (e *Element) Detach() {
	e.mu.Lock()
	p := e.parent
	e.parent = nil
	e.mu.Unlock()
	if p != nil {
		p.Remove(e)
	}
}

// Mounted reports whether the element currently has a parent.
func (e *Element) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent != nil
}

// Append implements modalsvc.Container, nesting el below this element's body.
func (e *Element) Append(el modalsvc.Element) error {
	child, ok := el.(*Element)
	if !ok {
		return errUnsupportedElement(el)
	}
	e.mu.Lock()
	e.children = append(e.children, child)
	e.mu.Unlock()
	return nil
}

// Remove implements modalsvc.Container.
func (e *Element) Remove(el modalsvc.Element) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, c := range e.children {
		if c == el {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}

// Update routes msg to the deepest nested child, or to this element's scope.
func (e *Element) Update(msg tea.Msg) tea.Cmd {
	e.mu.Lock()
	var top *Element
	if n := len(e.children); n > 0 {
		top = e.children[n-1]
	}
	e.mu.Unlock()

	if top != nil {
		return top.Update(msg)
	}
	return e.scope.Dispatch(msg)
}

// View renders the framed element. The frame color follows the scope's
// "variant" binding, the heading its "title" and the footer its "hint".
func (e *Element) View() string {
	body, err := e.compiler.render(e.tmpl, e.scope)
	if err != nil {
		body = ErrorText.Render(err.Error())
	}

	var sb strings.Builder
	if title := e.scope.Text("title"); title != "" {
		sb.WriteString(Title.Render(title))
		sb.WriteString("\n\n")
	}
	sb.WriteString(body)

	e.mu.Lock()
	children := append([]*Element(nil), e.children...)
	e.mu.Unlock()
	for _, c := range children {
		sb.WriteString("\n")
		sb.WriteString(c.View())
	}

	if hint := e.scope.Text("hint"); hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(MutedText.Render(hint))
	}

	return frameFor(Variant(e.scope.Text("variant"))).
		Width(e.compiler.width).
		Render(sb.String())
}
