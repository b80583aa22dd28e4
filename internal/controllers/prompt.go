package controllers

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// Prompt closes with the entered text, or nil when cancelled.
type Prompt struct {
	mu      sync.Mutex
	input   textinput.Model
	delay   time.Duration
	closeFn modalsvc.CloseFunc
}

// NewPrompt builds a Prompt controller. The text field is bound as "input".
func NewPrompt(in modalsvc.Inputs) (any, error) {
	scope, closeFn, err := bindings(in)
	if err != nil {
		return nil, err
	}
	delay, err := closeDelay(in)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = lookupString(in, "placeholder", "")
	ti.SetValue(lookupString(in, "value", ""))
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	p := &Prompt{input: ti, delay: delay, closeFn: closeFn}
	publish(scope, in, "Input", "enter: submit  esc: cancel")
	scope.Set("label", lookupString(in, "label", ""))
	scope.Set("input", p)
	scope.OnMsg(p.handle)
	return p, nil
}

// Value returns the current text.
func (p *Prompt) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input.Value()
}

// View renders the text field.
func (p *Prompt) View() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input.View()
}

func (p *Prompt) handle(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			p.closeFn(p.Value(), p.delay)
			return nil
		case "esc":
			p.closeFn(nil, p.delay)
			return nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}
