package controllers

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
	"github.com/marcus/overlay/pkg/overlay"
)

// Pick closes with the chosen item's ID, or nil when cancelled. The list is
// bound as "list".
type Pick struct {
	List    *overlay.List
	delay   time.Duration
	closeFn modalsvc.CloseFunc
}

// NewPick builds a Pick controller from the "items" input or local.
func NewPick(in modalsvc.Inputs) (any, error) {
	scope, closeFn, err := bindings(in)
	if err != nil {
		return nil, err
	}
	delay, err := closeDelay(in)
	if err != nil {
		return nil, err
	}
	raw, _ := lookup(in, "items")
	items, err := splitItems(raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("pick needs at least one item")
	}

	p := &Pick{List: overlay.NewList(items), delay: delay, closeFn: closeFn}
	publish(scope, in, "Choose", "↑/↓: move  enter: select  esc: cancel")
	scope.Set("list", p.List)
	scope.OnMsg(p.handle)
	return p, nil
}

func (p *Pick) handle(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.String() == "esc" {
		p.closeFn(nil, p.delay)
		return nil
	}
	if id := p.List.HandleKey(key); id != "" {
		p.closeFn(id, p.delay)
	}
	return nil
}
