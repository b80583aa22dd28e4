package controllers

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// Confirm closes with true or false.
type Confirm struct {
	Question string
	delay    time.Duration
	closeFn  modalsvc.CloseFunc
}

// NewConfirm builds a Confirm controller. y or enter answers yes, n or esc
// answers no.
func NewConfirm(in modalsvc.Inputs) (any, error) {
	scope, closeFn, err := bindings(in)
	if err != nil {
		return nil, err
	}
	delay, err := closeDelay(in)
	if err != nil {
		return nil, err
	}

	c := &Confirm{
		Question: lookupString(in, "question", "Are you sure?"),
		delay:    delay,
		closeFn:  closeFn,
	}
	publish(scope, in, "Confirm", "y/enter: yes  n/esc: no")
	scope.Set("question", c.Question)
	scope.OnMsg(c.handle)
	return c, nil
}

// Answer closes the modal with yes.
func (c *Confirm) Answer(yes bool) {
	c.closeFn(yes, c.delay)
}

func (c *Confirm) handle(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		c.Answer(true)
	case "n", "N", "esc":
		c.Answer(false)
	}
	return nil
}
