package overlay

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// RefreshMsg asks the program to redraw after a layer was mounted or
// removed from outside the update loop.
type RefreshMsg struct{}

func errUnsupportedElement(el modalsvc.Element) error {
	return fmt.Errorf("overlay: cannot mount %T", el)
}

// Host is the document body: a bubbletea model drawing a background with
// mounted elements composited on top. Keys go to the top-most element.
type Host struct {
	mu         sync.Mutex
	background func(width, height int) string
	layers     []*Element
	width      int
	height     int
	notify     func(tea.Msg)
}

// NewHost creates a Host drawing background behind its layers. A nil
// background draws nothing.
func NewHost(background func(width, height int) string) *Host {
	if background == nil {
		background = func(int, int) string { return "" }
	}
	return &Host{background: background, width: 80, height: 24}
}

// SetNotifier installs the function used to wake the program when layers
// change, typically (*tea.Program).Send. It is called on its own goroutine so
// mounts from inside Update cannot block the event loop.
func (h *Host) SetNotifier(fn func(tea.Msg)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notify = fn
}

// Append implements modalsvc.Container.
func (h *Host) Append(el modalsvc.Element) error {
	e, ok := el.(*Element)
	if !ok {
		return errUnsupportedElement(el)
	}
	h.mu.Lock()
	h.layers = append(h.layers, e)
	notify := h.notify
	h.mu.Unlock()

	if notify != nil {
		go notify(RefreshMsg{})
	}
	return nil
}

// Remove implements modalsvc.Container.
func (h *Host) Remove(el modalsvc.Element) {
	h.mu.Lock()
	removed := false
	for i, l := range h.layers {
		if l == el {
			h.layers = append(h.layers[:i], h.layers[i+1:]...)
			removed = true
			break
		}
	}
	notify := h.notify
	h.mu.Unlock()

	if removed && notify != nil {
		go notify(RefreshMsg{})
	}
}

// Layers returns the number of mounted elements.
func (h *Host) Layers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.layers)
}

// Top returns the top-most element, or nil.
func (h *Host) Top() *Element {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.layers) == 0 {
		return nil
	}
	return h.layers[len(h.layers)-1]
}

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.mu.Lock()
		h.width, h.height = msg.Width, msg.Height
		h.mu.Unlock()
		return h, nil
	case RefreshMsg:
		return h, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return h, tea.Quit
		}
	}

	if top := h.Top(); top != nil {
		return h, top.Update(msg)
	}
	return h, nil
}

// View implements tea.Model.
func (h *Host) View() string {
	h.mu.Lock()
	width, height := h.width, h.height
	layers := append([]*Element(nil), h.layers...)
	h.mu.Unlock()

	view := h.background(width, height)
	for _, l := range layers {
		view = Composite(view, l.View(), width, height)
	}
	return view
}
