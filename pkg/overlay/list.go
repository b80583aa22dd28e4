package overlay

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ListItem represents an item in a List.
type ListItem struct {
	ID    string // Unique identifier for this item
	Label string // Display text
	Data  any    // Optional associated data
}

// ListOption is a functional option for List.
type ListOption func(*List)

// WithMaxVisible sets the maximum number of visible items.
func WithMaxVisible(n int) ListOption {
	return func(l *List) {
		if n > 0 {
			l.maxVisible = n
		}
	}
}

// List is a scrollable, selectable list widget. Bind it on a scope and
// reference it from a template; route key messages to HandleKey.
type List struct {
	mu           sync.Mutex
	items        []ListItem
	selected     int
	maxVisible   int
	scrollOffset int
}

// NewList creates a list with the first item selected.
func NewList(items []ListItem, opts ...ListOption) *List {
	l := &List{items: items, maxVisible: 5}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Selected returns the selected item, or false for an empty list.
func (l *List) Selected() (ListItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return ListItem{}, false
	}
	return l.items[l.selected], true
}

// HandleKey moves the selection. It returns the selected item's ID when the
// key confirms a choice.
func (l *List) HandleKey(msg tea.KeyMsg) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return ""
	}

	switch msg.String() {
	case "up", "k":
		if l.selected > 0 {
			l.selected--
		}
	case "down", "j":
		if l.selected < len(l.items)-1 {
			l.selected++
		}
	case "home", "g":
		l.selected = 0
	case "end", "G":
		l.selected = len(l.items) - 1
	case "enter":
		return l.items[l.selected].ID
	}
	return ""
}

// View implements Widget.
func (l *List) View() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) == 0 {
		return MutedText.Render("(no items)")
	}

	visibleCount := min(l.maxVisible, len(l.items))

	// Keep selection visible
	if l.selected < l.scrollOffset {
		l.scrollOffset = l.selected
	} else if l.selected >= l.scrollOffset+visibleCount {
		l.scrollOffset = l.selected - visibleCount + 1
	}
	l.scrollOffset = max(0, min(l.scrollOffset, len(l.items)-visibleCount))

	var lines []string
	if l.scrollOffset > 0 {
		lines = append(lines, MutedText.Render("↑ more above"))
	}
	for i := 0; i < visibleCount; i++ {
		idx := l.scrollOffset + i
		item := l.items[idx]
		if idx == l.selected {
			lines = append(lines, ListCursor.Render("> ")+ListItemSelected.Render(item.Label))
		} else {
			lines = append(lines, "  "+ListItemNormal.Render(item.Label))
		}
	}
	if l.scrollOffset+visibleCount < len(l.items) {
		lines = append(lines, MutedText.Render("↓ more below"))
	}
	return strings.Join(lines, "\n")
}
