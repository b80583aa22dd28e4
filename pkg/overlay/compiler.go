package overlay

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/overlay/pkg/modalsvc"
)

// Widget is a live binding. Templates reference it like any other value and
// its View is spliced into the rendered output after markdown rendering, so
// ANSI produced by the widget is left untouched.
type Widget interface {
	View() string
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithWidth sets the element width in cells (default: 60).
func WithWidth(w int) CompilerOption {
	return func(c *Compiler) {
		if w > 0 {
			c.width = w
		}
	}
}

// WithMarkdown toggles glamour rendering of template output (default: on).
func WithMarkdown(on bool) CompilerOption {
	return func(c *Compiler) {
		c.markdown = on
	}
}

// WithGlamourStyle sets the glamour style name or path (default: "dark").
func WithGlamourStyle(style string) CompilerOption {
	return func(c *Compiler) {
		if style != "" {
			c.style = style
		}
	}
}

// WithFuncs adds template functions.
func WithFuncs(funcs template.FuncMap) CompilerOption {
	return func(c *Compiler) {
		for k, v := range funcs {
			c.funcs[k] = v
		}
	}
}

// Compiler turns markup (Go text/template, optionally markdown) into link
// functions producing Elements.
type Compiler struct {
	width    int
	markdown bool
	style    string
	funcs    template.FuncMap

	mu       sync.Mutex
	renderer *glamour.TermRenderer
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		width:    60,
		markdown: true,
		style:    "dark",
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Width returns the configured element width.
func (c *Compiler) Width() int {
	return c.width
}

// Compile implements modalsvc.Compiler. Parse errors surface here, execution
// errors at render time.
func (c *Compiler) Compile(markup string) (modalsvc.LinkFunc, error) {
	tmpl, err := template.New("modal").Funcs(c.funcs).Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	return func(scope modalsvc.Scope) (modalsvc.Element, error) {
		s, ok := scope.(*Scope)
		if !ok {
			return nil, fmt.Errorf("link template: unsupported scope %T", scope)
		}
		return newElement(c, tmpl, s), nil
	}, nil
}

// render executes tmpl against the scope's bindings.
func (c *Compiler) render(tmpl *template.Template, scope *Scope) (string, error) {
	data := scope.Data()

	var tokens, views []string
	for k, v := range data {
		w, ok := v.(Widget)
		if !ok {
			continue
		}
		token := fmt.Sprintf("@@w%d@@", len(tokens))
		tokens = append(tokens, token)
		views = append(views, w.View())
		data[k] = token
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	out := sb.String()

	if c.markdown {
		md, err := c.renderMarkdown(out)
		if err != nil {
			return "", err
		}
		out = md
	}

	for i, token := range tokens {
		out = strings.ReplaceAll(out, token, views[i])
	}
	return out, nil
}

func (c *Compiler) renderMarkdown(text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(c.style),
			glamour.WithWordWrap(max(c.width-6, 10)),
		)
		if err != nil {
			return "", fmt.Errorf("markdown renderer: %w", err)
		}
		c.renderer = r
	}

	rendered, err := c.renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	// Glamour pads with blank lines on both ends
	return strings.Trim(rendered, "\n\r"), nil
}
