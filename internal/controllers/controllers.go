// Package controllers holds the built-in modal controllers used by the CLI.
package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcus/overlay/pkg/modalsvc"
	"github.com/marcus/overlay/pkg/overlay"
)

// Register adds Confirm, Prompt and Pick to c.
func Register(c *overlay.Controllers) *overlay.Controllers {
	return c.
		Register("Confirm", NewConfirm).
		Register("Prompt", NewPrompt).
		Register("Pick", NewPick)
}

var errNoScope = errors.New("scope input is not an overlay scope")

// bindings pulls the pieces every controller needs out of its inputs.
func bindings(in modalsvc.Inputs) (*overlay.Scope, modalsvc.CloseFunc, error) {
	s, _ := in.Scope()
	scope, ok := s.(*overlay.Scope)
	if !ok {
		return nil, nil, errNoScope
	}
	closeFn, ok := in.Close()
	if !ok {
		return nil, nil, errors.New("close input is missing")
	}
	return scope, closeFn, nil
}

// lookup returns an explicit input, falling back to a resolved local.
func lookup(in modalsvc.Inputs, key string) (any, bool) {
	if v, ok := in[key]; ok {
		return v, true
	}
	v, ok := in.Locals()[key]
	return v, ok
}

func lookupString(in modalsvc.Inputs, key, def string) string {
	v, ok := lookup(in, key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// closeDelay reads the "delay" input as a duration or a duration string.
func closeDelay(in modalsvc.Inputs) (time.Duration, error) {
	v, ok := lookup(in, "delay")
	if !ok {
		return 0, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		if d == "" {
			return 0, nil
		}
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("invalid delay %q: %w", d, err)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("invalid delay %T", v)
}

// publish copies the display bindings from inputs onto the scope.
func publish(scope *overlay.Scope, in modalsvc.Inputs, title, hint string) {
	scope.Set("title", lookupString(in, "title", title))
	scope.Set("hint", lookupString(in, "hint", hint))
	if v := lookupString(in, "variant", ""); v != "" {
		scope.Set("variant", v)
	}
	for k, v := range in.Locals() {
		if _, taken := scope.Get(k); !taken {
			scope.Set(k, v)
		}
	}
}

// splitItems accepts a []string, []overlay.ListItem or comma separated string.
func splitItems(v any) ([]overlay.ListItem, error) {
	switch items := v.(type) {
	case []overlay.ListItem:
		return items, nil
	case []string:
		out := make([]overlay.ListItem, 0, len(items))
		for _, s := range items {
			out = append(out, overlay.ListItem{ID: s, Label: s})
		}
		return out, nil
	case string:
		var parts []string
		for _, p := range strings.Split(items, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return splitItems(parts)
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported items %T", v)
}
