package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/overlay/pkg/modalsvc"
)

// parsePairs splits repeated key=value flag values.
func parsePairs(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --%s %q: want key=value", flag, v)
		}
		out[k] = val
	}
	return out, nil
}

// parseLocals turns key=Dependency pairs into named locals.
func parseLocals(values []string) (map[string]modalsvc.Local, error) {
	pairs, err := parsePairs("local", values)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	locals := make(map[string]modalsvc.Local, len(pairs))
	for k, dep := range pairs {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			return nil, fmt.Errorf("invalid --local %q: empty dependency name", k)
		}
		locals[k] = modalsvc.Named(dep)
	}
	return locals, nil
}

// parseInputs turns key=value pairs into controller inputs. The reserved
// input names cannot be set from the command line.
func parseInputs(values []string) (modalsvc.Inputs, error) {
	pairs, err := parsePairs("input", values)
	if err != nil {
		return nil, err
	}
	in := make(modalsvc.Inputs, len(pairs))
	for k, v := range pairs {
		switch k {
		case modalsvc.InputScope, modalsvc.InputClose, modalsvc.InputLocals, modalsvc.InputElement:
			return nil, fmt.Errorf("invalid --input %q: reserved name", k)
		}
		in[k] = v
	}
	return in, nil
}
