package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/overlay/pkg/modalsvc"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// defaultTemplates is used for built-in controllers when no template is given.
var defaultTemplates = map[string]string{
	"Confirm": "{{.question}}",
	"Prompt":  "{{with .label}}{{.}}\n\n{{end}}{{.input}}",
	"Pick":    "{{.list}}",
}

var errCancelled = errors.New("cancelled")

type showOutcome struct {
	result any
	err    error
}

const showExample = `  overlay show --controller Confirm --input question="Deploy now?"
  overlay show --controller Pick --local items=templates
  overlay show --controller Prompt --as prompt --template-url prompt.md`

var showCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show a modal and print its close result",
	Example:     showExample,
	Annotations: map[string]string{"terminal": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := showOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		rt := newRuntime(getBaseDir(), cfg, logger)
		defer rt.Close()

		if opts.Controller == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			choice, err := pickController(rt.controllers.Names())
			if err != nil {
				return err
			}
			opts.Controller = choice
		}
		if opts.Template == "" && opts.TemplateURL == "" {
			opts.Template = defaultTemplates[opts.Controller]
		}
		result, err := runModal(cmd.Context(), rt, opts)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.Marshal(map[string]any{"result": result})
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		if result != nil {
			fmt.Println(result)
		}
		return nil
	},
}

func showOptionsFromFlags(cmd *cobra.Command) (modalsvc.ShowOptions, error) {
	var opts modalsvc.ShowOptions
	opts.Controller, _ = cmd.Flags().GetString("controller")
	opts.ControllerAs, _ = cmd.Flags().GetString("as")
	opts.Template, _ = cmd.Flags().GetString("template")
	opts.TemplateURL, _ = cmd.Flags().GetString("template-url")

	localFlags, _ := cmd.Flags().GetStringArray("local")
	locals, err := parseLocals(localFlags)
	if err != nil {
		return opts, err
	}
	opts.Locals = locals

	inputFlags, _ := cmd.Flags().GetStringArray("input")
	inputs, err := parseInputs(inputFlags)
	if err != nil {
		return opts, err
	}

	delay := cfg.CloseDelay()
	if cmd.Flags().Changed("delay") {
		delay, _ = cmd.Flags().GetDuration("delay")
	}
	if delay > 0 {
		inputs["delay"] = delay
	}
	opts.Inputs = inputs
	return opts, nil
}

func pickController(names []string) (string, error) {
	var choice string
	err := huh.NewSelect[string]().
		Title("Controller").
		Options(huh.NewOptions(names...)...).
		Value(&choice).
		Run()
	if err != nil {
		return "", err
	}
	return choice, nil
}

// runModal runs the host program until the modal closes or the user quits.
func runModal(ctx context.Context, rt *runtime, opts modalsvc.ShowOptions) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(rt.host, tea.WithAltScreen(), tea.WithContext(ctx))
	rt.host.SetNotifier(p.Send)

	done := make(chan showOutcome, 1)
	go func() {
		out := awaitModal(ctx, rt.service, opts)
		done <- out
		p.Quit()
	}()

	start := time.Now()
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("run terminal: %w", err)
	}

	select {
	case out := <-done:
		rt.logger.Info("modal finished", "controller", opts.Controller, "elapsed", time.Since(start), "err", out.err)
		return out.result, out.err
	default:
		return nil, errCancelled
	}
}

func awaitModal(ctx context.Context, svc *modalsvc.Service, opts modalsvc.ShowOptions) showOutcome {
	modal, err := svc.ShowModal(ctx, opts).Await(ctx)
	if err != nil {
		return showOutcome{err: err}
	}
	result, err := modal.Close.Await(ctx)
	return showOutcome{result: result, err: err}
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("controller", "", "Controller name (prompted on a terminal when omitted)")
	showCmd.Flags().String("as", "", "Publish the controller on the scope under this name")
	showCmd.Flags().String("template", "", "Inline template markup")
	showCmd.Flags().String("template-url", "", "Template URL or path, fetched once and cached")
	showCmd.Flags().StringArray("local", nil, "Resolve a local from a named dependency (key=Dependency, repeatable)")
	showCmd.Flags().StringArray("input", nil, "Pass a controller input (key=value, repeatable)")
	showCmd.Flags().Duration("delay", 0, "Delay between close and teardown (default from config)")
	showCmd.Flags().Bool("json", false, "Machine-readable JSON")
}
