package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/marcus/overlay/internal/config"
	"github.com/marcus/overlay/internal/suggest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version string
	baseDir string
	cfg     *config.Config
	logger  = slog.New(slog.NewJSONHandler(io.Discard, nil))

	logLevel string
	logFile  string
	logOut   io.Closer
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Show modal dialogs in the terminal",
	Long: `overlay - resolve a template and its locals, build a controller, and show the
result as a modal layered over the terminal. The close result is printed on exit.`,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(baseDir)
		if err != nil {
			return err
		}
		return initLogger(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOut != nil {
			logOut.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		if name := firstNonFlagArg(os.Args[1:]); name != "" && strings.HasPrefix(err.Error(), "unknown command") {
			if s := suggestCommands(name); len(s) > 0 {
				fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", strings.Join(s, ", "))
			}
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)
	rootCmd.SetFlagErrorFunc(flagErrorWithHint)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else warn)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append JSON logs to this file instead of stderr")
}

func initBaseDir() {
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the base directory for the project
func getBaseDir() string {
	return baseDir
}

// initLogger installs the JSON slog handler. Commands that own the terminal
// discard logs unless --log-file is given.
func initLogger(cmd *cobra.Command) error {
	level := logLevel
	if level == "" && cfg != nil {
		level = cfg.LogLevel
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logOut = f
		w = f
	case ownsTerminal(cmd):
		w = io.Discard
	}

	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func ownsTerminal(cmd *cobra.Command) bool {
	return cmd.Annotations["terminal"] == "true"
}

// firstNonFlagArg returns the first argument that is not a flag.
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// suggestCommands returns the subcommands closest to name.
func suggestCommands(name string) []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		if c.IsAvailableCommand() {
			names = append(names, c.Name())
		}
	}
	return suggest.Names(name, names)
}

// flagErrorWithHint adds alias hints and near matches to unknown flag errors.
func flagErrorWithHint(c *cobra.Command, err error) error {
	name, ok := strings.CutPrefix(err.Error(), "unknown flag: ")
	if !ok {
		return err
	}
	if hint := suggest.GetFlagHint(name); hint != "" {
		return fmt.Errorf("%w (try %s)", err, hint)
	}
	var valid []string
	c.Flags().VisitAll(func(f *pflag.Flag) {
		valid = append(valid, "--"+f.Name)
	})
	if s := suggest.Flag(name, valid); len(s) > 0 {
		return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return err
}
