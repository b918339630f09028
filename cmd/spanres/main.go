package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"spanres/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "spanres",
	Short:         "Resolve lazy HIR span handles to source ranges",
	Long:          `spanres loads HIR fixtures, resolves deferred span handles and renders the diagnostics that carry them`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		applyColor(cfg.Render.Color)
		stopTrace, err := setupTracing(cmd, cfg.Trace)
		if err != nil {
			return err
		}
		stopProfile, err := setupProfiling(cmd)
		if err != nil {
			stopTrace()
			return err
		}
		current = &session{config: cfg, cleanup: func() {
			stopProfile()
			stopTrace()
		}}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		current.close()
	},
}

// main registers subcommands and persistent flags and executes the root
// command. A failing command exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to spanres.toml (default: search upwards from the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Int("jobs", 0, "concurrent resolutions (0 = GOMAXPROCS)")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to render")
	flags.Bool("timings", false, "append a timing diagnostic")
	flags.Bool("metrics", false, "print resolution metrics after the run")
	flags.String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity for ring trace mode")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		current.close()
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// session holds the state shared by subcommands for one invocation.
type session struct {
	config  toolConfig
	cleanup func()
}

var current *session

func (s *session) close() {
	if s == nil || s.cleanup == nil {
		return
	}
	s.cleanup()
	s.cleanup = nil
}

// applyColor sets the global color switch. mode was validated when the
// configuration was loaded.
func applyColor(mode string) {
	t, err := parseTristate("color", mode)
	if err != nil {
		t = tristateAuto
	}
	color.NoColor = !t.enabled(os.Stdout)
}

func colorEnabled() bool {
	return !color.NoColor
}
