package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadSettings merges spanres.toml with the flags that were set explicitly.
func loadSettings(cmd *cobra.Command, args []string) (toolConfig, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return toolConfig{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	start := "."
	if len(args) > 0 {
		start = filepath.Dir(args[0])
	}
	loaded, err := loadConfig(path, start)
	if err != nil {
		return toolConfig{}, err
	}
	cfg := loaded.Config
	if err := overrideFromFlags(&cfg, flags); err != nil {
		return toolConfig{}, err
	}
	return cfg, nil
}

func overrideFromFlags(cfg *toolConfig, flags *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err != nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetString(name)
	}
	num := func(name string, dst *int) {
		if err != nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetInt(name)
	}
	str("color", &cfg.Render.Color)
	str("trace", &cfg.Trace.Output)
	str("trace-level", &cfg.Trace.Level)
	str("trace-mode", &cfg.Trace.Mode)
	num("trace-ring-size", &cfg.Trace.RingSize)
	num("jobs", &cfg.Resolve.Jobs)
	num("max-diagnostics", &cfg.Resolve.MaxDiagnostics)
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	// An output file without a level means "trace the passes".
	if cfg.Trace.Output != "" && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	return nil
}
