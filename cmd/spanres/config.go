package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "spanres.toml"

// toolConfig mirrors spanres.toml. Every key is optional; flags set on the
// command line win over the file.
type toolConfig struct {
	Render  renderConfig  `toml:"render"`
	Trace   traceConfig   `toml:"trace"`
	Cache   cacheConfig   `toml:"cache"`
	Resolve resolveConfig `toml:"resolve"`
}

type renderConfig struct {
	Color   string `toml:"color"`
	Format  string `toml:"format"`
	Path    string `toml:"path"`
	Context int    `toml:"context"`
	Width   int    `toml:"width"`
	Notes   bool   `toml:"notes"`
	Reasons bool   `toml:"reasons"`
}

type traceConfig struct {
	Output   string `toml:"output"`
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	RingSize int    `toml:"ring_size"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type resolveConfig struct {
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

func defaultConfig() toolConfig {
	return toolConfig{
		Render: renderConfig{
			Color:   "auto",
			Format:  "pretty",
			Path:    "auto",
			Context: 1,
			Notes:   true,
			Reasons: true,
		},
		Trace: traceConfig{
			Level:    "off",
			Mode:     "stream",
			RingSize: 4096,
		},
		Resolve: resolveConfig{MaxDiagnostics: 100},
	}
}

// loadedConfig remembers where the settings came from.
type loadedConfig struct {
	Path   string // empty when no file was found
	Config toolConfig
}

func findConfigFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path, or discovers spanres.toml from startDir upwards when
// path is empty. A missing file yields the defaults.
func loadConfig(path, startDir string) (*loadedConfig, error) {
	if path == "" {
		found, ok, err := findConfigFile(startDir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &loadedConfig{Config: defaultConfig()}, nil
		}
		path = found
	}
	cfg, err := decodeConfigFile(path)
	if err != nil {
		return nil, err
	}
	return &loadedConfig{Path: path, Config: cfg}, nil
}

func decodeConfigFile(path string) (toolConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return toolConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return toolConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("render", "color") {
		if _, err := parseTristate("color", cfg.Render.Color); err != nil {
			return toolConfig{}, fmt.Errorf("%s: [render].color must be auto, on or off", path)
		}
	}
	if meta.IsDefined("render", "format") {
		switch cfg.Render.Format {
		case "pretty", "json", "lsp":
		default:
			return toolConfig{}, fmt.Errorf("%s: [render].format must be pretty, json or lsp", path)
		}
	}
	if meta.IsDefined("resolve", "jobs") && cfg.Resolve.Jobs < 0 {
		return toolConfig{}, fmt.Errorf("%s: [resolve].jobs must not be negative", path)
	}
	if meta.IsDefined("cache", "dir") && !filepath.IsAbs(cfg.Cache.Dir) && cfg.Cache.Dir != "" {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	if meta.IsDefined("trace", "output") && cfg.Trace.Output != "-" && cfg.Trace.Output != "" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(filepath.Dir(path), cfg.Trace.Output)
	}
	return cfg, nil
}
