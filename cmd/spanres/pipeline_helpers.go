package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spanres/internal/driver"
	"spanres/internal/fixture"
	"spanres/internal/observ"
	"spanres/internal/trace"
)

// run carries the per-command pipeline state: timer, metrics and options.
type run struct {
	ctx     context.Context
	cfg     toolConfig
	timer   *observ.Timer
	metrics *observ.Metrics
	out     io.Writer
	errOut  io.Writer
	timings bool
}

func newRun(cmd *cobra.Command) (*run, error) {
	flags := cmd.Root().PersistentFlags()
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	withMetrics, err := flags.GetBool("metrics")
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics flag: %w", err)
	}
	r := &run{
		ctx:     cmd.Context(),
		timer:   observ.NewTimer(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		timings: timings,
	}
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	if current != nil {
		r.cfg = current.config
	} else {
		r.cfg = defaultConfig()
	}
	if withMetrics {
		r.metrics = observ.NewMetrics(nil)
	}
	return r, nil
}

func (r *run) resolveOptions() driver.ResolveOptions {
	return driver.ResolveOptions{
		Jobs:    r.cfg.Resolve.Jobs,
		Tracer:  trace.FromContext(r.ctx),
		Metrics: r.metrics,
	}
}

func (r *run) loadFixture(path string) (*fixture.Fixture, error) {
	_, sp := trace.StartSpan(r.ctx, trace.ScopeDriver, "load_fixture")
	defer sp.End(path)
	var f *fixture.Fixture
	err := r.timer.Time("load", func() (string, error) {
		var err error
		f, err = fixture.Load(path)
		return filepath.Base(path), err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// finish prints the metrics summary, when requested.
func (r *run) finish() error {
	if r.metrics == nil {
		return nil
	}
	fmt.Fprintln(r.errOut, "metrics:")
	return r.metrics.WriteText(r.errOut)
}

// fixtureCacheKey identifies a fixture by its absolute path and content, so
// editing the file starts a fresh entry.
func fixtureCacheKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return abs + "\x00" + hex.EncodeToString(sum[:]), nil
}
