package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"spanres/internal/ui"
)

const watchDebounce = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch FIXTURE...",
	Short: "Re-run check whenever a fixture changes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}

	targets := make(map[string]string, len(args)) // abs -> as given
	dirs := make(map[string]struct{})
	for _, p := range args {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace files instead of writing them, so watch the
	// directories and filter by name.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	checkOne := func(path string) {
		r.checkFixture(path, ui.NopSink{}).print(r.out)
	}
	for _, p := range args {
		checkOne(p)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return r.finish()
		case ev, ok := <-w.Events:
			if !ok {
				return r.finish()
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path, ok := targets[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			pending[path] = struct{}{}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return r.finish()
			}
			fmt.Fprintf(r.errOut, "watch: %v\n", err)
		case <-timer.C:
			for path := range pending {
				checkOne(path)
			}
			clear(pending)
		}
	}
}
