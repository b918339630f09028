package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"spanres/internal/driver"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/testkit"
	"spanres/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check FIXTURE...",
	Short: "Verify fixture expectations and tree invariants",
	Long: `Check loads each fixture, validates its syntax trees, resolves every
[[expect]] handle and compares the outcome. Every resolution is also checked
to narrow monotonically step by step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

type checkReport struct {
	path     string
	trees    int
	expects  int
	failures []string
	warnings []string
	err      error
}

func (rep *checkReport) fail(format string, args ...any) {
	rep.failures = append(rep.failures, fmt.Sprintf(format, args...))
}

func (rep *checkReport) failed() int {
	if rep.err != nil {
		return 1
	}
	return len(rep.failures)
}

func (rep *checkReport) print(w io.Writer) {
	switch {
	case rep.err != nil:
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), rep.path, rep.err)
	case len(rep.failures) == 0:
		fmt.Fprintf(w, "%s %s (%d trees, %d expectations)\n", color.GreenString("ok  "), rep.path, rep.trees, rep.expects)
	default:
		fmt.Fprintf(w, "%s %s\n", color.RedString("FAIL"), rep.path)
		for _, msg := range rep.failures {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}
	for _, msg := range rep.warnings {
		fmt.Fprintf(w, "    %s %s\n", color.YellowString("warning:"), msg)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseTristate("ui", uiValue)
	if err != nil {
		return err
	}

	var reports []*checkReport
	if mode.enabled(os.Stdout) {
		reports, err = r.checkWithUI(args)
		if err != nil {
			return err
		}
	} else {
		reports = r.checkAll(args, ui.NopSink{})
	}

	failed := 0
	for _, rep := range reports {
		rep.print(r.out)
		failed += rep.failed()
	}
	if err := r.finish(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func (r *run) checkAll(paths []string, sink ui.ProgressSink) []*checkReport {
	for _, p := range paths {
		sink.OnEvent(ui.Event{File: p, Status: ui.StatusQueued})
	}
	reports := make([]*checkReport, 0, len(paths))
	for _, p := range paths {
		reports = append(reports, r.checkFixture(p, sink))
	}
	return reports
}

// checkWithUI runs the checks in the background while the progress view
// renders; the reports are printed once the view exits.
func (r *run) checkWithUI(paths []string) ([]*checkReport, error) {
	events := make(chan ui.Event, 256)
	done := make(chan []*checkReport, 1)
	// Output written during the run would tear the view.
	out, errOut := r.out, r.errOut
	r.out, r.errOut = io.Discard, io.Discard

	go func() {
		reports := r.checkAll(paths, ui.ChannelSink{Ch: events})
		close(events)
		done <- reports
	}()

	model := ui.NewProgressModel("check", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(r.ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep draining so the worker can finish.
		go func() {
			for range events {
			}
		}()
	}
	reports := <-done
	r.out, r.errOut = out, errOut
	if uiErr != nil && !isCanceled(r.ctx) {
		return reports, uiErr
	}
	return reports, nil
}

func isCanceled(ctx context.Context) bool {
	return ctx.Err() != nil
}

func (r *run) checkFixture(path string, sink ui.ProgressSink) *checkReport {
	rep := &checkReport{path: path}
	started := time.Now()
	stage := func(st ui.Stage) {
		sink.OnEvent(ui.Event{File: path, Stage: st, Status: ui.StatusWorking})
	}
	finish := func(st ui.Stage) *checkReport {
		status := ui.StatusDone
		if rep.failed() > 0 {
			status = ui.StatusError
		}
		sink.OnEvent(ui.Event{File: path, Stage: st, Status: status, Err: rep.err, Elapsed: time.Since(started)})
		return rep
	}

	stage(ui.StageLoad)
	f, err := r.loadFixture(path)
	if err != nil {
		rep.err = err
		return finish(ui.StageLoad)
	}
	rep.expects = len(f.Expectations)
	fs := f.Snapshot.Files

	stage(ui.StageInvariants)
	idx := r.timer.Begin("invariants")
	for i := 0; i < fs.Len(); i++ {
		fid := source.FileID(i)
		sf := fs.Get(fid)
		if err := testkit.CheckNormalized(sf); err != nil {
			rep.warnings = append(rep.warnings, err.Error())
		}
		tree := f.Tree(fid)
		if tree == nil || tree.Len() == 0 {
			continue
		}
		rep.trees++
		if err := testkit.CheckTreeInvariants(tree, sf); err != nil {
			rep.fail("%s: %v", sf.Path, err)
		}
	}
	r.timer.End(idx, "")

	stage(ui.StageResolve)
	handles := make([]span.LazySpan, len(f.Expectations))
	for i := range f.Expectations {
		handles[i] = f.Expectations[i].Handle
	}
	idx = r.timer.Begin("resolve")
	results, err := driver.ResolveHandles(r.ctx, f.Snapshot, handles, r.resolveOptions())
	r.timer.End(idx, fmt.Sprintf("%d handles", len(handles)))
	if err != nil {
		rep.err = err
		return finish(ui.StageResolve)
	}
	for i, res := range results {
		e := &f.Expectations[i]
		if err := e.Check(res.Span, res.Err); err != nil {
			rep.fail("%v", err)
		}
		if err := testkit.CheckNarrowing(f.Snapshot, e.Handle); err != nil {
			rep.fail("%s: %v", e.Path, err)
		}
	}
	return finish(ui.StageResolve)
}
