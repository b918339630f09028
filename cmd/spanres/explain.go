package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"spanres/internal/diagfmt"
	"spanres/internal/fixture"
	"spanres/internal/span"
	"spanres/internal/trace"
)

var explainCmd = &cobra.Command{
	Use:   "explain FIXTURE HANDLE",
	Short: "Show the range reached after every step of a handle's chain",
	Args:  cobra.ExactArgs(2),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().String("format", "table", "output format (table|json)")
}

type explainRow struct {
	Step  string `json:"step"`
	Label string `json:"label"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Error string `json:"error,omitempty"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be table or json)", format)
	}
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	return r.explain(args[0], args[1], format)
}

// explain prints the range reached after every step of handle. The table
// view opens with the chain itself.
func (r *run) explain(path, handle, format string) error {
	f, err := r.loadFixture(path)
	if err != nil {
		return err
	}
	h, err := fixture.ParseHandle(f.Snapshot, handle)
	if err != nil {
		return fmt.Errorf("handle %q: %w", handle, err)
	}

	rows := span.Explain(f.Snapshot, h)
	trace.Point(trace.FromContext(r.ctx), trace.ScopeChain, "explain", h.Chain().String())

	if format == "json" {
		out := make([]explainRow, len(rows))
		for i, row := range rows {
			step := "root"
			if row.Index >= 0 {
				step = fmt.Sprint(row.Index)
			}
			out[i] = explainRow{Step: step, Label: row.Label, Start: row.Span.Start, End: row.Span.End}
			if row.Err != nil {
				out[i].Error = row.Err.Error()
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(r.out, string(data)); err != nil {
			return err
		}
		return r.finish()
	}

	if err := diagfmt.ExplainTable(r.out, h.Chain(), rows, f.Snapshot.Files, colorEnabled()); err != nil {
		return err
	}
	return r.finish()
}
