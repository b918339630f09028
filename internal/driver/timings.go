package driver

import (
	"fmt"

	"github.com/goccy/go-json"

	"spanres/internal/diag"
	"spanres/internal/observ"
)

type timingPayload struct {
	Kind      string               `json:"kind"`
	Path      string               `json:"path,omitempty"`
	TotalMS   float64              `json:"total_ms"`
	Phases    []observ.PhaseReport `json:"phases"`
	Precise   int                  `json:"precise"`
	Fallback  int                  `json:"fallback"`
	Unlocated int                  `json:"unlocated"`
}

// AppendTimingDiagnostic adds an unlocated OBS6001 diagnostic carrying the
// timer report and resolution stats as a JSON note. A full bag is extended
// rather than losing the entry.
func AppendTimingDiagnostic(bag *diag.Bag, kind, path string, report observ.Report, stats Stats) {
	if bag == nil {
		return
	}
	if kind == "" {
		kind = "resolve"
	}
	payload := timingPayload{
		Kind:      kind,
		Path:      path,
		TotalMS:   report.TotalMS,
		Phases:    report.Phases,
		Precise:   stats.Precise,
		Fallback:  stats.Fallback,
		Unlocated: stats.Unlocated,
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Notes:    []diag.Note{{Msg: string(data)}},
	}

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
