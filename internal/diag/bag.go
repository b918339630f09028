package diag

import (
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(limit int) *Bag {
	limit = max(limit, 0)
	return &Bag{
		items: make([]Diagnostic, 0, min(limit, 256)),
		max:   limit,
	}
}

// Add appends d unless the limit is reached. Returns false when d was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the stored diagnostics. The slice aliases the bag; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends the diagnostics of other, raising the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Dedup drops diagnostics with the same code, severity, primary chain and
// message, keeping the first.
func (b *Bag) Dedup() {
	seen := make(map[string]struct{}, len(b.items))
	out := make([]Diagnostic, 0, len(b.items))
	for i := range b.items {
		key := b.items[i].Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b.items[i])
	}
	b.items = out
}

// SortResolved orders resolved diagnostics by file, start, end, severity
// (descending) and code. Unlocated diagnostics sort last.
func SortResolved(items []Resolved) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Primary, items[j].Primary
		ui, uj := pi.Placement == Unlocated, pj.Placement == Unlocated
		if ui != uj {
			return uj
		}
		if !ui {
			if pi.Span.File != pj.Span.File {
				return pi.Span.File < pj.Span.File
			}
			if pi.Span.Start != pj.Span.Start {
				return pi.Span.Start < pj.Span.Start
			}
			if pi.Span.End != pj.Span.End {
				return pi.Span.End < pj.Span.End
			}
		}
		if items[i].Severity != items[j].Severity {
			return items[i].Severity > items[j].Severity
		}
		return items[i].Code < items[j].Code
	})
}
