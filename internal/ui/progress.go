package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// stageWeight is the share of one fixture's work finished once a stage has
// started.
var stageWeight = map[Stage]float64{
	StageLoad:       0.1,
	StageInvariants: 0.4,
	StageResolve:    0.7,
}

var stageVerb = map[Stage]string{
	StageLoad:       "loading",
	StageInvariants: "validating",
	StageResolve:    "resolving",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type fixtureRow struct {
	path    string
	stage   Stage
	status  Status
	elapsed time.Duration
}

func (r fixtureRow) finished() bool {
	return r.status == StatusDone || r.status == StatusError
}

func (r fixtureRow) label() string {
	if r.status == StatusWorking {
		if verb, ok := stageVerb[r.stage]; ok {
			return verb
		}
	}
	return string(r.status)
}

func (r fixtureRow) style() lipgloss.Style {
	switch r.status {
	case StatusDone:
		return okStyle
	case StatusError:
		return failStyle
	case StatusWorking:
		return workingStyle
	}
	return idleStyle
}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fixtureRow
	byPath  map[string]int
	stage   Stage // last run-level stage
	width   int
	done    bool
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel renders the progress of checking files. It quits once
// events is closed.
func NewProgressModel(title string, files []string, events <-chan Event) tea.Model {
	return newProgressModel(title, files, events)
}

func newProgressModel(title string, files []string, events <-chan Event) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.byPath[f] = len(m.rows)
		m.rows = append(m.rows, fixtureRow{path: f, status: StatusQueued})
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bm, cmd := m.bar.Update(msg)
		m.bar = bm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// header reads "⣾ check: 1/3 done, 1 failed (resolving)".
func (m *progressModel) header() string {
	finished, failed := 0, 0
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
		if r.status == StatusError {
			failed++
		}
	}
	var sb strings.Builder
	if m.done {
		sb.WriteString("done: ")
	} else {
		sb.WriteString(m.spinner.View() + " ")
	}
	fmt.Fprintf(&sb, "%s: %d/%d done", m.title, finished, len(m.rows))
	if failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", failed)
	}
	if verb, ok := stageVerb[m.stage]; ok && !m.done {
		fmt.Fprintf(&sb, " (%s)", verb)
	}
	return sb.String()
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	const labelWidth = 12
	nameWidth := max(m.width-labelWidth-14, 20)
	for _, r := range m.rows {
		label := r.style().Render(fmt.Sprintf("%*s", labelWidth, r.label()))
		fmt.Fprintf(&b, "  %s %s", label, truncate(r.path, nameWidth))
		if r.finished() && r.elapsed > 0 {
			fmt.Fprintf(&b, "  %s", r.elapsed.Round(time.Millisecond))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev Event) tea.Cmd {
	if ev.File == "" {
		if ev.Stage != "" {
			m.stage = ev.Stage
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	r := &m.rows[i]
	if ev.Stage != "" {
		r.stage = ev.Stage
	}
	r.status = ev.Status
	r.elapsed = ev.Elapsed
	return m.bar.SetPercent(m.fraction())
}

// fraction is the share of work finished across all files.
func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range m.rows {
		if r.finished() {
			total++
		} else {
			total += stageWeight[r.stage]
		}
	}
	return total / float64(len(m.rows))
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
