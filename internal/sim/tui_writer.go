package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the event viewport.
type logMsg struct{ line string }

// vitalsMsg carries the latest vitals sample.
type vitalsMsg struct{ telemetry.VitalsRow }

// eventMsg carries a lifecycle transition and its log line.
type eventMsg struct {
	line string
	row  telemetry.EventRow
}

// outcomeMsg reports the end of the session.
type outcomeMsg struct{ telemetry.OutcomeRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setResolverMsg struct{ fn Resolver }

// resolvedMsg is returned by the resolver command.
type resolvedMsg struct {
	id      string
	dismiss bool
	err     error
}

const (
	bannerWidth     = 72
	progressWidth   = 40
	minVitalsHeight = 4
)

var (
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1)
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Padding(0, 1)
	infoStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	bannerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func severityStyle(sev string) lipgloss.Style {
	switch sev {
	case "critical":
		return criticalStyle
	case "warning":
		return warningStyle
	default:
		return infoStyle
	}
}

// TUIWriter renders the session as a bedside monitor using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
// Quitting the TUI interrupts the process so the session shuts down.
func NewTUIWriter(sc *scenario.Scenario) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(sc), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteVitals implements VitalsWriter.
func (w *TUIWriter) WriteVitals(row telemetry.VitalsRow) error {
	w.program.Send(vitalsMsg{row})
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(row telemetry.EventRow) error {
	line := fmt.Sprintf("%s[%s]%s %s%-8s%s %s%s%s %s -> %s%s%s %s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		severityColor(row.Severity), row.Severity, colorReset,
		colorBlue, row.Key, colorReset,
		row.FromState, stateColor(row.State), row.State, colorReset,
		row.Title)
	if row.EquipmentID != "" {
		line += fmt.Sprintf(" %sequipment=%s%s", colorCyan, row.EquipmentID, colorReset)
	}
	w.program.Send(eventMsg{line: line, row: row})
	return nil
}

// WriteEvents outputs multiple event rows.
func (w *TUIWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		_ = w.WriteEvent(r)
	}
	return nil
}

// WriteOutcome implements OutcomeWriter.
func (w *TUIWriter) WriteOutcome(row telemetry.OutcomeRow) error {
	w.program.Send(outcomeMsg{row})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetResolver registers the callback used by the acknowledge and dismiss keys.
func (w *TUIWriter) SetResolver(fn Resolver) {
	w.program.Send(setResolverMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	scenario   *scenario.Scenario
	table      table.Model
	vp         viewport.Model
	bar        progress.Model
	logs       []string
	vitals     telemetry.VitalsRow
	active     *telemetry.EventRow
	limit      int
	remaining  int
	startTick  int64
	outcome    *telemetry.OutcomeRow
	resolve    Resolver
	status     string
	admin      bool
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

func newTUIModel(sc *scenario.Scenario) tuiModel {
	cols := []table.Column{
		{Title: "Vital", Width: 16},
		{Title: "Value", Width: 10},
		{Title: "Vital", Width: 16},
		{Title: "Value", Width: 10},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(vitalsRows(telemetry.VitalsRow{})), table.WithHeight(minVitalsHeight))
	return tuiModel{
		scenario:   sc,
		table:      t,
		vp:         viewport.New(0, 0),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth), progress.WithoutPercentage()),
		autoscroll: true,
	}
}

func vitalsRows(v telemetry.VitalsRow) []table.Row {
	return []table.Row{
		{"Heart rate", fmt.Sprintf("%.0f", v.HeartRate), "SpO2", fmt.Sprintf("%.0f%%", v.SpO2)},
		{"Blood pressure", fmt.Sprintf("%.0f/%.0f", v.Systolic, v.Diastolic), "Resp. rate", fmt.Sprintf("%.0f", v.RespiratoryRate)},
		{"Temperature", fmt.Sprintf("%.1f", v.Temperature), "AVPU", v.Consciousness},
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			return m, m.resolveActive(false)
		case "d":
			return m, m.resolveActive(true)
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
	case vitalsMsg:
		m.vitals = msg.VitalsRow
		m.table.SetRows(vitalsRows(msg.VitalsRow))
		if m.active != nil && m.limit > 0 {
			m.remaining = m.limit - int(msg.Tick-m.startTick)
			if m.remaining > m.limit {
				m.remaining = m.limit
			}
			if m.remaining < 0 {
				m.remaining = 0
			}
		}
	case eventMsg:
		m.logs = append(m.logs, msg.line)
		m.applyEvent(msg.row)
		m.updateViewportHeight()
		m.refreshViewport()
	case logMsg:
		m.logs = append(m.logs, msg.line)
		m.refreshViewport()
	case outcomeMsg:
		row := msg.OutcomeRow
		m.outcome = &row
		m.active = nil
		m.updateViewportHeight()
	case adminMsg:
		m.admin = msg.active
	case setResolverMsg:
		m.resolve = msg.fn
	case resolvedMsg:
		verb := "acknowledged"
		if msg.dismiss {
			verb = "dismissed"
		}
		if msg.err != nil {
			m.status = errStyle.Render(msg.err.Error())
		} else {
			m.status = okStyle.Render(fmt.Sprintf("%s %s", verb, msg.id))
		}
	}
	return m, nil
}

// applyEvent tracks the event shown in the alert banner.
func (m *tuiModel) applyEvent(row telemetry.EventRow) {
	switch row.State {
	case "active":
		r := row
		m.active = &r
		m.limit = row.RemainingSeconds
		m.remaining = row.RemainingSeconds
		// Event rows of a tick arrive before its vitals row.
		m.startTick = m.vitals.Tick + 1
		m.status = ""
	default:
		if m.active != nil && m.active.EventID == row.EventID {
			m.active = nil
			m.limit, m.remaining = 0, 0
		}
	}
}

// resolveActive returns a command calling the resolver off the UI goroutine.
func (m tuiModel) resolveActive(dismiss bool) tea.Cmd {
	if m.active == nil || m.resolve == nil {
		return nil
	}
	id, fn := m.active.EventID, m.resolve
	return func() tea.Msg {
		return resolvedMsg{id: id, dismiss: dismiss, err: fn(id, dismiss)}
	}
}

func (m *tuiModel) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderBanner()) + lipgloss.Height(m.renderBottom()) + 3
	h := m.height - used
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{m.renderHeader(), divider}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner, divider)
	}
	sections = append(sections, m.vp.View(), divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	name := "session"
	if m.scenario != nil {
		name = m.scenario.Name
	}
	info := fmt.Sprintf("%s  %s  %s  %s",
		titleStyle.Render(name),
		dimStyle.Render("phase="+m.vitals.Phase),
		dimStyle.Render(fmt.Sprintf("t=%.0fs", m.vitals.ElapsedSeconds)),
		dimStyle.Render(fmt.Sprintf("score=%.0f", m.vitals.PerformanceScore)))
	if m.vitals.Malfunctioning > 0 {
		info += "  " + errStyle.Render(fmt.Sprintf("faults=%d", m.vitals.Malfunctioning))
	}
	return info + "\n" + m.table.View()
}

func (m tuiModel) renderBanner() string {
	if m.outcome != nil {
		st := errStyle
		if m.outcome.Won {
			st = okStyle
		}
		text := fmt.Sprintf("%s  %s\nstreak %d (best %d)",
			st.Bold(true).Render(strings.ToUpper(m.outcome.Outcome)), m.outcome.Reason,
			m.outcome.CurrentStreak, m.outcome.BestStreak)
		if m.outcome.Tier != "" {
			text += "  " + titleStyle.Render(m.outcome.Tier)
		}
		return bannerStyle.Render(text)
	}
	if m.active == nil {
		return ""
	}
	ev := m.active
	lines := []string{
		severityStyle(ev.Severity).Render(strings.ToUpper(ev.Severity)) + " " + titleStyle.Render(ev.Title),
		wordwrap.String(ev.Description, bannerWidth),
	}
	if m.limit > 0 {
		pct := float64(m.remaining) / float64(m.limit)
		lines = append(lines, fmt.Sprintf("%s %ds", m.bar.ViewAs(pct), m.remaining))
	}
	hint := "[a] acknowledge"
	if !ev.RequiresAction {
		hint += "  [d] dismiss"
	}
	lines = append(lines, dimStyle.Render(hint))
	if m.status != "" {
		lines = append(lines, m.status)
	}
	return bannerStyle.Render(strings.Join(lines, "\n"))
}

func indicator(on bool) string {
	if on {
		return okStyle.Render("●")
	}
	return errStyle.Render("●")
}

func (m tuiModel) renderBottom() string {
	line := fmt.Sprintf("Admin UI %s | Wrap %s | Scroll %s | Help %s", indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.help))
	if m.active == nil && m.status != "" {
		line = m.status + " | " + line
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" a  acknowledge the active complication",
		" d  dismiss an informational event",
		" w  toggle wrap for the event log",
		" s  toggle auto-scroll",
		" j/k, pgup/pgdown  scroll when auto-scroll is off",
		" h  toggle this help",
		" q  quit",
	}
	return strings.Join(lines, "\n")
}
