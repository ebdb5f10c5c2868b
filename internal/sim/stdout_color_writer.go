// ColorStdoutWriter prints human-friendly, colorized session output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"codeblue-sim/internal/scenario"
	"codeblue-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

const overviewWidth = 72

// ColorStdoutWriter prints rows using ANSI colors.
type ColorStdoutWriter struct {
	scenario *scenario.Scenario
	out      io.Writer
	once     sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(sc *scenario.Scenario) *ColorStdoutWriter {
	return &ColorStdoutWriter{scenario: sc, out: os.Stdout}
}

func severityColor(sev string) string {
	switch sev {
	case "critical":
		return colorRed
	case "warning":
		return colorYellow
	default:
		return colorCyan
	}
}

func stateColor(state string) string {
	switch state {
	case "active":
		return colorMagenta
	case "acknowledged":
		return colorGreen
	case "expired":
		return colorRed
	default:
		return colorGray
	}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.scenario == nil {
		return
	}
	sc := w.scenario
	fmt.Fprintln(w.out, "Scenario:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", sc.Name)
	fmt.Fprintf(tw, "Condition:\t%s\n", sc.Condition)
	fmt.Fprintf(tw, "Difficulty:\t%d\n", sc.Difficulty)
	fmt.Fprintf(tw, "Duration (s):\t%d\n", sc.DurationSeconds)
	tw.Flush()
	if sc.Description != "" {
		fmt.Fprintln(w.out, wordwrap.String(sc.Description, overviewWidth))
	}

	fmt.Fprintln(w.out, "\nEquipment:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tType\n")
	for _, eq := range sc.Equipment {
		fmt.Fprintf(tw, "%s%s%s\t%s\n", colorBlue, eq.ID, colorReset, eq.Type)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteVitals outputs a single vitals row in colorized format.
func (w *ColorStdoutWriter) WriteVitals(row telemetry.VitalsRow) error {
	w.once.Do(w.printOverview)

	spo2Color := colorGreen
	switch {
	case row.SpO2 < 85:
		spo2Color = colorRed
	case row.SpO2 < 92:
		spo2Color = colorYellow
	}
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%st=%.0fs%s ", colorBlue, row.ElapsedSeconds, colorReset)
	fmt.Fprintf(w.out, "%sphase=%s%s ", colorMagenta, row.Phase, colorReset)
	fmt.Fprintf(w.out, "%shr=%.0f%s ", colorGreen, row.HeartRate, colorReset)
	fmt.Fprintf(w.out, "%sbp=%.0f/%.0f%s ", colorYellow, row.Systolic, row.Diastolic, colorReset)
	fmt.Fprintf(w.out, "%srr=%.0f%s ", colorCyan, row.RespiratoryRate, colorReset)
	fmt.Fprintf(w.out, "%sspo2=%.0f%s ", spo2Color, row.SpO2, colorReset)
	fmt.Fprintf(w.out, "%stemp=%.1f%s ", colorYellow, row.Temperature, colorReset)
	fmt.Fprintf(w.out, "%savpu=%s%s ", colorCyan, row.Consciousness, colorReset)
	fmt.Fprintf(w.out, "%sscore=%.0f%s", colorBlue, row.PerformanceScore, colorReset)
	if row.Malfunctioning > 0 {
		fmt.Fprintf(w.out, " %sfaults=%d%s", colorRed, row.Malfunctioning, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvent prints a lifecycle transition.
func (w *ColorStdoutWriter) WriteEvent(row telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s %sEVENT%s %s%s%s %s%s -> %s%s %q",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		severityColor(row.Severity), colorReset,
		colorBlue, row.Key, colorReset,
		stateColor(row.State), row.FromState, row.State, colorReset,
		row.Title)
	if row.EquipmentID != "" {
		fmt.Fprintf(w.out, " equipment=%s", row.EquipmentID)
	}
	if row.State == "active" {
		if row.RemainingSeconds > 0 {
			fmt.Fprintf(w.out, " %sdeadline=%ds%s", colorRed, row.RemainingSeconds, colorReset)
		}
		fmt.Fprintf(w.out, " id=%s\n", row.EventID)
		fmt.Fprintln(w.out, "  "+wordwrap.String(row.Description, overviewWidth))
		return nil
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvents prints multiple transitions.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		_ = w.WriteEvent(r)
	}
	return nil
}

// WriteOutcome prints the end of the session.
func (w *ColorStdoutWriter) WriteOutcome(row telemetry.OutcomeRow) error {
	w.once.Do(w.printOverview)
	col := colorRed
	if row.Won {
		col = colorGreen
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sOUTCOME %s%s reason=%q score=%.0f streak=%d best=%d",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		col, row.Outcome, colorReset, row.Reason, row.PerformanceScore, row.CurrentStreak, row.BestStreak)
	if row.Tier != "" {
		fmt.Fprintf(w.out, " tier=%s%s%s", colorMagenta, row.Tier, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// NewStdoutWriter returns the colorized writer when colorize is set, JSON lines otherwise.
func NewStdoutWriter(sc *scenario.Scenario, colorize bool) Writer {
	if colorize {
		return NewColorStdoutWriter(sc)
	}
	return NewJSONStdoutWriter()
}
