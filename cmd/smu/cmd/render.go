package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(22)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func row(label string, value any) string {
	return labelStyle.Render(label+":") + valueStyle.Render(fmt.Sprint(value))
}

func status(ok bool) string {
	if ok {
		return okStyle.Render("ok")
	}
	return failStyle.Render("missing")
}

// renderReadiness prints each readiness category.
func renderReadiness(r smu.Readiness) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Readiness") + "\n")
	b.WriteString(labelStyle.Render("Output:") + status(r.Output) + "\n")
	b.WriteString(labelStyle.Render("Measurement:") + status(r.Measurement) + "\n")
	b.WriteString(labelStyle.Render("Buffer:") + status(r.Buffer) + "\n")
	b.WriteString(labelStyle.Render("Connection:") + status(r.Session) + "\n")
	if r.Ready() {
		b.WriteString(okStyle.Render("Ready to run") + "\n")
	} else {
		b.WriteString(failStyle.Render("Not ready: "+r.Failed()) + "\n")
	}
	return b.String()
}

// renderSkipped lists the fields Apply left unconfigured.
func renderSkipped(rep *smu.ApplyReport) string {
	if rep == nil || rep.Complete() {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Not configured") + "\n")
	for _, s := range rep.Skipped {
		b.WriteString(row(s.Field.String(), s.Reason) + "\n")
	}
	return b.String()
}

func valueFor(m map[smu.Channel]smu.Value, ch smu.Channel) smu.Value {
	return m[ch]
}

func intOrUnset(p *int) string {
	if p == nil {
		return "unset"
	}
	return fmt.Sprint(*p)
}

// renderParams lists the confirmed configuration.
func renderParams(s smu.Store, sweep smu.SweepState) string {
	out := s.OutputChannel
	meas := s.MeasurementChannel
	lines := []string{
		titleStyle.Render("Configuration"),
		row("Output channel", out),
		row("Output value", valueFor(s.OutputValue, out)),
		row("Output range", valueFor(s.OutputRange, out)),
		row("Compliance", valueFor(s.Compliance, out)),
		row("Measurement channel", meas),
		row("Measurement range", valueFor(s.MeasurementRange, meas)),
		row("Measurement speed", valueFor(s.MeasurementSpeed, meas)),
		row("Four wire", s.FourWire),
		row("Delay", s.Delay),
		row("Point count", intOrUnset(s.PointCount)),
	}
	if meas == smu.Resistance {
		lines = append(lines, row("Sense mode", s.SenseMode))
	}
	if len(s.Format) > 0 {
		lines = append(lines, row("Elements", strings.Join(s.Format, ", ")))
	}
	if s.Sweep.Active() {
		lines = append(lines,
			titleStyle.Render("Sweep"),
			row("State", sweep),
			row("Output", s.Sweep.Output),
			row("Shape", s.Sweep.Shape),
			row("Ranging", s.Sweep.Ranging),
		)
		if s.Sweep.Shape == smu.ShapeList {
			lines = append(lines, row("Levels", fmt.Sprint(s.Sweep.List)))
		} else {
			lines = append(lines, row("Start", s.Sweep.Start), row("Stop", s.Sweep.Stop))
		}
		lines = append(lines, row("Points", intOrUnset(s.Sweep.Points)))
	}
	return strings.Join(lines, "\n") + "\n"
}
