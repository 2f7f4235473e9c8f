package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/bmc2go/internal/sensors"
	"github.com/pterm/pterm"
)

const (
	clearScreenSequence = "\033[H\033[2J"

	SpeedBarWidth = 40

	TemperatureWarning  = 65.0
	TemperatureCritical = 75.0
	FanRpmNominal       = 2000.0
	FanRpmWarning       = 4000.0
	SpeedWarning        = 60
	SpeedCritical       = 80

	historyGraphHeight = 8
	historyGraphWidth  = 60
)

type Severity int

const (
	SeverityNominal Severity = iota
	SeverityWarning
	SeverityCritical
)

func TemperatureSeverity(value float64) Severity {
	switch {
	case value >= TemperatureCritical:
		return SeverityCritical
	case value >= TemperatureWarning:
		return SeverityWarning
	default:
		return SeverityNominal
	}
}

func FanSeverity(rpm float64) Severity {
	switch {
	case rpm <= FanRpmNominal:
		return SeverityNominal
	case rpm <= FanRpmWarning:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

func SpeedSeverity(percent int) Severity {
	switch {
	case percent > SpeedCritical:
		return SeverityCritical
	case percent > SpeedWarning:
		return SeverityWarning
	default:
		return SeverityNominal
	}
}

func (s Severity) Sprint(a ...interface{}) string {
	switch s {
	case SeverityCritical:
		return pterm.FgRed.Sprint(a...)
	case SeverityWarning:
		return pterm.FgYellow.Sprint(a...)
	default:
		return pterm.FgGreen.Sprint(a...)
	}
}

// SpeedBar renders the given percentage as a bar of SpeedBarWidth cells.
func SpeedBar(percent int) string {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	filled := percent * SpeedBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", SpeedBarWidth-filled)
	return fmt.Sprintf("[%s] %3d%%", SpeedSeverity(percent).Sprint(bar), percent)
}

// Frame holds everything shown for a single control cycle.
type Frame struct {
	Timestamp       time.Time
	CpuTemperatures []sensors.Classified
	Fans            []sensors.Classified
	TargetSpeed     int
	// History holds the max CPU temperature of recent cycles, oldest first
	History []float64
	Peak    float64
}

type Dashboard struct {
	out         io.Writer
	clearScreen bool
}

func NewDashboard(out io.Writer, clearScreen bool) *Dashboard {
	return &Dashboard{
		out:         out,
		clearScreen: clearScreen,
	}
}

// Show writes the rendered frame to the output of the dashboard.
func (d *Dashboard) Show(frame Frame) {
	d.write(d.Render(frame))
}

// ShowDegraded writes the rendered degraded view to the output of the dashboard.
func (d *Dashboard) ShowDegraded(timestamp time.Time, readings []sensors.Reading, cause error) {
	d.write(d.RenderDegraded(timestamp, readings, cause))
}

func (d *Dashboard) write(text string) {
	if d.clearScreen {
		_, _ = io.WriteString(d.out, clearScreenSequence)
	}
	_, _ = io.WriteString(d.out, text)
}

func (d *Dashboard) Render(frame Frame) string {
	var sb strings.Builder

	sb.WriteString(pterm.DefaultSection.Sprintf("bmc2go - %s", frame.Timestamp.Format(time.DateTime)))

	sb.WriteString(pterm.Bold.Sprint("CPU Temperatures") + "\n")
	var temperatureRows [][]string
	for _, t := range frame.CpuTemperatures {
		temperatureRows = append(temperatureRows, []string{
			t.Label,
			TemperatureSeverity(t.Value).Sprint(fmt.Sprintf("%.1f °C", t.Value)),
			t.Health.String(),
		})
	}
	sb.WriteString(renderTable([]string{"Sensor", "Value", "Health"}, temperatureRows))

	sb.WriteString(pterm.Bold.Sprint("Fans") + "\n")
	if len(frame.Fans) <= 0 {
		sb.WriteString("No fan readings available\n")
	} else {
		var fanRows [][]string
		for _, f := range frame.Fans {
			fanRows = append(fanRows, []string{
				f.Label,
				FanSeverity(f.Value).Sprint(fmt.Sprintf("%.0f RPM", f.Value)),
				f.Health.String(),
			})
		}
		sb.WriteString(renderTable([]string{"Fan", "Speed", "Health"}, fanRows))
	}

	sb.WriteString("\n" + pterm.Bold.Sprint("Target Speed") + "\n")
	sb.WriteString(SpeedBar(frame.TargetSpeed) + "\n")

	if len(frame.History) >= 2 {
		graph := asciigraph.Plot(
			frame.History,
			asciigraph.Height(historyGraphHeight),
			asciigraph.Width(historyGraphWidth),
			asciigraph.Caption(fmt.Sprintf("max CPU temperature (°C), peak %.1f", frame.Peak)),
		)
		sb.WriteString("\n" + graph + "\n")
	}

	return sb.String()
}

func (d *Dashboard) RenderDegraded(timestamp time.Time, readings []sensors.Reading, cause error) string {
	var sb strings.Builder

	sb.WriteString(pterm.DefaultSection.Sprintf("bmc2go - %s", timestamp.Format(time.DateTime)))
	if cause != nil {
		sb.WriteString(pterm.FgRed.Sprintf("Unable to read sensors: %v", cause) + "\n")
	} else {
		sb.WriteString(pterm.FgRed.Sprint("No CPU temperature sensors found!") + "\n")
	}

	var rows [][]string
	for _, r := range readings {
		if !r.Available {
			continue
		}
		rows = append(rows, []string{r.Name, r.Kind.String(), fmt.Sprintf("%.2f %s", r.Value, r.Units), r.Health.String()})
	}
	if len(rows) <= 0 {
		sb.WriteString("No sensor readings available\n")
	} else {
		sb.WriteString("Available sensors:\n")
		sb.WriteString(renderTable([]string{"Sensor", "Kind", "Value", "Health"}, rows))
	}

	return sb.String()
}

func renderTable(headers []string, rows [][]string) string {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	text, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Sprintf("%v\n", err)
	}
	return text + "\n"
}

// LogDisplay reports every cycle as a single log line instead of rendering a dashboard.
type LogDisplay struct{}

func (LogDisplay) Show(frame Frame) {
	maxTemp := 0.0
	for i, t := range frame.CpuTemperatures {
		if i == 0 || t.Value > maxTemp {
			maxTemp = t.Value
		}
	}
	Info("CPU %.1f °C (%d sensors), %d fans, target speed %d%%", maxTemp, len(frame.CpuTemperatures), len(frame.Fans), frame.TargetSpeed)
}

func (LogDisplay) ShowDegraded(timestamp time.Time, readings []sensors.Reading, cause error) {
	if cause != nil {
		Warning("Unable to read sensors: %v", cause)
		return
	}
	var available []string
	for _, r := range readings {
		if r.Available {
			available = append(available, r.String())
		}
	}
	Warning("No CPU temperature sensors found, available sensors: %s", strings.Join(available, ", "))
}
