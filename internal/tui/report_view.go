package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
)

const progressBarWidth = 30

// RenderReport renders the footprint summary box for a recommendation run.
func RenderReport(r engine.Report, precision int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("FOOTPRINT "+r.UserID) + "\n")
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Total:     "), greenops.FormatLbs(r.Features.TotalEmissions, precision))
	fmt.Fprintf(&sb, "%s %s mi over %d trips\n", labelStyle.Render("Distance:  "),
		greenops.FormatFloat(r.Features.TotalMiles, precision), r.Features.Trips)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Dominant:  "), r.Features.DominantCategory)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Next trip: "), RenderPrediction(r.Prediction, precision))
	if !r.Equivalency.IsEmpty && r.Equivalency.DisplayText != "" {
		sb.WriteString(statusStyle.Render(r.Equivalency.DisplayText))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// RenderPrediction renders a prediction on one line.
func RenderPrediction(p forecast.Prediction, precision int) string {
	if !p.Available() {
		return "insufficient data"
	}
	return fmt.Sprintf("%s (%s, %d samples)", greenops.FormatLbs(p.Value, precision), p.Method, p.Samples)
}

// RenderProgress renders goal progress with a bar.
func RenderProgress(p engine.Progress, precision int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("GOAL PROGRESS") + "\n")
	fmt.Fprintf(&sb, "%s %s%%", labelStyle.Render("Target:   "), greenops.FormatFloat(p.Goal.TargetReductionPercent, precision))
	if p.Goal.Description != "" {
		fmt.Fprintf(&sb, " (%s)", p.Goal.Description)
	}
	sb.WriteString("\n")
	if !p.HasBaseline {
		sb.WriteString("No trips before the goal was set; progress cannot be measured yet.")
		return boxStyle.Render(sb.String())
	}
	fmt.Fprintf(&sb, "%s %s per trip (%d trips)\n", labelStyle.Render("Baseline: "),
		greenops.FormatLbs(p.BaselineAverage, precision), p.BaselineTrips)
	fmt.Fprintf(&sb, "%s %s per trip (%d trips)\n", labelStyle.Render("Current:  "),
		greenops.FormatLbs(p.CurrentAverage, precision), p.CurrentTrips)
	fmt.Fprintf(&sb, "%s %s%%\n", labelStyle.Render("Reduction:"), greenops.FormatFloat(p.ReductionPercent, precision))
	sb.WriteString(progressBar(p.ProgressPercent) + " " + greenops.FormatFloat(p.ProgressPercent, precision) + "%")
	return boxStyle.Render(sb.String())
}

func progressBar(pct float64) string {
	filled := int(pct / 100 * progressBarWidth)
	filled = max(0, min(progressBarWidth, filled))
	done := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(strings.Repeat("█", filled))
	rest := labelStyle.Render(strings.Repeat("░", progressBarWidth-filled))
	return done + rest
}
