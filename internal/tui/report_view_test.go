package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

func TestRenderReport(t *testing.T) {
	eq, err := greenops.ForFootprint(750)
	assert.NoError(t, err)

	out := RenderReport(engine.Report{
		UserID:      "alice",
		Features:    trips.Features{TotalEmissions: 750, TotalMiles: 842.7, Trips: 3, DominantCategory: trips.CategoryFuelVehicle},
		Prediction:  forecast.Prediction{Value: 250, Outcome: forecast.Predicted, Method: forecast.MethodMean, Samples: 1},
		Equivalency: eq,
	}, 1)

	assert.Contains(t, out, "FOOTPRINT alice")
	assert.Contains(t, out, "750.0 lbs CO2")
	assert.Contains(t, out, "3 trips")
	assert.Contains(t, out, "250.0 lbs CO2 (mean, 1 samples)")
	assert.Contains(t, out, "smartphones")
}

func TestRenderPrediction_Insufficient(t *testing.T) {
	assert.Equal(t, "insufficient data", RenderPrediction(forecast.Prediction{Outcome: forecast.InsufficientData}, 2))
}

func TestRenderProgress(t *testing.T) {
	goal := engine.Goal{UserID: "alice", TargetReductionPercent: 40, Description: "drive less", SetAt: time.Now()}

	out := RenderProgress(engine.Progress{
		Goal: goal, HasBaseline: true,
		BaselineAverage: 100, CurrentAverage: 80, BaselineTrips: 2, CurrentTrips: 1,
		ReductionPercent: 20, ProgressPercent: 50,
	}, 0)
	assert.Contains(t, out, "drive less")
	assert.Contains(t, out, "Reduction")
	assert.Contains(t, out, "50%")

	none := RenderProgress(engine.Progress{Goal: goal}, 0)
	assert.Contains(t, none, "cannot be measured")
}

func TestProgressBarBounds(t *testing.T) {
	assert.NotPanics(t, func() {
		progressBar(-10)
		progressBar(150)
	})
}

func TestDetectOutputMode(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		noColor     bool
		tty         bool
		want        OutputMode
	}{
		{name: "pipe", interactive: true, tty: false, want: OutputModePlain},
		{name: "interactive terminal", interactive: true, tty: true, want: OutputModeInteractive},
		{name: "no color", noColor: true, tty: true, want: OutputModePlain},
		{name: "styled", tty: true, want: OutputModeStyled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOutputMode(tt.interactive, tt.noColor, tt.tty))
		})
	}
}
