package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

const percent = 100.0

// Progress reports movement toward a Goal.
type Progress struct {
	Goal             Goal    `json:"goal"`
	BaselineAverage  float64 `json:"baseline_average"`
	CurrentAverage   float64 `json:"current_average"`
	BaselineTrips    int     `json:"baseline_trips"`
	CurrentTrips     int     `json:"current_trips"`
	ReductionPercent float64 `json:"reduction_percent"`
	ProgressPercent  float64 `json:"progress_percent"`
	HasBaseline      bool    `json:"has_baseline"`
}

// SetGoal stores a reduction target for userID, replacing any previous goal.
func (e *Engine) SetGoal(ctx context.Context, userID string, targetPercent float64, description string) (Goal, error) {
	if err := requireUser(userID); err != nil {
		return Goal{}, err
	}
	if !(targetPercent > 0 && targetPercent <= percent) {
		return Goal{}, fmt.Errorf("%w: target reduction must be in (0, 100], got %v", ErrInvalidInput, targetPercent)
	}
	g, err := e.store.SetGoal(ctx, store.Goal{
		UserID:                 userID,
		TargetReductionPercent: targetPercent,
		Description:            description,
		SetAt:                  e.now().UTC(),
	})
	if err != nil {
		return Goal{}, fmt.Errorf("storing goal: %w", err)
	}
	return g, nil
}

// TrackProgress compares the mean per-trip emission before the goal was set
// with the mean since. Trips at exactly SetAt count as current.
func (e *Engine) TrackProgress(ctx context.Context, userID string) (Progress, error) {
	if err := requireUser(userID); err != nil {
		return Progress{}, err
	}
	goal, err := e.store.Goal(ctx, userID)
	if err != nil {
		return Progress{}, fmt.Errorf("loading goal: %w", err)
	}
	history, err := e.store.TripHistory(ctx, userID)
	if err != nil {
		return Progress{}, fmt.Errorf("loading trip history: %w", err)
	}

	var before, after float64
	p := Progress{Goal: goal}
	for _, t := range history {
		v := trips.NonNegative(t.EmissionValue)
		if t.Timestamp.Before(goal.SetAt) {
			before += v
			p.BaselineTrips++
		} else {
			after += v
			p.CurrentTrips++
		}
	}

	if p.BaselineTrips == 0 {
		return p, nil
	}
	p.HasBaseline = true
	p.BaselineAverage = forecast.Round2(before / float64(p.BaselineTrips))
	if p.CurrentTrips == 0 || before == 0 {
		return p, nil
	}

	baseline := before / float64(p.BaselineTrips)
	current := after / float64(p.CurrentTrips)
	p.CurrentAverage = forecast.Round2(current)

	reduction := (baseline - current) / baseline * percent
	p.ReductionPercent = forecast.Round2(reduction)
	p.ProgressPercent = forecast.Round2(math.Max(0, math.Min(percent, reduction/goal.TargetReductionPercent*percent)))
	return p, nil
}
