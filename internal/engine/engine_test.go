package engine_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store/filestore"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // Test fixture.

func newEngine(t *testing.T, now func() time.Time) (*engine.Engine, *filestore.Store) {
	t.Helper()
	s, err := filestore.New(filepath.Join(t.TempDir(), "footprint.json"), filestore.WithClock(now))
	require.NoError(t, err)
	e := engine.New(s, engine.WithClock(now))
	t.Cleanup(func() { _ = e.Close() })
	return e, s
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func addTrip(t *testing.T, s *filestore.Store, user string, emission, miles float64, at time.Time) {
	t.Helper()
	_, err := s.AppendTrip(context.Background(), trips.Record{
		UserID:        user,
		Category:      trips.CategoryFuelVehicle,
		Mode:          emissions.ModeGasolineCar,
		EmissionValue: emission,
		DistanceMiles: miles,
		Passengers:    1,
		Timestamp:     at,
	})
	require.NoError(t, err)
}

func TestLogTrip(t *testing.T) {
	e, _ := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()

	rec, err := e.LogTrip(ctx, engine.TripInput{
		UserID:   "alice",
		Category: trips.CategoryFuelVehicle,
		Mode:     emissions.ModeGasolineCar,
		Miles:    100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.InDelta(t, 89.0, rec.EmissionValue, 1e-9)
	assert.Equal(t, 1, rec.Passengers)
	assert.Equal(t, baseTime, rec.Timestamp)

	shared, err := e.LogTrip(ctx, engine.TripInput{
		UserID:     "alice",
		Category:   trips.CategoryPublicTransport,
		Mode:       emissions.ModeBus,
		Miles:      10,
		Passengers: 2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.85, shared.EmissionValue, 1e-9)

	history, err := e.Store().TripHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLogTrip_Errors(t *testing.T) {
	e, _ := newEngine(t, fixedClock(baseTime))

	tests := []struct {
		name    string
		input   engine.TripInput
		wantErr error
	}{
		{
			name:    "missing user",
			input:   engine.TripInput{Category: trips.CategoryFuelVehicle, Mode: emissions.ModeGasolineCar, Miles: 1},
			wantErr: engine.ErrInvalidInput,
		},
		{
			name:    "negative miles",
			input:   engine.TripInput{UserID: "u", Category: trips.CategoryFuelVehicle, Mode: emissions.ModeGasolineCar, Miles: -1},
			wantErr: engine.ErrInvalidInput,
		},
		{
			name:    "unknown category",
			input:   engine.TripInput{UserID: "u", Category: "diet", Mode: "vegan", Miles: 1},
			wantErr: engine.ErrInvalidInput,
		},
		{
			name:    "unknown mode",
			input:   engine.TripInput{UserID: "u", Category: trips.CategoryPublicTransport, Mode: "rocket", Miles: 1},
			wantErr: engine.ErrUnrecognizedMode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.LogTrip(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	history, err := e.Store().AllTripHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLogRouteAndPredict(t *testing.T) {
	e, _ := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()

	p, err := e.PredictFutureEmissions(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, forecast.InsufficientData, p.Outcome)

	for _, miles := range []float64{10, 20, 30} {
		_, err = e.LogRoute(ctx, "alice", emissions.ModeGasolineCar, miles)
		require.NoError(t, err)
	}

	p, err = e.PredictFutureEmissions(ctx, "alice")
	require.NoError(t, err)
	require.True(t, p.Available())
	assert.Equal(t, forecast.MethodTrend, p.Method)
	assert.InDelta(t, 17.8, p.Value, 1e-9)

	_, err = e.LogRoute(ctx, "alice", "teleporter", 5)
	require.ErrorIs(t, err, engine.ErrUnrecognizedMode)
}

func TestGenerateRecommendations(t *testing.T) {
	e, s := newEngine(t, fixedClock(baseTime))
	for _, r := range []trips.Record{
		{Category: trips.CategoryFuelVehicle, Mode: emissions.ModeGasolineCar, EmissionValue: 400, DistanceMiles: 450},
		{Category: trips.CategoryElectricVehicle, Mode: emissions.ModeElectricCar, EmissionValue: 200, DistanceMiles: 220},
		{Category: trips.CategoryPublicTransport, Mode: emissions.ModeBus, EmissionValue: 150, DistanceMiles: 170},
	} {
		r.UserID = "alice"
		r.Passengers = 1
		r.Timestamp = baseTime
		_, err := s.AppendTrip(context.Background(), r)
		require.NoError(t, err)
	}

	cands, err := e.GenerateRecommendations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, recommend.KeyElectricVehicle, cands[0].StrategyKey)
	assert.Equal(t, recommend.LevelMajor, cands[0].Level)
	assert.InDelta(t, 750.0, cands[0].CurrentEmissions, 1e-9)
	assert.InDelta(t, 300.0, cands[0].PotentialSavings, 1e-9)
	assert.Equal(t, trips.CategoryFuelVehicle, cands[0].VehicleType)
	assert.Equal(t, trips.CategoryFuelVehicle, cands[0].Category)

	empty, err := e.GenerateRecommendations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRecommend_PipelineAndFeedback(t *testing.T) {
	e, s := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()
	addTrip(t, s, "alice", 750, 840, baseTime)
	_, err := s.AppendRoute(ctx, forecast.Route{UserID: "alice", DistanceMiles: 280, Emission: 250})
	require.NoError(t, err)

	report, err := e.Recommend(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, report.Candidates, 2)
	assert.Equal(t, recommend.KeyElectricVehicle, report.Candidates[0].StrategyKey)
	assert.Equal(t, recommend.KeyCommuteCarpool, report.Candidates[1].StrategyKey)
	assert.InDelta(t, 250.0, report.Prediction.Value, 1e-9)
	require.Len(t, report.Recommendations, 2)
	assert.Contains(t, report.Equivalency.DisplayText, "smartphones")

	accepted := false
	sig, err := e.RecordFeedback(ctx, engine.FeedbackInput{
		UserID:           "alice",
		RecommendationID: report.Recommendations[0].ID,
		Accepted:         &accepted,
	})
	require.NoError(t, err)
	assert.Equal(t, recommend.KeyElectricVehicle, sig.StrategyKey)

	again, err := e.Recommend(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, again.Candidates, 2)
	assert.Equal(t, recommend.KeyCommuteCarpool, again.Candidates[0].StrategyKey)
	assert.Equal(t, recommend.KeyElectricVehicle, again.Candidates[1].StrategyKey)
	assert.InDelta(t, 210.0, again.Candidates[1].PotentialSavings, 1e-9)

	history, err := e.History(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRefineRecommendations_PeerFeedback(t *testing.T) {
	e, s := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()

	addTrip(t, s, "alice", 400, 450, baseTime)
	addTrip(t, s, "bob", 410, 460, baseTime)
	addTrip(t, s, "dave", 2000, 2240, baseTime)
	addTrip(t, s, "carol", 5000, 5600, baseTime)
	addTrip(t, s, "erin", 5050, 5650, baseTime)

	accepted := true
	_, err := e.RecordFeedback(ctx, engine.FeedbackInput{
		UserID:      "bob",
		StrategyKey: recommend.KeyBikeOrWalk,
		Accepted:    &accepted,
	})
	require.NoError(t, err)
	rejected := false
	_, err = e.RecordFeedback(ctx, engine.FeedbackInput{
		UserID:      "carol",
		StrategyKey: recommend.KeyOptimizeRoutes,
		Accepted:    &rejected,
	})
	require.NoError(t, err)

	cands := []recommend.Candidate{
		{StrategyKey: recommend.KeyOptimizeRoutes, CurrentEmissions: 400, PotentialSavings: 50},
		{StrategyKey: recommend.KeyBikeOrWalk, CurrentEmissions: 400, PotentialSavings: 20},
	}
	refined, err := e.RefineRecommendations(ctx, "alice", cands)
	require.NoError(t, err)
	require.Len(t, refined, 2)
	assert.Equal(t, recommend.KeyBikeOrWalk, refined[0].StrategyKey)
	assert.InDelta(t, 24.0, refined[0].PotentialSavings, 1e-9)
	assert.InDelta(t, 50.0, refined[1].PotentialSavings, 1e-9, "non-peer rejection ignored")
	assert.InDelta(t, 20.0, cands[1].PotentialSavings, 1e-9, "input untouched")

	unknown, err := e.RefineRecommendations(ctx, "nobody", cands)
	require.NoError(t, err)
	assert.Equal(t, cands, unknown)
}

func TestRecordFeedback_Validation(t *testing.T) {
	e, _ := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()
	yes := true

	_, err := e.RecordFeedback(ctx, engine.FeedbackInput{UserID: "alice", Accepted: &yes})
	require.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = e.RecordFeedback(ctx, engine.FeedbackInput{UserID: "alice", StrategyKey: recommend.KeyCarpool})
	require.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = e.RecordFeedback(ctx, engine.FeedbackInput{UserID: "alice", StrategyKey: "teleport", Accepted: &yes})
	require.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = e.RecordFeedback(ctx, engine.FeedbackInput{UserID: "alice", RecommendationID: "missing", Accepted: &yes})
	require.ErrorIs(t, err, store.ErrNotFound)

	sig, err := e.RecordFeedback(ctx, engine.FeedbackInput{
		UserID:      "alice",
		StrategyKey: recommend.KeyCarpool,
		Comment:     "no one to ride with",
	})
	require.NoError(t, err)
	assert.Nil(t, sig.Accepted)
	assert.NotEmpty(t, sig.Description)
}

func TestGoalProgress(t *testing.T) {
	e, s := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()

	_, err := e.TrackProgress(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.SetGoal(ctx, "alice", 0, "")
	require.ErrorIs(t, err, engine.ErrInvalidInput)
	_, err = e.SetGoal(ctx, "alice", 120, "")
	require.ErrorIs(t, err, engine.ErrInvalidInput)

	addTrip(t, s, "alice", 100, 110, baseTime.Add(-48*time.Hour))
	addTrip(t, s, "alice", 100, 110, baseTime.Add(-24*time.Hour))

	goal, err := e.SetGoal(ctx, "alice", 40, "drive less")
	require.NoError(t, err)
	assert.Equal(t, baseTime, goal.SetAt)

	p, err := e.TrackProgress(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, p.HasBaseline)
	assert.InDelta(t, 100.0, p.BaselineAverage, 1e-9)
	assert.Equal(t, 0, p.CurrentTrips)
	assert.Zero(t, p.ProgressPercent)

	addTrip(t, s, "alice", 80, 90, baseTime.Add(time.Hour))

	p, err = e.TrackProgress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, p.BaselineTrips)
	assert.Equal(t, 1, p.CurrentTrips)
	assert.InDelta(t, 80.0, p.CurrentAverage, 1e-9)
	assert.InDelta(t, 20.0, p.ReductionPercent, 1e-9)
	assert.InDelta(t, 50.0, p.ProgressPercent, 1e-9)

	addTrip(t, s, "alice", 200, 220, baseTime.Add(2*time.Hour))
	p, err = e.TrackProgress(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 140.0, p.CurrentAverage, 1e-9)
	assert.InDelta(t, -40.0, p.ReductionPercent, 1e-9)
	assert.Zero(t, p.ProgressPercent)
}

func TestTrackProgress_NoBaseline(t *testing.T) {
	e, s := newEngine(t, fixedClock(baseTime))
	ctx := context.Background()

	_, err := e.SetGoal(ctx, "alice", 25, "")
	require.NoError(t, err)
	addTrip(t, s, "alice", 50, 60, baseTime.Add(time.Hour))

	p, err := e.TrackProgress(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, p.HasBaseline)
	assert.Equal(t, 1, p.CurrentTrips)
	assert.Zero(t, p.ReductionPercent)
}
