package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// TripInput describes a trip to log. MPG applies to fuel vehicles and
// MilesPerKwh to electric vehicles when the mode has no per-mile factor.
type TripInput struct {
	UserID      string
	Category    string
	Mode        string
	Miles       float64
	MPG         float64
	MilesPerKwh float64
	Passengers  int
	Timestamp   time.Time
}

// Estimate computes the emission for in using the calculator for its category.
func (e *Engine) Estimate(in TripInput) (emissions.Estimate, error) {
	switch in.Category {
	case trips.CategoryFuelVehicle:
		return e.calc.EstimateFuelVehicle(in.Mode, in.MPG, in.Miles, in.Passengers), nil
	case trips.CategoryElectricVehicle:
		return e.calc.EstimateElectricVehicle(in.Mode, in.MilesPerKwh, in.Miles, in.Passengers), nil
	case trips.CategoryPublicTransport:
		return e.calc.EstimatePublicTransport(in.Mode, in.Miles, in.Passengers), nil
	default:
		return emissions.Estimate{}, fmt.Errorf("%w: category %q must be one of %s",
			ErrInvalidInput, in.Category, strings.Join(trips.TransportCategories(), ", "))
	}
}

// LogTrip estimates and stores a trip.
func (e *Engine) LogTrip(ctx context.Context, in TripInput) (trips.Record, error) {
	if err := requireUser(in.UserID); err != nil {
		return trips.Record{}, err
	}
	if in.Miles < 0 || math.IsNaN(in.Miles) {
		return trips.Record{}, fmt.Errorf("%w: miles must be a non-negative number", ErrInvalidInput)
	}

	est, err := e.Estimate(in)
	if err != nil {
		return trips.Record{}, err
	}
	if !est.Recognized() {
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Str("component", "engine").
			Str("operation", "log_trip").
			Str("category", in.Category).
			Str("mode", in.Mode).
			Msg("no emission factor for mode")
		return trips.Record{}, fmt.Errorf("%w: %q", ErrUnrecognizedMode, in.Mode)
	}

	rec, err := e.store.AppendTrip(ctx, trips.Record{
		UserID:        in.UserID,
		Category:      in.Category,
		Mode:          in.Mode,
		EmissionValue: est.Value,
		DistanceMiles: in.Miles,
		Passengers:    emissions.Passengers(in.Passengers),
		Timestamp:     in.Timestamp,
	})
	if err != nil {
		return trips.Record{}, fmt.Errorf("storing trip: %w", err)
	}

	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "log_trip").
		Str("user_id", in.UserID).
		Str("trip_id", rec.ID).
		Str("basis", est.Basis.String()).
		Float64("emission", rec.EmissionValue).
		Msg("trip logged")
	return rec, nil
}

// LogRoute stores a route whose emission comes from the mode's per-mile factor.
func (e *Engine) LogRoute(ctx context.Context, userID, mode string, miles float64) (forecast.Route, error) {
	if err := requireUser(userID); err != nil {
		return forecast.Route{}, err
	}
	if miles < 0 || math.IsNaN(miles) {
		return forecast.Route{}, fmt.Errorf("%w: miles must be a non-negative number", ErrInvalidInput)
	}

	est := e.calc.EstimatePublicTransport(mode, miles, 1)
	if !est.Recognized() {
		return forecast.Route{}, fmt.Errorf("%w: %q", ErrUnrecognizedMode, mode)
	}

	r, err := e.store.AppendRoute(ctx, forecast.Route{
		UserID:        userID,
		DistanceMiles: miles,
		Emission:      est.Value,
		Mode:          mode,
	})
	if err != nil {
		return forecast.Route{}, fmt.Errorf("storing route: %w", err)
	}
	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "log_route").
		Str("user_id", userID).
		Float64("emission", r.Emission).
		Msg("route logged")
	return r, nil
}

// FeedbackInput is a user's verdict or comment on a recommendation. Either
// RecommendationID or StrategyKey must be set.
type FeedbackInput struct {
	UserID           string
	RecommendationID string
	StrategyKey      string
	Accepted         *bool
	Comment          string
}

// RecordFeedback validates and stores feedback.
func (e *Engine) RecordFeedback(ctx context.Context, in FeedbackInput) (recommend.Signal, error) {
	if err := requireUser(in.UserID); err != nil {
		return recommend.Signal{}, err
	}
	if in.RecommendationID == "" && in.StrategyKey == "" {
		return recommend.Signal{}, fmt.Errorf("%w: recommendation id or strategy key is required", ErrInvalidInput)
	}
	if in.Accepted == nil && strings.TrimSpace(in.Comment) == "" {
		return recommend.Signal{}, fmt.Errorf("%w: a verdict or a comment is required", ErrInvalidInput)
	}

	sig := recommend.Signal{
		UserID:           in.UserID,
		RecommendationID: in.RecommendationID,
		StrategyKey:      in.StrategyKey,
		Accepted:         in.Accepted,
		Feedback:         in.Comment,
	}
	if in.RecommendationID == "" {
		if s, ok := recommend.LookupStrategy(in.StrategyKey); ok {
			sig.Description = s.Description
		} else {
			return recommend.Signal{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, in.StrategyKey)
		}
	}

	saved, err := e.store.RecordFeedback(ctx, sig)
	if err != nil {
		return recommend.Signal{}, fmt.Errorf("storing feedback: %w", err)
	}

	ev := logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "record_feedback").
		Str("user_id", saved.UserID).
		Str("strategy_key", saved.StrategyKey)
	if saved.Accepted != nil {
		ev = ev.Bool("accepted", *saved.Accepted)
	}
	ev.Msg("feedback recorded")
	return saved, nil
}

// Trips returns a user's trip history.
func (e *Engine) Trips(ctx context.Context, userID string) ([]trips.Record, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	history, err := e.store.TripHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading trip history: %w", err)
	}
	return history, nil
}

// Routes returns a user's route history.
func (e *Engine) Routes(ctx context.Context, userID string) ([]forecast.Route, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	routes, err := e.store.RouteHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading route history: %w", err)
	}
	return routes, nil
}
