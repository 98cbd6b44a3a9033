package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Report is the result of the full recommendation pipeline.
type Report struct {
	UserID          string                     `json:"user_id"`
	Features        trips.Features             `json:"features"`
	Candidates      []recommend.Candidate      `json:"candidates"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Prediction      forecast.Prediction        `json:"prediction"`
	Equivalency     greenops.EquivalencyOutput `json:"equivalency"`
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return nil
}

// GenerateRecommendations aggregates a user's trips and returns the ordered
// candidate list.
func (e *Engine) GenerateRecommendations(ctx context.Context, userID string) ([]recommend.Candidate, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	start := time.Now()

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "generate_recommendations").
		Str("user_id", userID).
		Msg("generating recommendations")

	history, err := e.store.TripHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading trip history: %w", err)
	}
	features := trips.Aggregate(history)
	cands := e.limit(recommend.Generate(features))

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "generate_recommendations").
		Str("user_id", userID).
		Float64("total_emissions", features.TotalEmissions).
		Int("candidates", len(cands)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("recommendations generated")
	return cands, nil
}

// RefineRecommendations re-ranks cands using the feedback of userID and the
// users clustered with it. A user without transport history gets cands back
// unchanged.
func (e *Engine) RefineRecommendations(
	ctx context.Context,
	userID string,
	cands []recommend.Candidate,
) ([]recommend.Candidate, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	start := time.Now()

	var (
		all []trips.Record
		own []recommend.Signal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = e.store.AllTripHistory(gctx)
		if err != nil {
			return fmt.Errorf("loading all trip history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		own, err = e.store.Feedback(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	peers, ok := recommend.Peers(userID, trips.UserFeatures(all), e.opts)
	if !ok {
		log.Warn().Ctx(ctx).
			Str("component", "engine").
			Str("operation", "refine_recommendations").
			Str("user_id", userID).
			Msg("user has no transport history, skipping refinement")
		return append([]recommend.Candidate{}, cands...), nil
	}

	signals := own
	if len(peers) > 0 {
		peerSignals, err := e.store.Feedback(ctx, peers...)
		if err != nil {
			return nil, fmt.Errorf("loading peer feedback: %w", err)
		}
		signals = append(signals, peerSignals...)
	}

	out := recommend.Refine(userID, peers, cands, signals, e.opts)

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "refine_recommendations").
		Str("user_id", userID).
		Int("peers", len(peers)).
		Int("signals", len(signals)).
		Int("candidates", len(out)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("recommendations refined")
	return out, nil
}

// PredictFutureEmissions forecasts the user's next trip emission from routes.
func (e *Engine) PredictFutureEmissions(ctx context.Context, userID string) (forecast.Prediction, error) {
	if err := requireUser(userID); err != nil {
		return forecast.Prediction{}, err
	}
	routes, err := e.store.RouteHistory(ctx, userID)
	if err != nil {
		return forecast.Prediction{}, fmt.Errorf("loading route history: %w", err)
	}
	p := forecast.Predict(routes)

	ev := logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "predict_future_emissions").
		Str("user_id", userID).
		Int("samples", p.Samples).
		Str("outcome", string(p.Outcome))
	if p.Available() {
		ev = ev.Float64("prediction", p.Value).Str("method", string(p.Method))
	}
	ev.Msg("prediction computed")
	return p, nil
}

// Recommend runs the full pipeline: aggregate, predict, generate, add the
// forecast-driven commute strategy, refine, and replace the stored set.
func (e *Engine) Recommend(ctx context.Context, userID string) (Report, error) {
	if err := requireUser(userID); err != nil {
		return Report{}, err
	}
	log := logging.FromContext(ctx)
	start := time.Now()

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "recommend").
		Str("user_id", userID).
		Msg("starting recommendation pipeline")

	var (
		history []trips.Record
		routes  []forecast.Route
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = e.store.TripHistory(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading trip history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		routes, err = e.store.RouteHistory(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading route history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	features := trips.Aggregate(history)
	prediction := forecast.Predict(routes)

	cands := recommend.Generate(features)
	if prediction.Available() {
		if c, ok := recommend.CommuteCandidate(prediction.Value, features); ok {
			cands = append(cands, c)
		}
	}

	refined, err := e.RefineRecommendations(ctx, userID, cands)
	if err != nil {
		return Report{}, err
	}
	refined = e.limit(refined)

	stored, err := e.store.ReplaceRecommendations(ctx, userID, refined)
	if err != nil {
		return Report{}, fmt.Errorf("storing recommendations: %w", err)
	}

	equivalency, eqErr := greenops.ForFootprint(features.TotalEmissions)
	if eqErr != nil {
		log.Warn().Ctx(ctx).
			Str("component", "engine").
			Str("operation", "recommend").
			Err(eqErr).
			Msg("equivalency calculation failed")
	}

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "recommend").
		Str("user_id", userID).
		Int("candidates", len(refined)).
		Bool("prediction_available", prediction.Available()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("recommendation pipeline complete")

	return Report{
		UserID:          userID,
		Features:        features,
		Candidates:      refined,
		Recommendations: stored,
		Prediction:      prediction,
		Equivalency:     equivalency,
	}, nil
}

// History returns the user's stored recommendations.
func (e *Engine) History(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	recs, err := e.store.Recommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading recommendations: %w", err)
	}
	return recs, nil
}

func (e *Engine) limit(cands []recommend.Candidate) []recommend.Candidate {
	n := e.opts.MaxResults
	if n <= 0 {
		n = recommend.DefaultMaxResults
	}
	if len(cands) > n {
		return cands[:n]
	}
	return cands
}
