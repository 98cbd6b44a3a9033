// Package postgres persists footprint data in PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Store is a PostgreSQL backed store.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := New(db)
	if err = s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates tables and indexes that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "postgres").
		Str("operation", "migrate").
		Int("statements", len(schema)).
		Msg("schema applied")
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectTrips = `
	SELECT id, user_id, category, mode, emission_value, distance_miles, passengers, created_at
	FROM trips`

// TripHistory returns a user's trips ordered by time.
func (s *Store) TripHistory(ctx context.Context, userID string) ([]trips.Record, error) {
	out := []trips.Record{}
	err := s.db.SelectContext(ctx, &out, selectTrips+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip history: %w", err)
	}
	return out, nil
}

// AllTripHistory returns every user's trips.
func (s *Store) AllTripHistory(ctx context.Context) ([]trips.Record, error) {
	out := []trips.Record{}
	if err := s.db.SelectContext(ctx, &out, selectTrips+` ORDER BY user_id, created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to query all trip history: %w", err)
	}
	return out, nil
}

// AppendTrip inserts r, assigning an ID and timestamp when missing.
func (s *Store) AppendTrip(ctx context.Context, r trips.Record) (trips.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	const query = `
		INSERT INTO trips (id, user_id, category, mode, emission_value, distance_miles, passengers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.UserID, r.Category, r.Mode, r.EmissionValue, r.DistanceMiles, r.Passengers, r.Timestamp)
	if err != nil {
		return trips.Record{}, fmt.Errorf("failed to insert trip: %w", err)
	}
	return r, nil
}

// RouteHistory returns a user's routes ordered by time.
func (s *Store) RouteHistory(ctx context.Context, userID string) ([]forecast.Route, error) {
	const query = `
		SELECT id, user_id, distance_miles, emission, mode, created_at
		FROM routes
		WHERE user_id = $1
		ORDER BY created_at, id`
	out := []forecast.Route{}
	if err := s.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to query route history: %w", err)
	}
	return out, nil
}

// AppendRoute inserts r, assigning an ID and timestamp when missing.
func (s *Store) AppendRoute(ctx context.Context, r forecast.Route) (forecast.Route, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	const query = `
		INSERT INTO routes (id, user_id, distance_miles, emission, mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query, r.ID, r.UserID, r.DistanceMiles, r.Emission, r.Mode, r.Timestamp)
	if err != nil {
		return forecast.Route{}, fmt.Errorf("failed to insert route: %w", err)
	}
	return r, nil
}

const insertRecommendation = `
	INSERT INTO recommendations (id, user_id, strategy_key, description, category,
		current_emissions, potential_savings, potential_impact, vehicle_type, level, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// ReplaceRecommendations deletes a user's recommendations and inserts cands
// in one transaction.
func (s *Store) ReplaceRecommendations(
	ctx context.Context,
	userID string,
	cands []recommend.Candidate,
) ([]recommend.Recommendation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to delete recommendations: %w", err)
	}

	now := s.now().UTC()
	out := make([]recommend.Recommendation, 0, len(cands))
	for _, c := range cands {
		rec := recommend.Recommendation{ID: uuid.NewString(), UserID: userID, CreatedAt: now, Candidate: c}
		_, err = tx.ExecContext(ctx, insertRecommendation,
			rec.ID, rec.UserID, c.StrategyKey, c.Description, c.Category,
			c.CurrentEmissions, c.PotentialSavings, c.PotentialImpact, c.VehicleType, c.Level, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert recommendation: %w", err)
		}
		out = append(out, rec)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return out, nil
}

// Recommendations returns a user's current recommendations.
func (s *Store) Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	const query = `
		SELECT id, user_id, strategy_key, description, category, current_emissions,
			potential_savings, potential_impact, vehicle_type, level, created_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY created_at, id`
	out := []recommend.Recommendation{}
	if err := s.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	return out, nil
}

// RecordFeedback inserts sig. A referenced recommendation supplies the
// strategy key and description; an unknown one yields store.ErrNotFound.
func (s *Store) RecordFeedback(ctx context.Context, sig recommend.Signal) (recommend.Signal, error) {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = s.now().UTC()
	}

	if sig.RecommendationID != "" {
		var ref struct {
			StrategyKey string `db:"strategy_key"`
			Description string `db:"description"`
		}
		err := s.db.GetContext(ctx, &ref,
			`SELECT strategy_key, description FROM recommendations WHERE id = $1 AND user_id = $2`,
			sig.RecommendationID, sig.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			return recommend.Signal{}, fmt.Errorf("recommendation %s for user %s: %w",
				sig.RecommendationID, sig.UserID, store.ErrNotFound)
		}
		if err != nil {
			return recommend.Signal{}, fmt.Errorf("failed to resolve recommendation: %w", err)
		}
		sig.StrategyKey = ref.StrategyKey
		sig.Description = ref.Description
	}

	const query = `
		INSERT INTO feedback (id, user_id, recommendation_id, strategy_key, description, accepted, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		sig.ID, sig.UserID, sig.RecommendationID, sig.StrategyKey, sig.Description, sig.Accepted, sig.Feedback, sig.CreatedAt)
	if err != nil {
		return recommend.Signal{}, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return sig, nil
}

// Feedback returns the signals of the given users, or of everyone when none
// are given.
func (s *Store) Feedback(ctx context.Context, userIDs ...string) ([]recommend.Signal, error) {
	const base = `
		SELECT id, user_id, recommendation_id, strategy_key, description, accepted, feedback, created_at
		FROM feedback`
	out := []recommend.Signal{}
	var err error
	if len(userIDs) == 0 {
		err = s.db.SelectContext(ctx, &out, base+` ORDER BY created_at, id`)
	} else {
		err = s.db.SelectContext(ctx, &out, base+` WHERE user_id = ANY($1) ORDER BY created_at, id`, pq.Array(userIDs))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	return out, nil
}

// SetGoal upserts a user's goal.
func (s *Store) SetGoal(ctx context.Context, g store.Goal) (store.Goal, error) {
	if g.SetAt.IsZero() {
		g.SetAt = s.now().UTC()
	}
	const query = `
		INSERT INTO goals (user_id, target_reduction_percent, description, set_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET target_reduction_percent = EXCLUDED.target_reduction_percent,
			description = EXCLUDED.description,
			set_at = EXCLUDED.set_at`
	if _, err := s.db.ExecContext(ctx, query, g.UserID, g.TargetReductionPercent, g.Description, g.SetAt); err != nil {
		return store.Goal{}, fmt.Errorf("failed to upsert goal: %w", err)
	}
	return g, nil
}

// Goal returns a user's goal or store.ErrNotFound.
func (s *Store) Goal(ctx context.Context, userID string) (store.Goal, error) {
	const query = `
		SELECT user_id, target_reduction_percent, description, set_at
		FROM goals
		WHERE user_id = $1`
	var g store.Goal
	err := s.db.GetContext(ctx, &g, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Goal{}, fmt.Errorf("goal for user %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return store.Goal{}, fmt.Errorf("failed to query goal: %w", err)
	}
	return g, nil
}
