package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := New(sqlx.NewDb(db, "sqlmock"))
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return s, mock
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	for range schema {
		mock.ExpectExec(regexp.QuoteMeta("CREATE")).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, s.Migrate(context.Background()))
}

func TestMigrate_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS trips")).WillReturnError(errors.New("permission denied"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply schema")
}

func TestTripHistory(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "category", "mode", "emission_value", "distance_miles", "passengers", "created_at",
	}).
		AddRow("t1", "alice", trips.CategoryFuelVehicle, "gasoline_car", 89.0, 100.0, 1, fixedNow).
		AddRow("t2", "alice", trips.CategoryPublicTransport, "bus", 17.0, 100.0, 1, fixedNow)

	mock.ExpectQuery(regexp.QuoteMeta("FROM trips WHERE user_id = $1")).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := s.TripHistory(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gasoline_car", got[0].Mode)
	assert.InDelta(t, 17.0, got[1].EmissionValue, 1e-9)
	assert.Equal(t, fixedNow, got[1].Timestamp)
}

func TestAllTripHistory_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM trips ORDER BY user_id")).WillReturnError(sql.ErrConnDone)

	_, err := s.AllTripHistory(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestAppendTrip(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trips")).
		WithArgs(sqlmock.AnyArg(), "alice", trips.CategoryFuelVehicle, "gasoline_car", 8.9, 10.0, 1, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := s.AppendTrip(context.Background(), trips.Record{
		UserID: "alice", Category: trips.CategoryFuelVehicle, Mode: "gasoline_car",
		EmissionValue: 8.9, DistanceMiles: 10, Passengers: 1,
	})
	require.NoError(t, err)
	assert.Len(t, got.ID, 36)
	assert.Equal(t, fixedNow, got.Timestamp)
}

func TestRoutes(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO routes")).
		WithArgs(sqlmock.AnyArg(), "alice", 12.0, 2.04, "bus", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "distance_miles", "emission", "mode", "created_at"}).
			AddRow("r1", "alice", 12.0, 2.04, "bus", fixedNow))

	ctx := context.Background()
	_, err := s.AppendRoute(ctx, forecast.Route{UserID: "alice", DistanceMiles: 12, Emission: 2.04, Mode: "bus"})
	require.NoError(t, err)

	got, err := s.RouteHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestReplaceRecommendations(t *testing.T) {
	s, mock := newMockStore(t)
	cands := []recommend.Candidate{
		{StrategyKey: recommend.KeyElectricVehicle, Description: "Consider switching to an electric vehicle",
			Category: trips.CategoryFuelVehicle, CurrentEmissions: 750, PotentialSavings: 300, PotentialImpact: 300,
			VehicleType: trips.CategoryFuelVehicle, Level: recommend.LevelMajor},
		{StrategyKey: recommend.KeyCommuteCarpool, Description: "Carpool for work commutes",
			Category: trips.CategoryFuelVehicle, CurrentEmissions: 750, PotentialSavings: 50, PotentialImpact: 50,
			VehicleType: trips.CategoryFuelVehicle, Level: recommend.LevelSmall},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recommendations WHERE user_id = $1")).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 3))
	for _, c := range cands {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recommendations")).
			WithArgs(sqlmock.AnyArg(), "alice", c.StrategyKey, c.Description, c.Category,
				c.CurrentEmissions, c.PotentialSavings, c.PotentialImpact, c.VehicleType, c.Level, fixedNow).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	got, err := s.ReplaceRecommendations(context.Background(), "alice", cands)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, cands[1], got[1].Candidate)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestReplaceRecommendations_RollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recommendations")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO recommendations")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.ReplaceRecommendations(context.Background(), "alice", []recommend.Candidate{{StrategyKey: recommend.KeyCarpool}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert recommendation")
}

func TestRecommendations(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM recommendations")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "strategy_key", "description", "category", "current_emissions",
			"potential_savings", "potential_impact", "vehicle_type", "level", "created_at",
		}).AddRow("rec-1", "alice", recommend.KeyCarpool, "Share rides with others to reduce emissions",
			trips.CategoryFuelVehicle, 600.0, 100.0, 100.0, trips.CategoryFuelVehicle, recommend.LevelSmall, fixedNow))

	got, err := s.Recommendations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rec-1", got[0].ID)
	assert.Equal(t, recommend.KeyCarpool, got[0].StrategyKey)
	assert.InDelta(t, 600.0, got[0].CurrentEmissions, 1e-9)
}

func TestRecordFeedback(t *testing.T) {
	accepted := true

	t.Run("resolves strategy from recommendation", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT strategy_key, description FROM recommendations")).
			WithArgs("rec-1", "alice").
			WillReturnRows(sqlmock.NewRows([]string{"strategy_key", "description"}).
				AddRow(recommend.KeyCarpool, "Share rides with others to reduce emissions"))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback")).
			WithArgs(sqlmock.AnyArg(), "alice", "rec-1", recommend.KeyCarpool,
				"Share rides with others to reduce emissions", true, "works for me", fixedNow).
			WillReturnResult(sqlmock.NewResult(1, 1))

		got, err := s.RecordFeedback(context.Background(), recommend.Signal{
			UserID: "alice", RecommendationID: "rec-1", Accepted: &accepted, Feedback: "works for me",
		})
		require.NoError(t, err)
		assert.Equal(t, recommend.KeyCarpool, got.StrategyKey)
	})

	t.Run("unknown recommendation", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT strategy_key, description FROM recommendations")).
			WithArgs("missing", "alice").
			WillReturnError(sql.ErrNoRows)

		_, err := s.RecordFeedback(context.Background(), recommend.Signal{UserID: "alice", RecommendationID: "missing"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("comment without verdict", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback")).
			WithArgs(sqlmock.AnyArg(), "alice", "", recommend.KeyBikeOrWalk, "", nil, "too far", fixedNow).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := s.RecordFeedback(context.Background(), recommend.Signal{
			UserID: "alice", StrategyKey: recommend.KeyBikeOrWalk, Feedback: "too far",
		})
		require.NoError(t, err)
	})
}

func TestFeedback(t *testing.T) {
	columns := []string{"id", "user_id", "recommendation_id", "strategy_key", "description", "accepted", "feedback", "created_at"}

	t.Run("filtered by users", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ANY($1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("f1", "alice", "rec-1", recommend.KeyCarpool, "", true, "", fixedNow).
				AddRow("f2", "bob", "", recommend.KeyBikeOrWalk, "", nil, "meh", fixedNow))

		got, err := s.Feedback(context.Background(), "alice", "bob")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.NotNil(t, got[0].Accepted)
		assert.True(t, *got[0].Accepted)
		assert.Nil(t, got[1].Accepted)
	})

	t.Run("all users", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM feedback ORDER BY created_at, id")).
			WillReturnRows(sqlmock.NewRows(columns))

		got, err := s.Feedback(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGoals(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs("alice", 20.0, "drive less", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "target_reduction_percent", "description", "set_at"}).
			AddRow("alice", 20.0, "drive less", fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals")).
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	ctx := context.Background()
	saved, err := s.SetGoal(ctx, store.Goal{UserID: "alice", TargetReductionPercent: 20, Description: "drive less"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, saved.SetAt)

	got, err := s.Goal(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = s.Goal(ctx, "bob")
	require.ErrorIs(t, err, store.ErrNotFound)
}
