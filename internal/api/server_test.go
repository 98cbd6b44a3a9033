package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/api"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store/filestore"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	now := func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	s, err := filestore.New(filepath.Join(t.TempDir(), "footprint.json"), filestore.WithClock(now))
	require.NoError(t, err)
	eng := engine.New(s, engine.WithClock(now))
	t.Cleanup(func() { _ = eng.Close() })
	return api.New(eng, api.Config{Addr: ":0"}, zerolog.Nop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(api.RequestIDHeader))
}

func TestCalculate(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		category   string
		body       api.CalculateRequest
		wantStatus int
		wantValue  float64
		wantBasis  string
	}{
		{
			name:       "fuel per mile",
			category:   trips.CategoryFuelVehicle,
			body:       api.CalculateRequest{Mode: emissions.ModeGasolineCar, Miles: 10},
			wantStatus: http.StatusOK,
			wantValue:  8.9,
			wantBasis:  "per_mile",
		},
		{
			name:       "transit shared",
			category:   trips.CategoryPublicTransport,
			body:       api.CalculateRequest{Mode: emissions.ModeTrain, Miles: 100, Passengers: 4},
			wantStatus: http.StatusOK,
			wantValue:  5,
			wantBasis:  "per_mile",
		},
		{
			name:       "unknown mode degrades to zero",
			category:   trips.CategoryPublicTransport,
			body:       api.CalculateRequest{Mode: "zeppelin", Miles: 100},
			wantStatus: http.StatusOK,
			wantValue:  0,
			wantBasis:  "unrecognized",
		},
		{
			name:       "unknown category",
			category:   "diet",
			body:       api.CalculateRequest{Mode: "vegan", Miles: 1},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/calculate/"+tt.category, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got struct {
				Value float64 `json:"value"`
				Basis string  `json:"basis"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.InDelta(t, tt.wantValue, got.Value, 1e-9)
			assert.Equal(t, tt.wantBasis, got.Basis)
		})
	}
}

func TestTripAndRecommendationFlow(t *testing.T) {
	h := newTestServer(t)

	for _, miles := range []float64{449.4382022471910, 224.7191011235955, 168.5393258426966} {
		rec := do(t, h, http.MethodPost, "/users/alice/trips", api.TripRequest{
			Category: trips.CategoryFuelVehicle,
			Mode:     emissions.ModeGasolineCar,
			Miles:    miles,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/users/alice/trips", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []trips.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 3)

	rec = do(t, h, http.MethodGet, "/users/alice/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cands []recommend.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cands))
	require.Len(t, cands, 1)
	assert.Equal(t, recommend.KeyElectricVehicle, cands[0].StrategyKey)
	assert.Equal(t, recommend.LevelMajor, cands[0].Level)

	rec = do(t, h, http.MethodPost, "/users/alice/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report engine.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Recommendations, 1)

	no := false
	rec = do(t, h, http.MethodPost, "/users/alice/feedback", api.FeedbackRequest{
		RecommendationID: report.Recommendations[0].ID,
		Accepted:         &no,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/users/alice/recommendations/refine", cands)
	require.Equal(t, http.StatusOK, rec.Code)
	var refined []recommend.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refined))
	require.Len(t, refined, 1)
	assert.InDelta(t, 210.0, refined[0].PotentialSavings, 1e-9)

	rec = do(t, h, http.MethodGet, "/users/alice/recommendations/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPredictionAndProgress(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/users/bob/prediction", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p forecast.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, forecast.InsufficientData, p.Outcome)

	rec = do(t, h, http.MethodPost, "/users/bob/routes", api.RouteRequest{Mode: emissions.ModeBus, Miles: 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/users/bob/prediction", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.InDelta(t, 17.0, p.Value, 1e-9)

	rec = do(t, h, http.MethodGet, "/users/bob/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/users/bob/goal", api.GoalRequest{TargetReductionPercent: 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/users/bob/goal", api.GoalRequest{TargetReductionPercent: 20})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/users/bob/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progress engine.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.False(t, progress.HasBaseline)
}

func TestBadRequests(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/users/alice/trips", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/alice/trips", api.TripRequest{
		Category: trips.CategoryPublicTransport,
		Mode:     "zeppelin",
		Miles:    10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/alice/feedback", api.FeedbackRequest{RecommendationID: "nope", Comment: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/users/alice/trips"},
		{http.MethodPut, "/users/alice/routes"},
		{http.MethodGet, "/users/alice/feedback"},
		{http.MethodGet, "/users/alice/goal"},
		{http.MethodPost, "/users/alice/progress"},
	} {
		rec = do(t, h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec = do(t, h, http.MethodGet, "/users/alice/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
