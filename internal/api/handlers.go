package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// CalculateRequest is the body of POST /calculate/{category}.
type CalculateRequest struct {
	Mode        string  `json:"mode"`
	Miles       float64 `json:"miles"`
	MPG         float64 `json:"mpg,omitempty"`
	MilesPerKwh float64 `json:"miles_per_kwh,omitempty"`
	Passengers  int     `json:"passengers,omitempty"`
}

// TripRequest is the body of POST /users/{userID}/trips.
type TripRequest struct {
	Category    string     `json:"category"`
	Mode        string     `json:"mode"`
	Miles       float64    `json:"miles"`
	MPG         float64    `json:"mpg,omitempty"`
	MilesPerKwh float64    `json:"miles_per_kwh,omitempty"`
	Passengers  int        `json:"passengers,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// RouteRequest is the body of POST /users/{userID}/routes.
type RouteRequest struct {
	Mode  string  `json:"mode"`
	Miles float64 `json:"miles"`
}

// FeedbackRequest is the body of POST /users/{userID}/feedback.
type FeedbackRequest struct {
	RecommendationID string `json:"recommendation_id,omitempty"`
	StrategyKey      string `json:"strategy_key,omitempty"`
	Accepted         *bool  `json:"accepted,omitempty"`
	Comment          string `json:"comment,omitempty"`
}

// GoalRequest is the body of PUT /users/{userID}/goal.
type GoalRequest struct {
	TargetReductionPercent float64 `json:"target_reduction_percent"`
	Description            string  `json:"description,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decode(w, r, &req) {
		return
	}
	est, err := s.eng.Estimate(engine.TripInput{
		Category:    mux.Vars(r)["category"],
		Mode:        req.Mode,
		Miles:       req.Miles,
		MPG:         req.MPG,
		MilesPerKwh: req.MilesPerKwh,
		Passengers:  req.Passengers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	history, err := s.eng.Trips(r.Context(), userID(r))
	respond(w, r, http.StatusOK, history, err)
}

func (s *Server) logTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if !decode(w, r, &req) {
		return
	}
	in := engine.TripInput{
		UserID:      userID(r),
		Category:    req.Category,
		Mode:        req.Mode,
		Miles:       req.Miles,
		MPG:         req.MPG,
		MilesPerKwh: req.MilesPerKwh,
		Passengers:  req.Passengers,
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}
	rec, err := s.eng.LogTrip(r.Context(), in)
	respond(w, r, http.StatusCreated, rec, err)
}

func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.eng.Routes(r.Context(), userID(r))
	respond(w, r, http.StatusOK, routes, err)
}

func (s *Server) logRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decode(w, r, &req) {
		return
	}
	route, err := s.eng.LogRoute(r.Context(), userID(r), req.Mode, req.Miles)
	respond(w, r, http.StatusCreated, route, err)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	cands, err := s.eng.GenerateRecommendations(r.Context(), userID(r))
	respond(w, r, http.StatusOK, cands, err)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	report, err := s.eng.Recommend(r.Context(), userID(r))
	respond(w, r, http.StatusOK, report, err)
}

func (s *Server) refine(w http.ResponseWriter, r *http.Request) {
	var cands []recommend.Candidate
	if !decode(w, r, &cands) {
		return
	}
	out, err := s.eng.RefineRecommendations(r.Context(), userID(r), cands)
	respond(w, r, http.StatusOK, out, err)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	recs, err := s.eng.History(r.Context(), userID(r))
	respond(w, r, http.StatusOK, recs, err)
}

func (s *Server) feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	sig, err := s.eng.RecordFeedback(r.Context(), engine.FeedbackInput{
		UserID:           userID(r),
		RecommendationID: req.RecommendationID,
		StrategyKey:      req.StrategyKey,
		Accepted:         req.Accepted,
		Comment:          req.Comment,
	})
	respond(w, r, http.StatusCreated, sig, err)
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.PredictFutureEmissions(r.Context(), userID(r))
	respond(w, r, http.StatusOK, p, err)
}

func (s *Server) setGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.eng.SetGoal(r.Context(), userID(r), req.TargetReductionPercent, req.Description)
	respond(w, r, http.StatusOK, g, err)
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.TrackProgress(r.Context(), userID(r))
	respond(w, r, http.StatusOK, p, err)
}

func userID(r *http.Request) string {
	return mux.Vars(r)["userID"]
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: decoding request body: %w", engine.ErrInvalidInput, err))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, body)
}

// statusFor maps engine and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidInput), errors.Is(err, engine.ErrUnrecognizedMode):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusFor(err)
	level := zerolog.WarnLevel
	if status == http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	logging.FromContext(ctx).WithLevel(level).Ctx(ctx).
		Str("component", "api").
		Str("path", r.URL.Path).
		Int("status", status).
		Err(err).
		Msg("request failed")

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, RequestID: logging.TraceIDFromContext(ctx)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
