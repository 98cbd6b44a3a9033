// Package engine orchestrates the footprint core against a persistence Store.
//
// Every call re-reads history from the store; the engine keeps no model state
// between calls.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/emissions"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Sentinel errors returned by Engine methods.
var (
	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnrecognizedMode is returned when no emission factor applies to a trip.
	ErrUnrecognizedMode = errors.New("unrecognized transport mode")
)

// Goal is a user's emission-reduction target.
type Goal = store.Goal

// Store is the persistence collaborator used by the engine.
type Store interface {
	TripHistory(ctx context.Context, userID string) ([]trips.Record, error)
	AllTripHistory(ctx context.Context) ([]trips.Record, error)
	AppendTrip(ctx context.Context, r trips.Record) (trips.Record, error)

	RouteHistory(ctx context.Context, userID string) ([]forecast.Route, error)
	AppendRoute(ctx context.Context, r forecast.Route) (forecast.Route, error)

	ReplaceRecommendations(ctx context.Context, userID string, cands []recommend.Candidate) ([]recommend.Recommendation, error)
	Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error)

	Feedback(ctx context.Context, userIDs ...string) ([]recommend.Signal, error)
	RecordFeedback(ctx context.Context, sig recommend.Signal) (recommend.Signal, error)

	SetGoal(ctx context.Context, g store.Goal) (store.Goal, error)
	Goal(ctx context.Context, userID string) (store.Goal, error)

	Close() error
}

// Engine wires the pure core to a Store.
type Engine struct {
	store Store
	calc  *emissions.Calculator
	opts  recommend.Options
	now   func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCalculator replaces the default emissions calculator.
func WithCalculator(c *emissions.Calculator) Option {
	return func(e *Engine) { e.calc = c }
}

// WithOptions sets ranking and feedback tuning.
func WithOptions(o recommend.Options) Option {
	return func(e *Engine) { e.opts = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine over s.
func New(s Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		calc:  emissions.NewDefaultCalculator(),
		opts:  recommend.DefaultOptions(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculator returns the calculator in use.
func (e *Engine) Calculator() *emissions.Calculator {
	return e.calc
}

// Store returns the underlying store.
func (e *Engine) Store() Store {
	return e.store
}

// Close closes the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// CalculateFuelVehicleEmissions estimates a combustion-vehicle trip.
func (e *Engine) CalculateFuelVehicleEmissions(mode string, mpg, miles float64, passengers int) emissions.Estimate {
	return e.calc.EstimateFuelVehicle(mode, mpg, miles, passengers)
}

// CalculateElectricVehicleEmissions estimates an electric-vehicle trip.
func (e *Engine) CalculateElectricVehicleEmissions(mode string, milesPerKwh, miles float64, passengers int) emissions.Estimate {
	return e.calc.EstimateElectricVehicle(mode, milesPerKwh, miles, passengers)
}

// CalculatePublicTransportEmissions estimates a transit trip.
func (e *Engine) CalculatePublicTransportEmissions(mode string, miles float64, passengers int) emissions.Estimate {
	return e.calc.EstimatePublicTransport(mode, miles, passengers)
}
