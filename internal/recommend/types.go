// Package recommend turns aggregated trip features into ranked reduction
// strategies and re-weights them from user feedback.
package recommend

import (
	"time"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Strategy keys.
const (
	KeyUsePublicTransport     = "use_public_transport"
	KeyBikeOrWalk             = "bike_or_walk"
	KeyElectricVehicle        = "electric_vehicle"
	KeyCarpool                = "carpool"
	KeyOptimizeRoutes         = "optimize_routes"
	KeyCommuteElectricVehicle = "commute_electric_vehicle"
	KeyCommuteCarpool         = "commute_carpool"
)

// Effort levels.
const (
	LevelMajor = "major change"
	LevelSmall = "small change"
)

// DefaultCategory is used when the dominant category is not a transport one.
const DefaultCategory = "sustainable_transport"

// DefaultMaxResults caps every ranked list.
const DefaultMaxResults = 5

// Strategy is a catalogued reduction action.
type Strategy struct {
	Key         string
	Description string
	Impact      float64
	Level       string
}

//nolint:gochecknoglobals // Immutable strategy catalogue.
var strategies = map[string]Strategy{
	KeyUsePublicTransport: {
		Key: KeyUsePublicTransport, Impact: 200, Level: LevelMajor,
		Description: "Switch to public transportation for your daily commute",
	},
	KeyBikeOrWalk: {
		Key: KeyBikeOrWalk, Impact: 150, Level: LevelSmall,
		Description: "Use a bicycle or walk for short distances",
	},
	KeyElectricVehicle: {
		Key: KeyElectricVehicle, Impact: 300, Level: LevelMajor,
		Description: "Consider switching to an electric vehicle",
	},
	KeyCarpool: {
		Key: KeyCarpool, Impact: 100, Level: LevelSmall,
		Description: "Share rides with others to reduce emissions",
	},
	KeyOptimizeRoutes: {
		Key: KeyOptimizeRoutes, Impact: 50, Level: LevelSmall,
		Description: "Plan efficient routes to minimize fuel consumption",
	},
	KeyCommuteElectricVehicle: {
		Key: KeyCommuteElectricVehicle, Impact: 100, Level: LevelMajor,
		Description: "Switch to an electric vehicle",
	},
	KeyCommuteCarpool: {
		Key: KeyCommuteCarpool, Impact: 50, Level: LevelSmall,
		Description: "Carpool for work commutes",
	},
}

// LookupStrategy returns the catalogued strategy for key.
func LookupStrategy(key string) (Strategy, bool) {
	s, ok := strategies[key]
	return s, ok
}

// Candidate is a transient, unpersisted recommendation.
type Candidate struct {
	StrategyKey      string  `json:"strategy_key" db:"strategy_key"`
	Description      string  `json:"description" db:"description"`
	Category         string  `json:"category" db:"category"`
	CurrentEmissions float64 `json:"current_emissions" db:"current_emissions"`
	PotentialSavings float64 `json:"potential_savings" db:"potential_savings"`
	PotentialImpact  float64 `json:"potential_impact" db:"potential_impact"`
	VehicleType      string  `json:"vehicle_type" db:"vehicle_type"`
	Level            string  `json:"level" db:"level"`
}

// Recommendation is a persisted candidate.
type Recommendation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Candidate
}

// Signal is one piece of user feedback on a recommendation. A nil Accepted
// carries comments only and never affects weighting.
type Signal struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	RecommendationID string    `json:"recommendation_id" db:"recommendation_id"`
	StrategyKey      string    `json:"strategy_key" db:"strategy_key"`
	Description      string    `json:"description" db:"description"`
	Accepted         *bool     `json:"accepted,omitempty" db:"accepted"`
	Feedback         string    `json:"feedback,omitempty" db:"feedback"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Options tune ranking and feedback weighting.
type Options struct {
	MaxResults         int
	AcceptedMultiplier float64
	RejectedMultiplier float64
	Clusters           int
	Seed               uint64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		MaxResults:         DefaultMaxResults,
		AcceptedMultiplier: 1.2,
		RejectedMultiplier: 0.7,
		Clusters:           3,
		Seed:               42,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.AcceptedMultiplier <= 0 {
		o.AcceptedMultiplier = d.AcceptedMultiplier
	}
	if o.RejectedMultiplier <= 0 {
		o.RejectedMultiplier = d.RejectedMultiplier
	}
	if o.Clusters <= 0 {
		o.Clusters = d.Clusters
	}
	return o
}

func categoryFor(dominant string) string {
	if trips.IsTransportCategory(dominant) {
		return dominant
	}
	return DefaultCategory
}
