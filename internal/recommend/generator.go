package recommend

import (
	"cmp"
	"math"
	"slices"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Emission tiers, lbs CO2. Each bound is exclusive below and inclusive above.
const (
	TierPublicTransport = 1000.0
	TierElectricVehicle = 700.0
	TierCarpool         = 500.0
	TierOptimizeRoutes  = 300.0
	TierBikeOrWalk      = 100.0
)

// Commute forecast thresholds, lbs CO2.
const (
	ForecastElectricThreshold = 500.0
	ForecastCarpoolThreshold  = 200.0
)

// StrategyFor maps a total emission onto its tier. ok is false at or below
// TierBikeOrWalk, where no strategy applies.
func StrategyFor(total float64) (Strategy, bool) {
	var key string
	switch {
	case total > TierPublicTransport:
		key = KeyUsePublicTransport
	case total > TierElectricVehicle:
		key = KeyElectricVehicle
	case total > TierCarpool:
		key = KeyCarpool
	case total > TierOptimizeRoutes:
		key = KeyOptimizeRoutes
	case total > TierBikeOrWalk:
		key = KeyBikeOrWalk
	default:
		return Strategy{}, false
	}
	return strategies[key], true
}

// Generate builds the ordered candidate list for one user's features.
func Generate(f trips.Features) []Candidate {
	total := trips.NonNegative(f.TotalEmissions)
	s, ok := StrategyFor(total)
	if !ok {
		return []Candidate{}
	}
	out := []Candidate{NewCandidate(s, f)}
	SortByLevel(out)
	return truncate(out, DefaultMaxResults)
}

// NewCandidate instantiates s against f, capping savings at current emissions.
func NewCandidate(s Strategy, f trips.Features) Candidate {
	total := trips.NonNegative(f.TotalEmissions)
	return Candidate{
		StrategyKey:      s.Key,
		Description:      s.Description,
		Category:         categoryFor(f.DominantCategory),
		CurrentEmissions: total,
		PotentialSavings: math.Min(s.Impact, total),
		PotentialImpact:  s.Impact,
		VehicleType:      f.DominantCategory,
		Level:            s.Level,
	}
}

// CommuteCandidate returns the forecast-driven commute strategy for a
// predicted emission, if the prediction crosses a threshold.
func CommuteCandidate(predicted float64, f trips.Features) (Candidate, bool) {
	switch {
	case predicted > ForecastElectricThreshold:
		return NewCandidate(strategies[KeyCommuteElectricVehicle], f), true
	case predicted > ForecastCarpoolThreshold:
		return NewCandidate(strategies[KeyCommuteCarpool], f), true
	default:
		return Candidate{}, false
	}
}

// SortByLevel orders major changes first, then by savings descending, then key.
func SortByLevel(cands []Candidate) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		if c := cmp.Compare(levelRank(a.Level), levelRank(b.Level)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PotentialSavings, a.PotentialSavings); c != 0 {
			return c
		}
		return cmp.Compare(a.StrategyKey, b.StrategyKey)
	})
}

func levelRank(level string) int {
	if level == LevelMajor {
		return 0
	}
	return 1
}

func truncate(cands []Candidate, n int) []Candidate {
	if n > 0 && len(cands) > n {
		return cands[:n]
	}
	return cands
}
