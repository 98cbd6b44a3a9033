package greenops

import (
	"math"
	"strings"
)

func unitFactor(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gco2", "gco2e":
		return GramsToKg, true
	case "kg", "kgco2", "kgco2e":
		return KgToKg, true
	case "t", "tco2", "tco2e":
		return TonsToKg, true
	case "lb", "lbs", "lbco2", "lbco2e":
		return PoundsToKg, true
	default:
		return 0, false
	}
}

// NormalizeToKg converts value in unit to kilograms. Units are matched
// case-insensitively and may carry a CO2 or CO2e suffix.
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := unitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

// LbsToKg converts pounds to kilograms.
func LbsToKg(lbs float64) (float64, error) {
	return NormalizeToKg(lbs, UnitPounds)
}

// IsRecognizedUnit reports whether NormalizeToKg accepts unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := unitFactor(unit)
	return ok
}
