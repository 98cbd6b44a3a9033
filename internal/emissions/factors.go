// Package emissions converts trip parameters into per-person CO2 estimates.
//
// All values are pounds of CO2. Per-mile factors are per vehicle for private
// modes and per passenger for transit modes, matching the EPA/FAA figures the
// table was built from.
package emissions

import (
	"maps"
	"slices"
	"strings"
)

// Mode identifiers with a direct per-mile factor.
const (
	ModeGasolineCar     = "gasoline_car"
	ModeDieselCar       = "diesel_car"
	ModeHybridCar       = "hybrid_car"
	ModeMotorcycle      = "motorcycle"
	ModeRideshareSolo   = "rideshare_solo"
	ModeRideshareShared = "rideshare_shared"

	ModeBus           = "bus"
	ModeDieselBus     = "diesel_bus"
	ModeTrain         = "train"
	ModeSubway        = "subway"
	ModeHighSpeedRail = "high_speed_rail"
	ModeAirplane      = "airplane"
	ModeLongHaul      = "long_haul_flight"
	ModeFerry         = "ferry"

	ModeElectricCar     = "electric_car"
	ModeElectricScooter = "electric_scooter"
	ModeElectricBike    = "electric_bike"

	ModeBike    = "bike"
	ModeWalking = "walking"
)

// Fuel types with a per-gallon factor.
const (
	FuelGasoline = "gasoline"
	FuelDiesel   = "diesel"
)

// DefaultGridLbsPerKwh is the U.S. average grid intensity.
const DefaultGridLbsPerKwh = 0.450

// Table holds the factors used by a Calculator. The zero value has no factors.
type Table struct {
	// PerMile maps a mode identifier to lbs CO2 per mile.
	PerMile map[string]float64 `yaml:"per_mile" json:"per_mile"`
	// PerGallon maps a fuel type to lbs CO2 per gallon burned.
	PerGallon map[string]float64 `yaml:"per_gallon" json:"per_gallon"`
	// GridLbsPerKwh is lbs CO2 per kWh of grid electricity.
	GridLbsPerKwh float64 `yaml:"grid_lbs_per_kwh" json:"grid_lbs_per_kwh"`
}

// DefaultTable returns a fresh copy of the built-in factor table.
func DefaultTable() Table {
	return Table{
		PerMile: map[string]float64{
			ModeGasolineCar:     0.89,
			ModeDieselCar:       1.02,
			ModeHybridCar:       0.43,
			ModeMotorcycle:      0.46,
			ModeRideshareSolo:   0.89,
			ModeRideshareShared: 0.45,

			ModeBus:           0.17,
			ModeDieselBus:     0.40,
			ModeTrain:         0.20,
			ModeSubway:        0.10,
			ModeHighSpeedRail: 0.05,
			ModeAirplane:      0.54,
			ModeLongHaul:      0.43,
			ModeFerry:         0.30,

			ModeElectricCar:     0.06,
			ModeElectricScooter: 0.02,
			ModeElectricBike:    0.01,

			ModeBike:    0.00,
			ModeWalking: 0.00,
		},
		PerGallon: map[string]float64{
			FuelGasoline: 19.6,
			FuelDiesel:   22.4,
		},
		GridLbsPerKwh: DefaultGridLbsPerKwh,
	}
}

// Merge returns a copy of t with overrides applied. Zero-length maps and a
// non-positive grid factor in overrides leave t's values in place.
func (t Table) Merge(overrides Table) Table {
	out := Table{
		PerMile:       maps.Clone(t.PerMile),
		PerGallon:     maps.Clone(t.PerGallon),
		GridLbsPerKwh: t.GridLbsPerKwh,
	}
	if out.PerMile == nil {
		out.PerMile = make(map[string]float64)
	}
	if out.PerGallon == nil {
		out.PerGallon = make(map[string]float64)
	}
	for k, v := range overrides.PerMile {
		out.PerMile[normalizeMode(k)] = v
	}
	for k, v := range overrides.PerGallon {
		out.PerGallon[normalizeMode(k)] = v
	}
	if overrides.GridLbsPerKwh > 0 {
		out.GridLbsPerKwh = overrides.GridLbsPerKwh
	}
	return out
}

// PerMileFactor looks up the direct per-mile factor for mode.
func (t Table) PerMileFactor(mode string) (float64, bool) {
	f, ok := t.PerMile[normalizeMode(mode)]
	return f, ok
}

// GallonFactor resolves mode to its fuel type and returns the per-gallon factor.
func (t Table) GallonFactor(mode string) (float64, bool) {
	fuel, ok := FuelTypeOf(mode)
	if !ok {
		return 0, false
	}
	f, ok := t.PerGallon[fuel]
	return f, ok
}

// Modes returns the sorted list of modes with a per-mile factor.
func (t Table) Modes() []string {
	return slices.Sorted(maps.Keys(t.PerMile))
}

// FuelTypeOf maps a mode to the fuel it burns. "gasoline" and "diesel" map to
// themselves; "gasoline_*" and "diesel_*" map by prefix.
func FuelTypeOf(mode string) (string, bool) {
	m := normalizeMode(mode)
	for _, fuel := range []string{FuelGasoline, FuelDiesel} {
		if m == fuel || strings.HasPrefix(m, fuel+"_") {
			return fuel, true
		}
	}
	return "", false
}

// IsZeroEmissionMode reports whether mode is genuinely emission free, as
// opposed to unrecognized.
func IsZeroEmissionMode(mode string) bool {
	switch normalizeMode(mode) {
	case ModeBike, ModeWalking:
		return true
	default:
		return false
	}
}

func normalizeMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
