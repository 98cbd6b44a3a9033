package emissions

import "math"

// Basis records which path produced an Estimate.
type Basis int

const (
	// Unrecognized means no factor applied and Value is 0.
	Unrecognized Basis = iota
	// PerMile means a direct per-mile factor applied.
	PerMile
	// PerGallon means the fuel-economy fallback applied.
	PerGallon
	// PerKwh means the grid-intensity fallback applied.
	PerKwh
)

// String returns the basis name used in output and logs.
func (b Basis) String() string {
	switch b {
	case PerMile:
		return "per_mile"
	case PerGallon:
		return "per_gallon"
	case PerKwh:
		return "per_kwh"
	default:
		return "unrecognized"
	}
}

// MarshalText lets Basis serialize as its name.
func (b Basis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses a basis name. Unknown names decode as Unrecognized.
func (b *Basis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "per_mile":
		*b = PerMile
	case "per_gallon":
		*b = PerGallon
	case "per_kwh":
		*b = PerKwh
	default:
		*b = Unrecognized
	}
	return nil
}

// Estimate is a per-person emission in lbs CO2 together with how it was derived.
type Estimate struct {
	Value float64 `json:"value"`
	Basis Basis   `json:"basis"`
}

// Recognized reports whether a factor applied. A zero Value with Recognized
// true is a genuinely zero-emission trip.
func (e Estimate) Recognized() bool {
	return e.Basis != Unrecognized
}

// Calculator estimates trip emissions from a factor Table. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	table Table
}

// NewCalculator returns a Calculator over table.
func NewCalculator(table Table) *Calculator {
	return &Calculator{table: table}
}

// NewDefaultCalculator returns a Calculator over DefaultTable.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultTable())
}

// Table returns the factor table in use.
func (c *Calculator) Table() Table {
	return c.table
}

// EstimateFuelVehicle estimates a combustion-vehicle trip. A direct per-mile
// factor wins; otherwise the mode's fuel type and mpg are used.
func (c *Calculator) EstimateFuelVehicle(mode string, mpg, miles float64, passengers int) Estimate {
	miles = sanitize(miles)
	if f, ok := c.table.PerMileFactor(mode); ok {
		return Estimate{Value: share(f*miles, passengers), Basis: PerMile}
	}
	if g, ok := c.table.GallonFactor(mode); ok && positive(mpg) {
		return Estimate{Value: share(g/mpg*miles, passengers), Basis: PerGallon}
	}
	return Estimate{Basis: Unrecognized}
}

// EstimateElectricVehicle estimates an electric-vehicle trip. A direct per-mile
// factor wins; otherwise grid intensity divided by efficiency is used.
func (c *Calculator) EstimateElectricVehicle(mode string, milesPerKwh, miles float64, passengers int) Estimate {
	miles = sanitize(miles)
	if f, ok := c.table.PerMileFactor(mode); ok {
		return Estimate{Value: share(f*miles, passengers), Basis: PerMile}
	}
	if positive(milesPerKwh) {
		return Estimate{Value: share(c.table.GridLbsPerKwh/milesPerKwh*miles, passengers), Basis: PerKwh}
	}
	return Estimate{Basis: Unrecognized}
}

// EstimatePublicTransport estimates a transit trip from the mode's per-mile factor.
func (c *Calculator) EstimatePublicTransport(mode string, miles float64, passengers int) Estimate {
	miles = sanitize(miles)
	if f, ok := c.table.PerMileFactor(mode); ok {
		return Estimate{Value: share(f*miles, passengers), Basis: PerMile}
	}
	return Estimate{Basis: Unrecognized}
}

// Passengers floors a passenger count at one.
func Passengers(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func share(total float64, passengers int) float64 {
	v := total / float64(Passengers(passengers))
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
