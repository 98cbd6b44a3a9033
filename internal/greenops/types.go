// Package greenops turns footprint totals into relatable equivalencies such as
// miles driven or smartphones charged, using EPA conversion factors.
package greenops

import "fmt"

// EquivalencyType identifies one kind of equivalency.
type EquivalencyType int

const (
	EquivalencyMilesDriven EquivalencyType = iota
	EquivalencySmartphonesCharged
	EquivalencyTreeSeedlings
)

// String returns a readable name for e.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// MarshalText serializes e by name.
func (e EquivalencyType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (e *EquivalencyType) UnmarshalText(text []byte) error {
	for _, t := range []EquivalencyType{EquivalencyMilesDriven, EquivalencySmartphonesCharged, EquivalencyTreeSeedlings} {
		if t.String() == string(text) {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("unknown equivalency type %q", text)
}

// CarbonInput is an amount of CO2 in a given unit.
type CarbonInput struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// EquivalencyResult is one calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds every equivalency for one input.
type EquivalencyOutput struct {
	InputKg float64             `json:"input_kg"`
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the prose form, e.g.
	// "Equivalent to driving ~781 miles or charging ~18,248 smartphones".
	DisplayText string `json:"display_text"`

	// CompactText is the short form, e.g. "(≈ 781 mi, 18,248 phones)".
	CompactText string `json:"compact_text"`

	IsEmpty bool `json:"is_empty"`
}
