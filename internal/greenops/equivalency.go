package greenops

import (
	"fmt"
	"math"
	"strings"
)

// Calculate normalizes input to kilograms and derives equivalencies. Inputs
// below MinEquivalencyThresholdKg return an empty output without error. Tree
// seedlings are included once the footprint reaches MinSeedlingThresholdKg.
func Calculate(input CarbonInput) (EquivalencyOutput, error) {
	kg, err := NormalizeToKg(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	miles := kg / EPAMilesDrivenFactor
	phones := kg / EPASmartphoneChargeFactor
	if invalid(miles) || invalid(phones) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	results := []EquivalencyResult{
		newResult(EquivalencyMilesDriven, miles, "miles driven"),
		newResult(EquivalencySmartphonesCharged, phones, "smartphones charged"),
	}

	display := fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
		results[0].FormattedValue, results[1].FormattedValue)
	compact := []string{
		results[0].FormattedValue + " mi",
		results[1].FormattedValue + " phones",
	}

	if kg >= MinSeedlingThresholdKg {
		seedlings := newResult(EquivalencyTreeSeedlings, kg/EPATreeSeedlingFactor, "tree seedlings grown for 10 years")
		results = append(results, seedlings)
		display += fmt.Sprintf(", or the carbon absorbed by ~%s tree seedlings in 10 years", seedlings.FormattedValue)
		compact = append(compact, seedlings.FormattedValue+" seedlings")
	}

	return EquivalencyOutput{
		InputKg:     kg,
		Results:     results,
		DisplayText: display,
		CompactText: "(≈ " + strings.Join(compact, ", ") + ")",
	}, nil
}

// ForFootprint derives equivalencies for a footprint given in pounds of CO2.
func ForFootprint(lbs float64) (EquivalencyOutput, error) {
	return Calculate(CarbonInput{Value: lbs, Unit: UnitPounds})
}

func newResult(t EquivalencyType, v float64, label string) EquivalencyResult {
	return EquivalencyResult{
		Type:           t,
		Value:          v,
		FormattedValue: formatEquivalencyValue(v),
		Label:          label,
	}
}

func invalid(v float64) bool {
	return math.IsInf(v, 0) || math.IsNaN(v)
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
