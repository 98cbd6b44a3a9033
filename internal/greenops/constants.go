package greenops

// EPA greenhouse-gas equivalency divisors (2024 edition), kg CO2e per unit:
//
//	equivalency = kg_CO2e / factor
const (
	// EPAMilesDrivenFactor is kg CO2e per mile in an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per full smartphone charge.
	EPASmartphoneChargeFactor = 0.00822

	// EPATreeSeedlingFactor is kg CO2e absorbed by one seedling grown for 10 years.
	EPATreeSeedlingFactor = 60.0
)

// Conversions to kilograms.
const (
	GramsToKg  = 0.001
	KgToKg     = 1.0
	TonsToKg   = 1000.0
	PoundsToKg = 0.453592
)

// Display thresholds.
const (
	// MinEquivalencyThresholdKg is the smallest footprint shown with
	// equivalencies; below it the numbers round to nothing useful.
	MinEquivalencyThresholdKg = 1.0

	// MinSeedlingThresholdKg is the smallest footprint that mentions seedlings.
	MinSeedlingThresholdKg = EPATreeSeedlingFactor / 2

	LargeNumberThreshold = 1_000_000
	BillionThreshold     = 1_000_000_000
)

// Unit names accepted by NormalizeToKg.
const (
	UnitPounds    = "lb"
	UnitKilograms = "kg"
)
