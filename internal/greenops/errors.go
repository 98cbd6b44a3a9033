package greenops

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, compared with errors.Is.
var (
	// ErrInvalidUnit is returned for an unrecognized carbon unit.
	ErrInvalidUnit = constError("invalid carbon unit")

	// ErrNegativeValue is returned for a negative footprint.
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow is returned for NaN, infinite or overflowing values.
	ErrCalculationOverflow = constError("calculation overflow")
)
