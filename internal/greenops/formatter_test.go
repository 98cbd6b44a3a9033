package greenops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.n))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name      string
		f         float64
		precision int
		want      string
	}{
		{name: "integer", f: 18248.56, precision: 0, want: "18,249"},
		{name: "one decimal", f: 781.25, precision: 1, want: "781.2"},
		{name: "two decimals grouped", f: 1234.567, precision: 2, want: "1,234.57"},
		{name: "small", f: 0.5, precision: 2, want: "0.50"},
		{name: "negative fraction", f: -0.25, precision: 2, want: "-0.25"},
		{name: "negative grouped", f: -12345.6, precision: 1, want: "-12,345.6"},
		{name: "negative precision treated as zero", f: 9.4, precision: -1, want: "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.f, tt.precision))
		})
	}
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "999,999", FormatLarge(999_999))
	assert.Equal(t, "~5.2 million", FormatLarge(5_208_333))
	assert.Equal(t, "~1.5 billion", FormatLarge(1_500_000_000))
}

func TestFormatLbs(t *testing.T) {
	assert.Equal(t, "1,234.5 lbs CO2", FormatLbs(1234.5, 1))
	assert.Equal(t, "750.00 lbs CO2", FormatLbs(750, 2))
}
