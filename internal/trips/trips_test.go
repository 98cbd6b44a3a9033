package trips

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name          string
		records       []Record
		wantTotal     float64
		wantMiles     float64
		wantDominant  string
		wantTrips     int
		wantCountFuel int
	}{
		{
			name:         "empty history",
			wantDominant: DefaultDominantCategory,
		},
		{
			name: "sums transport records",
			records: []Record{
				{Category: CategoryFuelVehicle, EmissionValue: 400, DistanceMiles: 40},
				{Category: CategoryFuelVehicle, EmissionValue: 200, DistanceMiles: 20},
				{Category: CategoryPublicTransport, EmissionValue: 150, DistanceMiles: 60},
			},
			wantTotal:     750,
			wantMiles:     120,
			wantDominant:  CategoryFuelVehicle,
			wantTrips:     3,
			wantCountFuel: 2,
		},
		{
			name: "skips non transport categories",
			records: []Record{
				{Category: "diet", EmissionValue: 999},
				{Category: CategoryElectricVehicle, EmissionValue: 5, DistanceMiles: 80},
			},
			wantTotal:    5,
			wantMiles:    80,
			wantDominant: CategoryElectricVehicle,
			wantTrips:    1,
		},
		{
			name: "ties keep first category seen",
			records: []Record{
				{Category: CategoryPublicTransport, EmissionValue: 1},
				{Category: CategoryFuelVehicle, EmissionValue: 1},
			},
			wantTotal:     2,
			wantDominant:  CategoryPublicTransport,
			wantTrips:     2,
			wantCountFuel: 1,
		},
		{
			name: "coerces bad numbers",
			records: []Record{
				{Category: CategoryFuelVehicle, EmissionValue: math.NaN(), DistanceMiles: -4},
				{Category: CategoryFuelVehicle, EmissionValue: -10, DistanceMiles: math.Inf(1)},
				{Category: CategoryFuelVehicle, EmissionValue: 3, DistanceMiles: 2},
			},
			wantTotal:     3,
			wantMiles:     2,
			wantDominant:  CategoryFuelVehicle,
			wantTrips:     3,
			wantCountFuel: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.records)
			assert.InDelta(t, tt.wantTotal, got.TotalEmissions, 1e-9)
			assert.InDelta(t, tt.wantMiles, got.TotalMiles, 1e-9)
			assert.Equal(t, tt.wantDominant, got.DominantCategory)
			assert.Equal(t, tt.wantTrips, got.Trips)
			assert.Equal(t, tt.wantCountFuel, got.CategoryCounts[CategoryFuelVehicle])
		})
	}
}

func TestUserFeatures(t *testing.T) {
	records := []Record{
		{UserID: "u3", Category: CategoryFuelVehicle, EmissionValue: 10, DistanceMiles: 5},
		{UserID: "u1", Category: CategoryPublicTransport, EmissionValue: 2, DistanceMiles: 10},
		{UserID: "u2", Category: "diet", EmissionValue: 50},
		{UserID: "u1", Category: CategoryPublicTransport, EmissionValue: 3, DistanceMiles: 15},
	}

	got := UserFeatures(records)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.InDelta(t, 5.0, got[0].Features.TotalEmissions, 1e-9)
	assert.InDelta(t, 25.0, got[0].Features.TotalMiles, 1e-9)
	assert.Equal(t, "u3", got[1].UserID)
}

func TestIsTransportCategory(t *testing.T) {
	assert.True(t, IsTransportCategory(CategoryFuelVehicle))
	assert.True(t, IsTransportCategory(CategoryPublicTransport))
	assert.False(t, IsTransportCategory("transportation"))
}
