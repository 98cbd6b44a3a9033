// Package trips holds trip records and aggregates them into behavioral features.
package trips

import (
	"math"
	"slices"
	"time"
)

// Transport categories considered by the aggregator.
const (
	CategoryFuelVehicle     = "fuel_vehicle"
	CategoryElectricVehicle = "electric_vehicle"
	CategoryPublicTransport = "public_transport"

	// DefaultDominantCategory is reported when no transport trips exist.
	DefaultDominantCategory = "transportation"
)

// TransportCategories lists the categories the aggregator counts, in display order.
func TransportCategories() []string {
	return []string{CategoryFuelVehicle, CategoryElectricVehicle, CategoryPublicTransport}
}

// IsTransportCategory reports whether category is one the aggregator counts.
func IsTransportCategory(category string) bool {
	return slices.Contains(TransportCategories(), category)
}

// Record is one logged trip. Records are immutable once stored.
type Record struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Category      string    `json:"category" db:"category"`
	Mode          string    `json:"mode" db:"mode"`
	EmissionValue float64   `json:"emission_value" db:"emission_value"`
	DistanceMiles float64   `json:"distance_miles" db:"distance_miles"`
	Passengers    int       `json:"passengers" db:"passengers"`
	Timestamp     time.Time `json:"timestamp" db:"created_at"`
}

// Features summarizes one user's transport history.
type Features struct {
	TotalEmissions   float64        `json:"total_emissions"`
	TotalMiles       float64        `json:"total_miles"`
	CategoryCounts   map[string]int `json:"category_counts"`
	DominantCategory string         `json:"dominant_category"`
	Trips            int            `json:"trips"`
}

// Aggregate folds transport records into Features. Records outside the
// transport categories are skipped. Empty input yields zero totals and the
// default dominant category.
func Aggregate(records []Record) Features {
	f := Features{
		CategoryCounts:   make(map[string]int),
		DominantCategory: DefaultDominantCategory,
	}

	var order []string
	for _, r := range records {
		if !IsTransportCategory(r.Category) {
			continue
		}
		f.TotalEmissions += NonNegative(r.EmissionValue)
		f.TotalMiles += NonNegative(r.DistanceMiles)
		if f.CategoryCounts[r.Category] == 0 {
			order = append(order, r.Category)
		}
		f.CategoryCounts[r.Category]++
		f.Trips++
	}

	best := 0
	for _, c := range order {
		// strict > keeps the first category seen on ties
		if n := f.CategoryCounts[c]; n > best {
			best = n
			f.DominantCategory = c
		}
	}
	return f
}

// UserFeature pairs a user with their aggregated features.
type UserFeature struct {
	UserID   string
	Features Features
}

// UserFeatures aggregates records per user, ordered by user id. Users whose
// history has no transport trips are omitted.
func UserFeatures(records []Record) []UserFeature {
	byUser := make(map[string][]Record)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	slices.Sort(users)

	out := make([]UserFeature, 0, len(users))
	for _, u := range users {
		f := Aggregate(byUser[u])
		if f.Trips == 0 {
			continue
		}
		out = append(out, UserFeature{UserID: u, Features: f})
	}
	return out
}

// NonNegative coerces NaN, infinite and negative values to zero.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
