package pagination

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Sorter orders items of type T by named fields.
type Sorter[T any] struct {
	fields map[string]func(a, b T) int
}

// NewSorter returns a Sorter over the given field comparators.
func NewSorter[T any](fields map[string]func(a, b T) int) *Sorter[T] {
	return &Sorter[T]{fields: fields}
}

// Fields returns the sortable field names, sorted.
func (s *Sorter[T]) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Sort returns a stably sorted copy of items for a "field:order" expression.
// An empty expression returns items unchanged.
func (s *Sorter[T]) Sort(items []T, expr string) ([]T, error) {
	field, order, err := ParseSort(expr)
	if err != nil || field == "" {
		return items, err
	}
	compare, ok := s.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.Fields(), ", "))
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if order == SortOrderDesc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out, nil
}

// TripSorter sorts trip records by time, distance, emissions or mode.
func TripSorter() *Sorter[trips.Record] {
	return NewSorter(map[string]func(a, b trips.Record) int{
		"time":      func(a, b trips.Record) int { return compareTime(a.Timestamp, b.Timestamp) },
		"miles":     func(a, b trips.Record) int { return cmp.Compare(a.DistanceMiles, b.DistanceMiles) },
		"emissions": func(a, b trips.Record) int { return cmp.Compare(a.EmissionValue, b.EmissionValue) },
		"mode":      func(a, b trips.Record) int { return cmp.Compare(a.Mode, b.Mode) },
	})
}

// RouteSorter sorts routes by time, distance or emissions.
func RouteSorter() *Sorter[forecast.Route] {
	return NewSorter(map[string]func(a, b forecast.Route) int{
		"time":      func(a, b forecast.Route) int { return compareTime(a.Timestamp, b.Timestamp) },
		"miles":     func(a, b forecast.Route) int { return cmp.Compare(a.DistanceMiles, b.DistanceMiles) },
		"emissions": func(a, b forecast.Route) int { return cmp.Compare(a.Emission, b.Emission) },
	})
}

// RecommendationSorter sorts stored recommendations by savings, strategy or
// creation time.
func RecommendationSorter() *Sorter[recommend.Recommendation] {
	return NewSorter(map[string]func(a, b recommend.Recommendation) int{
		"savings": func(a, b recommend.Recommendation) int {
			return cmp.Compare(a.PotentialSavings, b.PotentialSavings)
		},
		"strategy": func(a, b recommend.Recommendation) int { return cmp.Compare(a.StrategyKey, b.StrategyKey) },
		"created":  func(a, b recommend.Recommendation) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	})
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}
