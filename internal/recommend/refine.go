package recommend

import (
	"slices"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cluster"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// Peers clusters all users by (total emissions, total miles) and returns the
// users sharing target's cluster, excluding target. ok is false when target
// has no transport history.
func Peers(target string, users []trips.UserFeature, opts Options) ([]string, bool) {
	opts = opts.withDefaults()

	idx := -1
	points := make([][]float64, len(users))
	for i, u := range users {
		points[i] = []float64{u.Features.TotalEmissions, u.Features.TotalMiles}
		if u.UserID == target {
			idx = i
		}
	}
	if idx < 0 {
		return nil, false
	}

	model := cluster.Fit(points, opts.Clusters, opts.Seed)
	label := model.Predict(points[idx])

	peers := []string{}
	for i, u := range users {
		if i != idx && model.Label(i) == label {
			peers = append(peers, u.UserID)
		}
	}
	return peers, true
}

// Refine re-weights and re-orders candidates using the feedback of target and
// its peers. target's own verdict for a strategy beats any peer verdict.
// Signals from users outside target and peers are ignored. The result holds at
// most opts.MaxResults entries and the input is not modified.
func Refine(target string, peers []string, cands []Candidate, signals []Signal, opts Options) []Candidate {
	opts = opts.withDefaults()

	var own, others []Signal
	for _, s := range signals {
		switch {
		case s.UserID == target:
			own = append(own, s)
		case slices.Contains(peers, s.UserID):
			others = append(others, s)
		}
	}

	vocab := Overlay(BuildVocabulary(others), BuildVocabulary(own))
	out := ApplyFeedback(cands, vocab, opts)
	SortByFeedback(out, vocab)
	return truncate(out, opts.MaxResults)
}
