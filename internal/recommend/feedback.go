package recommend

import (
	"cmp"
	"math"
	"slices"
)

// Verdict is the effective accept/reject decision for one strategy.
type Verdict int

const (
	// Neutral means no verdict has been recorded.
	Neutral Verdict = iota
	Accepted
	Rejected
)

// Vocabulary maps strategy keys to their effective verdict.
type Vocabulary map[string]Verdict

// Of returns the verdict for key, Neutral when absent.
func (v Vocabulary) Of(key string) Verdict {
	return v[key]
}

// BuildVocabulary reduces signals to one verdict per strategy key. The latest
// signal by CreatedAt wins, ties going to the later input position. Signals
// without a verdict or a strategy key are ignored.
func BuildVocabulary(signals []Signal) Vocabulary {
	ordered := slices.Clone(signals)
	slices.SortStableFunc(ordered, func(a, b Signal) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	vocab := make(Vocabulary)
	for _, s := range ordered {
		if s.Accepted == nil || s.StrategyKey == "" {
			continue
		}
		if *s.Accepted {
			vocab[s.StrategyKey] = Accepted
		} else {
			vocab[s.StrategyKey] = Rejected
		}
	}
	return vocab
}

// Overlay returns a new vocabulary holding base's entries overridden by own.
func Overlay(base, own Vocabulary) Vocabulary {
	out := make(Vocabulary, len(base)+len(own))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}

// ApplyFeedback scales savings of accepted and rejected strategies and
// re-clamps them to current emissions. The input slice is not modified.
func ApplyFeedback(cands []Candidate, vocab Vocabulary, opts Options) []Candidate {
	opts = opts.withDefaults()
	out := slices.Clone(cands)
	if out == nil {
		out = []Candidate{}
	}
	for i := range out {
		c := &out[i]
		switch vocab.Of(c.StrategyKey) {
		case Accepted:
			c.PotentialSavings *= opts.AcceptedMultiplier
		case Rejected:
			c.PotentialSavings *= opts.RejectedMultiplier
		case Neutral:
		}
		c.PotentialSavings = clampSavings(c.PotentialSavings, c.CurrentEmissions)
	}
	return out
}

func clampSavings(savings, current float64) float64 {
	if math.IsNaN(savings) || savings < 0 {
		return 0
	}
	if current < 0 || math.IsNaN(current) {
		current = 0
	}
	return math.Min(savings, current)
}

// SortByFeedback orders accepted strategies first, rejected last, then by
// savings descending, then key.
func SortByFeedback(cands []Candidate, vocab Vocabulary) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		if c := cmp.Compare(verdictRank(vocab.Of(a.StrategyKey)), verdictRank(vocab.Of(b.StrategyKey))); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PotentialSavings, a.PotentialSavings); c != 0 {
			return c
		}
		return cmp.Compare(a.StrategyKey, b.StrategyKey)
	})
}

func verdictRank(v Verdict) int {
	switch v {
	case Accepted:
		return 0
	case Rejected:
		return 2
	default:
		return 1
	}
}
