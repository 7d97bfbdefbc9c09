package report

import (
	"time"

	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/timecalc"
)

// FilterSpec holds the optional report filters. Nil date bounds mean no
// restriction on that side.
type FilterSpec struct {
	// Start is the inclusive lower date bound, taken at start of day.
	Start *time.Time
	// End is the inclusive upper date bound, taken at end of day
	// (23:59:59.999).
	End *time.Time
	// MemberID restricts entries to one member when non-empty.
	MemberID string
	// LabelID restricts cards (not entries) to those carrying the label
	// when non-empty.
	LabelID string
	// ExcludeStartDay shifts the lower bound one day forward, matching
	// the stricter of the two historical filter semantics. The default
	// (false) includes entries dated exactly on Start.
	ExcludeStartDay bool
}

// Filter applies the spec to a processed card set. A card is retained iff
// it carries the filtered label (when one is set) and at least one of its
// entries survives the date and member predicates. The input is never
// mutated, and applying the same spec to the output is a no-op.
func Filter(cards []model.ProcessedCard, spec FilterSpec) []model.ProcessedCard {
	var lo, hi *time.Time
	if spec.Start != nil {
		t := timecalc.StartOfDay(*spec.Start)
		if spec.ExcludeStartDay {
			t = t.AddDate(0, 0, 1)
		}
		lo = &t
	}
	if spec.End != nil {
		t := timecalc.EndOfDay(*spec.End)
		hi = &t
	}

	out := make([]model.ProcessedCard, 0, len(cards))
	for _, card := range cards {
		if spec.LabelID != "" && !card.HasLabel(spec.LabelID) {
			continue
		}

		kept := make([]model.Entry, 0, len(card.Entries))
		for _, e := range card.Entries {
			if !entryPasses(e, lo, hi, spec.MemberID) {
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			continue
		}

		card.Entries = kept
		out = append(out, card)
	}
	return out
}

// entryPasses applies the date-range and member predicates to one entry.
func entryPasses(e model.Entry, lo, hi *time.Time, memberID string) bool {
	if lo != nil && e.Date.Before(*lo) {
		return false
	}
	if hi != nil && e.Date.After(*hi) {
		return false
	}
	if memberID != "" && e.MemberID != memberID {
		return false
	}
	return true
}
