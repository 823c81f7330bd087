package interest

import (
	"unicode"
)

// Tier is the relative-importance bucket of an interest term.
type Tier string

// Tier values, from strongest to weakest signal.
const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierFallback  Tier = "fallback"
)

// maxFallbackTerms caps the fallback tier for medium and dense profiles.
const maxFallbackTerms = 25

// Tiers is a profile split into disjoint, frequency-ordered buckets.
type Tiers struct {
	Primary   []Entry
	Secondary []Entry
	Fallback  []Entry
}

// Total returns the number of terms across all tiers.
func (t Tiers) Total() int {
	return len(t.Primary) + len(t.Secondary) + len(t.Fallback)
}

// Of returns the entries of the given tier.
func (t Tiers) Of(tier Tier) []Entry {
	switch tier {
	case TierPrimary:
		return t.Primary
	case TierSecondary:
		return t.Secondary
	case TierFallback:
		return t.Fallback
	default:
		return nil
	}
}

// Classify splits a profile into Primary/Secondary/Fallback tiers.
//
// Thresholds are percentile based on the number T of terms left after noise filtering:
//
//	T <= 10       primary = top min(5,T), secondary = rest
//	10 < T <= 50  primary = top 20%, secondary = next 30%, fallback = next <= 25
//	T > 50        primary = top 15%, secondary = next 20%, fallback = next <= 25
//
// An empty profile, or one where every term is filtered out, yields DefaultTiers.
func Classify(p Profile) Tiers {
	if p.IsEmpty() {
		return DefaultTiers()
	}

	filtered := filterNoise(p.Entries())
	if len(filtered) == 0 {
		return DefaultTiers()
	}

	primaryN, secondaryN, fallbackN := tierSizes(len(filtered))

	var t Tiers
	t.Primary = cloneEntries(filtered[:primaryN])
	t.Secondary = cloneEntries(filtered[primaryN : primaryN+secondaryN])
	t.Fallback = cloneEntries(filtered[primaryN+secondaryN : primaryN+secondaryN+fallbackN])
	return t
}

func tierSizes(total int) (primary, secondary, fallback int) {
	switch {
	case total <= 10:
		primary = min(5, total)
		return primary, total - primary, 0
	case total <= 50:
		primary = max(1, total*20/100)
		secondary = total * 30 / 100
	default:
		primary = max(1, total*15/100)
		secondary = total * 20 / 100
	}
	fallback = min(maxFallbackTerms, total-primary-secondary)
	return primary, secondary, fallback
}

// filterNoise drops unreliable terms, preserving order.
func filterNoise(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if isNoise(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isNoise(e Entry) bool {
	n := len([]rune(e.Term))
	if n <= 2 {
		return true
	}
	if isNumeric(e.Term) {
		return true
	}
	if IsStopWord(e.Term) {
		return true
	}
	// short infrequent terms are unreliable
	return e.Frequency < 2 && n < 5
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func cloneEntries(e []Entry) []Entry {
	if len(e) == 0 {
		return nil
	}
	out := make([]Entry, len(e))
	copy(out, e)
	return out
}

// DefaultTiers is the cold-start profile served to users with no usable history.
func DefaultTiers() Tiers {
	return Tiers{
		Primary: []Entry{
			{Term: "technology", Frequency: 5},
			{Term: "science", Frequency: 4},
			{Term: "business", Frequency: 4},
		},
		Secondary: []Entry{
			{Term: "health", Frequency: 3},
			{Term: "sports", Frequency: 3},
			{Term: "entertainment", Frequency: 2},
			{Term: "politics", Frequency: 2},
		},
		Fallback: []Entry{
			{Term: "travel", Frequency: 1},
			{Term: "culture", Frequency: 1},
			{Term: "education", Frequency: 1},
		},
	}
}
