package interest

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is a single interest term with its accumulated frequency.
type Entry struct {
	Term      string
	Frequency int
}

// Profile is a user's interest map: lower-cased term -> positive frequency.
// Terms with a non-positive frequency never exist in a Profile.
type Profile struct {
	terms map[string]int
}

// NewProfile builds a Profile from a raw term map.
// Terms are trimmed and lower-cased; duplicates after normalization are summed.
// Non-positive frequencies and empty terms are dropped.
func NewProfile(raw map[string]int) Profile {
	p := Profile{terms: make(map[string]int, len(raw))}
	for term, freq := range raw {
		p.add(term, freq)
	}
	return p
}

// Set stores term with the given frequency. A non-positive frequency removes the term.
func (p *Profile) Set(term string, freq int) error {
	t := normalizeTerm(term)
	if t == "" {
		return fmt.Errorf("interest term is required")
	}
	if p.terms == nil {
		p.terms = make(map[string]int)
	}
	if freq <= 0 {
		delete(p.terms, t)
		return nil
	}
	p.terms[t] = freq
	return nil
}

func (p *Profile) add(term string, freq int) {
	t := normalizeTerm(term)
	if t == "" || freq <= 0 {
		return
	}
	p.terms[t] += freq
}

// Frequency returns the frequency of term, or 0 when absent.
func (p Profile) Frequency(term string) int {
	return p.terms[normalizeTerm(term)]
}

// Len returns the number of terms.
func (p Profile) Len() int { return len(p.terms) }

// IsEmpty reports whether the profile has no terms.
func (p Profile) IsEmpty() bool { return len(p.terms) == 0 }

// Entries returns all terms sorted by frequency descending, ties by term ascending.
func (p Profile) Entries() []Entry {
	out := make([]Entry, 0, len(p.terms))
	for t, f := range p.terms {
		out = append(out, Entry{Term: t, Frequency: f})
	}
	sortEntries(out)
	return out
}

// Map returns a copy of the underlying term map.
func (p Profile) Map() map[string]int {
	c := make(map[string]int, len(p.terms))
	for k, v := range p.terms {
		c[k] = v
	}
	return c
}

func sortEntries(e []Entry) {
	sort.SliceStable(e, func(i, j int) bool {
		if e[i].Frequency != e[j].Frequency {
			return e[i].Frequency > e[j].Frequency
		}
		return e[i].Term < e[j].Term
	})
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
