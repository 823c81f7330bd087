package recommendation

import "time"

// Candidate is a content item scored during one refresh pass. It is not persisted as-is.
type Candidate struct {
	ItemID           string
	Score            float64
	Source           Source
	Category         string
	MatchedInterests []string
	PublishedAt      time.Time
}

// Selection is the bounded output of a refresh pass, ready to persist.
type Selection struct {
	Candidates []Candidate
	Quality    Quality
	Backfilled int
}

// Len returns the number of selected candidates.
func (s Selection) Len() int { return len(s.Candidates) }
