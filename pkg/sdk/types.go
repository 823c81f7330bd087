package recfeed

import (
	"time"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
	recuc "github.com/kailas-cloud/recfeed/internal/usecase/recommendation"
)

// Quality describes how well a feed meets the minimum yield.
type Quality string

// Quality constants.
const (
	QualityOptimal Quality = "optimal"
	QualityLimited Quality = "limited"
	QualityNone    Quality = "none"
)

// Item is a content item offered to the engine.
type Item struct {
	ID          string
	Title       string
	Body        string
	Keywords    []string
	PublishedAt time.Time
}

// Recommendation is one stored feed entry.
type Recommendation struct {
	ID               string
	ItemID           string
	Score            float64
	Source           string // primary_interests, secondary_interests, fallback, random
	Category         string
	MatchedInterests []string
	Status           string // new or read
	CreatedAt        time.Time
}

// Feed is a ranked page of unread recommendations.
type Feed struct {
	Items   []Recommendation
	Quality Quality
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Quality    Quality
	Count      int
	Backfilled int
}

// CleanupResult reports how many recommendations a cleanup removed.
type CleanupResult struct {
	DeletedRead  int
	DeletedStale int
}

func toDomainItem(it Item) (domcontent.Item, error) {
	return domcontent.New(it.ID, it.Title, it.Body, it.Keywords, it.PublishedAt)
}

func fromRecord(r *domrec.Record) Recommendation {
	matched := r.MatchedInterests()
	out := make([]string, len(matched))
	copy(out, matched)
	return Recommendation{
		ID:               r.ID(),
		ItemID:           r.ItemID(),
		Score:            r.Score(),
		Source:           string(r.Source()),
		Category:         r.Category(),
		MatchedInterests: out,
		Status:           string(r.Status()),
		CreatedAt:        r.CreatedAt(),
	}
}

func fromFeed(f recuc.Feed) Feed {
	items := make([]Recommendation, 0, len(f.Items))
	for i := range f.Items {
		items = append(items, fromRecord(&f.Items[i]))
	}
	return Feed{Items: items, Quality: Quality(f.Quality)}
}
