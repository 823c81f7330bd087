package content

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Item is an ingested content item (immutable value object).
type Item struct {
	id          string
	title       string
	body        string
	keywords    map[string]struct{}
	publishedAt time.Time
}

// New validates and creates an Item. Keywords are lower-cased and de-duplicated.
func New(id, title, body string, keywords []string, publishedAt time.Time) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("content ID is required")
	}
	if publishedAt.IsZero() {
		return Item{}, fmt.Errorf("published time is required for content %q", id)
	}
	return Reconstruct(id, title, body, keywords, publishedAt), nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(id, title, body string, keywords []string, publishedAt time.Time) Item {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return Item{id: id, title: title, body: body, keywords: set, publishedAt: publishedAt}
}

// ID returns the content identifier.
func (i *Item) ID() string { return i.id }

// Title returns the headline.
func (i *Item) Title() string { return i.title }

// Body returns the body/description text used for matching.
func (i *Item) Body() string { return i.body }

// PublishedAt returns the publish timestamp.
func (i *Item) PublishedAt() time.Time { return i.publishedAt }

// HasKeyword reports exact membership of a lower-cased term in the keyword set.
func (i *Item) HasKeyword(term string) bool {
	_, ok := i.keywords[term]
	return ok
}

// Keywords returns the keyword set sorted alphabetically.
func (i *Item) Keywords() []string {
	out := make([]string, 0, len(i.keywords))
	for k := range i.keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SortByRecency orders items newest first; equal timestamps order by ID.
func SortByRecency(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].publishedAt.Equal(items[b].publishedAt) {
			return items[a].publishedAt.After(items[b].publishedAt)
		}
		return items[a].id < items[b].id
	})
}
