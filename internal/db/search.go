package db

import "github.com/kailas-cloud/recfeed/internal/domain/filter"

// ListQuery is the input for a filtered FT.SEARCH listing.
// An empty filter matches every document in the index.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       string
	Descending   bool
	Offset       int
	Limit        int
	ReturnFields []string
	// KeysOnly skips document bodies (NOCONTENT).
	KeysOnly bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Keys returns the document keys in result order.
func (r *SearchResult) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for i := range r.Entries {
		keys = append(keys, r.Entries[i].Key)
	}
	return keys
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
