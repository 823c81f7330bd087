package content

import (
	"github.com/kailas-cloud/recfeed/internal/db"
	"github.com/kailas-cloud/recfeed/internal/domain"
)

// Key patterns: recfeed:content:{id}, recfeed:content:idx

var (
	keyPrefix = domain.KeyPrefix + "content:"
	indexName = domain.KeyPrefix + "content:idx"
)

func itemKey(id string) string {
	return keyPrefix + id
}

// buildIndex describes the content pool index: JSON docs ordered by publish time.
func buildIndex() *db.IndexDefinition {
	return db.NewIndex(indexName).
		OnJSON().
		Prefix(keyPrefix).
		Tag("$.id").As("id").
		Numeric("$.published_at").As("published_at").Sortable().
		MustBuild()
}
