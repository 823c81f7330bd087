package recommendation

import (
	"github.com/kailas-cloud/recfeed/internal/db"
	"github.com/kailas-cloud/recfeed/internal/domain"
)

// Key patterns: recfeed:rec:{recordID}, recfeed:rec:idx, recfeed:read:{userID}

var (
	keyPrefix     = domain.KeyPrefix + "rec:"
	indexName     = domain.KeyPrefix + "rec:idx"
	historyPrefix = domain.KeyPrefix + "read:"
)

func recordKey(id string) string {
	return keyPrefix + id
}

// historyKey holds itemID -> read time (ms) for one user.
func historyKey(userID string) string {
	return historyPrefix + userID
}

func buildIndex() *db.IndexDefinition {
	return db.NewIndex(indexName).
		OnHash().
		Prefix(keyPrefix).
		TagWithOpts(fieldUserID, "", true).
		Tag(fieldStatus).
		Numeric(fieldCreatedAt).Sortable().
		Numeric(fieldScore).
		MustBuild()
}
