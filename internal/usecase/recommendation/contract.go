package recommendation

import (
	"context"
	"time"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// InterestSource reads a user's interest profile.
type InterestSource interface {
	GetProfile(ctx context.Context, userID string) (interest.Profile, error)
}

// ContentSource reads the most recent content items, newest first.
type ContentSource interface {
	GetRecent(ctx context.Context, limit int) ([]domcontent.Item, error)
}

// Store defines the persistence contract for recommendation records.
type Store interface {
	BulkUpsert(ctx context.Context, records []domrec.Record) error
	ListNew(ctx context.Context, userID string, limit int) ([]domrec.Record, error)
	CountNew(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	DeleteRead(ctx context.Context, userID string) (int, error)
	DeleteStaleBefore(ctx context.Context, userID string, cutoff time.Time) (int, error)
	ReadItems(ctx context.Context, userID string) (map[string]struct{}, error)
	PruneReadHistory(ctx context.Context, userID string, cutoff time.Time) (int, error)
}
