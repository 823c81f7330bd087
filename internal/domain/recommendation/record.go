package recommendation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source identifies which signal produced a recommendation.
type Source string

// Source values.
const (
	SourcePrimary   Source = "primary_interests"
	SourceSecondary Source = "secondary_interests"
	SourceFallback  Source = "fallback"
	SourceRandom    Source = "random"
)

// Status is the lifecycle state of a persisted recommendation.
type Status string

// Status values. Records move new -> read and are deleted on cleanup.
const (
	StatusNew  Status = "new"
	StatusRead Status = "read"
)

// Quality reports whether a refresh reached the minimum yield.
type Quality string

// Quality values. QualityNone is only reported, never persisted.
const (
	QualityOptimal Quality = "optimal"
	QualityLimited Quality = "limited"
	QualityNone    Quality = "none"
)

// idNamespace scopes UUIDv5 record identifiers.
var idNamespace = uuid.MustParse("6f1d5c3e-2b7a-5e4f-9c8d-1a2b3c4d5e6f")

// RecordID returns the deterministic identifier of the (userID, itemID) pair.
// The same pair always maps to the same ID, which makes bulk writes idempotent.
func RecordID(userID, itemID string) string {
	// NUL separator keeps ("ab","c") and ("a","bc") apart
	return uuid.NewSHA1(idNamespace, []byte(userID+"\x00"+itemID)).String()
}

// Record is a persisted recommendation, unique per (user, item).
type Record struct {
	id               string
	userID           string
	itemID           string
	score            float64
	status           Status
	source           Source
	category         string
	matchedInterests []string
	quality          Quality
	createdAt        time.Time
	updatedAt        time.Time
}

// NewRecord builds a fresh record for a scored candidate.
func NewRecord(userID string, c Candidate, quality Quality, now time.Time) (Record, error) {
	if userID == "" {
		return Record{}, fmt.Errorf("user ID is required")
	}
	if c.ItemID == "" {
		return Record{}, fmt.Errorf("item ID is required")
	}
	if c.Score < 0 {
		return Record{}, fmt.Errorf("negative score %f for item %q", c.Score, c.ItemID)
	}
	return Record{
		id:               RecordID(userID, c.ItemID),
		userID:           userID,
		itemID:           c.ItemID,
		score:            c.Score,
		status:           StatusNew,
		source:           c.Source,
		category:         c.Category,
		matchedInterests: append([]string(nil), c.MatchedInterests...),
		quality:          quality,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id, userID, itemID string, score float64, status Status, source Source,
	category string, matched []string, quality Quality, createdAt, updatedAt time.Time,
) Record {
	return Record{
		id: id, userID: userID, itemID: itemID, score: score, status: status,
		source: source, category: category, matchedInterests: matched,
		quality: quality, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the composite record identifier.
func (r *Record) ID() string { return r.id }

// UserID returns the owning user.
func (r *Record) UserID() string { return r.userID }

// ItemID returns the recommended content item.
func (r *Record) ItemID() string { return r.itemID }

// Score returns the relevance score.
func (r *Record) Score() float64 { return r.score }

// Status returns the lifecycle state.
func (r *Record) Status() Status { return r.status }

// Source returns the producing signal.
func (r *Record) Source() Source { return r.source }

// Category returns the topical category.
func (r *Record) Category() string { return r.category }

// MatchedInterests returns the interest terms that matched, in discovery order.
func (r *Record) MatchedInterests() []string { return r.matchedInterests }

// Quality returns the quality of the refresh that wrote the record.
func (r *Record) Quality() Quality { return r.quality }

// CreatedAt returns the first-insert time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-write time.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// IsStale reports whether an unread record was created before cutoff.
func (r *Record) IsStale(cutoff time.Time) bool {
	return r.status == StatusNew && r.createdAt.Before(cutoff)
}
