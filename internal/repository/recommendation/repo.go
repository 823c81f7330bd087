package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/recfeed/internal/db"
	"github.com/kailas-cloud/recfeed/internal/domain"
	"github.com/kailas-cloud/recfeed/internal/domain/filter"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// store is the consumer interface for recommendations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HUpsertMulti(ctx context.Context, items []db.HashUpsertItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) (int, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, q *db.ListQuery) (int, error)
}

const (
	// deletePageSize bounds one FT.SEARCH + DEL round of a bulk delete.
	deletePageSize = 500
	// maxDeletePages stops a bulk delete whose index never drains.
	maxDeletePages = 100
)

// Repo implements the recommendation store over Redis hashes.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a recommendation repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// EnsureIndex creates the recommendation index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	if err := r.store.CreateIndex(ctx, buildIndex()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create recommendation index: %w", err)
	}
	return nil
}

// BulkUpsert writes all records in one pipelined round trip.
// New keys start as status=new; existing keys keep status and created_at.
func (r *Repo) BulkUpsert(ctx context.Context, records []domrec.Record) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashUpsertItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		fields, err := mutableFields(rec)
		if err != nil {
			return err
		}
		items = append(items, db.HashUpsertItem{
			Key:      recordKey(rec.ID()),
			Fields:   fields,
			Defaults: insertOnlyFields(rec),
		})
	}

	if err := r.store.HUpsertMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d recommendations: %w", len(records), err)
	}
	return nil
}

// ListNew returns up to limit unread records of the user, newest first.
func (r *Repo) ListNew(ctx context.Context, userID string, limit int) ([]domrec.Record, error) {
	if limit <= 0 {
		return []domrec.Record{}, nil
	}
	expr, err := userStatusFilter(userID, domrec.StatusNew)
	if err != nil {
		return nil, err
	}

	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:  indexName,
		Filters:    expr,
		SortBy:     fieldCreatedAt,
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list new recommendations: %w", err)
	}

	out := make([]domrec.Record, 0, len(res.Entries))
	for i := range res.Entries {
		rec, err := recordFromHash(res.Entries[i].Key, res.Entries[i].Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountNew returns how many unread records the user has.
func (r *Repo) CountNew(ctx context.Context, userID string) (int, error) {
	expr, err := userStatusFilter(userID, domrec.StatusNew)
	if err != nil {
		return 0, err
	}
	n, err := r.store.SearchCount(ctx, &db.ListQuery{IndexName: indexName, Filters: expr})
	if err != nil {
		return 0, fmt.Errorf("count new recommendations: %w", err)
	}
	return n, nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (domrec.Record, error) {
	m, err := r.store.HGetAll(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrRecommendationNotFound
		}
		return domrec.Record{}, fmt.Errorf("hgetall recommendation %s: %w", id, err)
	}
	return recordFromHash(recordKey(id), m)
}

// MarkRead moves a record of userID to status read. Records of other users
// are reported as not found.
func (r *Repo) MarkRead(ctx context.Context, userID, id string) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID() != userID {
		return domain.ErrRecommendationNotFound
	}
	if rec.Status() == domrec.StatusRead {
		return nil
	}

	fields := map[string]string{
		fieldStatus:    string(domrec.StatusRead),
		fieldUpdatedAt: formatMillis(r.now()),
	}
	if err := r.store.HSet(ctx, recordKey(id), fields); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	history := map[string]string{rec.ItemID(): formatMillis(r.now())}
	if err := r.store.HSet(ctx, historyKey(userID), history); err != nil {
		return fmt.Errorf("record read history %s: %w", id, err)
	}
	return nil
}

// ReadItems returns the item IDs the user has marked read within the
// history window. Refreshes skip them so pruned read records stay gone.
func (r *Repo) ReadItems(ctx context.Context, userID string) (map[string]struct{}, error) {
	m, err := r.store.HGetAll(ctx, historyKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("read history %s: %w", userID, err)
	}
	out := make(map[string]struct{}, len(m))
	for itemID := range m {
		out[itemID] = struct{}{}
	}
	return out, nil
}

// PruneReadHistory forgets read marks older than cutoff.
func (r *Repo) PruneReadHistory(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	m, err := r.store.HGetAll(ctx, historyKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read history %s: %w", userID, err)
	}

	var expired []string
	for itemID, ts := range m {
		if parseMillis(ts).Before(cutoff) {
			expired = append(expired, itemID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	n, err := r.store.HDel(ctx, historyKey(userID), expired...)
	if err != nil {
		return 0, fmt.Errorf("prune read history %s: %w", userID, err)
	}
	return n, nil
}

// DeleteRead removes all read records of the user and returns the count.
func (r *Repo) DeleteRead(ctx context.Context, userID string) (int, error) {
	expr, err := userStatusFilter(userID, domrec.StatusRead)
	if err != nil {
		return 0, err
	}
	return r.deleteMatching(ctx, expr)
}

// DeleteStaleBefore removes unread records created before cutoff.
func (r *Repo) DeleteStaleBefore(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	user, err := filter.NewMatch(fieldUserID, userID)
	if err != nil {
		return 0, err
	}
	status, err := filter.NewMatch(fieldStatus, string(domrec.StatusNew))
	if err != nil {
		return 0, err
	}
	before, err := filter.Below(fieldCreatedAt, float64(cutoff.UnixMilli()))
	if err != nil {
		return 0, err
	}
	expr, err := filter.All(user, status, before)
	if err != nil {
		return 0, err
	}
	return r.deleteMatching(ctx, expr)
}

// deleteMatching pages matching keys through FT.SEARCH and deletes each page.
// Deleted hashes leave the index, so every round re-reads from offset 0.
func (r *Repo) deleteMatching(ctx context.Context, expr filter.Expression) (int, error) {
	total := 0
	for range maxDeletePages {
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName: indexName,
			Filters:   expr,
			Limit:     deletePageSize,
			KeysOnly:  true,
		})
		if err != nil {
			return total, fmt.Errorf("find recommendations to delete: %w", err)
		}
		keys := res.Keys()
		if len(keys) == 0 {
			return total, nil
		}

		n, err := r.store.DelMulti(ctx, keys)
		total += n
		if err != nil {
			return total, fmt.Errorf("delete recommendations: %w", err)
		}
		if n == 0 || len(keys) < deletePageSize {
			return total, nil
		}
	}
	return total, nil
}

func userStatusFilter(userID string, status domrec.Status) (filter.Expression, error) {
	user, err := filter.NewMatch(fieldUserID, userID)
	if err != nil {
		return filter.Expression{}, err
	}
	st, err := filter.NewMatch(fieldStatus, string(status))
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.All(user, st)
}
