package recommendation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/recfeed/internal/domain"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockInterests struct {
	getFn func(ctx context.Context, userID string) (interest.Profile, error)
}

func (m *mockInterests) GetProfile(ctx context.Context, userID string) (interest.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return interest.Profile{}, nil
}

type mockContent struct {
	mu    sync.Mutex
	items []domcontent.Item
	err   error
	calls int
	limit int
}

func (m *mockContent) GetRecent(_ context.Context, limit int) ([]domcontent.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.items), nil
}

func (m *mockContent) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memStore keeps records in memory with the same upsert semantics as the
// Redis repository: status and created_at survive repeated upserts.
type memStore struct {
	mu      sync.Mutex
	records map[string]domrec.Record
	history map[string]map[string]time.Time

	upsertErr     error
	countErr      error
	deleteReadErr error
	readItemsErr  error

	upsertCalls     int
	deleteReadCalls int
	cleanupCtxErr   error
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]domrec.Record),
		history: make(map[string]map[string]time.Time),
	}
}

func (m *memStore) BulkUpsert(_ context.Context, records []domrec.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for i := range records {
		r := records[i]
		if old, ok := m.records[r.ID()]; ok {
			r = domrec.Reconstruct(r.ID(), r.UserID(), r.ItemID(), r.Score(), old.Status(), r.Source(),
				r.Category(), r.MatchedInterests(), r.Quality(), old.CreatedAt(), r.UpdatedAt())
		}
		m.records[r.ID()] = r
	}
	return nil
}

func (m *memStore) ListNew(_ context.Context, userID string, limit int) ([]domrec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.newOf(userID)
	slices.SortStableFunc(out, func(a, b domrec.Record) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ItemID(), b.ItemID())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountNew(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.newOf(userID)), nil
}

func (m *memStore) newOf(userID string) []domrec.Record {
	var out []domrec.Record
	for _, r := range m.records {
		if r.UserID() == userID && r.Status() == domrec.StatusNew {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) MarkRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.UserID() != userID {
		return domain.ErrRecommendationNotFound
	}
	m.records[id] = domrec.Reconstruct(r.ID(), r.UserID(), r.ItemID(), r.Score(), domrec.StatusRead, r.Source(),
		r.Category(), r.MatchedInterests(), r.Quality(), r.CreatedAt(), testNow)
	if m.history[userID] == nil {
		m.history[userID] = make(map[string]time.Time)
	}
	m.history[userID][r.ItemID()] = testNow
	return nil
}

func (m *memStore) DeleteRead(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteReadCalls++
	m.cleanupCtxErr = ctx.Err()
	if m.deleteReadErr != nil {
		return 0, m.deleteReadErr
	}
	return m.deleteWhere(func(r *domrec.Record) bool {
		return r.UserID() == userID && r.Status() == domrec.StatusRead
	}), nil
}

func (m *memStore) DeleteStaleBefore(_ context.Context, userID string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteWhere(func(r *domrec.Record) bool {
		return r.UserID() == userID && r.IsStale(cutoff)
	}), nil
}

func (m *memStore) deleteWhere(match func(r *domrec.Record) bool) int {
	n := 0
	for id, r := range m.records {
		if match(&r) {
			delete(m.records, id)
			n++
		}
	}
	return n
}

func (m *memStore) ReadItems(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readItemsErr != nil {
		return nil, m.readItemsErr
	}
	out := make(map[string]struct{})
	for id := range m.history[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *memStore) PruneReadHistory(_ context.Context, userID string, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, at := range m.history[userID] {
		if at.Before(cutoff) {
			delete(m.history[userID], id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) put(r domrec.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID()] = r
}

func (m *memStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// scores snapshots the stored score of every record by composite key.
func (m *memStore) scores() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.records))
	for id, r := range m.records {
		out[id] = r.Score()
	}
	return out
}

// --- Helpers ---

func newTestService(t *testing.T, interests InterestSource, content ContentSource, store Store) *Service {
	t.Helper()
	svc := New(interests, content, store, nil).WithClock(func() time.Time { return testNow })
	t.Cleanup(svc.Wait)
	return svc
}

// testPool returns n items, newest first, whose text matches no default interest.
func testPool(n int) []domcontent.Item {
	items := make([]domcontent.Item, n)
	for i := range items {
		items[i] = domcontent.Reconstruct(
			fmt.Sprintf("item-%03d", i), "zzz", "qqq", nil, testNow.Add(-time.Duration(i)*time.Minute),
		)
	}
	return items
}

func storedRecord(t *testing.T, userID, itemID string, status domrec.Status, created time.Time) domrec.Record {
	t.Helper()
	return domrec.Reconstruct(domrec.RecordID(userID, itemID), userID, itemID, 1, status,
		domrec.SourcePrimary, "technology", []string{"golang"}, domrec.QualityOptimal, created, created)
}
