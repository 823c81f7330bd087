package recommendation

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/recfeed/internal/db"
	"github.com/kailas-cloud/recfeed/internal/domain/filter"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// memStore is an in-memory hash store that honours HSET/HSETNX semantics and
// evaluates must-only filter expressions, enough to exercise the repository.
type memStore struct {
	hashes map[string]map[string]string

	// error injection
	upsertErr error
	searchErr error
	delErr    error

	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchCalls   int
}

func newMemStore() *memStore {
	return &memStore{hashes: make(map[string]map[string]string)}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	maps.Copy(h, fields)
	return nil
}

func (m *memStore) HUpsertMulti(ctx context.Context, items []db.HashUpsertItem) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, it := range items {
		_ = m.HSet(ctx, it.Key, it.Fields)
		h := m.hashes[it.Key]
		for k, v := range it.Defaults {
			if _, ok := h[k]; !ok {
				h[k] = v
			}
		}
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok || len(h) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return maps.Clone(h), nil
}

func (m *memStore) HDel(_ context.Context, key string, fields ...string) (int, error) {
	h, ok := m.hashes[key]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, f := range fields {
		if _, ok := h[f]; ok {
			delete(h, f)
			n++
		}
	}
	if len(h) == 0 {
		delete(m.hashes, key)
	}
	return n, nil
}

func (m *memStore) DelMulti(_ context.Context, keys []string) (int, error) {
	if m.delErr != nil {
		return 0, m.delErr
	}
	n := 0
	for _, k := range keys {
		if _, ok := m.hashes[k]; ok {
			delete(m.hashes, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *memStore) SearchList(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	keys := m.matching(q.Filters)
	if q.SortBy != "" {
		slices.SortStableFunc(keys, func(a, b string) int {
			x, _ := strconv.ParseFloat(m.hashes[a][q.SortBy], 64)
			y, _ := strconv.ParseFloat(m.hashes[b][q.SortBy], 64)
			if q.Descending {
				x, y = y, x
			}
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		})
	}

	res := &db.SearchResult{Total: len(keys)}
	for i := q.Offset; i < len(keys) && i < q.Offset+q.Limit; i++ {
		e := db.SearchEntry{Key: keys[i]}
		if !q.KeysOnly {
			e.Fields = maps.Clone(m.hashes[keys[i]])
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func (m *memStore) SearchCount(_ context.Context, q *db.ListQuery) (int, error) {
	if m.searchErr != nil {
		return 0, m.searchErr
	}
	return len(m.matching(q.Filters)), nil
}

func (m *memStore) matching(expr filter.Expression) []string {
	keys := slices.Sorted(maps.Keys(m.hashes))
	out := keys[:0]
	for _, k := range keys {
		if matchesAll(m.hashes[k], expr.Must()) {
			out = append(out, k)
		}
	}
	return out
}

func matchesAll(h map[string]string, conds []filter.Condition) bool {
	for _, c := range conds {
		v := h[c.Key()]
		if c.IsMatch() && v != c.Match() {
			return false
		}
		if c.IsRange() {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return false
			}
			if lt := c.Range().LT(); lt != nil && f >= *lt {
				return false
			}
		}
	}
	return true
}

func newTestRepo(t *testing.T) (*Repo, *memStore) {
	t.Helper()
	ms := newMemStore()
	repo := New(ms)
	repo.now = func() time.Time { return testNow }
	return repo, ms
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testRecord(t *testing.T, userID, itemID string, score float64, created time.Time) domrec.Record {
	t.Helper()
	rec, err := domrec.NewRecord(userID, domrec.Candidate{
		ItemID:           itemID,
		Score:            score,
		Source:           domrec.SourcePrimary,
		Category:         "technology",
		MatchedInterests: []string{"golang"},
	}, domrec.QualityOptimal, created)
	if err != nil {
		t.Fatalf("testRecord: %v", err)
	}
	return rec
}
