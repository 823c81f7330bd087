package content

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/recfeed/internal/db"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	searchListFn   func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

// mockSource is a scripted Source for breaker tests.
type mockSource struct {
	calls int
	fn    func(call int) ([]domcontent.Item, error)
}

func (m *mockSource) GetRecent(_ context.Context, _ int) ([]domcontent.Item, error) {
	m.calls++
	return m.fn(m.calls)
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, nil), ms
}

var testEpoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func testItem(t *testing.T, id string, age time.Duration) domcontent.Item {
	t.Helper()
	it, err := domcontent.New(id, "Title "+id, "Body "+id, []string{"go"}, testEpoch.Add(-age))
	if err != nil {
		t.Fatalf("testItem: %v", err)
	}
	return it
}
