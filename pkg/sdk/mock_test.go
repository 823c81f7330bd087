package recfeed

import (
	"context"
	"time"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	dominterest "github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
	recuc "github.com/kailas-cloud/recfeed/internal/usecase/recommendation"
)

// --- feedUseCase mock ---

type mockFeedUC struct {
	getFn      func(ctx context.Context, userID string, limit int) (recuc.Feed, error)
	refreshFn  func(ctx context.Context, userID string) (recuc.RefreshResult, error)
	markReadFn func(ctx context.Context, userID, recommendationID string) error
	cleanupFn  func(ctx context.Context, userID string) (recuc.CleanupResult, error)
	waited     bool
}

func (m *mockFeedUC) Get(ctx context.Context, userID string, limit int) (recuc.Feed, error) {
	return m.getFn(ctx, userID, limit)
}

func (m *mockFeedUC) Refresh(ctx context.Context, userID string) (recuc.RefreshResult, error) {
	return m.refreshFn(ctx, userID)
}

func (m *mockFeedUC) MarkRead(ctx context.Context, userID, recommendationID string) error {
	return m.markReadFn(ctx, userID, recommendationID)
}

func (m *mockFeedUC) Cleanup(ctx context.Context, userID string) (recuc.CleanupResult, error) {
	return m.cleanupFn(ctx, userID)
}

func (m *mockFeedUC) Wait() { m.waited = true }

// --- contentWriter mock ---

type mockContent struct {
	saveFn func(ctx context.Context, items []domcontent.Item) error
}

func (m *mockContent) Save(ctx context.Context, items []domcontent.Item) error {
	return m.saveFn(ctx, items)
}

// --- interestStore mock ---

type mockInterests struct {
	getFn  func(ctx context.Context, userID string) (dominterest.Profile, error)
	saveFn func(ctx context.Context, userID string, p dominterest.Profile) error
}

func (m *mockInterests) GetProfile(ctx context.Context, userID string) (dominterest.Profile, error) {
	return m.getFn(ctx, userID)
}

func (m *mockInterests) SaveProfile(ctx context.Context, userID string, p dominterest.Profile) error {
	return m.saveFn(ctx, userID, p)
}

// --- helpers ---

func testClient(feeds feedUseCase, contents contentWriter, interests interestStore) *Client {
	return &Client{
		feeds:     feeds,
		contents:  contents,
		interests: interests,
	}
}

func testRecord(userID, itemID string, score float64) domrec.Record {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domrec.Reconstruct(
		domrec.RecordID(userID, itemID), userID, itemID, score,
		domrec.StatusNew, domrec.SourcePrimary, "technology", []string{"golang"},
		domrec.QualityOptimal, created, created,
	)
}
