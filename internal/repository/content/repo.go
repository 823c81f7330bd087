package content

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recfeed/internal/db"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
)

// store is the consumer interface for the content pool (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo serves the recently ingested content pool from JSON documents.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a content repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger}
}

// EnsureIndex creates the content index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	if err := r.store.CreateIndex(ctx, buildIndex()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create content index: %w", err)
	}
	return nil
}

// GetRecent returns up to limit items, newest first.
// Documents that fail to decode are skipped and logged.
func (r *Repo) GetRecent(ctx context.Context, limit int) ([]domcontent.Item, error) {
	if limit <= 0 {
		return []domcontent.Item{}, nil
	}

	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    indexName,
		SortBy:       "published_at",
		Descending:   true,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}

	items := make([]domcontent.Item, 0, len(res.Entries))
	for i := range res.Entries {
		e := &res.Entries[i]
		var doc itemDoc
		if err := json.Unmarshal([]byte(e.Fields["$"]), &doc); err != nil {
			r.logger.Warn("skip undecodable content", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		if doc.ID == "" {
			r.logger.Warn("skip content without id", zap.String("key", e.Key))
			continue
		}
		items = append(items, doc.toDomain())
	}

	// index order is newest first but ties come back unordered
	domcontent.SortByRecency(items)
	return items, nil
}

// Save stores items in one pipelined round trip, overwriting existing documents.
func (r *Repo) Save(ctx context.Context, items []domcontent.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := make([]db.JSONSetItem, 0, len(items))
	for i := range items {
		data, err := json.Marshal(toDoc(&items[i]))
		if err != nil {
			return fmt.Errorf("marshal content %s: %w", items[i].ID(), err)
		}
		batch = append(batch, db.JSONSetItem{Key: itemKey(items[i].ID()), Path: "$", Data: data})
	}

	if err := r.store.JSONSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("json.set content: %w", err)
	}
	return nil
}
