package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recfeed/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HUpsertMulti writes many hashes in a single DoMulti round-trip.
// Each item issues one HSET for Fields and one HSETNX per Defaults entry,
// so defaults survive repeated upserts of the same key.
func (s *Store) HUpsertMulti(ctx context.Context, items []db.HashUpsertItem) error {
	if len(items) == 0 {
		return nil
	}

	type meta struct {
		op  string
		key string
	}
	cmds := make([]rueidis.Completed, 0, len(items)*3)
	metas := make([]meta, 0, cap(cmds))

	for _, item := range items {
		if len(item.Fields) > 0 {
			cmd := s.b().Hset().Key(item.Key).FieldValue()
			for k, v := range item.Fields {
				cmd = cmd.FieldValue(k, v)
			}
			cmds = append(cmds, cmd.Build())
			metas = append(metas, meta{op: db.OpHSet, key: item.Key})
		}
		for k, v := range item.Defaults {
			cmds = append(cmds, s.b().Hsetnx().Key(item.Key).Field(k).Value(v).Build())
			metas = append(metas, meta{op: db.OpHSetNX, key: item.Key})
		}
	}
	if len(cmds) == 0 {
		return nil
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: metas[i].op, Err: fmt.Errorf("key %s: %w", metas[i].key, err)}
		}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields db.ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// HDel removes fields from a hash and returns how many existed.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) (int, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	cmd := s.b().Hdel().Key(key).Field(fields...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpHDel, Err: err}
	}
	return int(n), nil
}

// DelMulti deletes keys one DEL per key in a single pipeline, which keeps it
// safe on cluster deployments where keys span hash slots. Returns removed count.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}

	deleted := 0
	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		n, err := res.AsInt64()
		if err != nil {
			return deleted, &db.Error{Op: db.OpDel, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		deleted += int(n)
	}
	return deleted, nil
}
