package interest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/recfeed/internal/db"
	"github.com/kailas-cloud/recfeed/internal/domain"
	dominterest "github.com/kailas-cloud/recfeed/internal/domain/interest"
)

// store is the consumer interface for interest profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo reads and writes per-user interest hashes: term -> frequency.
type Repo struct {
	store store
}

// New creates an interest repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// GetProfile returns the user's interest profile. A user without a profile
// gets an empty one. Unparseable frequencies are skipped.
func (r *Repo) GetProfile(ctx context.Context, userID string) (dominterest.Profile, error) {
	m, err := r.store.HGetAll(ctx, profileKey(userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dominterest.NewProfile(nil), nil
		}
		return dominterest.Profile{}, fmt.Errorf("hgetall interests %s: %w", userID, err)
	}

	raw := make(map[string]int, len(m))
	for term, v := range m {
		freq, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		raw[term] = freq
	}
	return dominterest.NewProfile(raw), nil
}

// SaveProfile writes every term of p. Existing terms not in p are left untouched.
func (r *Repo) SaveProfile(ctx context.Context, userID string, p dominterest.Profile) error {
	if p.IsEmpty() {
		return nil
	}
	fields := make(map[string]string, p.Len())
	for term, freq := range p.Map() {
		fields[term] = strconv.Itoa(freq)
	}
	if err := r.store.HSet(ctx, profileKey(userID), fields); err != nil {
		return fmt.Errorf("hset interests %s: %w", userID, err)
	}
	return nil
}

// Key pattern: recfeed:interests:{user}

func profileKey(userID string) string {
	return domain.KeyPrefix + "interests:" + userID
}
