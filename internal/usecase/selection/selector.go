// Package selection bounds a scored candidate list to the configured yield
// and backfills sparse results from the recent content pool.
package selection

import (
	"go.uber.org/zap"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// BackfillScore is the nominal score of a recency backfill item.
const BackfillScore = 0.05

// Config bounds the selection size.
type Config struct {
	MinItems   int // minimum yield; below it the result is backfilled
	MaxItems   int
	PerPrimary int // target items per primary interest
	PoolSize   int // backfill horizon, newest items first
}

// DefaultConfig returns the production bounds.
func DefaultConfig() Config {
	return Config{MinItems: 50, MaxItems: 200, PerPrimary: 8, PoolSize: 1000}
}

// Selector turns scored candidates into a persisted-size Selection.
type Selector struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a selector. Non-positive bounds fall back to DefaultConfig values.
func New(cfg Config, logger *zap.Logger) *Selector {
	def := DefaultConfig()
	if cfg.MinItems <= 0 {
		cfg.MinItems = def.MinItems
	}
	if cfg.MaxItems < cfg.MinItems {
		cfg.MaxItems = max(def.MaxItems, cfg.MinItems)
	}
	if cfg.PerPrimary <= 0 {
		cfg.PerPrimary = def.PerPrimary
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = def.PoolSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{cfg: cfg, logger: logger}
}

// Target returns the desired selection size for a profile with the given
// number of primary interests, clamped to [MinItems, MaxItems].
func (s *Selector) Target(primaryCount int) int {
	return min(max(primaryCount*s.cfg.PerPrimary, s.cfg.MinItems), s.cfg.MaxItems)
}

// Select keeps the top Target(len(tiers.Primary)) candidates of scored, which
// must already be ordered best first, then backfills from pool up to MinItems.
func (s *Selector) Select(
	tiers interest.Tiers, scored []domrec.Candidate, pool []domcontent.Item,
) domrec.Selection {
	target := s.Target(len(tiers.Primary))

	picked := scored
	if len(picked) > target {
		picked = picked[:target]
	}
	if len(scored) < s.cfg.MinItems {
		s.logger.Warn("scored candidates below minimum yield",
			zap.Int("scored", len(scored)),
			zap.Int("min_items", s.cfg.MinItems),
			zap.Int("target", target),
		)
	}

	out := make([]domrec.Candidate, len(picked), max(len(picked), s.cfg.MinItems))
	copy(out, picked)

	backfilled := 0
	if len(out) < s.cfg.MinItems {
		out, backfilled = s.backfill(out, pool)
	}

	return domrec.Selection{
		Candidates: out,
		Quality:    s.quality(len(out)),
		Backfilled: backfilled,
	}
}

func (s *Selector) backfill(out []domrec.Candidate, pool []domcontent.Item) ([]domrec.Candidate, int) {
	selected := make(map[string]struct{}, len(out))
	for i := range out {
		selected[out[i].ItemID] = struct{}{}
	}

	recent := make([]domcontent.Item, min(len(pool), s.cfg.PoolSize))
	copy(recent, pool)
	domcontent.SortByRecency(recent)

	added := 0
	for i := range recent {
		if len(out) >= s.cfg.MinItems {
			break
		}
		id := recent[i].ID()
		if _, dup := selected[id]; dup {
			continue
		}
		selected[id] = struct{}{}
		out = append(out, domrec.Candidate{
			ItemID:      id,
			Score:       BackfillScore,
			Source:      domrec.SourceFallback,
			Category:    interest.CategoryGeneral,
			PublishedAt: recent[i].PublishedAt(),
		})
		added++
	}
	return out, added
}

func (s *Selector) quality(n int) domrec.Quality {
	switch {
	case n == 0:
		return domrec.QualityNone
	case n >= s.cfg.MinItems:
		return domrec.QualityOptimal
	default:
		return domrec.QualityLimited
	}
}
