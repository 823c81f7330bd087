// Package recommendation orchestrates retrieval, refresh and cleanup of a
// user's recommendation feed.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recfeed/internal/domain"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
	"github.com/kailas-cloud/recfeed/internal/logger"
	"github.com/kailas-cloud/recfeed/internal/metrics"
	"github.com/kailas-cloud/recfeed/internal/usecase/scoring"
	"github.com/kailas-cloud/recfeed/internal/usecase/selection"
)

const (
	defaultCandidateWindow = 2000
	defaultRetention       = 30 * 24 * time.Hour
	defaultCleanupTimeout  = 30 * time.Second

	// maxRefreshRetries bounds the refresh-then-reread loop of Get.
	maxRefreshRetries = 1
)

// Feed is the result of a retrieval.
type Feed struct {
	Items   []domrec.Record
	Quality domrec.Quality
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Quality    domrec.Quality
	Count      int
	Backfilled int
}

// CleanupResult reports how many records a cleanup removed.
type CleanupResult struct {
	DeletedRead  int
	DeletedStale int
}

// Service runs the recommendation pipeline for one user at a time.
// It holds no per-user state; concurrent calls for the same user converge
// because records are keyed by (user, item).
type Service struct {
	interests InterestSource
	content   ContentSource
	store     Store
	selector  *selection.Selector
	logger    *zap.Logger
	now       func() time.Time

	minItems        int
	maxItems        int
	candidateWindow int
	retention       time.Duration
	cleanupTimeout  time.Duration

	bg sync.WaitGroup
}

// New creates a recommendation service with default bounds.
func New(interests InterestSource, content ContentSource, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := selection.DefaultConfig()
	return &Service{
		interests:       interests,
		content:         content,
		store:           store,
		selector:        selection.New(def, logger),
		logger:          logger,
		now:             time.Now,
		minItems:        def.MinItems,
		maxItems:        def.MaxItems,
		candidateWindow: defaultCandidateWindow,
		retention:       defaultRetention,
		cleanupTimeout:  defaultCleanupTimeout,
	}
}

// WithSelection overrides the selection bounds.
func (s *Service) WithSelection(cfg selection.Config) *Service {
	s.selector = selection.New(cfg, s.logger)
	if cfg.MinItems > 0 {
		s.minItems = cfg.MinItems
	}
	if cfg.MaxItems >= s.minItems {
		s.maxItems = cfg.MaxItems
	}
	return s
}

// WithCandidateWindow sets how many recent items one refresh scores.
func (s *Service) WithCandidateWindow(n int) *Service {
	if n > 0 {
		s.candidateWindow = n
	}
	return s
}

// WithRetention sets the age after which unread records are pruned.
func (s *Service) WithRetention(d time.Duration) *Service {
	if d > 0 {
		s.retention = d
	}
	return s
}

// WithCleanupTimeout bounds the background cleanup scheduled after a refresh.
func (s *Service) WithCleanupTimeout(d time.Duration) *Service {
	if d > 0 {
		s.cleanupTimeout = d
	}
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns up to limit unread recommendations, newest first. When fewer
// than the minimum yield are stored it cleans up, refreshes once and re-reads.
func (s *Service) Get(ctx context.Context, userID string, limit int) (Feed, error) {
	if userID == "" {
		return Feed{}, domain.ErrUserIDRequired
	}
	if limit <= 0 || limit > s.maxItems {
		limit = s.maxItems
	}

	for attempt := 0; ; attempt++ {
		count, err := s.store.CountNew(ctx, userID)
		if err != nil {
			return Feed{}, fmt.Errorf("%w: count recommendations: %w", domain.ErrPersistence, err)
		}
		if count >= s.minItems || attempt >= maxRefreshRetries {
			return s.read(ctx, userID, limit, count)
		}

		logger.FromContextOr(ctx, s.logger).Info("feed below minimum yield, refreshing",
			zap.String("user_id", userID),
			zap.Int("available", count),
		)
		s.cleanup(ctx, userID)

		res, err := s.refresh(ctx, userID, false)
		if err != nil {
			return Feed{}, err
		}
		if res.Count == 0 {
			return s.read(ctx, userID, limit, count)
		}
	}
}

func (s *Service) read(ctx context.Context, userID string, limit, available int) (Feed, error) {
	items, err := s.store.ListNew(ctx, userID, limit)
	if err != nil {
		return Feed{}, fmt.Errorf("%w: list recommendations: %w", domain.ErrPersistence, err)
	}
	return Feed{Items: items, Quality: s.feedQuality(max(available, len(items)))}, nil
}

func (s *Service) feedQuality(available int) domrec.Quality {
	switch {
	case available == 0:
		return domrec.QualityNone
	case available >= s.minItems:
		return domrec.QualityOptimal
	default:
		return domrec.QualityLimited
	}
}

// Refresh recomputes and persists the user's recommendations, then schedules
// a background cleanup. Source failures degrade the result instead of failing.
func (s *Service) Refresh(ctx context.Context, userID string) (RefreshResult, error) {
	if userID == "" {
		return RefreshResult{}, domain.ErrUserIDRequired
	}
	return s.refresh(ctx, userID, true)
}

func (s *Service) refresh(ctx context.Context, userID string, scheduleCleanup bool) (RefreshResult, error) {
	start := s.now()
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("user_id", userID))

	profile, pool, poolErr := s.readSources(ctx, log, userID)
	if poolErr != nil || len(pool) == 0 {
		if poolErr == nil {
			log.Warn("content pool is empty")
		}
		metrics.RefreshTotal.WithLabelValues(string(domrec.QualityNone)).Inc()
		return RefreshResult{Quality: domrec.QualityNone}, nil
	}

	tiers := interest.Classify(profile)
	scored := scoring.Score(tiers, pool)
	metrics.CandidatesScored.Observe(float64(len(scored)))

	sel := s.selector.Select(tiers, scored, pool)

	now := s.now()
	records := make([]domrec.Record, 0, sel.Len())
	for _, c := range sel.Candidates {
		rec, err := domrec.NewRecord(userID, c, sel.Quality, now)
		if err != nil {
			log.Warn("skip invalid candidate", zap.String("item_id", c.ItemID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if err := s.store.BulkUpsert(ctx, records); err != nil {
		return RefreshResult{}, fmt.Errorf("%w: upsert recommendations: %w", domain.ErrPersistence, err)
	}

	metrics.RefreshTotal.WithLabelValues(string(sel.Quality)).Inc()
	metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())
	metrics.BackfillItemsTotal.Add(float64(sel.Backfilled))

	log.Info("refresh complete",
		zap.String("quality", string(sel.Quality)),
		zap.Int("primary_interests", len(tiers.Primary)),
		zap.Int("scored", len(scored)),
		zap.Int("selected", len(records)),
		zap.Int("backfilled", sel.Backfilled),
	)

	if scheduleCleanup {
		s.scheduleCleanup(ctx, userID)
	}

	return RefreshResult{Quality: sel.Quality, Count: len(records), Backfilled: sel.Backfilled}, nil
}

// readSources fetches the profile, the content pool and the read history
// concurrently. A failed profile read degrades to the default profile and a
// failed history read to no exclusions; a failed pool read is returned.
// Items the user already read are dropped from the pool.
func (s *Service) readSources(
	ctx context.Context, log *zap.Logger, userID string,
) (interest.Profile, []domcontent.Item, error) {
	var (
		profile    interest.Profile
		pool       []domcontent.Item
		read       map[string]struct{}
		profileErr error
		poolErr    error
		readErr    error
		g          errgroup.Group
	)

	g.Go(func() error {
		profile, profileErr = s.interests.GetProfile(ctx, userID)
		return nil
	})
	g.Go(func() error {
		pool, poolErr = s.content.GetRecent(ctx, s.candidateWindow)
		return nil
	})
	g.Go(func() error {
		read, readErr = s.store.ReadItems(ctx, userID)
		return nil
	})
	_ = g.Wait()

	if profileErr != nil {
		log.Warn("interest profile unavailable, using defaults", zap.Error(profileErr))
		metrics.UpstreamDegradedTotal.WithLabelValues("interests").Inc()
		profile = interest.Profile{}
	}
	if poolErr != nil {
		log.Warn("content pool unavailable", zap.Error(poolErr))
		metrics.UpstreamDegradedTotal.WithLabelValues("content").Inc()
		return profile, nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, poolErr)
	}
	if readErr != nil {
		log.Warn("read history unavailable", zap.Error(readErr))
	}
	return profile, excludeRead(pool, read), nil
}

func excludeRead(pool []domcontent.Item, read map[string]struct{}) []domcontent.Item {
	if len(read) == 0 {
		return pool
	}
	out := make([]domcontent.Item, 0, len(pool))
	for i := range pool {
		if _, ok := read[pool[i].ID()]; !ok {
			out = append(out, pool[i])
		}
	}
	return out
}

// MarkRead moves one of the user's recommendations from new to read.
func (s *Service) MarkRead(ctx context.Context, userID, recommendationID string) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	if recommendationID == "" {
		return fmt.Errorf("%w: recommendation id is required", domain.ErrInvalidRequest)
	}
	if err := s.store.MarkRead(ctx, userID, recommendationID); err != nil {
		if errors.Is(err, domain.ErrRecommendationNotFound) {
			return err
		}
		return fmt.Errorf("%w: mark read: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Cleanup deletes the user's read records and unread records older than the
// retention period, and forgets read marks past retention. Every step runs
// even if an earlier one fails.
func (s *Service) Cleanup(ctx context.Context, userID string) (CleanupResult, error) {
	if userID == "" {
		return CleanupResult{}, domain.ErrUserIDRequired
	}

	var res CleanupResult
	var errs []error

	n, err := s.store.DeleteRead(ctx, userID)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete read: %w", err))
	}
	res.DeletedRead = n
	metrics.CleanupDeletedTotal.WithLabelValues("read").Add(float64(n))

	cutoff := s.now().Add(-s.retention)
	n, err = s.store.DeleteStaleBefore(ctx, userID, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete stale: %w", err))
	}
	res.DeletedStale = n
	metrics.CleanupDeletedTotal.WithLabelValues("stale").Add(float64(n))

	if _, err = s.store.PruneReadHistory(ctx, userID, cutoff); err != nil {
		errs = append(errs, fmt.Errorf("prune read history: %w", err))
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("%w: %w", domain.ErrPersistence, errors.Join(errs...))
	}
	return res, nil
}

// cleanup runs Cleanup and only logs failures.
func (s *Service) cleanup(ctx context.Context, userID string) {
	log := logger.FromContextOr(ctx, s.logger)
	res, err := s.Cleanup(ctx, userID)
	if err != nil {
		log.Warn("cleanup failed",
			zap.String("user_id", userID),
			zap.Int("deleted_read", res.DeletedRead),
			zap.Int("deleted_stale", res.DeletedStale),
			zap.Error(err),
		)
		return
	}
	if res.DeletedRead+res.DeletedStale > 0 {
		log.Debug("cleanup complete",
			zap.String("user_id", userID),
			zap.Int("deleted_read", res.DeletedRead),
			zap.Int("deleted_stale", res.DeletedStale),
		)
	}
}

// scheduleCleanup runs cleanup in the background on a context that outlives
// the request but is bounded by the cleanup timeout.
func (s *Service) scheduleCleanup(ctx context.Context, userID string) {
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cleanupTimeout)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer cancel()
		s.cleanup(bgCtx, userID)
	}()
}

// Wait blocks until all background cleanups have finished.
func (s *Service) Wait() {
	s.bg.Wait()
}
