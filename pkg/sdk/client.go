package recfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recfeed/internal/db"
	dbRedis "github.com/kailas-cloud/recfeed/internal/db/redis"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	dominterest "github.com/kailas-cloud/recfeed/internal/domain/interest"
	contentrepo "github.com/kailas-cloud/recfeed/internal/repository/content"
	interestrepo "github.com/kailas-cloud/recfeed/internal/repository/interest"
	recrepo "github.com/kailas-cloud/recfeed/internal/repository/recommendation"
	healthuc "github.com/kailas-cloud/recfeed/internal/usecase/health"
	recuc "github.com/kailas-cloud/recfeed/internal/usecase/recommendation"
	"github.com/kailas-cloud/recfeed/internal/usecase/selection"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can swap the engine out.
type feedUseCase interface {
	Get(ctx context.Context, userID string, limit int) (recuc.Feed, error)
	Refresh(ctx context.Context, userID string) (recuc.RefreshResult, error)
	MarkRead(ctx context.Context, userID, recommendationID string) error
	Cleanup(ctx context.Context, userID string) (recuc.CleanupResult, error)
	Wait()
}

type contentWriter interface {
	Save(ctx context.Context, items []domcontent.Item) error
}

type interestStore interface {
	GetProfile(ctx context.Context, userID string) (dominterest.Profile, error)
	SaveProfile(ctx context.Context, userID string, p dominterest.Profile) error
}

// Client is the recfeed SDK entry point.
type Client struct {
	store     db.Store
	feeds     feedUseCase
	contents  contentWriter
	interests interestStore
	healthSvc healthUseCase
	obs       *observer
}

// New creates a recfeed Client, connects to Redis and ensures the search indexes.
// The provided context is used for the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("recfeed: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("recfeed: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("recfeed: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	contents := contentrepo.New(store, logger)
	records := recrepo.New(store)
	if err := contents.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("recfeed: %w", err)
	}
	if err := records.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("recfeed: %w", err)
	}
	interests := interestrepo.New(store)

	breaker := contentrepo.NewBreaker(contents, contentrepo.BreakerConfig{
		MaxFailures: cfg.breakerMaxFailures,
		OpenTimeout: cfg.breakerOpenTimeout,
	}, logger)

	sel := selection.DefaultConfig()
	if cfg.minItems > 0 {
		sel.MinItems = cfg.minItems
	}
	if cfg.maxItems > 0 {
		sel.MaxItems = cfg.maxItems
	}

	feeds := recuc.New(interests, breaker, records, logger).
		WithSelection(sel).
		WithCandidateWindow(cfg.candidateWindow).
		WithRetention(cfg.retention)

	return &Client{
		store:     store,
		feeds:     feeds,
		contents:  contents,
		interests: interests,
		healthSvc: healthuc.New(store, breaker),
		obs:       obs,
	}, nil
}

// Close waits for background cleanups and releases all resources.
func (c *Client) Close() {
	if c.feeds != nil {
		c.feeds.Wait()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Feed returns up to limit unread recommendations for userID, refreshing
// once when fewer than the minimum yield are stored. limit <= 0 means the maximum.
func (c *Client) Feed(ctx context.Context, userID string, limit int) (_ Feed, err error) {
	start := time.Now()
	defer func() { c.obs.observe("feed", start, err) }()

	f, err := c.feeds.Get(ctx, userID, limit)
	if err != nil {
		return Feed{}, fmt.Errorf("feed %s: %w", userID, err)
	}
	return fromFeed(f), nil
}

// Refresh regenerates recommendations for userID.
func (c *Client) Refresh(ctx context.Context, userID string) (_ RefreshResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("refresh", start, err) }()

	res, err := c.feeds.Refresh(ctx, userID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh %s: %w", userID, err)
	}
	return RefreshResult{
		Quality:    Quality(res.Quality),
		Count:      res.Count,
		Backfilled: res.Backfilled,
	}, nil
}

// MarkRead marks one recommendation as read.
func (c *Client) MarkRead(ctx context.Context, userID, recommendationID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("mark_read", start, err) }()

	if err = c.feeds.MarkRead(ctx, userID, recommendationID); err != nil {
		return fmt.Errorf("mark read %s: %w", recommendationID, err)
	}
	return nil
}

// Cleanup deletes read and stale recommendations for userID.
func (c *Client) Cleanup(ctx context.Context, userID string) (_ CleanupResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cleanup", start, err) }()

	res, err := c.feeds.Cleanup(ctx, userID)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("cleanup %s: %w", userID, err)
	}
	return CleanupResult{DeletedRead: res.DeletedRead, DeletedStale: res.DeletedStale}, nil
}

// IngestItems adds items to the content pool. Items with an existing ID are overwritten.
func (c *Client) IngestItems(ctx context.Context, items []Item) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest_items", start, err) }()

	if len(items) == 0 {
		return nil
	}
	dom := make([]domcontent.Item, 0, len(items))
	for i, it := range items {
		d, convErr := toDomainItem(it)
		if convErr != nil {
			err = fmt.Errorf("item %d: %w: %w", i, ErrInvalidRequest, convErr)
			return err
		}
		dom = append(dom, d)
	}
	if err = c.contents.Save(ctx, dom); err != nil {
		return fmt.Errorf("ingest items: %w", err)
	}
	return nil
}

// SetInterests merges terms into the user's interest profile.
// Terms with a non-positive frequency are ignored.
func (c *Client) SetInterests(ctx context.Context, userID string, terms map[string]int) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("set_interests", start, err) }()

	if userID == "" {
		err = ErrUserIDRequired
		return err
	}
	if err = c.interests.SaveProfile(ctx, userID, dominterest.NewProfile(terms)); err != nil {
		return fmt.Errorf("set interests %s: %w", userID, err)
	}
	return nil
}

// Interests returns the user's interest profile as term → frequency.
func (c *Client) Interests(ctx context.Context, userID string) (_ map[string]int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("interests", start, err) }()

	if userID == "" {
		err = ErrUserIDRequired
		return nil, err
	}
	p, err := c.interests.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("interests %s: %w", userID, err)
	}
	return p.Map(), nil
}
