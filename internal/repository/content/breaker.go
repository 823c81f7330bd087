package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recfeed/internal/domain"
	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/metrics"
)

// Source is anything that yields the recent content pool.
type Source interface {
	GetRecent(ctx context.Context, limit int) ([]domcontent.Item, error)
}

// BreakerConfig tunes the content pool circuit breaker.
type BreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a half-open probe.
	OpenTimeout time.Duration
}

const breakerName = "content-pool"

// Breaker guards a Source with a circuit breaker. While open, calls fail fast
// with domain.ErrUpstreamUnavailable instead of waiting on a sick backend.
type Breaker struct {
	src    Source
	cb     *gobreaker.CircuitBreaker[[]domcontent.Item]
	logger *zap.Logger
}

// NewBreaker wraps src.
func NewBreaker(src Source, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	b := &Breaker{src: src, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[[]domcontent.Item](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// caller cancellations say nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return b
}

// GetRecent delegates to the wrapped source unless the circuit is open.
func (b *Breaker) GetRecent(ctx context.Context, limit int) ([]domcontent.Item, error) {
	items, err := b.cb.Execute(func() ([]domcontent.Item, error) {
		return b.src.GetRecent(ctx, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s %v", domain.ErrUpstreamUnavailable, breakerName, err)
	}
	return items, err
}

// State returns the current breaker state name: closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
