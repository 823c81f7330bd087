package recfeed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	minItems        int
	maxItems        int
	candidateWindow int
	retention       time.Duration

	breakerMaxFailures uint32
	breakerOpenTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithFeedBounds sets the minimum yield and the maximum size of a refresh.
// Defaults: 50 and 200.
func WithFeedBounds(minItems, maxItems int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minItems = minItems
		c.maxItems = maxItems
	})
}

// WithCandidateWindow sets how many recent content items one refresh scores.
// Default: 2000.
func WithCandidateWindow(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateWindow = n
	})
}

// WithRetention sets the age after which unread recommendations are pruned.
// Default: 30 days.
func WithRetention(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retention = d
	})
}

// WithBreaker configures the circuit breaker in front of the content pool.
// Defaults: 5 consecutive failures, 30s open.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.breakerMaxFailures = maxFailures
		c.breakerOpenTimeout = openTimeout
	})
}

// WithLogger enables structured logging for the engine and SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
