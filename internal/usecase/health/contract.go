package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the state of the content pool circuit breaker.
type BreakerReporter interface {
	State() string
}
