package domain

import (
	"errors"
)

var (
	// ErrUserIDRequired signals a request without a caller identity.
	ErrUserIDRequired = errors.New("user id is required")
	// ErrInvalidRequest signals a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRecommendationNotFound signals a missing recommendation record.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrUpstreamUnavailable signals an interest or content source failure.
	// It is absorbed by the orchestrator and never returned to HTTP callers.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrPersistence signals a failed bulk write of recommendations.
	// Writes are idempotent, so callers may retry the whole refresh.
	ErrPersistence = errors.New("persistence failure")
)
