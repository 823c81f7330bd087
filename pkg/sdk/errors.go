package recfeed

import "github.com/kailas-cloud/recfeed/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUserIDRequired         = domain.ErrUserIDRequired
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrRecommendationNotFound = domain.ErrRecommendationNotFound
	ErrPersistence            = domain.ErrPersistence
)
