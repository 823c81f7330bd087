package chi

import "time"

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeUserIDRequired         ErrorCode = "user_id_required"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeRecommendationNotFound ErrorCode = "recommendation_not_found"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodePersistenceUnavailable ErrorCode = "persistence_unavailable"
	ErrorCodeUpstreamUnavailable    ErrorCode = "upstream_unavailable"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Recommendation is one feed entry.
type Recommendation struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"itemId"`
	Score            float64   `json:"score"`
	Source           string    `json:"source"`
	Category         string    `json:"category"`
	MatchedInterests []string  `json:"matchedInterests"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FeedResponse is returned by GET /recommendations.
type FeedResponse struct {
	Items   []Recommendation `json:"items"`
	Count   int              `json:"count"`
	Quality string           `json:"quality"`
}

// RefreshResponse is returned by POST /recommendations/refresh.
type RefreshResponse struct {
	Quality string `json:"quality"`
	Count   int    `json:"count"`
}

// MarkReadRequest is the body of POST /recommendations/mark-read.
type MarkReadRequest struct {
	RecommendationID string `json:"recommendationId" validate:"required,uuid"`
}

// CleanupResponse is returned by DELETE /recommendations/stale.
type CleanupResponse struct {
	DeletedRead  int `json:"deleted_read"`
	DeletedStale int `json:"deleted_stale"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
