package chi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recfeed/internal/domain"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
	healthuc "github.com/kailas-cloud/recfeed/internal/usecase/health"
	recuc "github.com/kailas-cloud/recfeed/internal/usecase/recommendation"
)

const (
	maxFeedLimit       = 200
	maxRequestBodySize = 1 << 16
)

// Recommendations is the feed use case consumed by the HTTP layer.
type Recommendations interface {
	Get(ctx context.Context, userID string, limit int) (recuc.Feed, error)
	Refresh(ctx context.Context, userID string) (recuc.RefreshResult, error)
	MarkRead(ctx context.Context, userID, recommendationID string) error
	Cleanup(ctx context.Context, userID string) (recuc.CleanupResult, error)
}

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options tunes the HTTP layer.
type Options struct {
	// RefreshPerMinute caps manual refreshes per user. Zero disables the limit.
	RefreshPerMinute int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the recommendation feed API.
type Server struct {
	recs          Recommendations
	health        HealthChecker
	validate      *validator.Validate
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(recs Recommendations, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		recs:     recs,
		health:   health,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUserIDRequired, http.StatusBadRequest, ErrorCodeUserIDRequired),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrRecommendationNotFound, http.StatusNotFound, ErrorCodeRecommendationNotFound),
		sentinelHandler(domain.ErrPersistence, http.StatusServiceUnavailable, ErrorCodePersistenceUnavailable),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, ErrorCodeUpstreamUnavailable),
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/recommendations", func(r chi.Router) {
		r.Use(UserIDMiddleware)
		r.Get("/", s.GetRecommendations)
		r.With(s.refreshLimiter()).Post("/refresh", s.RefreshRecommendations)
		r.Post("/mark-read", s.MarkRead)
		r.Delete("/stale", s.CleanupRecommendations)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

func (s *Server) refreshLimiter() func(http.Handler) http.Handler {
	if s.opts.RefreshPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.opts.RefreshPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return UserIDFromContext(r.Context()), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, "refresh rate limit exceeded")
		}),
	)
}

// GetRecommendations handles GET /recommendations.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid limit parameter")
		return
	}
	n := 0
	if limit != nil {
		if *limit < 1 || *limit > maxFeedLimit {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be between 1 and 200")
			return
		}
		n = *limit
	}

	feed, err := s.recs.Get(r.Context(), UserIDFromContext(r.Context()), n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Recommendation, len(feed.Items))
	for i := range feed.Items {
		items[i] = recommendationToAPI(&feed.Items[i])
	}
	writeJSON(w, http.StatusOK, FeedResponse{
		Items:   items,
		Count:   len(items),
		Quality: string(feed.Quality),
	})
}

// RefreshRecommendations handles POST /recommendations/refresh.
func (s *Server) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	res, err := s.recs.Refresh(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Quality: string(res.Quality), Count: res.Count})
}

// MarkRead handles POST /recommendations/mark-read.
func (s *Server) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "recommendationId must be a valid id")
		return
	}

	if err := s.recs.MarkRead(r.Context(), UserIDFromContext(r.Context()), req.RecommendationID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CleanupRecommendations handles DELETE /recommendations/stale.
func (s *Server) CleanupRecommendations(w http.ResponseWriter, r *http.Request) {
	res, err := s.recs.Cleanup(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{DeletedRead: res.DeletedRead, DeletedStale: res.DeletedStale})
}

// HealthCheck handles GET /health. A degraded content pool still serves stored feeds.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUserIDRequired,
		domain.ErrInvalidRequest,
		domain.ErrRecommendationNotFound,
		domain.ErrPersistence,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func recommendationToAPI(r *domrec.Record) Recommendation {
	matched := r.MatchedInterests()
	if matched == nil {
		matched = []string{}
	}
	return Recommendation{
		ID:               r.ID(),
		ItemID:           r.ItemID(),
		Score:            r.Score(),
		Source:           string(r.Source()),
		Category:         r.Category(),
		MatchedInterests: matched,
		Status:           string(r.Status()),
		CreatedAt:        r.CreatedAt().UTC(),
	}
}
