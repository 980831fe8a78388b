// internal/api/router.go
package api

import (
	"context"
	"net/http"

	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/validation"
	"mentor-match/internal/recommendation"
	"mentor-match/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMaxBodyBytes = 1 << 20

// Recommender is the part of recommendation.Service the API calls.
type Recommender interface {
	Recommend(ctx context.Context, req recommendation.Request) (*recommendation.Result, error)
	Availability(ctx context.Context) (bool, int, error)
}

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Options struct {
	Service   Recommender
	Validator *validation.Validator
	// Searcher is nil when no search index is configured.
	Searcher     repository.ProviderSearcher
	Checks       []ReadinessCheck
	MaxBodyBytes int64
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
}

type Server struct {
	service      Recommender
	validator    *validation.Validator
	searcher     repository.ProviderSearcher
	checks       []ReadinessCheck
	maxBodyBytes int64
	logger       logger.Logger
}

// NewRouter wires the HTTP routes and middleware.
func NewRouter(opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		service:      opts.Service,
		validator:    opts.Validator,
		searcher:     opts.Searcher,
		checks:       opts.Checks,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger.ForComponent(opts.Logger, "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(observeDuration)

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Post("/recommendations", s.postRecommendations(false))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", s.postRecommendations(true))
		r.Get("/users/{userID}/recommendations", s.getUserRecommendations)
		r.Get("/providers/availability", s.getAvailability)
		r.Get("/providers/search", s.searchProviders)
	})

	return r
}
