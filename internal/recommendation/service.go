// Package recommendation loads applicants and mentor pools and runs the
// matcher over them for the HTTP API and the job workers.
package recommendation

import (
	"context"
	"errors"
	"time"

	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/metrics"
	"mentor-match/internal/common/observability"
	"mentor-match/internal/matching"
	"mentor-match/internal/models"
	"mentor-match/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Limits bounds how many results and providers a single request may use.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
	MaxProviders int
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	users     repository.UserStore
	providers repository.ProviderStore
	limits    Limits
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now, used by tests for slot proximity.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users repository.UserStore, providers repository.ProviderStore, limits Limits,
	obs *observability.Observability, log logger.Logger, opts ...Option) *Service {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = matching.DefaultLimit
	}
	if limits.MaxLimit < limits.DefaultLimit {
		limits.MaxLimit = limits.DefaultLimit
	}
	if obs == nil {
		obs = observability.NewNoop()
	}

	s := &Service{
		users:     users,
		providers: providers,
		limits:    limits,
		obs:       obs,
		logger:    logger.ForComponent(log, "recommendation"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request describes one recommendation. Inline User and Providers win over
// UserID and the stored pool. A nil Providers slice means "load the pool";
// an empty non-nil slice is an empty pool.
type Request struct {
	UserID    string
	User      *models.User
	Providers []*models.Provider
	Limit     int
	Context   string
	// Source labels metrics: "api" or "worker".
	Source string
}

type Result struct {
	Recommendations     []models.MatchResult `json:"recommendations"`
	HasAvailableMentors bool                 `json:"hasAvailableMentors"`
	FallbackUsed        bool                 `json:"fallbackUsed"`
	SelectionPath       string               `json:"selectionPath"`
	PoolSize            int                  `json:"poolSize"`
}

// Recommend resolves the applicant and the pool, then selects mentors.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.obs.StartSpan(ctx, "recommendation.recommend",
		attribute.String("source", req.Source),
		attribute.String("userId", req.UserID),
	)
	defer span.End()

	user, err := s.resolveUser(ctx, req.UserID, req.User)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewInvalidInputError("either user or userId is required")
	}

	pool, err := s.resolvePool(ctx, req.Providers)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sel := matching.Select(user, pool, matching.Options{
		Limit:   s.ClampLimit(req.Limit),
		Context: models.ParseMatchContext(req.Context),
		Now:     s.now(),
	})

	res := &Result{
		Recommendations:     sel.Results,
		HasAvailableMentors: matching.HasAvailableMentors(pool),
		FallbackUsed:        sel.Path == matching.PathFallback,
		SelectionPath:       sel.Path,
		PoolSize:            len(pool),
	}

	s.record(ctx, req.Source, res)
	return res, nil
}

// ScoreRequest asks for the score and reasons of one provider.
type ScoreRequest struct {
	UserID     string
	User       *models.User
	ProviderID string
	Provider   *models.Provider
	Context    string
}

type ScoreResult struct {
	ProviderID string   `json:"providerId"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Eligible   bool     `json:"eligible"`
}

// Score rates one provider. A missing applicant scores as an empty profile.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "recommendation.score")
	defer span.End()

	user, err := s.resolveUser(ctx, req.UserID, req.User)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{}
	}

	provider := req.Provider
	if provider == nil {
		if req.ProviderID == "" {
			return nil, apperrors.NewInvalidInputError("either provider or providerId is required")
		}
		provider, err = s.providers.GetProvider(ctx, req.ProviderID)
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperrors.NewProviderNotFoundError(req.ProviderID)
		}
		if err != nil {
			return nil, wrapFetch(err, apperrors.NewProviderFetchFailedError)
		}
	}

	return &ScoreResult{
		ProviderID: provider.ID,
		Score:      matching.ScoreAt(user, provider, models.ParseMatchContext(req.Context), s.now()),
		Reasons:    matching.Reasons(user, provider),
		Eligible:   provider.IsEligible(),
	}, nil
}

// Availability reports whether the stored pool has any approved mentor.
func (s *Service) Availability(ctx context.Context) (bool, int, error) {
	pool, err := s.resolvePool(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	return matching.HasAvailableMentors(pool), len(pool), nil
}

// ClampLimit applies the configured default and ceiling.
func (s *Service) ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.limits.DefaultLimit
	case limit > s.limits.MaxLimit:
		return s.limits.MaxLimit
	default:
		return limit
	}
}

// CheckPoolSize rejects inline pools above the configured maximum.
func (s *Service) CheckPoolSize(n int) error {
	if s.limits.MaxProviders > 0 && n > s.limits.MaxProviders {
		return apperrors.NewInvalidInputError("too many providers in request").
			WithMetadata("maxProviders", s.limits.MaxProviders)
	}
	return nil
}

func (s *Service) resolveUser(ctx context.Context, userID string, inline *models.User) (*models.User, error) {
	if inline != nil {
		return inline, nil
	}
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperrors.NewUserNotFoundError(userID)
	}
	if err != nil {
		return nil, wrapFetch(err, func(e error) *apperrors.StandardError {
			return apperrors.NewUserFetchFailedError(userID, e)
		})
	}
	return user, nil
}

func (s *Service) resolvePool(ctx context.Context, inline []*models.Provider) ([]*models.Provider, error) {
	if inline != nil {
		if err := s.CheckPoolSize(len(inline)); err != nil {
			return nil, err
		}
		return inline, nil
	}

	pool, err := s.providers.ListProviders(ctx)
	if err != nil {
		return nil, wrapFetch(err, apperrors.NewProviderFetchFailedError)
	}
	return pool, nil
}

// wrapFetch keeps already classified errors and wraps the rest.
func wrapFetch(err error, wrap func(error) *apperrors.StandardError) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return wrap(err)
}

func (s *Service) record(ctx context.Context, source string, res *Result) {
	if source == "" {
		source = "direct"
	}
	metrics.RecommendationsServed.WithLabelValues(res.SelectionPath, source).Inc()
	metrics.RecommendationPoolSize.Observe(float64(res.PoolSize))

	top := 0
	if len(res.Recommendations) > 0 {
		top = res.Recommendations[0].Score
	}
	s.obs.RecordMatches(ctx, res.SelectionPath, len(res.Recommendations), top)

	s.logger.Debug("recommendations selected", map[string]interface{}{
		"source":   source,
		"path":     res.SelectionPath,
		"poolSize": res.PoolSize,
		"returned": len(res.Recommendations),
		"topScore": top,
	})
}
