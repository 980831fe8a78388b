// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/validation"
	"mentor-match/internal/models"
	"mentor-match/internal/recommendation"
	"mentor-match/internal/repository"

	"github.com/go-chi/chi/v5"
)

const sourceAPI = "api"

type recommendationRequest struct {
	User      *models.User       `json:"user"`
	Providers []*models.Provider `json:"providers"`
	Options   *requestOptions    `json:"options,omitempty"`
}

type requestOptions struct {
	Limit   int    `json:"limit,omitempty"`
	Context string `json:"context,omitempty"`
}

// postRecommendations ranks an inline pool for an inline applicant. The
// versioned route answers with the full result; the bare /recommendations
// route answers with the ranked array only.
func (s *Server) postRecommendations(envelope bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.recommendInline(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if envelope {
			writeJSON(w, http.StatusOK, res)
			return
		}
		writeJSON(w, http.StatusOK, res.Recommendations)
	}
}

func (s *Server) recommendInline(w http.ResponseWriter, r *http.Request) (*recommendation.Result, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidInputError("request body too large").
				WithMetadata("maxBytes", s.maxBodyBytes)
		}
		return nil, apperrors.NewInvalidInputError("read body: " + err.Error())
	}

	if res := s.validator.ValidateBytes(validation.SchemaRecommendationRequest, raw); !res.Valid {
		return nil, apperrors.NewInvalidInputError(res.Error()).
			WithMetadata("violations", res.Errors)
	}

	var body recommendationRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperrors.NewInvalidInputError("decode body: " + err.Error())
	}

	req := recommendation.Request{
		User:      body.User,
		Providers: body.Providers,
		Source:    sourceAPI,
	}
	if req.Providers == nil {
		req.Providers = []*models.Provider{}
	}
	if body.Options != nil {
		req.Limit = body.Options.Limit
		req.Context = body.Options.Context
	}

	return s.service.Recommend(r.Context(), req)
}

// getUserRecommendations ranks the stored pool for a stored applicant.
func (s *Server) getUserRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	matchCtx := r.URL.Query().Get("context")
	if matchCtx != "" && !validContext(matchCtx) {
		writeError(w, r, apperrors.NewInvalidInputError("unknown context: "+matchCtx))
		return
	}

	res, err := s.service.Recommend(r.Context(), recommendation.Request{
		UserID:  chi.URLParam(r, "userID"),
		Limit:   limit,
		Context: matchCtx,
		Source:  sourceAPI,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	available, poolSize, err := s.service.Availability(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available": available,
		"poolSize":  poolSize,
	})
}

func (s *Server) searchProviders(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, r, apperrors.NewSearchNotConfiguredError())
		return
	}

	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	providers, err := s.searcher.SearchProviders(r.Context(), repository.ProviderQuery{
		Text:           q.Get("q"),
		Specialization: q.Get("specialization"),
		ApprovedOnly:   q.Get("approved") == "true",
		Limit:          limit,
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.NewProviderSearchFailedError(err)
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers": providers,
		"count":     len(providers),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ready pings every configured dependency and reports each result.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for _, c := range s.checks {
		if err := c.Ping(ctx); err != nil {
			checks[c.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[c.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewInvalidInputError(name + " must be a non-negative integer")
	}
	return n, nil
}

func validContext(c string) bool {
	switch models.MatchContext(c) {
	case models.ContextGeneral, models.ContextPrograms, models.ContextSchool, models.ContextDashboard:
		return true
	}
	return false
}
