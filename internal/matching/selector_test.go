package matching

import (
	"fmt"
	"testing"

	"mentor-match/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approved(id string, rating float64) *models.Provider {
	return &models.Provider{ID: id, Status: models.ProviderStatusApproved, Rating: rating}
}

func ids(results []models.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Provider.ID)
	}
	return out
}

func TestGetRecommendedMentors_EmptyInput(t *testing.T) {
	user := essayApplicant()

	assert.Empty(t, GetRecommendedMentors(user, []*models.Provider{}, Options{}))
	assert.Empty(t, GetRecommendedMentors(user, nil, Options{}))
	assert.Empty(t, GetRecommendedMentors(user, []*models.Provider{nil, nil}, Options{}))
	assert.NotNil(t, GetRecommendedMentors(user, nil, Options{}))
}

func TestGetRecommendedMentors_FallbackTopRated(t *testing.T) {
	providers := []*models.Provider{
		{ID: "pending", Status: models.ProviderStatusPending, Rating: 3.0},
		{ID: "rejected", Status: models.ProviderStatusRejected, Rating: 4.8},
	}

	sel := Select(essayApplicant(), providers, Options{Limit: 3, Now: testNow})

	assert.Equal(t, PathFallback, sel.Path)
	require.Len(t, sel.Results, 2)
	assert.Equal(t, []string{"rejected", "pending"}, ids(sel.Results))
	for _, r := range sel.Results {
		assert.Equal(t, 0, r.Score)
		assert.Equal(t, []string{ReasonTopRated}, r.Reasons)
	}
}

func TestGetRecommendedMentors_FallbackWhenEveryoneIsPaused(t *testing.T) {
	providers := []*models.Provider{
		{ID: "a", Status: models.ProviderStatusApproved, IsPaused: true, Rating: 4.1},
		{ID: "b", Status: models.ProviderStatusApproved, IsPaused: true, Rating: 4.6},
		{ID: "c", Status: models.ProviderStatusApproved, IsPaused: true, Rating: 4.9},
	}

	results := GetRecommendedMentors(&models.User{}, providers, Options{Limit: 2, Now: testNow})

	assert.Equal(t, []string{"c", "b"}, ids(results))
}

func TestGetRecommendedMentors_FiltersIneligible(t *testing.T) {
	providers := []*models.Provider{
		{ID: "paused", Status: models.ProviderStatusApproved, IsPaused: true, Rating: 5},
		{ID: "pending", Status: models.ProviderStatusPending, Rating: 5},
		approved("ok", 3.5),
	}

	results := GetRecommendedMentors(&models.User{}, providers, Options{Limit: 3, Now: testNow})

	assert.Equal(t, []string{"ok"}, ids(results))
	assert.Equal(t, []string{ReasonHighlyRated}, results[0].Reasons)
}

func TestGetRecommendedMentors_OrderingAndLimit(t *testing.T) {
	providers := []*models.Provider{
		approved("low", 3.0),
		approved("tie-lower-rating", 4.0),
		{ID: "available", Status: models.ProviderStatusApproved, AvailableThisWeek: true, Rating: 3.0},
		approved("tie-higher-rating", 4.4),
		approved("top", 4.95),
	}

	results := GetRecommendedMentors(&models.User{}, providers, Options{Limit: 4, Now: testNow})

	// available: 20, top: 20 (tie broken by rating), then the 5-point pair.
	assert.Equal(t, []string{"top", "available", "tie-higher-rating", "tie-lower-rating"}, ids(results))
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.GreaterOrEqual(t, prev.Provider.Rating, cur.Provider.Rating)
		}
	}
}

func TestGetRecommendedMentors_StableOnFullTie(t *testing.T) {
	providers := []*models.Provider{
		approved("first", 4.2),
		approved("second", 4.2),
		approved("third", 4.2),
	}

	results := GetRecommendedMentors(&models.User{}, providers, Options{Limit: 3, Now: testNow})

	assert.Equal(t, []string{"first", "second", "third"}, ids(results))
}

func TestGetRecommendedMentors_DefaultLimit(t *testing.T) {
	var providers []*models.Provider
	for i := 0; i < 8; i++ {
		providers = append(providers, approved(fmt.Sprintf("p%d", i), 4.0))
	}

	assert.Len(t, GetRecommendedMentors(&models.User{}, providers, Options{}), DefaultLimit)
	assert.Len(t, GetRecommendedMentors(&models.User{}, providers, Options{Limit: -1}), DefaultLimit)
	assert.Len(t, GetRecommendedMentors(&models.User{}, providers, Options{Limit: 20}), 8)
}

func TestGetRecommendedMentors_NeverEmpty(t *testing.T) {
	pools := map[string][]*models.Provider{
		"all pending": {
			{ID: "a", Status: models.ProviderStatusPending},
		},
		"mixed": {
			{ID: "a", Status: models.ProviderStatusRejected, Rating: 2},
			approved("b", 1),
			{ID: "c", Status: "suspended", IsPaused: true},
		},
		"unknown status": {
			{ID: "a"},
			{ID: "b", Status: "archived"},
		},
	}

	for name, pool := range pools {
		t.Run(name, func(t *testing.T) {
			eligible := 0
			for _, p := range pool {
				if p.IsEligible() {
					eligible++
				}
			}
			expected := min(2, len(pool))
			if eligible > 0 {
				expected = min(2, eligible)
			}

			results := GetRecommendedMentors(nil, pool, Options{Limit: 2, Now: testNow})

			assert.Len(t, results, expected)
			for _, r := range results {
				assert.NotEmpty(t, r.Reasons)
			}
		})
	}
}

func TestGetRecommendedMentors_EmptyUserUsesOnlyProviderTerms(t *testing.T) {
	providers := []*models.Provider{
		{
			ID:                "full",
			Status:            models.ProviderStatusApproved,
			AvailableThisWeek: true,
			Rating:            4.7,
			PreviousICUType:   models.ICUMedical,
			Program:           "Duke University",
			Specializations:   []string{models.ServiceEssayReview},
		},
	}

	results := GetRecommendedMentors(&models.User{}, providers, Options{Now: testNow})

	require.Len(t, results, 1)
	assert.Equal(t, WeightAvailableNow+15, results[0].Score)
}

func TestGetRecommendedMentors_ConcreteScenario(t *testing.T) {
	results := GetRecommendedMentors(essayApplicant(), []*models.Provider{dukeMentor()}, Options{Now: testNow})

	require.Len(t, results, 1)
	assert.Equal(t, 130, results[0].Score)
	assert.Equal(t, []string{ReasonAvailableThisWeek, "4.9★ rating"}, results[0].Reasons)
}

func TestGetRecommendedMentors_SharesProviderReference(t *testing.T) {
	p := dukeMentor()

	results := GetRecommendedMentors(essayApplicant(), []*models.Provider{p}, Options{Now: testNow})

	require.Len(t, results, 1)
	assert.Same(t, p, results[0].Provider)
}

func TestHasAvailableMentors(t *testing.T) {
	tests := []struct {
		name      string
		providers []*models.Provider
		expected  bool
	}{
		{"nil", nil, false},
		{"empty", []*models.Provider{}, false},
		{"only nil entries", []*models.Provider{nil}, false},
		{"pending only", []*models.Provider{{Status: models.ProviderStatusPending}}, false},
		{"approved", []*models.Provider{{Status: models.ProviderStatusApproved}}, true},
		{"approved but paused still counts", []*models.Provider{{Status: models.ProviderStatusApproved, IsPaused: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasAvailableMentors(tt.providers))
		})
	}
}
