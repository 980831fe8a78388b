// internal/matching/selector.go
package matching

import (
	"sort"
	"time"

	"mentor-match/internal/models"
)

const DefaultLimit = 3

// Selection paths, reported for logging and metrics.
const (
	PathEmpty    = "empty"
	PathScored   = "scored"
	PathFallback = "fallback_top_rated"
)

// Options tunes GetRecommendedMentors. Zero values fall back to defaults.
type Options struct {
	Limit   int
	Context models.MatchContext
	// Now overrides the clock used for slot proximity.
	Now time.Time
}

func (o Options) normalized() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Context == "" {
		o.Context = models.ContextGeneral
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Selection is the ranked output plus the path that produced it.
type Selection struct {
	Results []models.MatchResult
	Path    string
}

// GetRecommendedMentors ranks the provider pool for a user. The result is
// empty only when the pool itself is empty.
func GetRecommendedMentors(user *models.User, providers []*models.Provider, opts Options) []models.MatchResult {
	return Select(user, providers, opts).Results
}

// Select is GetRecommendedMentors with the selection path exposed.
func Select(user *models.User, providers []*models.Provider, opts Options) Selection {
	opts = opts.normalized()

	pool := make([]*models.Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return Selection{Results: []models.MatchResult{}, Path: PathEmpty}
	}

	eligible := make([]*models.Provider, 0, len(pool))
	for _, p := range pool {
		if p.IsEligible() {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return Selection{Results: topRated(pool, opts.Limit), Path: PathFallback}
	}

	results := make([]models.MatchResult, 0, len(eligible))
	for _, p := range eligible {
		results = append(results, models.MatchResult{
			Provider: p,
			Score:    ScoreAt(user, p, opts.Context, opts.Now),
			Reasons:  Reasons(user, p),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Provider.Rating > results[j].Provider.Rating
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	for i := range results {
		if len(results[i].Reasons) == 0 {
			results[i].Reasons = []string{ReasonHighlyRated}
		}
	}

	return Selection{Results: results, Path: PathScored}
}

// topRated ranks the whole pool by rating alone, bypassing scoring.
func topRated(pool []*models.Provider, limit int) []models.MatchResult {
	ranked := make([]*models.Provider, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]models.MatchResult, 0, len(ranked))
	for _, p := range ranked {
		results = append(results, models.MatchResult{
			Provider: p,
			Score:    0,
			Reasons:  []string{ReasonTopRated},
		})
	}
	return results
}

// HasAvailableMentors reports whether any provider is approved. Paused
// providers still count here, unlike the scoring pool.
func HasAvailableMentors(providers []*models.Provider) bool {
	for _, p := range providers {
		if p.IsApproved() {
			return true
		}
	}
	return false
}
