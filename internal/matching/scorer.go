// internal/matching/scorer.go
package matching

import (
	"time"

	"mentor-match/internal/models"
)

// Score weights.
const (
	WeightFocusMatch      = 40
	WeightAvailableNow    = 20
	WeightSlotWithin3Days = 10
	WeightSlotWithin7Days = 5
	WeightICUMatch        = 15
	WeightProgramMatch    = 25
	BonusProgramsSchoolQA = 10
	BonusDashboardBusy    = 5

	DashboardBookingThreshold = 20
)

const day = 24 * time.Hour

// Score computes the additive compatibility score between an applicant and
// one provider. Missing data on either side contributes nothing.
func Score(user *models.User, provider *models.Provider, matchCtx models.MatchContext) int {
	return ScoreAt(user, provider, matchCtx, time.Now())
}

// ScoreAt is Score with an explicit clock.
func ScoreAt(user *models.User, provider *models.Provider, matchCtx models.MatchContext, now time.Time) int {
	if provider == nil {
		return 0
	}

	score := 0

	if _, ok := focusMatch(user, provider); ok {
		score += WeightFocusMatch
	}

	score += availabilityScore(provider, now)
	score += ratingScore(provider.Rating)

	if icuMatch(user, provider) {
		score += WeightICUMatch
	}
	if programMatch(user, provider) {
		score += WeightProgramMatch
	}

	score += contextBonus(provider, matchCtx)

	return score
}

func availabilityScore(provider *models.Provider, now time.Time) int {
	score := 0
	if provider.IsAvailableNow() {
		score += WeightAvailableNow
	}
	if provider.NextAvailableSlot == nil {
		return score
	}

	// Slots in the past are stale and earn nothing.
	until := provider.NextAvailableSlot.Sub(now)
	switch {
	case until < 0:
	case until <= 3*day:
		score += WeightSlotWithin3Days
	case until <= 7*day:
		score += WeightSlotWithin7Days
	}
	return score
}

func ratingScore(rating float64) int {
	switch {
	case rating >= 4.9:
		return 20
	case rating >= 4.7:
		return 15
	case rating >= 4.5:
		return 10
	case rating >= 4.0:
		return 5
	default:
		return 0
	}
}

func contextBonus(provider *models.Provider, matchCtx models.MatchContext) int {
	switch matchCtx {
	case models.ContextPrograms:
		if provider.HasSpecialization(models.ServiceSchoolQA) {
			return BonusProgramsSchoolQA
		}
	case models.ContextDashboard:
		if provider.TotalBookings >= DashboardBookingThreshold {
			return BonusDashboardBusy
		}
	}
	return 0
}
