// internal/matching/reasons.go
package matching

import (
	"fmt"
	"strings"

	"mentor-match/internal/models"
)

const (
	MaxReasons = 2

	reasonRatingThreshold = 4.8
	quickResponseMinutes  = 180
)

// Fixed reason strings.
const (
	ReasonAvailableThisWeek = "Available this week"
	ReasonTargetSchool      = "At your target school"
	ReasonQuickResponder    = "Quick responder"
	ReasonTopRated          = "Top rated mentor"
	ReasonHighlyRated       = "Highly rated mentor"
)

// Reasons explains a match in at most two short strings, highest priority
// first. It does not look at the score.
func Reasons(user *models.User, provider *models.Provider) []string {
	if provider == nil {
		return []string{}
	}

	reasons := make([]string, 0, 6)

	if provider.IsAvailableNow() {
		reasons = append(reasons, ReasonAvailableThisWeek)
	}
	if provider.Rating >= reasonRatingThreshold {
		reasons = append(reasons, fmt.Sprintf("%.1f★ rating", provider.Rating))
	}
	if icuMatch(user, provider) {
		reasons = append(reasons, "Also "+formatICU(provider.PreviousICUType))
	}
	if programMatch(user, provider) {
		reasons = append(reasons, ReasonTargetSchool)
	}
	if profile, ok := focusMatch(user, provider); ok && profile.Label != "" {
		reasons = append(reasons, profile.Label)
	}
	if provider.ResponseTimeMinutes != nil && *provider.ResponseTimeMinutes < quickResponseMinutes {
		reasons = append(reasons, ReasonQuickResponder)
	}

	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	return reasons
}

func formatICU(icu models.ICUType) string {
	return strings.ToUpper(strings.ReplaceAll(string(icu), "_", " "))
}
