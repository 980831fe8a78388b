// internal/workers/mentor/recommend-mentors/models.go
package recommendmentors

import "mentor-match/internal/models"

// Input is read from the process variables. Inline user and providers take
// precedence over userId and the stored mentor pool.
type Input struct {
	UserID    string             `json:"userId,omitempty"`
	User      *models.User       `json:"user,omitempty"`
	Providers []*models.Provider `json:"providers,omitempty"`
	Options   *Options           `json:"options,omitempty"`
}

type Options struct {
	Limit   int    `json:"limit,omitempty"`
	Context string `json:"context,omitempty"`
}

type Output struct {
	Recommendations     []models.MatchResult `json:"recommendations"`
	HasAvailableMentors bool                 `json:"hasAvailableMentors"`
	FallbackUsed        bool                 `json:"fallbackUsed"`
	SelectionPath       string               `json:"selectionPath"`
}
