// internal/workers/mentor/calculate-match-score/models.go
package calculatematchscore

import "mentor-match/internal/models"

type Input struct {
	UserID     string           `json:"userId,omitempty"`
	ProviderID string           `json:"providerId,omitempty"`
	User       *models.User     `json:"user,omitempty"`
	Provider   *models.Provider `json:"provider,omitempty"`
	Context    string           `json:"context,omitempty"`
}

type Output struct {
	ProviderID string   `json:"providerId"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Eligible   bool     `json:"eligible"`
}
