// internal/models/match.go
package models

// MatchResult is one ranked recommendation. Provider is shared with the
// caller's pool and must be treated as read-only.
type MatchResult struct {
	Provider *Provider `json:"provider"`
	Score    int       `json:"score"`
	Reasons  []string  `json:"reasons"`
}
