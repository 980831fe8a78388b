// internal/models/provider.go
package models

import "time"

// Provider statuses from the marketplace approval flow.
const (
	ProviderStatusApproved = "approved"
	ProviderStatusPending  = "pending"
	ProviderStatusRejected = "rejected"
)

// Provider is a mentor offering paid services to applicants.
type Provider struct {
	ID                  string     `json:"id,omitempty"`
	Name                string     `json:"name,omitempty"`
	Status              string     `json:"status"`
	IsPaused            bool       `json:"isPaused"`
	AvailableThisWeek   bool       `json:"availableThisWeek"`
	NextAvailableSlot   *time.Time `json:"nextAvailableSlot,omitempty"`
	Rating              float64    `json:"rating"`
	PreviousICUType     ICUType    `json:"previousIcuType,omitempty"`
	Program             string     `json:"program,omitempty"`
	ProgramName         string     `json:"programName,omitempty"`
	Specializations     []string   `json:"specializations,omitempty"`
	TotalBookings       int        `json:"totalBookings"`
	ResponseTimeMinutes *int       `json:"responseTimeMinutes,omitempty"`
}

func (p *Provider) IsApproved() bool {
	return p != nil && p.Status == ProviderStatusApproved
}

// IsEligible reports whether the provider may be scored: approved and not
// on vacation.
func (p *Provider) IsEligible() bool {
	return p.IsApproved() && !p.IsPaused
}

// IsAvailableNow is true when the provider has open time this week and is
// not paused.
func (p *Provider) IsAvailableNow() bool {
	return p != nil && p.AvailableThisWeek && !p.IsPaused
}

// AffiliatedProgram prefers Program and falls back to ProgramName.
func (p *Provider) AffiliatedProgram() string {
	if p == nil {
		return ""
	}
	if p.Program != "" {
		return p.Program
	}
	return p.ProgramName
}

func (p *Provider) HasSpecialization(service string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Specializations {
		if s == service {
			return true
		}
	}
	return false
}
