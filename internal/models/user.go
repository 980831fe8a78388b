// internal/models/user.go
package models

// FocusStatus values as stored on guidance focus entries.
const (
	FocusStatusActive   = "active"
	FocusStatusInactive = "inactive"
)

// User is an applicant as supplied by the data layer. Every nested
// section is optional and may be nil.
type User struct {
	ID              string           `json:"id,omitempty"`
	GuidanceState   *GuidanceState   `json:"guidanceState,omitempty"`
	ClinicalProfile *ClinicalProfile `json:"clinicalProfile,omitempty"`
	TargetPrograms  []TargetProgram  `json:"targetPrograms,omitempty"`
}

type GuidanceState struct {
	PrimaryFocusAreas []FocusEntry `json:"primaryFocusAreas,omitempty"`
}

type FocusEntry struct {
	Area   FocusArea `json:"area"`
	Status string    `json:"status"`
}

type ClinicalProfile struct {
	PrimaryICUType ICUType `json:"primaryIcuType,omitempty"`
}

type TargetProgram struct {
	Program *Program `json:"program,omitempty"`
}

type Program struct {
	Name string `json:"name"`
}

// ActiveFocusArea returns the first focus area whose status is active.
func (u *User) ActiveFocusArea() (FocusArea, bool) {
	if u == nil || u.GuidanceState == nil {
		return "", false
	}
	for _, entry := range u.GuidanceState.PrimaryFocusAreas {
		if entry.Status == FocusStatusActive {
			return entry.Area, true
		}
	}
	return "", false
}

// ICUType returns the applicant's primary ICU background, or "" when unknown.
func (u *User) ICUType() ICUType {
	if u == nil || u.ClinicalProfile == nil {
		return ""
	}
	return u.ClinicalProfile.PrimaryICUType
}

// TargetProgramNames lists the non-empty target program names in input order.
func (u *User) TargetProgramNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.TargetPrograms))
	for _, tp := range u.TargetPrograms {
		if tp.Program == nil || tp.Program.Name == "" {
			continue
		}
		names = append(names, tp.Program.Name)
	}
	return names
}
