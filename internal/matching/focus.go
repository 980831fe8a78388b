// internal/matching/focus.go
package matching

import (
	"strings"

	"mentor-match/internal/models"
)

// FocusProfile is what a focus area means for matching: the service types
// that address it and an optional label shown to the applicant.
type FocusProfile struct {
	Services []string
	Label    string
}

// focusTable is the single source for focus→service and focus→label lookups.
var focusTable = map[models.FocusArea]FocusProfile{
	models.FocusEssay: {
		Services: []string{models.ServiceEssayReview},
		Label:    "Essay expert",
	},
	models.FocusResume: {
		Services: []string{models.ServiceResumeReview},
		Label:    "Resume specialist",
	},
	models.FocusInterviewPrep: {
		Services: []string{models.ServiceMockInterview},
		Label:    "Interview coach",
	},
	models.FocusSchoolSearch: {
		Services: []string{models.ServiceStrategySession, models.ServiceSchoolQA},
		Label:    "School advisor",
	},
	models.FocusPrerequisites: {
		Services: []string{models.ServiceStrategySession, models.ServiceSchoolQA},
	},
	models.FocusClinicalExperience: {
		Services: []string{models.ServiceStrategySession},
	},
	models.FocusShadowing: {
		Services: []string{models.ServiceSchoolQA},
	},
	models.FocusCertifications: {
		Services: []string{models.ServiceStrategySession},
	},
}

// LookupFocus returns the profile for a focus area.
func LookupFocus(area models.FocusArea) (FocusProfile, bool) {
	p, ok := focusTable[area]
	return p, ok
}

// overlapsServices reports whether any specialization contains, or is
// contained by, any of the given services.
func overlapsServices(specializations, services []string) bool {
	for _, spec := range specializations {
		if spec == "" {
			continue
		}
		for _, svc := range services {
			if svc == "" {
				continue
			}
			if strings.Contains(spec, svc) || strings.Contains(svc, spec) {
				return true
			}
		}
	}
	return false
}

// focusMatch resolves the user's active focus area against the provider's
// specializations.
func focusMatch(user *models.User, provider *models.Provider) (FocusProfile, bool) {
	area, ok := user.ActiveFocusArea()
	if !ok {
		return FocusProfile{}, false
	}
	profile, ok := LookupFocus(area)
	if !ok {
		return FocusProfile{}, false
	}
	return profile, overlapsServices(provider.Specializations, profile.Services)
}

// programMatch compares the provider's affiliated program with the user's
// target programs, case-insensitively, in either substring direction.
func programMatch(user *models.User, provider *models.Provider) bool {
	program := strings.ToLower(strings.TrimSpace(provider.AffiliatedProgram()))
	if program == "" {
		return false
	}
	for _, name := range user.TargetProgramNames() {
		target := strings.ToLower(strings.TrimSpace(name))
		if target == "" {
			continue
		}
		if strings.Contains(target, program) || strings.Contains(program, target) {
			return true
		}
	}
	return false
}

func icuMatch(user *models.User, provider *models.Provider) bool {
	userICU := user.ICUType()
	return userICU != "" && provider.PreviousICUType != "" && userICU == provider.PreviousICUType
}
