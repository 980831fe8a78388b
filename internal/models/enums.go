// internal/models/enums.go
package models

// FocusArea is an applicant's current help-seeking priority.
type FocusArea string

const (
	FocusEssay              FocusArea = "essay"
	FocusResume             FocusArea = "resume"
	FocusInterviewPrep      FocusArea = "interview_prep"
	FocusSchoolSearch       FocusArea = "school_search"
	FocusPrerequisites      FocusArea = "prerequisites"
	FocusClinicalExperience FocusArea = "clinical_experience"
	FocusShadowing          FocusArea = "shadowing"
	FocusCertifications     FocusArea = "certifications"
)

// ICUType is a critical-care unit background.
type ICUType string

const (
	ICUMedical        ICUType = "micu"
	ICUSurgical       ICUType = "sicu"
	ICUCardiovascular ICUType = "cvicu"
	ICUNeuro          ICUType = "neuro_icu"
	ICUTrauma         ICUType = "trauma_icu"
	ICUPediatric      ICUType = "picu"
	ICUNeonatal       ICUType = "nicu"
	ICUMixed          ICUType = "mixed_icu"
)

// Service types a provider can list as specializations.
const (
	ServiceMockInterview   = "mock_interview"
	ServiceEssayReview     = "essay_review"
	ServiceStrategySession = "strategy_session"
	ServiceSchoolQA        = "school_qa"
	ServiceResumeReview    = "resume_review"
)

// MatchContext tells the scorer which page is asking for recommendations.
type MatchContext string

const (
	ContextGeneral   MatchContext = "general"
	ContextPrograms  MatchContext = "programs"
	ContextSchool    MatchContext = "school"
	ContextDashboard MatchContext = "dashboard"
)

// ParseMatchContext maps unknown or empty values to ContextGeneral.
func ParseMatchContext(s string) MatchContext {
	switch c := MatchContext(s); c {
	case ContextPrograms, ContextSchool, ContextDashboard:
		return c
	default:
		return ContextGeneral
	}
}
