// Package minutes turns meeting transcripts into structured minutes using an
// LLM. Templates select the analysis style per meeting kind (general, NPO
// operations, government, hiring interview); the model responds with a JSON
// document that is decoded into [Minutes].
package minutes

import "time"

// Minutes is the structured result of analysing one meeting transcript.
// Field JSON names mirror the schema the templates instruct the model to
// emit; optional sections stay nil when the model omits them.
type Minutes struct {
	Summary      string       `json:"summary"`
	KeyPoints    []string     `json:"keyPoints"`
	Decisions    []string     `json:"decisions"`
	ActionItems  []ActionItem `json:"actionItems"`
	Participants []string     `json:"participants"`

	UnresolvedIssues  []UnresolvedIssue  `json:"unresolvedIssues,omitempty"`
	AISuggestions     []AISuggestion     `json:"aiSuggestions,omitempty"`
	Timeline          []TimelineEntry    `json:"timeline,omitempty"`
	Risks             []Risk             `json:"risks,omitempty"`
	NextSteps         []string           `json:"nextSteps,omitempty"`
	NextMeetingAgenda *NextMeetingAgenda `json:"nextMeetingAgenda,omitempty"`

	// Interview-only sections, populated by the interview template.
	CandidateProfile    *CandidateProfile      `json:"candidateProfile,omitempty"`
	CandidateMotivation *CandidateMotivation   `json:"candidateMotivation,omitempty"`
	CandidateStrengths  *CandidateStrengths    `json:"candidateStrengths,omitempty"`
	Availability        *CandidateAvailability `json:"availability,omitempty"`
	Concerns            []InterviewConcern     `json:"concerns,omitempty"`
	AIEvaluation        *AIEvaluation          `json:"aiEvaluation,omitempty"`
	InterviewerNotes    string                 `json:"interviewerNotes,omitempty"`

	// RawTranscript is the transcript the minutes were generated from.
	// Set by the generator, never by the model.
	RawTranscript string `json:"-"`

	// GeneratedAt is the generation timestamp. Set by the generator.
	GeneratedAt time.Time `json:"-"`
}

// ActionItem is a concrete follow-up task extracted from the meeting.
type ActionItem struct {
	Task        string `json:"task"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// UnresolvedIssue is a topic the meeting raised but did not settle.
type UnresolvedIssue struct {
	Issue           string `json:"issue"`
	Context         string `json:"context"`
	Priority        string `json:"priority"`
	SuggestedAction string `json:"suggestedAction,omitempty"`
}

// AISuggestion is an improvement idea the model adds on top of the record.
type AISuggestion struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Reasoning  string `json:"reasoning"`
	Priority   string `json:"priority"`
}

// TimelineEntry is a milestone mentioned during the meeting.
type TimelineEntry struct {
	Milestone    string   `json:"milestone"`
	Deadline     string   `json:"deadline,omitempty"`
	Status       string   `json:"status"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Risk is a caution point the model flagged.
type Risk struct {
	Risk       string `json:"risk"`
	Impact     string `json:"impact"`
	Likelihood string `json:"likelihood"`
	Mitigation string `json:"mitigation,omitempty"`
}

// NextMeetingAgenda is the model's proposal for the follow-up meeting.
type NextMeetingAgenda struct {
	SuggestedDate        string        `json:"suggestedDate,omitempty"`
	SuggestedDuration    int           `json:"suggestedDuration,omitempty"`
	Objectives           []string      `json:"objectives"`
	Topics               []AgendaTopic `json:"topics"`
	RequiredParticipants []string      `json:"requiredParticipants"`
	OptionalParticipants []string      `json:"optionalParticipants,omitempty"`
	PreparationItems     []string      `json:"preparationItems,omitempty"`
}

// AgendaTopic is one proposed agenda item for the next meeting.
type AgendaTopic struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EstimatedDuration int      `json:"estimatedDuration"`
	Presenter         string   `json:"presenter,omitempty"`
	Materials         []string `json:"materials,omitempty"`
}

// CandidateProfile summarises who the interviewed candidate is.
type CandidateProfile struct {
	Name             string `json:"name"`
	Age              string `json:"age,omitempty"`
	CurrentSituation string `json:"currentSituation"`
	WhyNow           string `json:"whyNow"`
	Background       string `json:"background,omitempty"`
}

// CandidateMotivation captures why the candidate applied and what they want.
type CandidateMotivation struct {
	ApplicationReason string   `json:"applicationReason"`
	Expectations      []string `json:"expectations"`
	IdealInvolvement  string   `json:"idealInvolvement"`
	DealBreakers      []string `json:"dealBreakers,omitempty"`
}

// CandidateStrengths lists evidenced skills and personality traits.
type CandidateStrengths struct {
	Skills           []SkillEvidence `json:"skills"`
	Personality      string          `json:"personality"`
	UniqueExperience string          `json:"uniqueExperience,omitempty"`
}

// SkillEvidence pairs a claimed skill with the episode backing it.
type SkillEvidence struct {
	Skill    string `json:"skill"`
	Evidence string `json:"evidence"`
}

// CandidateAvailability records when and how much the candidate can commit.
type CandidateAvailability struct {
	StartDate   string   `json:"startDate"`
	Commitment  string   `json:"commitment"`
	Constraints []string `json:"constraints,omitempty"`
}

// InterviewConcern is a potential obstacle to the candidate's participation.
type InterviewConcern struct {
	Issue         string `json:"issue"`
	Impact        string `json:"impact"`
	NeedsFollowUp bool   `json:"needsFollowUp"`
}

// AIEvaluation is the model's scored hiring recommendation.
type AIEvaluation struct {
	OverallScore   int                `json:"overallScore"`
	Recommendation string             `json:"recommendation"`
	Reasoning      string             `json:"reasoning"`
	Criteria       EvaluationCriteria `json:"criteria"`
	Strengths      []string           `json:"strengths"`
	Risks          []string           `json:"risks"`
	Conditions     string             `json:"conditions,omitempty"`
}

// EvaluationCriteria holds the five 20-point scoring axes.
type EvaluationCriteria struct {
	SkillMatch    CriterionScore `json:"skillMatch"`
	CultureFit    CriterionScore `json:"cultureFit"`
	Motivation    CriterionScore `json:"motivation"`
	Commitment    CriterionScore `json:"commitment"`
	Communication CriterionScore `json:"communication"`
}

// CriterionScore is one scored axis with its comment.
type CriterionScore struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Context carries optional meeting background that templates interpolate
// into the user prompt. Which fields matter depends on the template.
type Context struct {
	// OrgName and ProjectName are used by the NPO template.
	OrgName     string
	ProjectName string

	// Department and Subject are used by the government template.
	Department string
	Subject    string

	// Position and Background are used by the interview template.
	Position   string
	Background string
}
