package recommend

import (
	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/internal/storage/models"
)

// ProcedureRecommendation is one deduplicated procedure with its best rating
// for the resolved scenario.
type ProcedureRecommendation struct {
	Name        string             `json:"name"`
	Modality    models.Modality    `json:"modality"`
	Contrast    models.ContrastUse `json:"contrast"`
	Rating      float64            `json:"rating"`
	RatingLevel string             `json:"rating_level"`
}

// Recommendations groups procedures by appropriateness tier.
type Recommendations struct {
	UsuallyAppropriate    []ProcedureRecommendation `json:"usually_appropriate"`
	MayBeAppropriate      []ProcedureRecommendation `json:"may_be_appropriate"`
	UsuallyNotAppropriate []ProcedureRecommendation `json:"usually_not_appropriate"`
}

// Result is the single response shape of GetRecommendations. Exactly one of
// Error, NeedsClarification or Success is set.
type Result struct {
	Error string `json:"error,omitempty"`

	NeedsClarification  bool     `json:"needs_clarification,omitempty"`
	ClarifyingQuestions []string `json:"clarifying_questions,omitempty"`
	Interpretation      string   `json:"interpretation,omitempty"`

	Success          bool             `json:"success,omitempty"`
	ID               string           `json:"id,omitempty"`
	Scenario         *models.Scenario `json:"scenario,omitempty"`
	Recommendations  *Recommendations `json:"recommendations,omitempty"`
	Confidence       string           `json:"confidence,omitempty"`
	RelatedScenarios []search.Result  `json:"related_scenarios,omitempty"`
	Source           string           `json:"source,omitempty"`
}
