// Package intent classifies clinical queries along two axes, care phase and
// urgency, and turns the result into score boosts for scenario candidates.
package intent

type Phase string

const (
	PhaseInitial      Phase = "initial"
	PhaseSurveillance Phase = "surveillance"
	PhaseTreatment    Phase = "treatment"
	PhaseUnknown      Phase = "unknown"
)

type Urgency string

const (
	UrgencyAcute   Urgency = "acute"
	UrgencyChronic Urgency = "chronic"
	UrgencyRoutine Urgency = "routine"
	UrgencyUnknown Urgency = "unknown"
)

// Prediction is the classifier output: a label and confidence per axis.
type Prediction struct {
	Phase             Phase
	PhaseConfidence   float64
	Urgency           Urgency
	UrgencyConfidence float64
}

// Boost multiplier constants. Boosts compose multiplicatively and are
// order-independent.
const (
	phaseMatchBoost              = 1.5
	initialVsSurveillancePenalty = 0.5
	surveillanceVsInitialPenalty = 0.7
	urgencyMatchBoost            = 1.3
	urgentVsRoutinePenalty       = 0.6
)

// Boost returns the multiplicative factor for a scenario with the given
// traits under the predicted intent.
func Boost(pred Prediction, scenarioPhase Phase, scenarioUrgency Urgency) float64 {
	factor := 1.0

	if pred.Phase != PhaseUnknown && scenarioPhase != PhaseUnknown {
		switch {
		case pred.Phase == scenarioPhase:
			factor *= phaseMatchBoost
		case pred.Phase == PhaseInitial && scenarioPhase == PhaseSurveillance:
			factor *= initialVsSurveillancePenalty
		case pred.Phase == PhaseSurveillance && scenarioPhase == PhaseInitial:
			factor *= surveillanceVsInitialPenalty
		}
	}

	if pred.Urgency != UrgencyUnknown && scenarioUrgency != UrgencyUnknown {
		switch {
		case pred.Urgency == scenarioUrgency:
			factor *= urgencyMatchBoost
		case pred.Urgency == UrgencyAcute && scenarioUrgency == UrgencyRoutine:
			factor *= urgentVsRoutinePenalty
		}
	}

	return factor
}
