package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoost_PhaseFactors(t *testing.T) {
	acuteInitial := Prediction{Phase: PhaseInitial, Urgency: UrgencyUnknown}

	assert.Equal(t, 1.5, Boost(acuteInitial, PhaseInitial, UrgencyUnknown))
	assert.Equal(t, 0.5, Boost(acuteInitial, PhaseSurveillance, UrgencyUnknown))

	surveillance := Prediction{Phase: PhaseSurveillance, Urgency: UrgencyUnknown}
	assert.Equal(t, 0.7, Boost(surveillance, PhaseInitial, UrgencyUnknown))
	assert.Equal(t, 1.5, Boost(surveillance, PhaseSurveillance, UrgencyUnknown))
}

func TestBoost_UrgencyFactors(t *testing.T) {
	acute := Prediction{Phase: PhaseUnknown, Urgency: UrgencyAcute}

	assert.Equal(t, 1.3, Boost(acute, PhaseUnknown, UrgencyAcute))
	assert.Equal(t, 0.6, Boost(acute, PhaseUnknown, UrgencyRoutine))
	assert.Equal(t, 1.0, Boost(acute, PhaseUnknown, UrgencyChronic))
}

func TestBoost_UnknownAxesAreNeutral(t *testing.T) {
	unknown := Prediction{Phase: PhaseUnknown, Urgency: UrgencyUnknown}
	assert.Equal(t, 1.0, Boost(unknown, PhaseInitial, UrgencyAcute))

	known := Prediction{Phase: PhaseInitial, Urgency: UrgencyAcute}
	assert.Equal(t, 1.0, Boost(known, PhaseUnknown, UrgencyUnknown))
}

func TestBoost_FactorsCompose(t *testing.T) {
	pred := Prediction{Phase: PhaseInitial, Urgency: UrgencyAcute}

	// phase match and urgency match together
	assert.InDelta(t, 1.5*1.3, Boost(pred, PhaseInitial, UrgencyAcute), 1e-12)
	// phase penalty and urgency penalty together
	assert.InDelta(t, 0.5*0.6, Boost(pred, PhaseSurveillance, UrgencyRoutine), 1e-12)
}

// Boost factors multiply, so applying them via Boost must give the same
// result regardless of which axis is considered first. Guarded by comparing
// the composed value against its factors.
func TestBoost_OrderIndependent(t *testing.T) {
	pred := Prediction{Phase: PhaseInitial, Urgency: UrgencyAcute}

	phaseOnly := Boost(Prediction{Phase: PhaseInitial, Urgency: UrgencyUnknown}, PhaseSurveillance, UrgencyRoutine)
	urgencyOnly := Boost(Prediction{Phase: PhaseUnknown, Urgency: UrgencyAcute}, PhaseSurveillance, UrgencyRoutine)

	assert.InDelta(t, phaseOnly*urgencyOnly, Boost(pred, PhaseSurveillance, UrgencyRoutine), 1e-12)
}
