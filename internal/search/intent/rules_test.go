package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyByRules_AcuteShortCircuit(t *testing.T) {
	for _, query := range []string{
		"dvt left leg",
		"rule out PE",
		"stemi protocol",
		"possible SAH",
	} {
		pred := ClassifyByRules(query)
		assert.Equal(t, PhaseInitial, pred.Phase, "query %q", query)
		assert.Equal(t, 0.85, pred.PhaseConfidence, "query %q", query)
		assert.Equal(t, UrgencyAcute, pred.Urgency, "query %q", query)
		assert.Equal(t, 0.90, pred.UrgencyConfidence, "query %q", query)
	}
}

func TestClassifyByRules_NegationSuppressesShortCircuit(t *testing.T) {
	for _, query := range []string{
		"follow-up of known dvt",
		"history of pe on anticoagulation",
		"prior sah surveillance",
	} {
		pred := ClassifyByRules(query)
		assert.NotEqual(t, UrgencyAcute, pred.Urgency, "query %q must not short-circuit", query)
	}
}

func TestClassifyByRules_Surveillance(t *testing.T) {
	pred := ClassifyByRules("follow-up of known renal mass")
	assert.Equal(t, PhaseSurveillance, pred.Phase)
	assert.GreaterOrEqual(t, pred.PhaseConfidence, 0.75)
}

func TestClassifyByRules_Treatment(t *testing.T) {
	pred := ClassifyByRules("status post resection of glioma")
	assert.Equal(t, PhaseTreatment, pred.Phase)
}

func TestClassifyByRules_Initial(t *testing.T) {
	pred := ClassifyByRules("presents with new abdominal pain")
	assert.Equal(t, PhaseInitial, pred.Phase)
}

func TestClassifyByRules_SurveillanceOutranksInitial(t *testing.T) {
	// both "new" and "surveillance" language: the more specific
	// surveillance marker must win
	pred := ClassifyByRules("surveillance of aneurysm with new symptoms")
	assert.Equal(t, PhaseSurveillance, pred.Phase)
}

func TestClassifyByRules_Urgency(t *testing.T) {
	tests := []struct {
		query string
		want  Urgency
	}{
		{"sudden severe headache", UrgencyAcute},
		{"chronic low back pain for months", UrgencyChronic},
		{"annual screening mammogram", UrgencyRoutine},
	}

	for _, tt := range tests {
		pred := ClassifyByRules(tt.query)
		assert.Equal(t, tt.want, pred.Urgency, "query %q", tt.query)
	}
}

func TestClassifyByRules_NoMatch(t *testing.T) {
	pred := ClassifyByRules("left shoulder discomfort")
	assert.Equal(t, PhaseUnknown, pred.Phase)
	assert.Equal(t, UrgencyUnknown, pred.Urgency)
	assert.Zero(t, pred.PhaseConfidence)
	assert.Zero(t, pred.UrgencyConfidence)
}

func TestInferScenarioTraits(t *testing.T) {
	phase, urgency := InferScenarioTraits("Acute Onset Flank Pain")
	assert.Equal(t, PhaseInitial, phase)
	assert.Equal(t, UrgencyAcute, urgency)

	phase, _ = InferScenarioTraits("Post-Treatment Surveillance of Colorectal Cancer")
	assert.Equal(t, PhaseSurveillance, phase)
}
