package protocol

import (
	"strings"

	"github.com/radassist/backend/internal/storage/models"
)

// clinicalRule is one entry in the ordered rule cascade. The procedure guard
// runs first: a rule may only fire when the procedure targets its body part,
// so scenario text alone can never route across region boundaries.
type clinicalRule struct {
	name           string
	procedureGuard func(procedureName string) bool
	scenarioMatch  func(scenarioName string, procedureName string, contrast models.ContrastUse) bool
	protocolName   string
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func headGuard(proc string) bool {
	return containsAny(proc, "head", "brain")
}

func spineGuard(proc string) bool {
	return containsAny(proc, "spine", "cervical", "thoracic", "lumbar")
}

// clinicalRules is evaluated in this fixed order, first match wins.
// Reordering changes clinical behavior.
var clinicalRules = []clinicalRule{
	{
		name:           "acute-stroke-brain",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "stroke", "cva", "infarct", "ischemi") &&
				!containsAny(scen, "tia", "transient") &&
				!ProcedureNeedsContrast(proc, contrast)
		},
		protocolName: "BRAIN",
	},
	{
		name:           "tia-brain",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "tia", "transient ischemic")
		},
		protocolName: "BRAIN",
	},
	{
		name:           "brain-tumor",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "tumor", "mass", "neoplasm", "metasta", "glioma")
		},
		protocolName: "BRAIN TUMOR",
	},
	{
		name:           "seizure-brain",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "seizure", "epilep")
		},
		protocolName: "SEIZURE",
	},
	{
		name:           "demyelinating-brain",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "demyelinat", "multiple sclerosis", "optic neuritis")
		},
		protocolName: "MS BRAIN",
	},
	{
		name:           "pituitary",
		procedureGuard: headGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "pituitary", "sella", "prolactin", "adenoma")
		},
		protocolName: "PITUITARY",
	},
	{
		name:           "spine-infection",
		procedureGuard: spineGuard,
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "discitis", "spondylodiscitis", "epidural abscess") ||
				(containsAny(scen, "osteomyelitis", "infection") && containsAny(scen, "spine", "vertebra", "disc"))
		},
		protocolName: "SPINE INFECTION",
	},
	{
		name: "extremity-osteomyelitis",
		procedureGuard: func(proc string) bool {
			return containsAny(proc, "knee", "ankle", "foot", "hip", "shoulder", "elbow", "wrist", "hand", "femur", "tibia", "humerus")
		},
		scenarioMatch: func(scen, proc string, contrast models.ContrastUse) bool {
			return containsAny(scen, "osteomyelitis", "septic", "bone infection")
		},
		protocolName: "EXTREMITY INFECTION",
	},
}

// evaluateRules runs the cascade and returns the first matching rule's
// protocol name. All matching is case-insensitive.
func evaluateRules(scenarioName, procedureName string, contrast models.ContrastUse) (string, bool) {
	scen := strings.ToLower(scenarioName)
	proc := strings.ToLower(procedureName)

	for _, rule := range clinicalRules {
		if !rule.procedureGuard(proc) {
			continue
		}
		if rule.scenarioMatch(scen, proc, contrast) {
			return rule.protocolName, true
		}
	}

	return "", false
}
