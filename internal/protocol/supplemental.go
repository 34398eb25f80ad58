package protocol

import (
	"sort"
	"strings"
)

// SupplementalSequence is an addition to a protocol's base sequence list.
type SupplementalSequence struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type contextualAddition struct {
	sequence string
	reason   string
	triggers []string
}

// supplementalRouting is keyed by a lowercase fragment of the procedure name.
// Always-add entries append unconditionally; contextual entries append only
// when a trigger keyword appears in the scenario name.
var supplementalRouting = map[string]struct {
	alwaysAdd  []SupplementalSequence
	contextual []contextualAddition
}{
	"mri head": {
		contextual: []contextualAddition{
			{"SWI", "blood-product detection", []string{"hemorrhage", "bleed", "trauma", "microbleed"}},
			{"DWI", "acute ischemia detection", []string{"stroke", "infarct", "ischemi"}},
			{"MRA COW", "aneurysm screening", []string{"aneurysm", "thunderclap", "subarachnoid"}},
		},
	},
	"mri brain": {
		contextual: []contextualAddition{
			{"SWI", "blood-product detection", []string{"hemorrhage", "bleed", "trauma", "microbleed"}},
			{"DWI", "acute ischemia detection", []string{"stroke", "infarct", "ischemi"}},
			{"MRA COW", "aneurysm screening", []string{"aneurysm", "thunderclap", "subarachnoid"}},
		},
	},
	"mri pituitary": {
		alwaysAdd: []SupplementalSequence{
			{"DYNAMIC CORONAL T1", "microadenoma timing"},
		},
	},
	"mri cervical spine": {
		contextual: []contextualAddition{
			{"STIR SAGITTAL", "marrow edema", []string{"trauma", "fracture", "compression"}},
			{"AXIAL T1 POST", "enhancing infection", []string{"discitis", "osteomyelitis", "abscess", "infection"}},
		},
	},
	"mri lumbar spine": {
		contextual: []contextualAddition{
			{"STIR SAGITTAL", "marrow edema", []string{"trauma", "fracture", "compression"}},
			{"AXIAL T1 POST", "enhancing infection", []string{"discitis", "osteomyelitis", "abscess", "infection"}},
		},
	},
	"mri knee": {
		contextual: []contextualAddition{
			{"CARTILAGE MAPPING", "chondral assessment", []string{"cartilage", "chondral", "osteochondral"}},
		},
	},
	"mri abdomen": {
		contextual: []contextualAddition{
			{"MRCP", "biliary tree evaluation", []string{"biliary", "gallstone", "cholangitis", "jaundice", "pancreatitis"}},
		},
	},
}

// routingKeys holds the table keys in a fixed order so a procedure matching
// several keys yields the same supplement order every call.
var routingKeys = func() []string {
	keys := make([]string, 0, len(supplementalRouting))
	for k := range supplementalRouting {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// computeSupplementalSequences applies the routing table. Nil means nothing
// applies; callers treat nil as no supplement, not an error.
func computeSupplementalSequences(procedureName, scenarioName string) []SupplementalSequence {
	proc := strings.ToLower(procedureName)
	scen := strings.ToLower(scenarioName)

	var out []SupplementalSequence
	for _, key := range routingKeys {
		entry := supplementalRouting[key]
		if !strings.Contains(proc, key) {
			continue
		}

		out = append(out, entry.alwaysAdd...)

		for _, ctx := range entry.contextual {
			for _, trigger := range ctx.triggers {
				if strings.Contains(scen, trigger) {
					out = append(out, SupplementalSequence{Name: ctx.sequence, Reason: ctx.reason})
					break
				}
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
