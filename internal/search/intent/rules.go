package intent

import (
	"regexp"
	"strings"
)

// Fixed confidences for the acute-abbreviation short-circuit. Generic pattern
// scoring under-detects single-abbreviation acute presentations ("dvt",
// "stemi"), so these fire ahead of every other rule.
const (
	acuteShortCircuitPhaseConfidence   = 0.85
	acuteShortCircuitUrgencyConfidence = 0.90
)

// acuteAbbreviations name conditions that are acute by definition.
var acuteAbbreviations = map[string]bool{
	"dvt": true, "pe": true, "stemi": true, "nstemi": true,
	"sah": true, "ich": true, "cva": true, "tia": true,
	"mi": true, "sbo": true, "aaa": true,
}

// negationPattern suppresses the acute short-circuit when the query is about
// follow-up or history rather than a fresh presentation.
var negationPattern = regexp.MustCompile(`(?i)\b(follow[- ]?up|history of|known|prior|previous|surveillance|status post|s/p|resolved|chronic|post[- ]?treatment)\b`)

type patternRule struct {
	pattern    *regexp.Regexp
	confidence float64
}

var phaseRules = map[Phase][]patternRule{
	PhaseSurveillance: {
		{regexp.MustCompile(`(?i)\b(follow[- ]?up|surveillance|monitoring|interval|restaging|re-?staging)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(known|history of|prior|previous)\b.*\b(cancer|tumor|mass|aneurysm|lesion)\b`), 0.75},
		{regexp.MustCompile(`(?i)\b(stable|unchanged|recurren(t|ce))\b`), 0.65},
	},
	PhaseTreatment: {
		{regexp.MustCompile(`(?i)\b(post[- ]?op(erative)?|status post|s/p|after (surgery|resection|treatment|radiation|chemo))\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(treatment response|response to (therapy|treatment)|on (chemo|chemotherapy|therapy))\b`), 0.75},
	},
	PhaseInitial: {
		{regexp.MustCompile(`(?i)\b(new|sudden|acute|first( |-)?(episode|time)|initial|screening|suspected|worst)\b`), 0.75},
		{regexp.MustCompile(`(?i)\b(presents? with|presenting|workup|work-up|evaluate|evaluation)\b`), 0.7},
	},
}

var urgencyRules = map[Urgency][]patternRule{
	UrgencyAcute: {
		{regexp.MustCompile(`(?i)\b(acute|sudden|emergen(t|cy)|severe|worst|thunderclap|trauma|stat)\b`), 0.85},
		{regexp.MustCompile(`(?i)\b(new onset|rapidly|abrupt|collapse|unresponsive)\b`), 0.75},
	},
	UrgencyChronic: {
		{regexp.MustCompile(`(?i)\b(chronic|long[- ]?standing|persistent|recurrent|months|years|progressive)\b`), 0.8},
		{regexp.MustCompile(`(?i)\b(intermittent|ongoing|gradual)\b`), 0.65},
	},
	UrgencyRoutine: {
		{regexp.MustCompile(`(?i)\b(routine|screening|annual|follow[- ]?up|surveillance|asymptomatic|elective)\b`), 0.8},
	},
}

// ClassifyByRules runs the ordered regex rule sets. It always succeeds; axes
// with no matching rule come back unknown at zero confidence.
func ClassifyByRules(query string) Prediction {
	if phase, urgency, ok := acuteShortCircuit(query); ok {
		return Prediction{
			Phase:             phase,
			PhaseConfidence:   acuteShortCircuitPhaseConfidence,
			Urgency:           urgency,
			UrgencyConfidence: acuteShortCircuitUrgencyConfidence,
		}
	}

	pred := Prediction{Phase: PhaseUnknown, Urgency: UrgencyUnknown}

	// phases checked in priority order: surveillance and treatment markers
	// are more specific than initial markers
	for _, phase := range []Phase{PhaseSurveillance, PhaseTreatment, PhaseInitial} {
		if conf, ok := matchRules(phaseRules[phase], query); ok && conf > pred.PhaseConfidence {
			pred.Phase = phase
			pred.PhaseConfidence = conf
		}
	}

	for _, urgency := range []Urgency{UrgencyAcute, UrgencyChronic, UrgencyRoutine} {
		if conf, ok := matchRules(urgencyRules[urgency], query); ok && conf > pred.UrgencyConfidence {
			pred.Urgency = urgency
			pred.UrgencyConfidence = conf
		}
	}

	return pred
}

func matchRules(rules []patternRule, query string) (float64, bool) {
	for _, rule := range rules {
		if rule.pattern.MatchString(query) {
			return rule.confidence, true
		}
	}
	return 0, false
}

// acuteShortCircuit fires when the query contains an acute-condition
// abbreviation and no negating follow-up/history language.
func acuteShortCircuit(query string) (Phase, Urgency, bool) {
	if negationPattern.MatchString(query) {
		return PhaseUnknown, UrgencyUnknown, false
	}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,;:!?()")
		if acuteAbbreviations[word] {
			return PhaseInitial, UrgencyAcute, true
		}
	}

	return PhaseUnknown, UrgencyUnknown, false
}

// InferScenarioTraits derives the phase/urgency a scenario represents from
// its name, for boost comparison against the query prediction.
func InferScenarioTraits(scenarioName string) (Phase, Urgency) {
	pred := ClassifyByRules(scenarioName)
	return pred.Phase, pred.Urgency
}
