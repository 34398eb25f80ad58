// Package expand rewrites colloquial clinical queries into searchable form by
// appending clinical vocabulary. The original query text is never removed or
// reordered, so exact-phrase boosts downstream still fire.
package expand

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/radassist/backend/pkg/logger"
)

// phraseExpansions maps layperson phrases to appended clinical terms.
// Matching is longest-phrase-first.
var phraseExpansions = map[string]string{
	"worst headache of life":    "thunderclap subarachnoid hemorrhage sah acute severe",
	"worst headache of my life": "thunderclap subarachnoid hemorrhage sah acute severe",
	"sudden severe headache":    "thunderclap subarachnoid hemorrhage sah acute",
	"thunderclap headache":      "subarachnoid hemorrhage sah aneurysm acute",
	"heart attack":              "myocardial infarction acute coronary syndrome chest pain cardiac",
	"chest pain":                "cardiac angina coronary myocardial",
	"brain attack":              "stroke cva cerebrovascular accident acute",
	"mini stroke":               "tia transient ischemic attack",
	"blood clot in lung":        "pulmonary embolism pe",
	"blood clot in leg":         "deep vein thrombosis dvt",
	"blood clot":                "thrombosis embolism thromboembolism",
	"kidney stone":              "nephrolithiasis renal calculus urolithiasis flank pain",
	"gallbladder attack":        "cholecystitis biliary colic gallstones",
	"broken bone":               "fracture trauma",
	"broken hip":                "hip fracture femoral neck trauma",
	"pinched nerve":             "radiculopathy nerve root compression",
	"slipped disc":              "disc herniation radiculopathy",
	"herniated disc":            "disc herniation radiculopathy",
	"low back pain":             "lumbar spine lumbago",
	"neck pain":                 "cervical spine cervicalgia",
	"belly pain":                "abdominal pain abdomen",
	"stomach pain":              "abdominal pain epigastric abdomen",
	"passing out":               "syncope loss of consciousness",
	"passed out":                "syncope loss of consciousness",
	"can't breathe":             "dyspnea shortness of breath respiratory",
	"shortness of breath":       "dyspnea respiratory",
	"throwing up":               "vomiting emesis nausea",
	"head injury":               "traumatic brain injury head trauma",
	"memory loss":               "dementia cognitive decline alzheimer",
	"facial droop":              "stroke cva facial palsy",
	"lump in breast":            "breast mass palpable lesion",
	"swollen leg":               "dvt deep vein thrombosis edema extremity swelling",
}

// abbreviations maps single short tokens to their clinical expansion.
// Checked only for words not already covered by a phrase match.
var abbreviations = map[string]string{
	"pe":     "pulmonary embolism",
	"dvt":    "deep vein thrombosis",
	"sah":    "subarachnoid hemorrhage",
	"tia":    "transient ischemic attack",
	"cva":    "cerebrovascular accident stroke",
	"mi":     "myocardial infarction",
	"chf":    "congestive heart failure",
	"copd":   "chronic obstructive pulmonary disease",
	"uti":    "urinary tract infection",
	"ms":     "multiple sclerosis",
	"aaa":    "abdominal aortic aneurysm",
	"ich":    "intracranial hemorrhage",
	"avm":    "arteriovenous malformation",
	"acl":    "anterior cruciate ligament",
	"gerd":   "gastroesophageal reflux",
	"ibd":    "inflammatory bowel disease",
	"stemi":  "st elevation myocardial infarction",
	"nstemi": "non st elevation myocardial infarction",
	"sbo":    "small bowel obstruction",
	"tb":     "tuberculosis",
	"ra":     "rheumatoid arthritis",
	"sob":    "shortness of breath dyspnea",
	"loc":    "loss of consciousness",
}

// OntologyClient supplies related clinical terms from an external ontology.
// Nil clients are skipped; failures degrade to static expansion only.
type OntologyClient interface {
	RelatedTerms(ctx context.Context, term string) ([]string, error)
}

type Expander struct {
	ontology OntologyClient
	phrases  []string // phrase keys sorted longest first
}

func New(ontology OntologyClient) *Expander {
	phrases := make([]string, 0, len(phraseExpansions))
	for p := range phraseExpansions {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	return &Expander{ontology: ontology, phrases: phrases}
}

// Expand appends clinical expansions to the query. Calling Expand on its own
// output re-appends matched terms; the expander is deliberately not
// idempotent and callers are expected to expand a raw query exactly once.
func (e *Expander) Expand(query string) string {
	lower := strings.ToLower(query)

	var additions []string
	coveredWords := make(map[string]bool)

	for _, phrase := range e.phrases {
		if strings.Contains(lower, phrase) {
			additions = append(additions, phraseExpansions[phrase])
			for _, w := range strings.Fields(phrase) {
				coveredWords[w] = true
			}
		}
	}

	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,;:!?()")
		if coveredWords[word] {
			continue
		}
		if exp, ok := abbreviations[word]; ok {
			additions = append(additions, exp)
			coveredWords[word] = true
		}
	}

	if len(additions) == 0 {
		return query
	}

	return query + " " + strings.Join(additions, " ")
}

// ExpandWithOntology runs static expansion and then appends ontology-related
// terms for the original query words when an ontology client is configured.
func (e *Expander) ExpandWithOntology(ctx context.Context, query string) string {
	expanded := e.Expand(query)

	if e.ontology == nil {
		return expanded
	}

	var related []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		terms, err := e.ontology.RelatedTerms(ctx, word)
		if err != nil {
			logger.Debug("Ontology lookup failed", zap.String("term", word), zap.Error(err))
			continue
		}
		related = append(related, terms...)
	}

	if len(related) == 0 {
		return expanded
	}

	return expanded + " " + strings.Join(related, " ")
}
