// Package synonyms holds the static medical term tables consumed by the
// lexical search pipeline. Distinct from the query expander's phrase table:
// these operate on single clinical terms after tokenization.
package synonyms

// Table maps a clinical term to its synonym set.
var Table = map[string][]string{
	"stroke":        {"cva", "cerebrovascular", "infarct", "brain attack"},
	"cva":           {"stroke", "cerebrovascular", "infarct"},
	"tia":           {"transient", "ischemic", "ministroke"},
	"headache":      {"cephalgia", "migraine", "cephalalgia"},
	"thunderclap":   {"subarachnoid", "hemorrhage", "aneurysm"},
	"seizure":       {"epilepsy", "convulsion", "ictal"},
	"tumor":         {"mass", "neoplasm", "malignancy", "lesion"},
	"mass":          {"tumor", "neoplasm", "lesion"},
	"cancer":        {"malignancy", "neoplasm", "carcinoma", "metastasis"},
	"metastasis":    {"mets", "metastatic", "secondary"},
	"fracture":      {"break", "broken", "fx"},
	"infection":     {"abscess", "infectious", "sepsis"},
	"osteomyelitis": {"bone", "infection"},
	"discitis":      {"spondylodiscitis", "spine", "infection"},
	"embolism":      {"embolus", "thromboembolism", "clot"},
	"pe":            {"pulmonary", "embolism"},
	"dvt":           {"thrombosis", "venous", "clot"},
	"thrombosis":    {"thrombus", "clot", "dvt"},
	"aneurysm":      {"dilation", "dilatation"},
	"dissection":    {"tear", "intramural"},
	"appendicitis":  {"appendix", "rlq"},
	"cholecystitis": {"gallbladder", "biliary"},
	"pancreatitis":  {"pancreas", "pancreatic"},
	"kidney":        {"renal", "nephro"},
	"renal":         {"kidney", "nephro"},
	"stone":         {"calculus", "lithiasis", "nephrolithiasis"},
	"liver":         {"hepatic", "hepato"},
	"heart":         {"cardiac", "cardio", "myocardial"},
	"chest":         {"thorax", "thoracic"},
	"belly":         {"abdomen", "abdominal"},
	"abdomen":       {"abdominal", "belly"},
	"back":          {"spine", "spinal", "lumbar"},
	"neck":          {"cervical"},
	"shoulder":      {"rotator", "glenohumeral"},
	"knee":          {"meniscus", "acl", "patellar"},
	"hip":           {"femoral", "acetabular"},
	"ms":            {"multiple", "sclerosis", "demyelinating"},
	"demyelinating": {"sclerosis", "ms"},
	"pituitary":     {"sella", "adenoma"},
	"trauma":        {"injury", "accident"},
	"bleed":         {"hemorrhage", "bleeding", "hematoma"},
	"hemorrhage":    {"bleed", "bleeding", "hematoma"},
	"pain":          {"ache", "discomfort"},
	"numbness":      {"paresthesia", "tingling"},
	"weakness":      {"paresis", "deficit"},
	"dizziness":     {"vertigo", "lightheaded"},
	"shortness":     {"dyspnea", "breathless"},
}

// ProtectedAbbreviations are short clinical tokens exempted from the
// minimum-length stopword filter. Without these, filtering 2-3 letter words
// would drop the highest-signal terms in the corpus.
var ProtectedAbbreviations = map[string]bool{
	"ct": true, "mr": true, "mri": true, "us": true, "xr": true,
	"pet": true, "nm": true, "cta": true, "mra": true, "mrv": true,
	"pe": true, "dvt": true, "tia": true, "cva": true, "sah": true,
	"ms": true, "uti": true, "ivc": true, "aaa": true, "acl": true,
	"mcl": true, "tb": true, "ra": true, "gi": true, "gu": true,
	"ich": true, "avm": true, "htn": true, "chf": true, "mi": true,
}

// Stopwords excluded during tokenization.
var Stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "without": true, "patient": true, "suspected": true,
	"history": true, "rule": true, "out": true, "year": true, "old": true,
}

// Expand returns the synonyms for a term, or nil when none are registered.
func Expand(term string) []string {
	return Table[term]
}
