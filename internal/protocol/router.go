// Package protocol routes a resolved (region, scenario, procedure) to an MRI
// acquisition protocol through a fixed precedence: clinical rule cascade,
// precomputed scenario mappings, heuristic scoring. The order is clinical
// behavior, not a refactoring choice.
package protocol

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

type MatchType string

const (
	MatchCurated   MatchType = "curated"
	MatchSuggested MatchType = "suggested"
)

// Selection is the router output. Protocol nil with empty MatchType means no
// protocol could be selected.
type Selection struct {
	Protocol              *models.Protocol       `json:"protocol"`
	MatchType             MatchType              `json:"match_type"`
	SupplementalSequences []SupplementalSequence `json:"supplemental_sequences"`
}

// Weights are the heuristic scoring factors.
type Weights struct {
	Region        int
	Name          int
	Keyword       int
	Indications   int
	ContrastBoth  int
	ContrastNone  int
	ContrastMiss  int
	AcceptScore   int
	FallbackScore int
}

func DefaultWeights() Weights {
	return Weights{
		Region:        15,
		Name:          10,
		Keyword:       5,
		Indications:   2,
		ContrastBoth:  8,
		ContrastNone:  5,
		ContrastMiss:  -3,
		AcceptScore:   10,
		FallbackScore: 5,
	}
}

// ProtocolSource supplies the protocols for a region. Satisfied by the
// sqlite storage client.
type ProtocolSource interface {
	GetProtocolsByRegion(region models.BodyRegion) ([]models.Protocol, error)
}

type Router struct {
	store   ProtocolSource
	weights Weights
}

func NewRouter(store ProtocolSource, weights Weights) *Router {
	return &Router{store: store, weights: weights}
}

// Request identifies the resolved scenario and procedure being routed.
type Request struct {
	Region        models.BodyRegion
	ScenarioID    int
	ScenarioName  string
	ProcedureName string
	Contrast      models.ContrastUse
}

func (r *Router) SelectProtocol(ctx context.Context, req Request) (*Selection, error) {
	protocols, err := r.store.GetProtocolsByRegion(req.Region)
	if err != nil {
		return nil, err
	}

	supplemental := computeSupplementalSequences(req.ProcedureName, req.ScenarioName)

	// tier 1: clinical rule cascade
	if name, ok := evaluateRules(req.ScenarioName, req.ProcedureName, req.Contrast); ok {
		if p := findByName(protocols, name); p != nil {
			logger.Debug("Protocol selected by clinical rule",
				zap.String("protocol", p.Name),
				zap.String("scenario", req.ScenarioName),
			)
			return &Selection{Protocol: p, MatchType: MatchCurated, SupplementalSequences: supplemental}, nil
		}
		logger.Warn("Clinical rule matched but protocol missing from store",
			zap.String("protocol", name),
			zap.String("region", string(req.Region)),
		)
	}

	// tier 2: precomputed scenario->protocol mappings
	if p := r.selectByMapping(protocols, req); p != nil {
		logger.Debug("Protocol selected by scenario mapping",
			zap.String("protocol", p.Name),
			zap.Int("scenario_id", req.ScenarioID),
		)
		return &Selection{Protocol: p, MatchType: MatchCurated, SupplementalSequences: supplemental}, nil
	}

	// tier 3: heuristic scoring fallback
	if p := r.selectByHeuristic(protocols, req); p != nil {
		logger.Debug("Protocol selected by heuristic",
			zap.String("protocol", p.Name),
			zap.String("scenario", req.ScenarioName),
		)
		return &Selection{Protocol: p, MatchType: MatchSuggested, SupplementalSequences: supplemental}, nil
	}

	return &Selection{SupplementalSequences: supplemental}, nil
}

func findByName(protocols []models.Protocol, name string) *models.Protocol {
	for i := range protocols {
		if strings.EqualFold(protocols[i].Name, name) {
			return &protocols[i]
		}
	}
	return nil
}

// selectByMapping picks among protocols whose precomputed scenario_matches
// contain the scenario. Contrast-requirement agreement is the primary sort
// key, relevance score the tiebreak.
func (r *Router) selectByMapping(protocols []models.Protocol, req Request) *models.Protocol {
	needsContrast := ProcedureNeedsContrast(req.ProcedureName, req.Contrast)

	type candidate struct {
		protocol  *models.Protocol
		contrast  bool // contrast requirement agrees
		relevance float64
	}

	var candidates []candidate
	for i := range protocols {
		for _, m := range protocols[i].ScenarioMatches {
			if m.ScenarioID == req.ScenarioID {
				candidates = append(candidates, candidate{
					protocol:  &protocols[i],
					contrast:  protocolUsesContrast(&protocols[i]) == needsContrast,
					relevance: m.RelevanceScore,
				})
				break
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].contrast != candidates[j].contrast {
			return candidates[i].contrast
		}
		return candidates[i].relevance > candidates[j].relevance
	})

	return candidates[0].protocol
}

// regionVocabulary seeds the heuristic search-term set per body region.
var regionVocabulary = map[models.BodyRegion][]string{
	models.RegionNeuro:    {"brain", "head", "skull", "cranial", "orbit", "iac", "face"},
	models.RegionSpine:    {"spine", "cervical", "thoracic", "lumbar", "sacrum", "cord"},
	models.RegionChest:    {"chest", "thorax", "lung", "mediastinum", "cardiac", "heart"},
	models.RegionAbdomen:  {"abdomen", "liver", "pancreas", "kidney", "pelvis", "adrenal"},
	models.RegionMSK:      {"knee", "shoulder", "hip", "ankle", "wrist", "elbow", "joint", "extremity"},
	models.RegionVascular: {"mra", "mrv", "angiogram", "aorta", "carotid", "runoff"},
	models.RegionBreast:   {"breast", "axilla", "implant"},
	models.RegionPeds:     {"pediatric", "peds", "infant", "neonatal"},
}

// pathologyKeywords extracted from scenario names by substring.
var pathologyKeywords = []string{
	"tumor", "mass", "cancer", "metasta", "lesion",
	"stroke", "infarct", "hemorrhage", "aneurysm",
	"infection", "abscess", "osteomyelitis", "discitis",
	"fracture", "trauma", "tear", "seizure",
	"knee", "shoulder", "hip", "ankle", "wrist", "elbow",
	"brain", "head", "spine", "cervical", "lumbar", "thoracic",
	"liver", "pancreas", "kidney", "pelvis", "breast",
}

var procedureBodyPartPattern = regexp.MustCompile(`mri\s+(\w+)`)

// selectByHeuristic scores every protocol in the region against terms drawn
// from the region vocabulary, the scenario name and the procedure name.
// Contrast mismatch penalizes but never eliminates.
func (r *Router) selectByHeuristic(protocols []models.Protocol, req Request) *models.Protocol {
	terms := r.buildSearchTerms(req)
	if len(terms) == 0 {
		return nil
	}

	needsContrast := ProcedureNeedsContrast(req.ProcedureName, req.Contrast)

	best := -1
	bestScore := 0
	for i := range protocols {
		score := r.scoreProtocol(&protocols[i], terms, req.Region, needsContrast)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 {
		return nil
	}
	if bestScore >= r.weights.AcceptScore {
		return &protocols[best]
	}
	// last-resort region-only fallback
	if bestScore >= r.weights.FallbackScore {
		return &protocols[best]
	}
	return nil
}

func (r *Router) buildSearchTerms(req Request) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		t = strings.ToLower(t)
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	for _, t := range regionVocabulary[req.Region] {
		add(t)
	}

	scen := strings.ToLower(req.ScenarioName)
	for _, kw := range pathologyKeywords {
		if strings.Contains(scen, kw) {
			add(kw)
		}
	}

	if m := procedureBodyPartPattern.FindStringSubmatch(strings.ToLower(req.ProcedureName)); m != nil {
		add(m[1])
	}

	return terms
}

func (r *Router) scoreProtocol(p *models.Protocol, terms []string, region models.BodyRegion, needsContrast bool) int {
	score := 0

	if p.BodyRegion == region {
		score += r.weights.Region
	}

	name := strings.ToLower(p.Name + " " + p.DisplayName)
	indications := strings.ToLower(p.Indications)
	keywords := make([]string, len(p.Keywords))
	for i, k := range p.Keywords {
		keywords[i] = strings.ToLower(k)
	}

	for _, term := range terms {
		if strings.Contains(name, term) {
			score += r.weights.Name
		}
		for _, k := range keywords {
			if strings.Contains(k, term) {
				score += r.weights.Keyword
				break
			}
		}
		if indications != "" && strings.Contains(indications, term) {
			score += r.weights.Indications
		}
	}

	protocolContrast := protocolUsesContrast(p)
	switch {
	case needsContrast && protocolContrast:
		score += r.weights.ContrastBoth
	case !needsContrast && !protocolContrast:
		score += r.weights.ContrastNone
	default:
		score += r.weights.ContrastMiss
	}

	return score
}
