package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// ModelFile is the quantized intent model asset. Weights are int8 with a
// per-head dequantization scale.
type ModelFile struct {
	Vocab          map[string]int `json:"vocab"`
	MaxLen         int            `json:"max_len"`
	PhaseLabels    []string       `json:"phase_labels"`
	UrgencyLabels  []string       `json:"urgency_labels"`
	PhaseScale     float64        `json:"phase_scale"`
	UrgencyScale   float64        `json:"urgency_scale"`
	PhaseWeights   [][]int8       `json:"phase_weights"`
	PhaseBias      []float64      `json:"phase_bias"`
	UrgencyWeights [][]int8       `json:"urgency_weights"`
	UrgencyBias    []float64      `json:"urgency_bias"`
}

// Model is the primary classifier: fixed-length token-id input with an
// attention mask, mean-pooled bag-of-tokens features, one linear head per
// label axis, softmax per head.
type Model struct {
	vocab          map[string]int
	maxLen         int
	phaseLabels    []Phase
	urgencyLabels  []Urgency
	phaseWeights   [][]float64
	phaseBias      []float64
	urgencyWeights [][]float64
	urgencyBias    []float64
}

func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent model: %w", err)
	}

	var file ModelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse intent model: %w", err)
	}

	return NewModel(&file)
}

func NewModel(file *ModelFile) (*Model, error) {
	if len(file.PhaseWeights) != len(file.Vocab) || len(file.UrgencyWeights) != len(file.Vocab) {
		return nil, fmt.Errorf("intent model corrupt: weight rows do not match vocab size %d", len(file.Vocab))
	}
	if file.MaxLen <= 0 {
		return nil, fmt.Errorf("intent model corrupt: max_len %d", file.MaxLen)
	}

	m := &Model{
		vocab:          file.Vocab,
		maxLen:         file.MaxLen,
		phaseBias:      file.PhaseBias,
		urgencyBias:    file.UrgencyBias,
		phaseWeights:   dequantize(file.PhaseWeights, file.PhaseScale),
		urgencyWeights: dequantize(file.UrgencyWeights, file.UrgencyScale),
	}

	for _, l := range file.PhaseLabels {
		m.phaseLabels = append(m.phaseLabels, Phase(l))
	}
	for _, l := range file.UrgencyLabels {
		m.urgencyLabels = append(m.urgencyLabels, Urgency(l))
	}

	if len(m.phaseLabels) == 0 || len(m.urgencyLabels) == 0 {
		return nil, fmt.Errorf("intent model corrupt: empty label sets")
	}

	return m, nil
}

func dequantize(weights [][]int8, scale float64) [][]float64 {
	out := make([][]float64, len(weights))
	for i, row := range weights {
		deq := make([]float64, len(row))
		for j, w := range row {
			deq[j] = float64(w) * scale
		}
		out[i] = deq
	}
	return out
}

// Predict classifies the query. Returns false when the query contains no
// in-vocabulary tokens.
func (m *Model) Predict(query string) (Prediction, bool) {
	ids, mask := m.encode(query)

	active := 0
	for _, v := range mask {
		active += v
	}
	if active == 0 {
		return Prediction{}, false
	}

	phaseLogits := make([]float64, len(m.phaseLabels))
	copy(phaseLogits, m.phaseBias)
	urgencyLogits := make([]float64, len(m.urgencyLabels))
	copy(urgencyLogits, m.urgencyBias)

	inv := 1.0 / float64(active)
	for pos, id := range ids {
		if mask[pos] == 0 {
			continue
		}
		for j, w := range m.phaseWeights[id] {
			phaseLogits[j] += w * inv
		}
		for j, w := range m.urgencyWeights[id] {
			urgencyLogits[j] += w * inv
		}
	}

	phaseIdx, phaseConf := softmaxArgmax(phaseLogits)
	urgencyIdx, urgencyConf := softmaxArgmax(urgencyLogits)

	return Prediction{
		Phase:             m.phaseLabels[phaseIdx],
		PhaseConfidence:   phaseConf,
		Urgency:           m.urgencyLabels[urgencyIdx],
		UrgencyConfidence: urgencyConf,
	}, true
}

// encode produces the fixed-length token-id sequence and attention mask.
// Out-of-vocabulary tokens are masked out rather than mapped to a pad id.
func (m *Model) encode(query string) ([]int, []int) {
	ids := make([]int, m.maxLen)
	mask := make([]int, m.maxLen)

	pos := 0
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if pos >= m.maxLen {
			break
		}
		word = strings.Trim(word, ".,;:!?()")
		if id, ok := m.vocab[word]; ok {
			ids[pos] = id
			mask[pos] = 1
			pos++
		}
	}

	return ids, mask
}

func softmaxArgmax(logits []float64) (int, float64) {
	maxIdx := 0
	maxLogit := logits[0]
	for i, l := range logits {
		if l > maxLogit {
			maxLogit = l
			maxIdx = i
		}
	}

	var sum float64
	for _, l := range logits {
		sum += math.Exp(l - maxLogit)
	}

	return maxIdx, 1.0 / sum
}
