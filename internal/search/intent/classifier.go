package intent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/radassist/backend/pkg/logger"
)

// Gates configure the hybrid model/rules policy.
type Gates struct {
	// ModelConfidenceGate: model results below this rerun the rules.
	ModelConfidenceGate float64
	// RuleConfidenceGate: rule results above this override the model.
	RuleConfidenceGate float64
	// DefaultConfidence assigned when both paths come up empty. Most
	// ambiguous queries in this domain are initial diagnostic workups.
	DefaultConfidence float64
}

func DefaultGates() Gates {
	return Gates{
		ModelConfidenceGate: 0.7,
		RuleConfidenceGate:  0.6,
		DefaultConfidence:   0.6,
	}
}

// Classifier combines the quantized model with the rule fallback. The model
// loads lazily; the rules path needs no assets and is always available.
type Classifier struct {
	gates     Gates
	modelPath string

	mu    sync.Mutex
	done  chan struct{}
	model *Model
}

func NewClassifier(modelPath string, gates Gates) *Classifier {
	return &Classifier{gates: gates, modelPath: modelPath}
}

// StartLoad begins the asynchronous model load, single-flight. A failed load
// leaves the classifier on the rules path permanently.
func (c *Classifier) StartLoad(_ context.Context) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return c.done
	}

	c.done = make(chan struct{})

	go func() {
		model, err := LoadModel(c.modelPath)

		c.mu.Lock()
		if err != nil {
			logger.Warn("Intent model unavailable, using rules only", zap.Error(err))
		} else {
			c.model = model
			logger.Info("Intent model loaded")
		}
		c.mu.Unlock()

		close(c.done)
	}()

	return c.done
}

// Classify applies the hybrid policy independently per axis: low-confidence
// or missing model output falls back to rules; confident rule output wins;
// otherwise the domain default (initial / routine-leaning unknown) applies.
func (c *Classifier) Classify(query string) Prediction {
	c.mu.Lock()
	model := c.model
	c.mu.Unlock()

	var modelPred Prediction
	modelOK := false
	if model != nil {
		modelPred, modelOK = model.Predict(query)
	}

	rulesPred := ClassifyByRules(query)

	result := Prediction{Phase: PhaseUnknown, Urgency: UrgencyUnknown}

	if modelOK && modelPred.PhaseConfidence >= c.gates.ModelConfidenceGate {
		result.Phase = modelPred.Phase
		result.PhaseConfidence = modelPred.PhaseConfidence
	} else if rulesPred.Phase != PhaseUnknown && rulesPred.PhaseConfidence > c.gates.RuleConfidenceGate {
		result.Phase = rulesPred.Phase
		result.PhaseConfidence = rulesPred.PhaseConfidence
	} else {
		result.Phase = PhaseInitial
		result.PhaseConfidence = c.gates.DefaultConfidence
	}

	if modelOK && modelPred.UrgencyConfidence >= c.gates.ModelConfidenceGate {
		result.Urgency = modelPred.Urgency
		result.UrgencyConfidence = modelPred.UrgencyConfidence
	} else if rulesPred.Urgency != UrgencyUnknown && rulesPred.UrgencyConfidence > c.gates.RuleConfidenceGate {
		result.Urgency = rulesPred.Urgency
		result.UrgencyConfidence = rulesPred.UrgencyConfidence
	} else {
		result.Urgency = UrgencyRoutine
		result.UrgencyConfidence = c.gates.DefaultConfidence
	}

	return result
}
