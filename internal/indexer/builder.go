// Package indexer builds the on-disk TF-IDF index from the scenario
// database. Run offline via cmd/indexer; the API only ever reads the
// resulting file.
package indexer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/search/lexical"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

type ScenarioSource interface {
	ListScenarios() ([]models.Scenario, error)
}

type Builder struct {
	source ScenarioSource
}

func NewBuilder(source ScenarioSource) *Builder {
	return &Builder{source: source}
}

// Build indexes every scenario. Scenario names are counted twice so name
// terms outweigh body terms; noun phrases and entities extracted from the
// clinical summary are appended once more for the same reason.
func (b *Builder) Build() (*lexical.IndexFile, error) {
	scenarios, err := b.source.ListScenarios()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to index")
	}

	docs := make([]lexical.DocMeta, len(scenarios))
	termCounts := make([]map[string]int, len(scenarios))
	df := make(map[string]int)

	for i, s := range scenarios {
		text := b.documentText(&s)

		counts := make(map[string]int)
		for _, tok := range lexical.Tokenize(text) {
			counts[lexical.Stem(tok)]++
		}

		termCounts[i] = counts
		for term := range counts {
			df[term]++
		}

		docs[i] = lexical.DocMeta{
			ID:    strconv.Itoa(s.ID),
			Title: s.Name,
			URL:   fmt.Sprintf("/scenario?id=%d", s.ID),
		}
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	termIndex := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	n := float64(len(scenarios))
	for i, term := range vocabulary {
		termIndex[term] = i
		idf[i] = math.Log((n+1)/(float64(df[term])+1)) + 1
	}

	vectors := make([]map[string]float64, len(scenarios))
	for d, counts := range termCounts {
		vec := make(map[string]float64, len(counts))
		for term, count := range counts {
			t := termIndex[term]
			vec[strconv.Itoa(t)] = (1 + math.Log(float64(count))) * idf[t]
		}
		vectors[d] = vec
	}

	logger.Info("TF-IDF index built",
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", len(vocabulary)),
	)

	return &lexical.IndexFile{
		Vocabulary: vocabulary,
		IDF:        idf,
		Vectors:    vectors,
		Docs:       docs,
	}, nil
}

// WriteIndexFile persists a built index as JSON.
func WriteIndexFile(path string, file *lexical.IndexFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	return nil
}

// documentText assembles the indexable text for one scenario. The stored
// description and clinical summary carry HTML from the source dataset.
func (b *Builder) documentText(s *models.Scenario) string {
	var parts []string

	parts = append(parts, s.Name, s.Name)
	parts = append(parts, stripHTML(s.Description))

	summary := stripHTML(s.ClinicalSummary)
	parts = append(parts, summary)
	parts = append(parts, s.Keywords...)
	parts = append(parts, extractKeyPhrases(summary)...)

	return strings.Join(parts, " ")
}

func stripHTML(html string) string {
	if !strings.Contains(html, "<") {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

// extractKeyPhrases pulls nouns and named entities out of the summary so
// clinically salient terms get extra weight in the index.
func extractKeyPhrases(text string) []string {
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Debug("Key phrase extraction failed", zap.Error(err))
		return nil
	}

	var phrases []string
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") {
			phrases = append(phrases, tok.Text)
		}
	}
	for _, ent := range doc.Entities() {
		phrases = append(phrases, ent.Text)
	}

	return phrases
}
