// Package neo4j provides an optional medical-ontology client. When a graph
// of clinical concepts is available, the query expander can pull related
// terms (parents, children, synonyms) for a concept before lexical search.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/radassist/backend/pkg/circuitbreaker"
	"github.com/radassist/backend/pkg/logger"
	"github.com/radassist/backend/pkg/retry"
)

type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	cb := circuitbreaker.New("neo4j", circuitbreaker.Config{
		MaxRequests:      3,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Ontology client initialized", zap.String("uri", uri))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// relatedTermLimit caps how many ontology terms one concept contributes to
// an expanded query.
const relatedTermLimit = 5

// RelatedTerms returns terms connected to the given concept in the ontology
// graph, ordered by relation confidence. Failures are soft: the expander
// treats an error as "no related terms".
func (c *Client) RelatedTerms(ctx context.Context, term string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var terms []string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)

			query := `
				MATCH (a:Concept)-[r:RELATED_TO|SYNONYM_OF|IS_A]-(b:Concept)
				WHERE toLower(a.name) = toLower($term)
				RETURN b.name AS name, coalesce(r.confidence, 0.5) AS confidence
				ORDER BY confidence DESC
				LIMIT $limit
			`

			result, err := session.Run(ctx, query, map[string]interface{}{
				"term":  term,
				"limit": relatedTermLimit,
			})
			if err != nil {
				return fmt.Errorf("failed to query related terms: %w", err)
			}

			terms = terms[:0]
			for result.Next(ctx) {
				record := result.Record()
				if name, ok := record.Get("name"); ok {
					if s, ok := name.(string); ok && s != "" {
						terms = append(terms, s)
					}
				}
			}

			return result.Err()
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Ontology terms resolved",
		zap.String("term", term),
		zap.Int("count", len(terms)),
	)

	return terms, nil
}
