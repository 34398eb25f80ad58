package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

type Client struct {
	db *sql.DB

	// protocols are reference data; cache per region after first load.
	mu            sync.Mutex
	protocolCache map[models.BodyRegion][]models.Protocol
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{
		db:            db,
		protocolCache: make(map[models.BodyRegion][]models.Protocol),
	}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		body_region TEXT NOT NULL,
		description TEXT,
		clinical_summary TEXT,
		keywords TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_scenarios_region ON scenarios(body_region);
	CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);

	CREATE TABLE IF NOT EXISTS variants (
		id INTEGER PRIMARY KEY,
		scenario_id INTEGER NOT NULL,
		variant_number INTEGER NOT NULL,
		description TEXT,
		FOREIGN KEY (scenario_id) REFERENCES scenarios(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_variants_scenario ON variants(scenario_id);

	CREATE TABLE IF NOT EXISTS procedures (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		modality TEXT NOT NULL,
		contrast TEXT NOT NULL DEFAULT 'none'
	);
	CREATE INDEX IF NOT EXISTS idx_procedures_name ON procedures(name);

	CREATE TABLE IF NOT EXISTS appropriateness_ratings (
		variant_id INTEGER NOT NULL,
		procedure_id INTEGER NOT NULL,
		rating REAL NOT NULL,
		rating_level TEXT,
		PRIMARY KEY (variant_id, procedure_id),
		FOREIGN KEY (variant_id) REFERENCES variants(id) ON DELETE CASCADE,
		FOREIGN KEY (procedure_id) REFERENCES procedures(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS mri_protocols (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		display_name TEXT,
		body_region TEXT NOT NULL,
		contrast TEXT NOT NULL DEFAULT 'none',
		keywords TEXT,
		indications TEXT,
		contrast_rationale TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_protocols_region ON mri_protocols(body_region);

	CREATE TABLE IF NOT EXISTS mri_sequences (
		id INTEGER PRIMARY KEY,
		protocol_id INTEGER NOT NULL,
		position INTEGER,
		name TEXT NOT NULL,
		post_contrast INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (protocol_id) REFERENCES mri_protocols(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_sequences_protocol ON mri_sequences(protocol_id);

	CREATE TABLE IF NOT EXISTS scanner_notes (
		sequence_id INTEGER NOT NULL,
		scanner TEXT NOT NULL,
		note TEXT NOT NULL,
		FOREIGN KEY (sequence_id) REFERENCES mri_sequences(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_scanner_notes_sequence ON scanner_notes(sequence_id);

	CREATE TABLE IF NOT EXISTS protocol_scenario_mapping (
		protocol_id INTEGER NOT NULL,
		scenario_id INTEGER NOT NULL,
		relevance_score REAL NOT NULL,
		PRIMARY KEY (protocol_id, scenario_id),
		FOREIGN KEY (protocol_id) REFERENCES mri_protocols(id) ON DELETE CASCADE,
		FOREIGN KEY (scenario_id) REFERENCES scenarios(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS recommendation_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		query_text TEXT NOT NULL,
		scenario_id INTEGER,
		scenario_name TEXT,
		confidence TEXT,
		top_score REAL,
		source TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_user ON recommendation_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_history_created ON recommendation_history(created_at);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recommendation_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		issue_category TEXT,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (recommendation_id) REFERENCES recommendation_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_recommendation ON feedback(recommendation_id);

	CREATE TABLE IF NOT EXISTS evaluation_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		expected_scenario INTEGER,
		actual_scenario INTEGER,
		rank INTEGER,
		top_score REAL,
		confidence TEXT,
		created_at INTEGER NOT NULL
	);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) GetScenario(id int) (*models.Scenario, error) {
	query := `SELECT id, name, body_region, description, clinical_summary, keywords FROM scenarios WHERE id = ?`

	row := c.db.QueryRow(query, id)
	s, err := scanScenario(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario %d: %w", id, err)
	}
	return s, nil
}

// FindScenarioByName is the fallback lookup used when a result URL cannot be
// parsed for a scenario id.
func (c *Client) FindScenarioByName(name string) (*models.Scenario, error) {
	query := `SELECT id, name, body_region, description, clinical_summary, keywords FROM scenarios WHERE name LIKE ? LIMIT 1`

	row := c.db.QueryRow(query, "%"+name+"%")
	s, err := scanScenario(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find scenario by name: %w", err)
	}
	return s, nil
}

func (c *Client) ListScenarios() ([]models.Scenario, error) {
	query := `SELECT id, name, body_region, description, clinical_summary, keywords FROM scenarios ORDER BY id`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, *s)
	}

	return scenarios, rows.Err()
}

// GetRatedProcedures returns every procedure rated for any variant of the
// scenario, one row per variant x procedure pair.
func (c *Client) GetRatedProcedures(scenarioID int) ([]models.RatedProcedure, error) {
	query := `
		SELECT p.id, p.name, p.modality, p.contrast, r.rating, COALESCE(r.rating_level, ''), v.variant_number
		FROM appropriateness_ratings r
		JOIN variants v ON v.id = r.variant_id
		JOIN procedures p ON p.id = r.procedure_id
		WHERE v.scenario_id = ?
		ORDER BY r.rating DESC, v.variant_number ASC
	`

	rows, err := c.db.Query(query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rated procedures: %w", err)
	}
	defer rows.Close()

	var procs []models.RatedProcedure
	for rows.Next() {
		var rp models.RatedProcedure
		var modality, contrast string
		if err := rows.Scan(&rp.ProcedureID, &rp.Name, &modality, &contrast, &rp.Rating, &rp.RatingLevel, &rp.VariantNumber); err != nil {
			return nil, fmt.Errorf("failed to scan rated procedure: %w", err)
		}
		rp.Modality = models.Modality(modality)
		rp.Contrast = models.ContrastUse(contrast)
		procs = append(procs, rp)
	}

	return procs, rows.Err()
}

func (c *Client) GetVariants(scenarioID int) ([]models.Variant, error) {
	query := `SELECT id, scenario_id, variant_number, COALESCE(description, '') FROM variants WHERE scenario_id = ? ORDER BY variant_number`

	rows, err := c.db.Query(query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	defer rows.Close()

	var variants []models.Variant
	for rows.Next() {
		var v models.Variant
		if err := rows.Scan(&v.ID, &v.ScenarioID, &v.VariantNumber, &v.Description); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	return variants, rows.Err()
}

// GetProtocolsByRegion loads all protocols for a region with their sequences,
// scanner notes and precomputed scenario matches. Results are cached; the
// cache is filled synchronously under the mutex.
func (c *Client) GetProtocolsByRegion(region models.BodyRegion) ([]models.Protocol, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.protocolCache[region]; ok {
		return cached, nil
	}

	query := `
		SELECT id, name, COALESCE(display_name, name), body_region, contrast,
			COALESCE(keywords, '[]'), COALESCE(indications, ''), COALESCE(contrast_rationale, '')
		FROM mri_protocols
		WHERE body_region = ?
		ORDER BY name
	`

	rows, err := c.db.Query(query, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to get protocols: %w", err)
	}
	defer rows.Close()

	var protocols []models.Protocol
	for rows.Next() {
		var p models.Protocol
		var bodyRegion, contrast, keywordsJSON string
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &bodyRegion, &contrast, &keywordsJSON, &p.Indications, &p.ContrastRationale); err != nil {
			return nil, fmt.Errorf("failed to scan protocol: %w", err)
		}
		p.BodyRegion = models.BodyRegion(bodyRegion)
		p.Contrast = models.ContrastUse(contrast)
		if err := json.Unmarshal([]byte(keywordsJSON), &p.Keywords); err != nil {
			logger.Warn("Protocol keywords column is not valid JSON",
				zap.Int("protocol_id", p.ID),
				zap.Error(err),
			)
		}
		protocols = append(protocols, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range protocols {
		sequences, err := c.getSequences(protocols[i].ID)
		if err != nil {
			return nil, err
		}
		protocols[i].Sequences = sequences

		matches, err := c.getScenarioMatches(protocols[i].ID)
		if err != nil {
			return nil, err
		}
		protocols[i].ScenarioMatches = matches
	}

	c.protocolCache[region] = protocols

	logger.Debug("Protocols loaded",
		zap.String("region", string(region)),
		zap.Int("count", len(protocols)),
	)

	return protocols, nil
}

func (c *Client) getSequences(protocolID int) ([]models.Sequence, error) {
	// unsequenced rows sort last by design of the source data
	query := `
		SELECT id, protocol_id, COALESCE(position, 0), name, post_contrast
		FROM mri_sequences
		WHERE protocol_id = ?
		ORDER BY position IS NULL, position ASC
	`

	rows, err := c.db.Query(query, protocolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sequences: %w", err)
	}
	defer rows.Close()

	var sequences []models.Sequence
	for rows.Next() {
		var s models.Sequence
		var postContrast int
		if err := rows.Scan(&s.ID, &s.ProtocolID, &s.Position, &s.Name, &postContrast); err != nil {
			return nil, fmt.Errorf("failed to scan sequence: %w", err)
		}
		s.PostContrast = postContrast != 0
		sequences = append(sequences, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sequences {
		notes, err := c.getScannerNotes(sequences[i].ID)
		if err != nil {
			return nil, err
		}
		sequences[i].ScannerNotes = notes
	}

	return sequences, nil
}

func (c *Client) getScannerNotes(sequenceID int) ([]models.ScannerNote, error) {
	query := `SELECT sequence_id, scanner, note FROM scanner_notes WHERE sequence_id = ?`

	rows, err := c.db.Query(query, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scanner notes: %w", err)
	}
	defer rows.Close()

	var notes []models.ScannerNote
	for rows.Next() {
		var n models.ScannerNote
		if err := rows.Scan(&n.SequenceID, &n.Scanner, &n.Note); err != nil {
			return nil, fmt.Errorf("failed to scan scanner note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

func (c *Client) getScenarioMatches(protocolID int) ([]models.ScenarioMatch, error) {
	query := `SELECT scenario_id, relevance_score FROM protocol_scenario_mapping WHERE protocol_id = ? ORDER BY relevance_score DESC`

	rows, err := c.db.Query(query, protocolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario matches: %w", err)
	}
	defer rows.Close()

	var matches []models.ScenarioMatch
	for rows.Next() {
		var m models.ScenarioMatch
		if err := rows.Scan(&m.ScenarioID, &m.RelevanceScore); err != nil {
			return nil, fmt.Errorf("failed to scan scenario match: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (c *Client) InsertRecommendationRecord(record *models.RecommendationRecord) error {
	query := `
		INSERT INTO recommendation_history (id, user_id, query_text, scenario_id, scenario_name,
			confidence, top_score, source, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.QueryText,
		record.ScenarioID,
		record.ScenarioName,
		record.Confidence,
		record.TopScore,
		record.Source,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert recommendation record: %w", err)
	}

	logger.Debug("Recommendation recorded",
		zap.String("id", record.ID),
		zap.String("query", record.QueryText),
	)

	return nil
}

func (c *Client) GetRecommendationHistory(userID string, limit int) ([]models.RecommendationRecord, error) {
	query := `
		SELECT id, query_text, COALESCE(scenario_name, ''), COALESCE(confidence, ''), top_score, created_at
		FROM recommendation_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation history: %w", err)
	}
	defer rows.Close()

	var records []models.RecommendationRecord
	for rows.Next() {
		var r models.RecommendationRecord
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.QueryText, &r.ScenarioName, &r.Confidence, &r.TopScore, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) StoreFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (recommendation_id, helpful, issue_category, comment, created_at) VALUES (?, ?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(
		query,
		feedback.RecommendationID,
		helpful,
		feedback.IssueCategory,
		feedback.Comment,
		time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("recommendation_id", feedback.RecommendationID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}

func (c *Client) InsertEvaluationResult(result *models.EvaluationResult) error {
	query := `
		INSERT INTO evaluation_results (query, expected_scenario, actual_scenario, rank, top_score, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		result.Query,
		result.ExpectedScenario,
		result.ActualScenario,
		result.Rank,
		result.TopScore,
		result.Confidence,
		time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert evaluation result: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanScenario is the single mapping function from a scenario row to the
// typed model.
func scanScenario(row rowScanner) (*models.Scenario, error) {
	var s models.Scenario
	var region string
	var description, summary, keywordsJSON sql.NullString

	if err := row.Scan(&s.ID, &s.Name, &region, &description, &summary, &keywordsJSON); err != nil {
		return nil, err
	}

	s.BodyRegion = models.BodyRegion(region)
	s.Description = description.String
	s.ClinicalSummary = summary.String
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &s.Keywords); err != nil {
			logger.Warn("Scenario keywords column is not valid JSON",
				zap.Int("scenario_id", s.ID),
				zap.Error(err),
			)
		}
	}

	return &s, nil
}
