package models

import "time"

// BodyRegion is the coarse anatomical grouping used by scenarios and
// protocols.
type BodyRegion string

const (
	RegionNeuro    BodyRegion = "neuro"
	RegionSpine    BodyRegion = "spine"
	RegionChest    BodyRegion = "chest"
	RegionAbdomen  BodyRegion = "abdomen"
	RegionMSK      BodyRegion = "msk"
	RegionVascular BodyRegion = "vascular"
	RegionBreast   BodyRegion = "breast"
	RegionPeds     BodyRegion = "peds"
	RegionOther    BodyRegion = "other"
)

type Modality string

const (
	ModalityCT     Modality = "CT"
	ModalityMRI    Modality = "MRI"
	ModalityUS     Modality = "US"
	ModalityXR     Modality = "XR"
	ModalityPET    Modality = "PET"
	ModalityNM     Modality = "NM"
	ModalityFluoro Modality = "Fluoro"
	ModalityAngio  Modality = "Angio"
	ModalityOther  Modality = "Other"
)

// ContrastUse is the three-state contrast flag carried by procedures and
// protocols.
type ContrastUse string

const (
	ContrastNone        ContrastUse = "none"
	ContrastWith        ContrastUse = "with"
	ContrastWithWithout ContrastUse = "with-and-without"
)

// Scenario is a named clinical presentation. Reference data, loaded once and
// never mutated at runtime.
type Scenario struct {
	ID              int
	Name            string
	BodyRegion      BodyRegion
	Description     string
	ClinicalSummary string
	Keywords        []string
}

// Variant is a numbered sub-case of a scenario. VariantNumber ordering is
// significant for display only.
type Variant struct {
	ID            int
	ScenarioID    int
	VariantNumber int
	Description   string
}

type Procedure struct {
	ID       int
	Name     string
	Modality Modality
	Contrast ContrastUse
}

// AppropriatenessRating joins a variant and a procedure with a 1-9 rating.
// RatingLevel is the stored display tier; known to be corrupt in places and
// repaired at the read boundary.
type AppropriatenessRating struct {
	VariantID   int
	ProcedureID int
	Rating      float64
	RatingLevel string
}

// RatedProcedure is the denormalized row the recommendation engine consumes:
// a procedure with its best rating for a scenario.
type RatedProcedure struct {
	ProcedureID   int
	Name          string
	Modality      Modality
	Contrast      ContrastUse
	Rating        float64
	RatingLevel   string
	VariantNumber int
}

// ScenarioMatch is a precomputed scenario->protocol relevance pair. This is
// the curated ground truth the protocol router prefers over heuristics.
type ScenarioMatch struct {
	ScenarioID     int
	RelevanceScore float64
}

type Protocol struct {
	ID                int
	Name              string
	DisplayName       string
	BodyRegion        BodyRegion
	Contrast          ContrastUse
	Keywords          []string
	Indications       string
	ContrastRationale string
	Sequences         []Sequence
	ScenarioMatches   []ScenarioMatch
}

// Sequence is one ordered acquisition step within a protocol.
type Sequence struct {
	ID           int
	ProtocolID   int
	Position     int
	Name         string
	PostContrast bool
	ScannerNotes []ScannerNote
}

type ScannerNote struct {
	SequenceID int
	Scanner    string
	Note       string
}

// RecommendationRecord persists one served recommendation for history and
// evaluation.
type RecommendationRecord struct {
	ID           string
	UserID       string
	QueryText    string
	ScenarioID   int
	ScenarioName string
	Confidence   string
	TopScore     float64
	Source       string
	LatencyMS    int
	CreatedAt    time.Time
}

type Feedback struct {
	ID               int
	RecommendationID string
	Helpful          bool
	IssueCategory    string
	Comment          string
	CreatedAt        time.Time
}

type EvaluationResult struct {
	ID               int
	Query            string
	ExpectedScenario int
	ActualScenario   int
	Rank             int
	TopScore         float64
	Confidence       string
	CreatedAt        time.Time
}
