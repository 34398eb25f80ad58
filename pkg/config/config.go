package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Milvus   MilvusConfig
	Ontology OntologyConfig
	OpenAI   OpenAIConfig
	Assets   AssetsConfig
	Search   SearchConfig
	Router   RouterConfig
	Intent   IntentConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

// MilvusConfig selects the remote scenario-embedding store. When Enabled is
// false the semantic index reads the local fp16 matrix instead.
type MilvusConfig struct {
	Enabled        bool
	Endpoint       string
	CollectionName string
	VectorDim      int
}

type OntologyConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

// OpenAIConfig selects the remote query embedder. When Enabled is false the
// local distilled embedding model is used.
type OpenAIConfig struct {
	Enabled        bool
	APIKey         string
	EmbeddingModel string
}

type AssetsConfig struct {
	TFIDFIndexPath   string
	SemanticModelDir string
	IntentModelPath  string
}

// SearchConfig names every score threshold the retrieval pipeline uses.
// These are tunable, preserved from the reference dataset calibration.
type SearchConfig struct {
	Limit            int
	MinScore         float64
	SemanticFallback float64
	ConfidenceHigh   float64
	ConfidenceMedium float64
	MinQueryLength   int
	RelatedScenarios int
	ClarifyMargin    float64
}

// RouterConfig names the heuristic protocol-scoring weights and acceptance
// thresholds.
type RouterConfig struct {
	RegionWeight      int
	NameWeight        int
	KeywordWeight     int
	IndicationsWeight int
	ContrastBothWith  int
	ContrastBothNone  int
	ContrastMismatch  int
	AcceptScore       int
	FallbackScore     int
}

// IntentConfig names the hybrid model/rules gates.
type IntentConfig struct {
	ModelConfidenceGate float64
	RuleConfidenceGate  float64
	DefaultConfidence   float64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/radassist")

	viper.SetEnvPrefix("RADASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/radassist.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 300)

	viper.SetDefault("milvus.enabled", false)
	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "scenario_embeddings")
	viper.SetDefault("milvus.vectorDim", 384)

	viper.SetDefault("ontology.enabled", false)
	viper.SetDefault("ontology.uri", "bolt://localhost:7687")
	viper.SetDefault("ontology.username", "neo4j")
	viper.SetDefault("ontology.database", "neo4j")

	viper.SetDefault("openai.enabled", false)
	viper.SetDefault("openai.embeddingModel", "text-embedding-3-small")

	viper.SetDefault("assets.tfidfIndexPath", "./data/tfidf-index.json")
	viper.SetDefault("assets.semanticModelDir", "./data/semantic")
	viper.SetDefault("assets.intentModelPath", "./data/intent-model.json")

	viper.SetDefault("search.limit", 10)
	viper.SetDefault("search.minScore", 0.05)
	viper.SetDefault("search.semanticFallback", 0.15)
	viper.SetDefault("search.confidenceHigh", 0.4)
	viper.SetDefault("search.confidenceMedium", 0.2)
	viper.SetDefault("search.minQueryLength", 2)
	viper.SetDefault("search.relatedScenarios", 4)
	viper.SetDefault("search.clarifyMargin", 0.02)

	viper.SetDefault("router.regionWeight", 15)
	viper.SetDefault("router.nameWeight", 10)
	viper.SetDefault("router.keywordWeight", 5)
	viper.SetDefault("router.indicationsWeight", 2)
	viper.SetDefault("router.contrastBothWith", 8)
	viper.SetDefault("router.contrastBothNone", 5)
	viper.SetDefault("router.contrastMismatch", -3)
	viper.SetDefault("router.acceptScore", 10)
	viper.SetDefault("router.fallbackScore", 5)

	viper.SetDefault("intent.modelConfidenceGate", 0.7)
	viper.SetDefault("intent.ruleConfidenceGate", 0.6)
	viper.SetDefault("intent.defaultConfidence", 0.6)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
