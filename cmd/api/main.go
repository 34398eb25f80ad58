package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/api/handlers"
	rediscache "github.com/radassist/backend/internal/cache/redis"
	"github.com/radassist/backend/internal/metrics"
	"github.com/radassist/backend/internal/middleware/ratelimit"
	"github.com/radassist/backend/internal/middleware/security"
	"github.com/radassist/backend/internal/middleware/validation"
	ontology "github.com/radassist/backend/internal/ontology/neo4j"
	"github.com/radassist/backend/internal/protocol"
	"github.com/radassist/backend/internal/recommend"
	"github.com/radassist/backend/internal/search/expand"
	"github.com/radassist/backend/internal/search/intent"
	"github.com/radassist/backend/internal/search/lexical"
	"github.com/radassist/backend/internal/search/semantic"
	"github.com/radassist/backend/internal/storage/sqlite"
	"github.com/radassist/backend/pkg/config"
	appLogger "github.com/radassist/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting RadAssist API Server")

	metrics.Init()

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// optional ontology-backed query expansion
	var expander *expand.Expander
	if cfg.Ontology.Enabled {
		ontClient, err := ontology.NewClient(
			cfg.Ontology.URI,
			cfg.Ontology.Username,
			cfg.Ontology.Password,
			cfg.Ontology.Database,
		)
		if err != nil {
			appLogger.Warn("Ontology unavailable, expansion uses static tables only", zap.Error(err))
			expander = expand.New(nil)
		} else {
			defer ontClient.Close(context.Background())
			expander = expand.New(ontClient)
		}
	} else {
		expander = expand.New(nil)
	}

	index, err := lexical.LoadIndex(cfg.Assets.TFIDFIndexPath)
	if err != nil {
		appLogger.Fatal("Failed to load TF-IDF index", zap.Error(err))
	}
	metrics.ScenariosIndexed.Set(float64(index.DocumentCount()))

	lexicalSearcher := lexical.NewSearcher(index, expander)

	var cache recommend.Cache
	var embedCache semantic.EmbeddingCache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
			embedCache = redisClient
		}
	}

	semanticSearcher := semantic.NewSearcher(semanticLoadFunc(cfg, embedCache))
	done := semanticSearcher.StartLoad(context.Background())
	go func() {
		metrics.SemanticLoadState.Set(1)
		<-done
		if semanticSearcher.IsReady() {
			metrics.SemanticLoadState.Set(2)
		} else {
			metrics.SemanticLoadState.Set(0)
		}
	}()

	classifier := intent.NewClassifier(cfg.Assets.IntentModelPath, intent.Gates{
		ModelConfidenceGate: cfg.Intent.ModelConfidenceGate,
		RuleConfidenceGate:  cfg.Intent.RuleConfidenceGate,
		DefaultConfidence:   cfg.Intent.DefaultConfidence,
	})
	classifier.StartLoad(context.Background())

	engine := recommend.NewEngine(
		lexicalSearcher,
		semanticSearcher,
		classifier,
		db,
		cache,
		recommend.Thresholds{
			Limit:            cfg.Search.Limit,
			MinScore:         cfg.Search.MinScore,
			SemanticFallback: cfg.Search.SemanticFallback,
			ConfidenceHigh:   cfg.Search.ConfidenceHigh,
			ConfidenceMedium: cfg.Search.ConfidenceMedium,
			MinQueryLength:   cfg.Search.MinQueryLength,
			RelatedScenarios: cfg.Search.RelatedScenarios,
			ClarifyMargin:    cfg.Search.ClarifyMargin,
		},
	)

	router := protocol.NewRouter(db, protocol.Weights{
		Region:        cfg.Router.RegionWeight,
		Name:          cfg.Router.NameWeight,
		Keyword:       cfg.Router.KeywordWeight,
		Indications:   cfg.Router.IndicationsWeight,
		ContrastBoth:  cfg.Router.ContrastBothWith,
		ContrastNone:  cfg.Router.ContrastBothNone,
		ContrastMiss:  cfg.Router.ContrastMismatch,
		AcceptScore:   cfg.Router.AcceptScore,
		FallbackScore: cfg.Router.FallbackScore,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(fiberrecover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Clinician-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 120,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		MaxQueryLength: 2000,
		Logger:         appLogger.GetLogger(),
	}))

	recommendHandler := handlers.NewRecommendHandler(engine, db)
	protocolHandler := handlers.NewProtocolHandler(router)
	feedbackHandler := handlers.NewFeedbackHandler(db)
	wsHandler := handlers.NewWebSocketHandler(lexicalSearcher, engine)

	api := app.Group("/api/v1")

	api.Post("/recommendations", recommendHandler.HandleRecommendations)
	api.Get("/recommendations/history", recommendHandler.GetHistory)
	api.Post("/protocol", protocolHandler.HandleProtocol)
	api.Post("/feedback", feedbackHandler.HandleFeedback)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/search", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ready",
			"semantic": semanticSearcher.State().String(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

// semanticLoadFunc builds the deferred loader for the semantic tier. The
// embedder and store are each either local assets or remote services, chosen
// by config.
func semanticLoadFunc(cfg *config.Config, embedCache semantic.EmbeddingCache) semantic.LoadFunc {
	return func(ctx context.Context) (semantic.Embedder, semantic.Store, error) {
		dim := cfg.Milvus.VectorDim

		var embedder semantic.Embedder
		if cfg.OpenAI.Enabled {
			embedder = semantic.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, dim, embedCache)
		} else {
			local, err := semantic.LoadLocalModel(cfg.Assets.SemanticModelDir, dim)
			if err != nil {
				return nil, nil, err
			}
			embedder = local
		}

		var store semantic.Store
		if cfg.Milvus.Enabled {
			remote, err := semantic.NewMilvusStore(ctx, cfg.Milvus.Endpoint, cfg.Milvus.CollectionName, dim)
			if err != nil {
				return nil, nil, err
			}
			store = remote
		} else {
			local, err := semantic.LoadLocalStore(cfg.Assets.SemanticModelDir, dim)
			if err != nil {
				return nil, nil, err
			}
			store = local
		}

		return embedder, store, nil
	}
}
