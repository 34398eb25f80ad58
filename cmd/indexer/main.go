// Command indexer rebuilds the TF-IDF index from the scenario database and
// optionally evaluates retrieval quality against a labeled dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	rediscache "github.com/radassist/backend/internal/cache/redis"
	"github.com/radassist/backend/internal/evaluation"
	"github.com/radassist/backend/internal/indexer"
	"github.com/radassist/backend/internal/search/expand"
	"github.com/radassist/backend/internal/search/lexical"
	"github.com/radassist/backend/internal/storage/sqlite"
	"github.com/radassist/backend/pkg/config"
	appLogger "github.com/radassist/backend/pkg/logger"
)

func main() {
	evalDataset := flag.String("eval", "", "path to a labeled evaluation dataset (optional)")
	flag.Parse()

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

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	builder := indexer.NewBuilder(db)

	file, err := builder.Build()
	if err != nil {
		appLogger.Fatal("Index build failed", zap.Error(err))
	}

	if err := indexer.WriteIndexFile(cfg.Assets.TFIDFIndexPath, file); err != nil {
		appLogger.Fatal("Failed to write index", zap.Error(err))
	}

	appLogger.Info("Index written", zap.String("path", cfg.Assets.TFIDFIndexPath))

	// cached recommendations reflect the old index; drop them
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, cached recommendations not invalidated", zap.Error(err))
		} else {
			if err := redisClient.InvalidateRecommendations(context.Background()); err != nil {
				appLogger.Warn("Failed to invalidate recommendation cache", zap.Error(err))
			}
			redisClient.Close()
		}
	}

	if *evalDataset == "" {
		return
	}

	index, err := lexical.NewIndex(file)
	if err != nil {
		appLogger.Fatal("Built index failed validation", zap.Error(err))
	}

	dataset, err := evaluation.LoadDataset(*evalDataset)
	if err != nil {
		appLogger.Fatal("Failed to load evaluation dataset", zap.Error(err))
	}

	searcher := lexical.NewSearcher(index, expand.New(nil))
	evaluator := evaluation.NewEvaluator(searcher, db)

	report, err := evaluator.Run(context.Background(), dataset)
	if err != nil {
		appLogger.Fatal("Evaluation failed", zap.Error(err))
	}

	fmt.Printf("evaluated %d queries: top-1 accuracy %.3f, MRR %.3f, %d missed\n",
		report.Total, report.Top1Accuracy, report.MRR, report.MissedQueries)
}
