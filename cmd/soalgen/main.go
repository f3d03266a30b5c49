package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/soalgen/soalgen/internal/ai"
	"github.com/soalgen/soalgen/internal/config"
	"github.com/soalgen/soalgen/internal/db"
	"github.com/soalgen/soalgen/internal/embedcache"
	"github.com/soalgen/soalgen/internal/filestore"
	"github.com/soalgen/soalgen/internal/handler"
	"github.com/soalgen/soalgen/internal/job"
	"github.com/soalgen/soalgen/internal/middleware"
	"github.com/soalgen/soalgen/internal/rag"
	"github.com/soalgen/soalgen/internal/repo"
	"github.com/soalgen/soalgen/internal/schedule"
	"github.com/soalgen/soalgen/internal/service"
	"github.com/soalgen/soalgen/internal/splitter"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "soalgen",
		Short: "soalgen question generation server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run soalgen server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
		zap.String("file_store", cfg.Upload.FileStore.Type),
	)

	chunkRepo := repo.NewChunkRepo(database)
	cacheRepo := repo.NewEmbeddingCacheRepo(database)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}

	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(
		embedder,
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLMinutes)*time.Minute,
	)

	reranker := rag.NewReranker(cfg.RAG.VectorWeight, cfg.RAG.KeywordWeight)
	gateway := rag.NewGateway(chunkRepo, embedder, reranker, cfg.RAG.InsertBatchSize)
	llmClient := rag.NewClient(
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		cfg.AI.MaxRetries,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
	)

	uploads, err := filestore.New(cfg.Upload.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	textSplitter := splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	generateService := service.NewGenerateService(gateway, llmClient, cfg.RAG)
	ingestService := service.NewIngestService(gateway, chunkRepo, textSplitter, uploads)

	deps := handler.RouterDeps{
		Generate:  handler.NewGenerateHandler(generateService),
		Database:  handler.NewDatabaseHandler(ingestService, uploads, cfg.Upload.MaxFileSizeMB),
		JWTSecret: []byte(cfg.APISecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.AI.EmbedCacheMaxAgeDays), "30 3 * * *"); err != nil {
		return err
	}
	uploadMaxAge := time.Duration(cfg.Upload.CleanupMaxAgeHours) * time.Hour
	if err := scheduler.AddJob(job.NewUploadCleanupJob(uploads, uploadMaxAge), "0 * * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
