package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/callsight/callsight/internal/ai"
	"github.com/callsight/callsight/internal/config"
	"github.com/callsight/callsight/internal/embedcache"
	"github.com/callsight/callsight/internal/filestore"
	"github.com/callsight/callsight/internal/handler"
	"github.com/callsight/callsight/internal/job"
	"github.com/callsight/callsight/internal/middleware"
	"github.com/callsight/callsight/internal/schedule"
	"github.com/callsight/callsight/internal/service"
	"github.com/callsight/callsight/internal/store"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "callsight",
		Short: "sales-call transcript ingestion service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the ingestion server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "init-schema",
		Short: "create store collections and indexes, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			conn := store.NewConnManager(cfg.Database)
			defer conn.Close()
			callStore := store.NewPGCallStore(conn, cfg.Embedding.Dim)
			return callStore.EnsureSchema(context.Background())
		},
	}

	for _, cmd := range []*cobra.Command{runCmd, schemaCmd} {
		cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
		rootCmd.AddCommand(cmd)
	}

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
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
	return cfg, nil
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := store.NewConnManager(cfg.Database)
	defer conn.Close()
	callStore := store.NewPGCallStore(conn, cfg.Embedding.Dim)

	// Schema and index creation happen once here, never per request.
	if err := callStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	provider, err := ai.NewProvider(cfg.Embedding.Provider, cfg.Embedding.Data)
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(provider, cfg.Embedding.Model),
		cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTLMin)*time.Minute,
	)

	archive, err := filestore.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("init payload archive: %w", err)
	}

	ingest, err := service.NewIngestService(callStore, embedder, service.IngestOptions{
		Dim:      cfg.Embedding.Dim,
		PoolSize: cfg.Embedding.PoolSize,
		Archive:  archive,
	})
	if err != nil {
		return fmt.Errorf("init ingest service: %w", err)
	}
	defer ingest.Close()

	scheduler := schedule.NewCronScheduler()
	if cfg.OrphanAudit.Enable {
		if err := scheduler.AddJob(job.NewOrphanAuditJob(callStore, cfg.OrphanAudit.Limit), cfg.OrphanAudit.Spec); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	deps := handler.RouterDeps{
		Calls:     handler.NewCallHandler(ingest),
		Health:    handler.NewHealthHandler(conn),
		JWTSecret: []byte(cfg.JWTSecret),
	}
	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening",
		zap.Int("port", cfg.Port),
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dim", cfg.Embedding.Dim),
	)

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
