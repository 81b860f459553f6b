package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/config"
	"github.com/civicsynth/deliberation-engine/pkg/database"
	"github.com/civicsynth/deliberation-engine/pkg/handlers"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/logging"
	"github.com/civicsynth/deliberation-engine/pkg/middleware"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
	"github.com/civicsynth/deliberation-engine/pkg/services"
	"github.com/civicsynth/deliberation-engine/pkg/services/workqueue"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	client, err := llm.NewChatClient(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Repositories
	themeRepo := repositories.NewThemeRepository(db)
	problemRepo := repositories.NewProblemRepository(db)
	solutionRepo := repositories.NewSolutionRepository(db)
	threadRepo := repositories.NewChatThreadRepository(db)
	importRepo := repositories.NewImportedItemRepository(db)
	questionRepo := repositories.NewSharpQuestionRepository(db)
	linkRepo := repositories.NewQuestionLinkRepository(db)
	policyRepo := repositories.NewPolicyDraftRepository(db)
	digestRepo := repositories.NewDigestDraftRepository(db)

	// Pipeline services and dispatcher
	pool := llm.NewWorkerPool(cfg.Workers.MaxConcurrentLLMCalls, logger)
	extractionSvc := services.NewExtractionService(problemRepo, solutionRepo, threadRepo, importRepo, client, logger)
	synthesisSvc := services.NewSynthesisService(problemRepo, questionRepo, client, logger)
	linkingSvc := services.NewLinkingService(questionRepo, problemRepo, solutionRepo, linkRepo, client, pool, logger)
	policySvc := services.NewPolicyService(questionRepo, linkRepo, problemRepo, solutionRepo, policyRepo, client, logger)
	digestSvc := services.NewDigestService(questionRepo, policyRepo, digestRepo, client, logger)

	queue := workqueue.New(workqueue.Config{
		QueueSize:   cfg.Workers.QueueSize,
		Concurrency: cfg.Workers.Concurrency,
	}, logger)
	dispatcher := services.NewDispatcher(queue, extractionSvc, synthesisSvc, linkingSvc, policySvc, digestSvc, questionRepo, logger)

	themeSvc := services.NewThemeService(themeRepo)
	importSvc := services.NewImportService(themeRepo, importRepo, dispatcher, logger)
	chatSvc := services.NewChatService(themeRepo, threadRepo, questionRepo, linkRepo, problemRepo, solutionRepo, client, dispatcher, logger)
	questionSvc := services.NewQuestionService(questionRepo, linkRepo, problemRepo, solutionRepo, policyRepo, digestRepo)
	opinionSvc := services.NewOpinionService(problemRepo, solutionRepo)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewThemeHandler(themeSvc, logger).RegisterRoutes(mux)
	handlers.NewImportHandler(importSvc, dispatcher, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chatSvc, logger).RegisterRoutes(mux)
	handlers.NewOpinionHandler(opinionSvc, logger).RegisterRoutes(mux)
	handlers.NewQuestionHandler(questionSvc, dispatcher, logger).RegisterRoutes(mux)
	handlers.NewQueueHandler(queue).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting deliberation-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("Queue shutdown failed", zap.Error(err))
	}
}

// runMigrations opens a database/sql connection for golang-migrate and
// applies pending migrations.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return database.RunMigrations(db, logger)
}
