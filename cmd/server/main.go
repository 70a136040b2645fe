package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/api"
	"github.com/veridia/fraudlens/internal/api/handlers"
	"github.com/veridia/fraudlens/internal/cache"
	"github.com/veridia/fraudlens/internal/config"
	"github.com/veridia/fraudlens/internal/database"
	"github.com/veridia/fraudlens/internal/logging"
	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/services"
)

const assessmentCacheTTL = 15 * time.Minute

func main() {
	// A missing .env is fine; configuration falls back to defaults.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Environment)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	statementRepo := database.NewStatementRepository(db.Pool)
	financialDataRepo := database.NewFinancialDataRepository(db.Pool)
	ratioRepo := database.NewRatioRepository(db.Pool)
	distressRepo := database.NewDistressScoreRepository(db.Pool)
	manipulationRepo := database.NewManipulationScoreRepository(db.Pool)
	strengthRepo := database.NewStrengthScoreRepository(db.Pool)
	featureSetRepo := database.NewFeatureSetRepository(db.Pool)
	modelRepo := database.NewModelRepository(db.Pool)
	predictionRepo := database.NewPredictionRepository(db.Pool)
	assessmentRepo := database.NewAssessmentRepository(db.Pool)
	alertRepo := database.NewAlertRepository(db.Pool)
	auditRepo := database.NewAuditRepository(db.Pool)

	assessmentCache := cache.NewAssessmentCache(redis.Client, assessmentCacheTTL)
	auditService := services.NewAuditService(auditRepo)

	pipeline := services.NewAnalysisPipeline(services.PipelineDeps{
		DB:                 db.Pool,
		Statements:         statementRepo,
		FinancialData:      financialDataRepo,
		Ratios:             ratioRepo,
		DistressScores:     distressRepo,
		ManipulationScores: manipulationRepo,
		StrengthScores:     strengthRepo,
		FeatureSets:        featureSetRepo,
		Models:             modelRepo,
		Predictions:        predictionRepo,
		Assessments:        assessmentRepo,
		Alerts:             alertRepo,
		Cache:              assessmentCache,
		Audit:              auditService,
		ModelType:          models.ModelTypeWeightedSigmoid,
		AssessorID:         cfg.Analysis.AssessorID,
	})
	batch := services.NewBatchOrchestrator(statementRepo, pipeline, auditService, cfg.Analysis.BatchPageSize)
	featureBuilder := services.NewFeatureVectorBuilder(financialDataRepo, ratioRepo, distressRepo,
		manipulationRepo, strengthRepo, featureSetRepo, assessmentCache, cfg.Analysis.FeatureWorkers)

	scheduler := services.NewScheduler(batch, cfg.Analysis.ScheduleCron, cfg.Analysis.RunOnStartup)
	if err := scheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start analysis scheduler: %v", err)
	}
	defer scheduler.Stop()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, redis,
		handlers.NewAnalysisHandler(pipeline, batch, featureBuilder, statementRepo),
		handlers.NewAssessmentHandler(assessmentRepo, alertRepo, assessmentCache))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}
	logrus.Info("Server exited")
}
