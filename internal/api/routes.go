package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veridia/fraudlens/internal/api/handlers"
	"github.com/veridia/fraudlens/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes registers the health check and the v1 API surface.
func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient,
	analysis *handlers.AnalysisHandler, assessments *handlers.AssessmentHandler) {
	router.GET("/health", healthCheck(db, redis))

	v1 := router.Group("/api/v1")
	{
		analysisRoutes := v1.Group("/analysis")
		{
			analysisRoutes.POST("/statements/:id", analysis.AnalyzeStatement)
			analysisRoutes.POST("/companies/:id", analysis.AnalyzeCompany)
			analysisRoutes.POST("/batch", analysis.AnalyzeBatch)
			analysisRoutes.POST("/features/rebuild", analysis.RebuildFeatures)
		}

		statements := v1.Group("/statements")
		{
			statements.GET("/:id/assessment", assessments.GetAssessment)
			statements.GET("/:id/alerts", assessments.GetAlerts)
		}

		companies := v1.Group("/companies")
		{
			companies.GET("/:id/assessment", assessments.GetCompanyAssessment)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.POST("/:id/resolve", assessments.ResolveAlert)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	}
}
