package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veridia/fraudlens/internal/database"
	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/services"
)

// AnalysisHandler exposes the pipeline trigger endpoints.
type AnalysisHandler struct {
	pipeline   *services.AnalysisPipeline
	batch      *services.BatchOrchestrator
	features   *services.FeatureVectorBuilder
	statements *database.StatementRepository
}

type AnalysisResponse struct {
	Assessment *models.RiskAssessment `json:"assessment"`
	Timestamp  time.Time              `json:"timestamp"`
}

type BatchStartedResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type BatchResponse struct {
	Processed int       `json:"processed"`
	Errors    int       `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAnalysisHandler(pipeline *services.AnalysisPipeline, batch *services.BatchOrchestrator,
	features *services.FeatureVectorBuilder, statements *database.StatementRepository) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline:   pipeline,
		batch:      batch,
		features:   features,
		statements: statements,
	}
}

// AnalyzeStatement runs the full recompute for one statement.
func (h *AnalysisHandler) AnalyzeStatement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement id"})
		return
	}

	assessment, err := h.pipeline.Analyze(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalysisResponse{
		Assessment: assessment,
		Timestamp:  time.Now(),
	})
}

// AnalyzeBatch starts a background run over every eligible statement and
// returns immediately; results land in the audit trail and logs.
func (h *AnalysisHandler) AnalyzeBatch(c *gin.Context) {
	h.batch.RunAllAsync()
	c.JSON(http.StatusAccepted, BatchStartedResponse{
		Status:    "started",
		Timestamp: time.Now(),
	})
}

// AnalyzeCompany synchronously analyzes every eligible statement of one
// company.
func (h *AnalysisHandler) AnalyzeCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	result, err := h.batch.RunCompany(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BatchResponse{
		Processed: result.Processed,
		Errors:    result.Errors,
		Timestamp: time.Now(),
	})
}

// RebuildFeatures regenerates feature sets for every eligible statement
// with bounded parallelism, without rerunning the full pipeline. Useful
// after a feature-schema change.
func (h *AnalysisHandler) RebuildFeatures(c *gin.Context) {
	ctx := c.Request.Context()

	var ids []uuid.UUID
	offset := 0
	for {
		statements, hasMore, err := h.statements.FindEligible(ctx, offset, services.DefaultBatchPageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		for _, statement := range statements {
			ids = append(ids, statement.ID)
		}
		if !hasMore {
			break
		}
		offset += services.DefaultBatchPageSize
	}

	failures := h.features.BuildBatch(ctx, ids)
	c.JSON(http.StatusOK, BatchResponse{
		Processed: len(ids) - len(failures),
		Errors:    len(failures),
		Timestamp: time.Now(),
	})
}
