package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veridia/fraudlens/internal/cache"
	"github.com/veridia/fraudlens/internal/database"
	"github.com/veridia/fraudlens/internal/models"
)

// AssessmentHandler serves persisted assessments and alerts.
type AssessmentHandler struct {
	assessments *database.AssessmentRepository
	alerts      *database.AlertRepository
	cache       *cache.AssessmentCache
}

type AlertsResponse struct {
	Alerts    []*models.Alert `json:"alerts"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by" binding:"required"`
	Notes      string `json:"notes"`
}

func NewAssessmentHandler(assessments *database.AssessmentRepository, alerts *database.AlertRepository, assessmentCache *cache.AssessmentCache) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		alerts:      alerts,
		cache:       assessmentCache,
	}
}

// GetAssessment returns the statement's current assessment, cache first.
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement id"})
		return
	}

	if assessment, ok := h.cache.GetAssessment(c.Request.Context(), id); ok {
		c.JSON(http.StatusOK, assessment)
		return
	}

	assessment, err := h.assessments.GetByStatement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.SetAssessment(c.Request.Context(), assessment)
	c.JSON(http.StatusOK, assessment)
}

// GetCompanyAssessment returns a company's most recent assessment.
func (h *AssessmentHandler) GetCompanyAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	assessment, err := h.assessments.GetLatestByCompany(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// GetAlerts returns every alert raised against one statement.
func (h *AssessmentHandler) GetAlerts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement id"})
		return
	}

	alerts, err := h.alerts.FindByStatement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertsResponse{
		Alerts:    alerts,
		Count:     len(alerts),
		Timestamp: time.Now(),
	})
}

// ResolveAlert marks one alert resolved. Resolving an already-resolved
// alert is a conflict.
func (h *AssessmentHandler) ResolveAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resolved_by is required"})
		return
	}

	if err := h.alerts.Resolve(c.Request.Context(), id, req.ResolvedBy, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	alert, err := h.alerts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
