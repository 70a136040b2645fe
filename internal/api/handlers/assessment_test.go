package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/cache"
	"github.com/veridia/fraudlens/internal/database"
	"github.com/veridia/fraudlens/internal/models"
)

func newAssessmentHandler(t *testing.T) (*AssessmentHandler, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := NewAssessmentHandler(
		database.NewAssessmentRepository(mockPool),
		database.NewAlertRepository(mockPool),
		cache.NewAssessmentCache(client, time.Minute),
	)
	return handler, mockPool
}

func getContext(w *httptest.ResponseRecorder, path string, params gin.Params) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", path, nil)
	c.Params = params
	return c
}

func assessmentRow(statementID uuid.UUID) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "statement_id", "distress_risk", "manipulation_risk", "strength_risk",
		"ratio_risk", "prediction_risk", "overall_score", "risk_level", "summary",
		"assessed_by", "assessed_at",
	}).AddRow(
		uuid.New(), statementID, decimal.NewFromInt(80), decimal.NewFromInt(60), decimal.NewFromInt(45),
		decimal.NewFromFloat(57.5), decimal.NewFromFloat(72.5), decimal.NewFromFloat(64.13),
		models.RiskLevelHigh, "summary", "system", time.Now(),
	)
}

func TestGetAssessmentCachesOnMiss(t *testing.T) {
	handler, mockPool := newAssessmentHandler(t)
	statementID := uuid.New()

	// First call misses the cache and hits the database.
	mockPool.ExpectQuery("FROM risk_assessments WHERE statement_id").
		WithArgs(statementID).
		WillReturnRows(assessmentRow(statementID))

	w := httptest.NewRecorder()
	handler.GetAssessment(getContext(w, "/statements/"+statementID.String()+"/assessment",
		gin.Params{{Key: "id", Value: statementID.String()}}))

	require.Equal(t, http.StatusOK, w.Code)
	var first models.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, models.RiskLevelHigh, first.RiskLevel)

	// Second call is served from the cache; no database expectation is set.
	w = httptest.NewRecorder()
	handler.GetAssessment(getContext(w, "/statements/"+statementID.String()+"/assessment",
		gin.Params{{Key: "id", Value: statementID.String()}}))

	require.Equal(t, http.StatusOK, w.Code)
	var second models.RiskAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetAssessmentInvalidID(t *testing.T) {
	handler, _ := newAssessmentHandler(t)

	w := httptest.NewRecorder()
	handler.GetAssessment(getContext(w, "/statements/not-a-uuid/assessment",
		gin.Params{{Key: "id", Value: "not-a-uuid"}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAssessmentNotFound(t *testing.T) {
	handler, mockPool := newAssessmentHandler(t)
	statementID := uuid.New()

	mockPool.ExpectQuery("FROM risk_assessments WHERE statement_id").
		WithArgs(statementID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	handler.GetAssessment(getContext(w, "/statements/"+statementID.String()+"/assessment",
		gin.Params{{Key: "id", Value: statementID.String()}}))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAlerts(t *testing.T) {
	handler, mockPool := newAssessmentHandler(t)
	statementID := uuid.New()

	mockPool.ExpectQuery("FROM alerts WHERE statement_id").
		WithArgs(statementID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "assessment_id", "statement_id", "alert_type", "severity", "message",
			"is_resolved", "resolved_by", "resolved_at", "resolution_notes", "created_at",
		}).AddRow(
			uuid.New(), uuid.New(), statementID, models.AlertTypeOverallRisk, models.AlertSeverityHigh, "msg",
			false, nil, nil, nil, time.Now(),
		))

	w := httptest.NewRecorder()
	handler.GetAlerts(getContext(w, "/statements/"+statementID.String()+"/alerts",
		gin.Params{{Key: "id", Value: statementID.String()}}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp AlertsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestResolveAlert(t *testing.T) {
	handler, mockPool := newAssessmentHandler(t)
	alertID := uuid.New()

	mockPool.ExpectExec("UPDATE alerts").
		WithArgs(alertID, "analyst@veridia", pgxmock.AnyArg(), "reviewed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	resolvedBy := "analyst@veridia"
	resolvedAt := time.Now()
	notes := "reviewed"
	mockPool.ExpectQuery("FROM alerts WHERE id").
		WithArgs(alertID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "assessment_id", "statement_id", "alert_type", "severity", "message",
			"is_resolved", "resolved_by", "resolved_at", "resolution_notes", "created_at",
		}).AddRow(
			alertID, uuid.New(), uuid.New(), models.AlertTypeOverallRisk, models.AlertSeverityHigh, "msg",
			true, &resolvedBy, &resolvedAt, &notes, time.Now(),
		))

	body, _ := json.Marshal(ResolveAlertRequest{ResolvedBy: "analyst@veridia", Notes: "reviewed"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/alerts/"+alertID.String()+"/resolve", bytes.NewBuffer(body))
	c.Params = gin.Params{{Key: "id", Value: alertID.String()}}

	handler.ResolveAlert(c)

	require.Equal(t, http.StatusOK, w.Code)
	var alert models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alert))
	assert.True(t, alert.IsResolved)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestResolveAlertMissingResolvedBy(t *testing.T) {
	handler, _ := newAssessmentHandler(t)
	alertID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/alerts/"+alertID.String()+"/resolve",
		bytes.NewBufferString(`{"notes":"no actor"}`))
	c.Params = gin.Params{{Key: "id", Value: alertID.String()}}

	handler.ResolveAlert(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveAlertConflict(t *testing.T) {
	handler, mockPool := newAssessmentHandler(t)
	alertID := uuid.New()

	mockPool.ExpectExec("UPDATE alerts").
		WithArgs(alertID, "analyst@veridia", pgxmock.AnyArg(), "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockPool.ExpectQuery("FROM alerts WHERE id").
		WithArgs(alertID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "assessment_id", "statement_id", "alert_type", "severity", "message",
			"is_resolved", "resolved_by", "resolved_at", "resolution_notes", "created_at",
		}).AddRow(
			alertID, uuid.New(), uuid.New(), models.AlertTypeOverallRisk, models.AlertSeverityHigh, "msg",
			true, nil, nil, nil, time.Now(),
		))

	body, _ := json.Marshal(ResolveAlertRequest{ResolvedBy: "analyst@veridia"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/alerts/"+alertID.String()+"/resolve", bytes.NewBuffer(body))
	c.Params = gin.Params{{Key: "id", Value: alertID.String()}}

	handler.ResolveAlert(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
