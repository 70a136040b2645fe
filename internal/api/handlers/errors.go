package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridia/fraudlens/internal/utils"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// missing prerequisites are unprocessable, unknown entities are not found,
// invalid-state mutations are conflicts. Everything else is internal and
// its detail stays out of the response.
func respondError(c *gin.Context, err error) {
	switch {
	case utils.IsMissingPrerequisite(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
