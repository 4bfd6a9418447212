package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

// respondError maps service errors onto HTTP statuses: missing orders to
// 404, illegal transitions to 409, validation failures to 400 with every
// collected violation.
func respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case model.IsInvalidTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "validation failed",
			"violations": verr.Violations,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// parseID reads the :id path parameter as a UUID, answering 400 itself when
// it is malformed.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

// reasonRequest carries an optional operator-supplied reason
type reasonRequest struct {
	Reason string `json:"reason"`
}

func bindReason(c *gin.Context) string {
	var req reasonRequest
	// the body is optional; ignore bind errors on an empty body
	_ = c.ShouldBindJSON(&req)
	return req.Reason
}
