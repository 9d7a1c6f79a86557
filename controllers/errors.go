package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdfbrain/pdfbrain-backend/services"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var upstreamErr *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": validationErr.Messages})
	case errors.Is(err, services.ErrNoTextContent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ErrNoTextContent.Error()})
	case errors.Is(err, services.ErrNoQuestionsGenerated):
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrNoQuestionsGenerated.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream failure", "details": upstreamErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
