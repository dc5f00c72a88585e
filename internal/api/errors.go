package api

import (
	"alcyxob/hyrox-trainer/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps service errors to HTTP status codes. Internal
// failures are attached to the gin context for the request log and answered
// with a generic message.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": service.ErrValidation.Error(), "details": verr.Problems})
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
