package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ideanote/internal/models"
)

// respondError maps store error kinds onto HTTP statuses. Duplicate
// usernames are user-facing validation failures; credential-format and
// storage faults are server-side.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(models.ErrInvalidCredentials.Error()))
	case errors.Is(err, models.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, models.ErrorResponse(models.ErrDuplicateUsername.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(models.ErrNotFound.Error()))
	case errors.Is(err, models.ErrStorageUnavailable):
		_ = c.Error(err)
		c.Abort()
	case errors.Is(err, models.ErrCredentialFormat), errors.Is(err, models.ErrHashingFailure):
		_ = c.Error(err)
		c.Abort()
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
	}
}
