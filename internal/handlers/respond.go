package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/config"
	"land-listing-portal/internal/moderation"
	"land-listing-portal/internal/settings"
)

func respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// respondError maps service errors onto the HTTP error taxonomy
func respondError(c *gin.Context, err error) {
	var fieldErrs settings.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "validation failed",
			"fields": fieldErrs,
		})
		return
	}

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "please log in"})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "not allowed"})
	case errors.Is(err, moderation.ErrListingNotFound),
		errors.Is(err, moderation.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": err.Error()})
	case errors.Is(err, moderation.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": err.Error()})
	case errors.Is(err, moderation.ErrUnknownStatus),
		errors.Is(err, moderation.ErrNoListingIDs),
		errors.Is(err, moderation.ErrMissingReportFields):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
	case errors.Is(err, moderation.ErrMaintenanceMode),
		errors.Is(err, moderation.ErrListingCreationDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
	default:
		config.GetLogger().WithError(err).Error("request failed on a dependency")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "dependency unavailable"})
	}
}
