package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/models"
	"land-listing-portal/internal/moderation"
	"land-listing-portal/internal/settings"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	mod      *moderation.Service
	settings *settings.Service
	audit    *audit.Logger
	gate     *auth.Gate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(mod *moderation.Service, settingsService *settings.Service, auditLogger *audit.Logger, gate *auth.Gate) *AdminHandler {
	return &AdminHandler{
		mod:      mod,
		settings: settingsService,
		audit:    auditLogger,
		gate:     gate,
	}
}

// UpdateListingStatus approves or rejects a single listing
func (h *AdminHandler) UpdateListingStatus(c *gin.Context) {
	var req struct {
		Status models.ListingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	listing, err := h.mod.UpdateStatus(c.Request.Context(), auth.BearerToken(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, listing)
}

// BulkUpdateStatus applies one decision to many listings atomically
func (h *AdminHandler) BulkUpdateStatus(c *gin.Context) {
	var req struct {
		ListingIDs []string             `json:"listing_ids"`
		Status     models.ListingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := h.mod.BulkUpdateStatus(c.Request.Context(), auth.BearerToken(c), req.ListingIDs, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// PendingListings returns the review queue
func (h *AdminHandler) PendingListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	listings, err := h.mod.ListPending(c.Request.Context(), auth.BearerToken(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, gin.H{"listings": listings, "count": len(listings)})
}

// Reports returns submitted listing reports
func (h *AdminHandler) Reports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := models.ReportStatus(c.Query("status"))

	reports, err := h.mod.ListReports(c.Request.Context(), auth.BearerToken(c), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, gin.H{"reports": reports, "count": len(reports)})
}

// ReviewReport marks a report reviewed or dismissed
func (h *AdminHandler) ReviewReport(c *gin.Context) {
	var req struct {
		Status models.ReportStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	report, err := h.mod.ReviewReport(c.Request.Context(), auth.BearerToken(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, report)
}

// AuditLogs returns recent audit entries
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	if _, err := h.gate.Authorize(auth.BearerToken(c), auth.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, gin.H{"entries": entries, "count": len(entries)})
}

// GetSettings returns the platform settings (public read)
func (h *AdminHandler) GetSettings(c *gin.Context) {
	current, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, current)
}

// UpdateSettings validates and applies a settings patch
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	updated, err := h.settings.Update(c.Request.Context(), auth.BearerToken(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, updated)
}
