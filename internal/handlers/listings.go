package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/models"
	"land-listing-portal/internal/moderation"
	"land-listing-portal/internal/search"
)

// ListingHandler handles public and owner-facing listing requests
type ListingHandler struct {
	mod    *moderation.Service
	search *search.SearchClient
	gate   *auth.Gate
}

// NewListingHandler creates a new listing handler. searchClient may be nil.
func NewListingHandler(mod *moderation.Service, searchClient *search.SearchClient, gate *auth.Gate) *ListingHandler {
	return &ListingHandler{mod: mod, search: searchClient, gate: gate}
}

// ListListings returns approved listings; with q= it queries the search index
func (h *ListingHandler) ListListings(c *gin.Context) {
	query := c.Query("q")
	county := c.Query("county")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if query != "" && h.search != nil {
		result, err := h.search.Search(search.SearchRequest{
			Query:  query,
			County: county,
			Limit:  int64(limit),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondSuccess(c, gin.H{"listings": result.Hits, "count": len(result.Hits), "total": result.TotalHits})
		return
	}

	listings, err := h.mod.ListApproved(c.Request.Context(), county, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, gin.H{"listings": listings, "count": len(listings)})
}

// GetListing returns one listing, subject to visibility rules
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.mod.GetListing(c.Request.Context(), auth.BearerToken(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, listing)
}

// CreateListing registers a new listing for the calling seller
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var input moderation.NewListing
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	listing, err := h.mod.CreateListing(c.Request.Context(), auth.BearerToken(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": listing})
}

// ResubmitListing lets the owner edit and resubmit a pending/rejected listing
func (h *ListingHandler) ResubmitListing(c *gin.Context) {
	var edits moderation.ListingEdits
	if err := c.ShouldBindJSON(&edits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	listing, err := h.mod.Resubmit(c.Request.Context(), auth.BearerToken(c), c.Param("id"), edits)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, listing)
}

// AttachDocument adds an evidence document to an owned listing
func (h *ListingHandler) AttachDocument(c *gin.Context) {
	var input moderation.NewDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	doc, err := h.mod.AttachDocument(c.Request.Context(), auth.BearerToken(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": doc})
}

// CreateReport files a listing report. Works for anonymous callers; an
// authenticated caller is attached as the reporter.
func (h *ListingHandler) CreateReport(c *gin.Context) {
	var req struct {
		ListingID     string `json:"listing_id" binding:"required"`
		Reason        string `json:"reason" binding:"required"`
		ReporterEmail string `json:"reporter_email" binding:"omitempty,email"`
		ReporterName  string `json:"reporter_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	var reporter *models.ReportReporter
	if identity, err := h.gate.Authorize(auth.BearerToken(c)); err == nil {
		reporter = &models.ReportReporter{
			UID:         identity.UID,
			Email:       req.ReporterEmail,
			DisplayName: req.ReporterName,
		}
	}

	if _, err := h.mod.RecordReport(c.Request.Context(), req.ListingID, req.Reason, reporter); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
