// Package badge computes the trust badge of a listing from its evidence.
// The computation is deterministic and does no I/O; the AI collaborator's
// suggestion is advisory only and never feeds into Compute.
package badge

import (
	"strings"

	"land-listing-portal/internal/models"
)

// DocumentKind classifies an evidence document by its name
type DocumentKind string

const (
	KindTitleDeed     DocumentKind = "title_deed"
	KindSurveyPlan    DocumentKind = "survey_plan"
	KindRateClearance DocumentKind = "rate_clearance"
	KindOther         DocumentKind = "other"
)

// ClassifyDocument recognizes the evidence kind from the document name
func ClassifyDocument(name string) DocumentKind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "title") || strings.Contains(n, "deed"):
		return KindTitleDeed
	case strings.Contains(n, "survey"):
		return KindSurveyPlan
	case strings.Contains(n, "rate") || strings.Contains(n, "clearance"):
		return KindRateClearance
	default:
		return KindOther
	}
}

// CoreFields are the listing fields whose completeness the bronze rule checks
type CoreFields struct {
	Title       string
	Location    string
	Price       float64
	Description string
}

// Complete reports whether every core field is filled in
func (f CoreFields) Complete() bool {
	return f.Title != "" && f.Location != "" && f.Price > 0 && f.Description != ""
}

// Compute evaluates the badge rules top-down, first match wins:
//
//	gold:   title deed + survey + rate clearance, verified seller, >= 3 photos
//	silver: title deed or survey, verified seller, >= 2 photos
//	bronze: any evidence document and complete core fields
//	none:   otherwise
func Compute(evidence []models.Document, photoCount int, sellerVerified bool, fields CoreFields) models.BadgeLevel {
	var hasDeed, hasSurvey, hasClearance bool
	for _, doc := range evidence {
		switch ClassifyDocument(doc.Name) {
		case KindTitleDeed:
			hasDeed = true
		case KindSurveyPlan:
			hasSurvey = true
		case KindRateClearance:
			hasClearance = true
		}
	}

	if hasDeed && hasSurvey && hasClearance && sellerVerified && photoCount >= 3 {
		return models.BadgeGold
	}
	if (hasDeed || hasSurvey) && sellerVerified && photoCount >= 2 {
		return models.BadgeSilver
	}
	if len(evidence) > 0 && fields.Complete() {
		return models.BadgeBronze
	}
	return models.BadgeNone
}

// ComputeForListing computes the badge from a loaded listing
func ComputeForListing(l *models.Listing) models.BadgeLevel {
	return Compute(l.Documents, l.PhotoCount, l.OwnerVerified, CoreFields{
		Title:       l.Title,
		Location:    l.Location,
		Price:       l.Price,
		Description: l.Description,
	})
}

// SuggestionMatches reports whether the AI suggestion agrees with the
// deterministic computation. A mismatch is logged by the caller, never
// blocks the admin's action.
func SuggestionMatches(computed models.BadgeLevel, suggestion *models.BadgeSuggestion) bool {
	if suggestion == nil {
		return true
	}
	return suggestion.Badge == computed
}
