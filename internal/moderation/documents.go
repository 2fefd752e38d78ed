package moderation

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/models"
)

// NewDocument is the owner-supplied evidence payload. Content arrives from
// the upload pipeline with extraction already attempted; HTML slips through
// often enough that intake strips it again.
type NewDocument struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
	Summary string `json:"summary"`
}

// AttachDocument adds an evidence document to a listing the caller owns.
// Evidence can only change while the listing is still editable; an approved
// listing's evidence is frozen together with its badge.
func (s *Service) AttachDocument(ctx context.Context, credential, listingID string, input NewDocument) (*models.Document, error) {
	identity, err := s.gate.Authorize(credential)
	if err != nil {
		return nil, err
	}
	if err := s.checkMaintenance(ctx); err != nil {
		return nil, err
	}

	var doc models.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := loadListing(tx, listingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != identity.UID {
			return auth.ErrForbidden
		}
		if !listing.EditableByOwner() {
			return ErrInvalidTransition
		}

		doc = models.Document{
			ID:        uuid.NewString(),
			ListingID: listing.ID,
			Name:      input.Name,
			Content:   ExtractText(input.Content),
			Summary:   input.Summary,
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExtractText returns the plain text of a document body. HTML markup is
// parsed and reduced to its text; anything else passes through trimmed.
func ExtractText(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.Contains(trimmed, "<") || !strings.Contains(trimmed, ">") {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}
	// scripts and styles carry no evidence text
	doc.Find("script, style").Remove()

	text := doc.Text()
	lines := strings.Fields(text)
	return strings.Join(lines, " ")
}
