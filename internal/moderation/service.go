// Package moderation orchestrates the listing review pipeline: status
// transitions, badge assignment, audit trail, report intake and the
// side-effect notifications of every decision.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/badge"
	"land-listing-portal/internal/config"
	"land-listing-portal/internal/models"
	"land-listing-portal/internal/notify"
	"land-listing-portal/internal/search"
	"land-listing-portal/internal/settings"
)

var (
	ErrListingNotFound         = errors.New("listing not found")
	ErrReportNotFound          = errors.New("report not found")
	ErrNoListingIDs            = errors.New("listing_ids must not be empty")
	ErrListingCreationDisabled = errors.New("listing creation is disabled")
	ErrMaintenanceMode         = errors.New("platform is in maintenance mode")
	ErrMissingReportFields     = errors.New("listing_id and reason are required")
)

// Service is the moderation façade. All mutating entry points authorize
// through the gate before touching any state.
type Service struct {
	db       *gorm.DB
	gate     *auth.Gate
	audit    *audit.Logger
	notify   *notify.Queue
	search   *search.SearchClient
	settings *settings.Service
	log      *logrus.Logger
}

// NewService creates a new moderation service. searchClient may be nil when
// no search backend is configured; index sync is then skipped.
func NewService(db *gorm.DB, gate *auth.Gate, auditLogger *audit.Logger, queue *notify.Queue, searchClient *search.SearchClient, settingsService *settings.Service) *Service {
	return &Service{
		db:       db,
		gate:     gate,
		audit:    auditLogger,
		notify:   queue,
		search:   searchClient,
		settings: settingsService,
		log:      config.GetLogger(),
	}
}

// UpdateStatus applies one admin review decision to one listing. The
// transition check and the write share a transaction; audit, search sync
// and the owner notification run best-effort after commit.
func (s *Service) UpdateStatus(ctx context.Context, credential, listingID string, newStatus models.ListingStatus) (*models.Listing, error) {
	identity, err := s.gate.Authorize(credential, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	var changes models.ChangeSet

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadListing(tx, listingID)
		if err != nil {
			return err
		}
		listing = *loaded

		changes, err = s.applyReview(&listing, newStatus)
		if err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, identity.UID, models.AuditActionUpdate, models.AuditEntityListing, listing.ID, changes)
	s.syncSearch(&listing)
	s.notify.Enqueue(ctx, listing.OwnerID, models.NotificationTemplateListingReviewed,
		"Your listing was reviewed",
		map[string]interface{}{"listing_id": listing.ID, "status": listing.Status})

	return &listing, nil
}

// BulkUpdateStatus applies one decision to many listings atomically. Every
// listing's transition is validated against its current persisted status
// inside the batch transaction; any invalid listing rolls back the whole
// batch. There is no partial success.
func (s *Service) BulkUpdateStatus(ctx context.Context, credential string, listingIDs []string, newStatus models.ListingStatus) error {
	// shape check comes before authorization so an empty request wastes no work
	if len(listingIDs) == 0 {
		return ErrNoListingIDs
	}

	identity, err := s.gate.Authorize(credential, auth.RoleAdmin)
	if err != nil {
		return err
	}

	updated := make([]models.Listing, 0, len(listingIDs))
	changeSets := make([]models.ChangeSet, 0, len(listingIDs))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range listingIDs {
			loaded, err := loadListing(tx, id)
			if err != nil {
				return fmt.Errorf("listing %s: %w", id, err)
			}

			changes, err := s.applyReview(loaded, newStatus)
			if err != nil {
				return fmt.Errorf("listing %s: %w", id, err)
			}
			if err := tx.Omit(clause.Associations).Save(loaded).Error; err != nil {
				return err
			}

			updated = append(updated, *loaded)
			changeSets = append(changeSets, changes)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// one audit entry per listing, all sharing the same logical action
	for i := range updated {
		s.audit.Record(ctx, identity.UID, models.AuditActionUpdate, models.AuditEntityListing, updated[i].ID, changeSets[i])
		s.syncSearch(&updated[i])
		s.notify.Enqueue(ctx, updated[i].OwnerID, models.NotificationTemplateListingReviewed,
			"Your listing was reviewed",
			map[string]interface{}{"listing_id": updated[i].ID, "status": updated[i].Status})
	}

	s.log.WithFields(logrus.Fields{
		"admin_id": identity.UID,
		"count":    len(updated),
		"status":   newStatus,
	}).Info("bulk status update committed")

	return nil
}

// applyReview runs the state machine for an admin decision and returns the
// audited change-set. The badge always comes from the deterministic engine;
// the AI suggestion never overrides it, a disagreement is only logged.
func (s *Service) applyReview(listing *models.Listing, newStatus models.ListingStatus) (models.ChangeSet, error) {
	before := reviewFields(listing)

	computed := badge.ComputeForListing(listing)
	if err := applyAdminStatus(listing, newStatus, computed, time.Now()); err != nil {
		return nil, err
	}

	if listing.Status == models.ListingStatusApproved {
		if !badge.SuggestionMatches(computed, listing.BadgeSuggestion) {
			s.log.WithFields(logrus.Fields{
				"listing_id": listing.ID,
				"computed":   computed,
				"suggested":  listing.BadgeSuggestion.Badge,
			}).Warn("badge suggestion disagrees with computed badge")
		}
		if listing.ImageAnalysis != nil && listing.ImageAnalysis.IsSuspicious {
			s.log.WithFields(logrus.Fields{
				"listing_id": listing.ID,
				"reason":     listing.ImageAnalysis.Reason,
			}).Warn("approving listing flagged by image analysis")
		}
	}

	return audit.Diff(before, reviewFields(listing)), nil
}

// CreateListing registers a new listing for the calling seller. Feature
// toggles are enforced before anything is written.
func (s *Service) CreateListing(ctx context.Context, credential string, input NewListing) (*models.Listing, error) {
	identity, err := s.gate.Authorize(credential, auth.RoleSeller, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.checkCreationEnabled(ctx); err != nil {
		return nil, err
	}

	listing := models.Listing{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Location:    input.Location,
		County:      input.County,
		Price:       input.Price,
		AreaAcres:   input.AreaAcres,
		LandType:    input.LandType,
		Description: input.Description,
		OwnerID:     identity.UID,
		// verification is the login service's attestation carried in the
		// token, never a field the owner submits
		OwnerVerified:   identity.Verified,
		Status:          models.ListingStatusPending,
		BadgeSuggestion: input.BadgeSuggestion,
		ImageAnalysis:   input.ImageAnalysis,
		PhotoCount:      input.PhotoCount,
	}
	if err := s.db.WithContext(ctx).Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("create listing failed: %w", err)
	}

	return &listing, nil
}

// NewListing is the owner-supplied listing payload. The AI collaborator
// fields arrive pre-computed and are stored as advisory metadata only.
type NewListing struct {
	Title           string                  `json:"title" binding:"required"`
	Location        string                  `json:"location" binding:"required"`
	County          string                  `json:"county"`
	Price           float64                 `json:"price" binding:"required,gt=0"`
	AreaAcres       float64                 `json:"area_acres"`
	LandType        string                  `json:"land_type"`
	Description     string                  `json:"description"`
	PhotoCount      int                     `json:"photo_count"`
	BadgeSuggestion *models.BadgeSuggestion `json:"badge_suggestion,omitempty"`
	ImageAnalysis   *models.ImageAnalysis   `json:"image_analysis,omitempty"`
}

// ListingEdits are the owner-editable content fields. Nil fields are kept.
type ListingEdits struct {
	Title       *string  `json:"title"`
	Location    *string  `json:"location"`
	County      *string  `json:"county"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	AreaAcres   *float64 `json:"area_acres"`
	LandType    *string  `json:"land_type"`
	Description *string  `json:"description"`
	PhotoCount  *int     `json:"photo_count" binding:"omitempty,gte=0"`
}

// Resubmit lets the owner edit a pending or rejected listing and send it
// back to the review queue. The resubmit transition clears the badge and
// review stamp; approved listings cannot be edited this way.
func (s *Service) Resubmit(ctx context.Context, credential, listingID string, edits ListingEdits) (*models.Listing, error) {
	identity, err := s.gate.Authorize(credential)
	if err != nil {
		return nil, err
	}
	if err := s.checkMaintenance(ctx); err != nil {
		return nil, err
	}

	var listing models.Listing
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadListing(tx, listingID)
		if err != nil {
			return err
		}
		if loaded.OwnerID != identity.UID {
			return auth.ErrForbidden
		}

		applyEdits(loaded, edits)
		if err := resubmit(loaded); err != nil {
			return err
		}

		listing = *loaded
		return tx.Omit(clause.Associations).Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}

	// a resubmitted listing leaves the public index until re-approved
	if s.search != nil {
		if err := s.search.RemoveListing(listing.ID); err != nil {
			s.log.WithField("listing_id", listing.ID).WithError(err).
				Error("search: failed to remove resubmitted listing")
		}
	}

	return &listing, nil
}

// GetListing returns one listing, applying visibility rules: approved
// listings are public, everything else is visible to its owner and admins.
func (s *Service) GetListing(ctx context.Context, credential, listingID string) (*models.Listing, error) {
	listing, err := loadListing(s.db.WithContext(ctx), listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsApproved() {
		return listing, nil
	}

	identity, err := s.gate.Authorize(credential)
	if err == nil && (identity.IsAdmin() || identity.UID == listing.OwnerID) {
		return listing, nil
	}
	// unapproved listings are indistinguishable from absent ones
	return nil, ErrListingNotFound
}

// ListApproved returns approved listings for public browsing
func (s *Service) ListApproved(ctx context.Context, county string, limit int) ([]models.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("status = ?", models.ListingStatusApproved)
	if county != "" {
		q = q.Where("county = ?", county)
	}
	var listings []models.Listing
	err := q.Order("created_at DESC").Limit(limit).Find(&listings).Error
	return listings, err
}

// ListPending returns the admin review queue, oldest first
func (s *Service) ListPending(ctx context.Context, credential string, limit int) ([]models.Listing, error) {
	if _, err := s.gate.Authorize(credential, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Preload("Documents").
		Where("status = ?", models.ListingStatusPending).
		Order("created_at ASC").Limit(limit).
		Find(&listings).Error
	return listings, err
}

// RemindStalePending enqueues an admin reminder when listings sit in the
// review queue longer than the configured threshold. Returns the number of
// stale listings found.
func (s *Service) RemindStalePending(ctx context.Context) (int, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -current.ModerationThresholdDays)
	var stale []models.Listing
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.ListingStatusPending, cutoff).
		Order("created_at ASC").
		Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, len(stale))
	for i := range stale {
		ids[i] = stale[i].ID
	}
	s.notify.Enqueue(ctx, "admins", models.NotificationTemplatePendingReminder,
		fmt.Sprintf("%d listings awaiting review for over %d days", len(stale), current.ModerationThresholdDays),
		map[string]interface{}{"listing_ids": ids})

	return len(stale), nil
}

// checkMaintenance blocks every public mutating operation while the
// platform is in maintenance mode. Admin review is deliberately exempt.
func (s *Service) checkMaintenance(ctx context.Context) error {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if current.MaintenanceMode {
		return ErrMaintenanceMode
	}
	return nil
}

func (s *Service) checkCreationEnabled(ctx context.Context) error {
	if err := s.checkMaintenance(ctx); err != nil {
		return err
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !current.EnableListingCreation {
		return ErrListingCreationDisabled
	}
	return nil
}

// syncSearch keeps the public index aligned with the review decision.
// Failures are logged; the moderation decision already stands.
func (s *Service) syncSearch(listing *models.Listing) {
	if s.search == nil {
		return
	}
	var err error
	if listing.IsApproved() {
		err = s.search.IndexListing(listing)
	} else {
		err = s.search.RemoveListing(listing.ID)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"listing_id": listing.ID,
			"status":     listing.Status,
		}).WithError(err).Error("search: index sync failed")
	}
}

func loadListing(tx *gorm.DB, id string) (*models.Listing, error) {
	var listing models.Listing
	err := tx.Preload("Documents").First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func applyEdits(l *models.Listing, edits ListingEdits) {
	if edits.Title != nil {
		l.Title = *edits.Title
	}
	if edits.Location != nil {
		l.Location = *edits.Location
	}
	if edits.County != nil {
		l.County = *edits.County
	}
	if edits.Price != nil {
		l.Price = *edits.Price
	}
	if edits.AreaAcres != nil {
		l.AreaAcres = *edits.AreaAcres
	}
	if edits.LandType != nil {
		l.LandType = *edits.LandType
	}
	if edits.Description != nil {
		l.Description = *edits.Description
	}
	if edits.PhotoCount != nil {
		l.PhotoCount = *edits.PhotoCount
	}
}

// reviewFields flattens the audited review fields of a listing
func reviewFields(l *models.Listing) map[string]interface{} {
	fields := map[string]interface{}{
		"status": string(l.Status),
	}
	if l.Badge != nil {
		fields["badge"] = string(*l.Badge)
	} else {
		fields["badge"] = nil
	}
	return fields
}
