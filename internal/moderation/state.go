package moderation

import (
	"errors"
	"fmt"
	"time"

	"land-listing-portal/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown target status")
)

// approve moves a pending listing to approved, assigns the computed badge
// and stamps the review time. Any other starting status is rejected.
func approve(l *models.Listing, computed models.BadgeLevel, now time.Time) error {
	if l.Status != models.ListingStatusPending {
		return fmt.Errorf("%w: cannot approve listing in status %q", ErrInvalidTransition, l.Status)
	}
	l.Status = models.ListingStatusApproved
	b := computed
	l.Badge = &b
	l.AdminReviewedAt = &now
	return nil
}

// reject moves a pending listing to rejected and clears any badge
func reject(l *models.Listing, now time.Time) error {
	if l.Status != models.ListingStatusPending {
		return fmt.Errorf("%w: cannot reject listing in status %q", ErrInvalidTransition, l.Status)
	}
	l.Status = models.ListingStatusRejected
	l.Badge = nil
	l.AdminReviewedAt = &now
	return nil
}

// resubmit returns an edited listing to the review queue. Only pending and
// rejected listings may be resubmitted; approved listings are frozen.
func resubmit(l *models.Listing) error {
	if !l.EditableByOwner() {
		return fmt.Errorf("%w: cannot resubmit listing in status %q", ErrInvalidTransition, l.Status)
	}
	l.Status = models.ListingStatusPending
	l.ClearReview()
	return nil
}

// applyAdminStatus dispatches an admin-requested status change. Admins may
// only approve or reject; the pending state is reached through owner
// resubmission alone.
func applyAdminStatus(l *models.Listing, newStatus models.ListingStatus, computed models.BadgeLevel, now time.Time) error {
	switch newStatus {
	case models.ListingStatusApproved:
		return approve(l, computed, now)
	case models.ListingStatusRejected:
		return reject(l, now)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}
}
