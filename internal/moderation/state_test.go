package moderation

import (
	"errors"
	"testing"
	"time"

	"land-listing-portal/internal/models"
)

func pendingListing() *models.Listing {
	return &models.Listing{
		ID:     "L1",
		Status: models.ListingStatusPending,
	}
}

func TestApproveFromPending(t *testing.T) {
	l := pendingListing()
	now := time.Now()

	if err := approve(l, models.BadgeSilver, now); err != nil {
		t.Fatalf("approve() error: %v", err)
	}
	if l.Status != models.ListingStatusApproved {
		t.Errorf("status = %v, want approved", l.Status)
	}
	if l.Badge == nil || *l.Badge != models.BadgeSilver {
		t.Errorf("badge = %v, want silver", l.Badge)
	}
	if l.AdminReviewedAt == nil || !l.AdminReviewedAt.Equal(now) {
		t.Errorf("admin_reviewed_at = %v, want %v", l.AdminReviewedAt, now)
	}
}

func TestApproveRequiresPending(t *testing.T) {
	for _, status := range []models.ListingStatus{models.ListingStatusApproved, models.ListingStatusRejected} {
		l := pendingListing()
		l.Status = status

		err := approve(l, models.BadgeGold, time.Now())
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("approve from %v: err = %v, want ErrInvalidTransition", status, err)
		}
		if l.Status != status {
			t.Errorf("approve from %v mutated status to %v", status, l.Status)
		}
	}
}

func TestRejectClearsBadge(t *testing.T) {
	l := pendingListing()
	b := models.BadgeBronze
	l.Badge = &b

	if err := reject(l, time.Now()); err != nil {
		t.Fatalf("reject() error: %v", err)
	}
	if l.Status != models.ListingStatusRejected {
		t.Errorf("status = %v, want rejected", l.Status)
	}
	if l.Badge != nil {
		t.Errorf("badge = %v, want nil after reject", *l.Badge)
	}
}

func TestRejectRequiresPending(t *testing.T) {
	l := pendingListing()
	l.Status = models.ListingStatusApproved

	if err := reject(l, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestResubmitFromRejected(t *testing.T) {
	l := pendingListing()
	l.Status = models.ListingStatusRejected
	b := models.BadgeGold
	l.Badge = &b
	reviewed := time.Now()
	l.AdminReviewedAt = &reviewed

	if err := resubmit(l); err != nil {
		t.Fatalf("resubmit() error: %v", err)
	}
	if l.Status != models.ListingStatusPending {
		t.Errorf("status = %v, want pending", l.Status)
	}
	if l.Badge != nil {
		t.Error("badge should be cleared on resubmit")
	}
	if l.AdminReviewedAt != nil {
		t.Error("admin_reviewed_at should be cleared on resubmit")
	}
}

func TestResubmitWhilePendingKeepsQueuePosition(t *testing.T) {
	l := pendingListing()
	if err := resubmit(l); err != nil {
		t.Fatalf("resubmit() error: %v", err)
	}
	if l.Status != models.ListingStatusPending {
		t.Errorf("status = %v, want pending", l.Status)
	}
}

func TestResubmitBlockedWhenApproved(t *testing.T) {
	l := pendingListing()
	l.Status = models.ListingStatusApproved

	if err := resubmit(l); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestApplyAdminStatusRejectsUnknownTargets(t *testing.T) {
	for _, target := range []models.ListingStatus{models.ListingStatusPending, "archived", ""} {
		l := pendingListing()
		err := applyAdminStatus(l, target, models.BadgeNone, time.Now())
		if !errors.Is(err, ErrUnknownStatus) {
			t.Errorf("applyAdminStatus(%q): err = %v, want ErrUnknownStatus", target, err)
		}
	}
}

// badge must be nil whenever the listing is not approved
func TestBadgeOnlyWhenApproved(t *testing.T) {
	l := pendingListing()
	now := time.Now()

	if err := approve(l, models.BadgeGold, now); err != nil {
		t.Fatal(err)
	}
	if err := resubmit(l); err != nil {
		t.Fatal(err)
	}
	if l.Badge != nil {
		t.Fatal("badge survived the resubmit transition")
	}

	if err := reject(l, now); err != nil {
		t.Fatal(err)
	}
	if l.Badge != nil {
		t.Fatal("badge survived the reject transition")
	}
}
