package moderation_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/database"
	"land-listing-portal/internal/models"
	"land-listing-portal/internal/moderation"
	"land-listing-portal/internal/notify"
	"land-listing-portal/internal/settings"
)

// pipeline wires the real services against a MySQL instance reachable via
// DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME.
type pipeline struct {
	db         *gorm.DB
	gate       *auth.Gate
	mod        *moderation.Service
	settings   *settings.Service
	adminCred  string
	sellerCred string
}

func setupPipeline(t *testing.T) *pipeline {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL)")
	}

	gormDB, err := database.NewGormDB(
		envOr("DB_HOST", "127.0.0.1"),
		envOr("DB_PORT", "3306"),
		envOr("DB_USER", "root"),
		envOr("DB_PASSWORD", "testpw"),
		envOr("DB_NAME", "portal_test"),
	)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = gormDB.Close() })

	if err := gormDB.InitSchema(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, _ := gormDB.GetDB()

	gate := auth.NewGate("integration-secret")
	auditLogger := audit.NewLogger(db)
	queue := notify.NewQueue(db)
	settingsService := settings.NewService(db, gate, auditLogger)
	mod := moderation.NewService(db, gate, auditLogger, queue, nil, settingsService)

	adminCred, err := gate.IssueToken("admin-1", auth.RoleAdmin, true, time.Hour)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	sellerCred, err := gate.IssueToken("seller-1", auth.RoleSeller, true, time.Hour)
	if err != nil {
		t.Fatalf("issue seller token: %v", err)
	}

	return &pipeline{
		db:         db,
		gate:       gate,
		mod:        mod,
		settings:   settingsService,
		adminCred:  adminCred,
		sellerCred: sellerCred,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedListing writes a listing directly, bypassing the service, so tests
// control its starting status
func seedListing(t *testing.T, db *gorm.DB, ownerID string, status models.ListingStatus, docNames ...string) models.Listing {
	t.Helper()

	listing := models.Listing{
		ID:            uuid.NewString(),
		Title:         "3 acres, red soil",
		Location:      "Naivasha",
		County:        "Nakuru",
		Price:         2_000_000,
		Description:   "Flat parcel with road frontage",
		OwnerID:       ownerID,
		OwnerVerified: true,
		Status:        status,
		PhotoCount:    3,
	}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	for _, name := range docNames {
		doc := models.Document{ID: uuid.NewString(), ListingID: listing.ID, Name: name, Content: "scanned text"}
		if err := db.Create(&doc).Error; err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}
	return listing
}

func auditCountFor(t *testing.T, db *gorm.DB, entityID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.AuditLog{}).Where("entity_id = ?", entityID).Count(&count).Error; err != nil {
		t.Fatalf("count audit entries: %v", err)
	}
	return count
}

func reloadListing(t *testing.T, db *gorm.DB, id string) models.Listing {
	t.Helper()
	var l models.Listing
	if err := db.First(&l, "id = ?", id).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	return l
}

func TestApproveAssignsBadgeAndAuditsOnce(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	seeded := seedListing(t, p.db, "seller-1", models.ListingStatusPending,
		"Title Deed.pdf", "Survey Plan.pdf", "Rate Clearance.pdf")

	updated, err := p.mod.UpdateStatus(ctx, p.adminCred, seeded.ID, models.ListingStatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.ListingStatusApproved {
		t.Errorf("status = %v", updated.Status)
	}
	if updated.Badge == nil || *updated.Badge != models.BadgeGold {
		t.Errorf("badge = %v, want gold", updated.Badge)
	}
	if updated.AdminReviewedAt == nil {
		t.Error("admin_reviewed_at not stamped")
	}

	if got := auditCountFor(t, p.db, seeded.ID); got != 1 {
		t.Errorf("audit entries = %d, want 1", got)
	}
	var entry models.AuditLog
	if err := p.db.First(&entry, "entity_id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("load audit entry: %v", err)
	}
	changes, err := entry.DecodeChanges()
	if err != nil {
		t.Fatalf("decode changes: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("change-set has %d fields, want 2 (status, badge): %+v", len(changes), changes)
	}
}

func TestApproveTwiceIsInvalid(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	seeded := seedListing(t, p.db, "seller-1", models.ListingStatusApproved, "Title Deed.pdf")

	_, err := p.mod.UpdateStatus(ctx, p.adminCred, seeded.ID, models.ListingStatusApproved)
	if !errors.Is(err, moderation.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestSellerCannotModerate(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	seeded := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Title Deed.pdf")

	_, err := p.mod.UpdateStatus(ctx, p.sellerCred, seeded.ID, models.ListingStatusApproved)
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	if got := reloadListing(t, p.db, seeded.ID); got.Status != models.ListingStatusPending {
		t.Errorf("status changed to %v despite forbidden call", got.Status)
	}
	if got := auditCountFor(t, p.db, seeded.ID); got != 0 {
		t.Errorf("forbidden call produced %d audit entries", got)
	}
}

func TestUpdateStatusMissingListing(t *testing.T) {
	p := setupPipeline(t)

	_, err := p.mod.UpdateStatus(context.Background(), p.adminCred, uuid.NewString(), models.ListingStatusApproved)
	if !errors.Is(err, moderation.ErrListingNotFound) {
		t.Errorf("err = %v, want ErrListingNotFound", err)
	}
}

func TestBulkUpdateRejectsEmptyIDs(t *testing.T) {
	p := setupPipeline(t)

	err := p.mod.BulkUpdateStatus(context.Background(), p.adminCred, nil, models.ListingStatusApproved)
	if !errors.Is(err, moderation.ErrNoListingIDs) {
		t.Errorf("err = %v, want ErrNoListingIDs", err)
	}
}

func TestBulkUpdateEmptyIDsSkipsAuthorization(t *testing.T) {
	p := setupPipeline(t)

	// shape validation must come first, so even a garbage credential
	// gets the shape error rather than an auth error
	err := p.mod.BulkUpdateStatus(context.Background(), "garbage", nil, models.ListingStatusApproved)
	if !errors.Is(err, moderation.ErrNoListingIDs) {
		t.Errorf("err = %v, want ErrNoListingIDs", err)
	}
}

func TestBulkUpdateIsAllOrNothing(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	a := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Title Deed.pdf")
	b := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Title Deed.pdf")
	c := seedListing(t, p.db, "seller-1", models.ListingStatusApproved, "Title Deed.pdf")

	err := p.mod.BulkUpdateStatus(ctx, p.adminCred, []string{a.ID, b.ID, c.ID}, models.ListingStatusApproved)
	if !errors.Is(err, moderation.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	// nothing in the batch may be observed as changed
	for _, id := range []string{a.ID, b.ID} {
		if got := reloadListing(t, p.db, id); got.Status != models.ListingStatusPending {
			t.Errorf("listing %s status = %v, want pending after rollback", id, got.Status)
		}
		if got := auditCountFor(t, p.db, id); got != 0 {
			t.Errorf("rolled-back listing %s has %d audit entries", id, got)
		}
	}
}

func TestBulkUpdateCommitsAllListings(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	a := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Title Deed.pdf", "Survey.pdf")
	b := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Survey.pdf")

	if err := p.mod.BulkUpdateStatus(ctx, p.adminCred, []string{a.ID, b.ID}, models.ListingStatusApproved); err != nil {
		t.Fatalf("BulkUpdateStatus: %v", err)
	}

	for _, id := range []string{a.ID, b.ID} {
		got := reloadListing(t, p.db, id)
		if got.Status != models.ListingStatusApproved {
			t.Errorf("listing %s status = %v, want approved", id, got.Status)
		}
		if got.Badge == nil {
			t.Errorf("listing %s has no badge after approval", id)
		}
		if n := auditCountFor(t, p.db, id); n != 1 {
			t.Errorf("listing %s audit entries = %d, want 1", id, n)
		}
	}
}

func TestResubmitReturnsListingToQueue(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	seeded := seedListing(t, p.db, "seller-1", models.ListingStatusRejected, "Survey.pdf")
	reviewed := time.Now()
	badge := models.BadgeNone
	p.db.Model(&models.Listing{}).Where("id = ?", seeded.ID).
		Updates(map[string]interface{}{"admin_reviewed_at": reviewed, "badge": badge})

	newTitle := "3 acres, red soil, updated survey attached"
	updated, err := p.mod.Resubmit(ctx, p.sellerCred, seeded.ID, moderation.ListingEdits{Title: &newTitle})
	if err != nil {
		t.Fatalf("Resubmit: %v", err)
	}
	if updated.Status != models.ListingStatusPending {
		t.Errorf("status = %v, want pending", updated.Status)
	}
	if updated.Badge != nil {
		t.Error("badge not cleared on resubmit")
	}
	if updated.AdminReviewedAt != nil {
		t.Error("admin_reviewed_at not cleared on resubmit")
	}
	if updated.Title != newTitle {
		t.Errorf("title = %q", updated.Title)
	}
}

func TestResubmitByNonOwnerForbidden(t *testing.T) {
	p := setupPipeline(t)

	seeded := seedListing(t, p.db, "someone-else", models.ListingStatusRejected)
	_, err := p.mod.Resubmit(context.Background(), p.sellerCred, seeded.ID, moderation.ListingEdits{})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestAnonymousReportHasNoReporterAndNoNotification(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	var before int64
	p.db.Model(&models.Notification{}).Count(&before)

	report, err := p.mod.RecordReport(ctx, "L1", "fraud suspected", nil)
	if err != nil {
		t.Fatalf("RecordReport: %v", err)
	}
	if report.Reporter != nil {
		t.Errorf("reporter = %+v, want nil", report.Reporter)
	}
	if report.Status != models.ReportStatusNew {
		t.Errorf("status = %v, want new", report.Status)
	}

	var after int64
	p.db.Model(&models.Notification{}).Count(&after)
	if after != before {
		t.Errorf("anonymous report enqueued %d notifications", after-before)
	}
}

func TestReportWithEmailEnqueuesConfirmation(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	reporter := &models.ReportReporter{UID: "buyer-1", Email: "buyer@example.com"}
	report, err := p.mod.RecordReport(ctx, "L2", "price looks fake", reporter)
	if err != nil {
		t.Fatalf("RecordReport: %v", err)
	}

	var queued int64
	p.db.Model(&models.Notification{}).
		Where("template = ? AND recipient = ?", models.NotificationTemplateReportReceived, reporter.Email).
		Count(&queued)
	if queued == 0 {
		t.Errorf("no confirmation queued for report %s", report.ID)
	}
}

// setToggle flips one platform toggle through the settings service and
// restores the previous value when the test ends
func setToggle(t *testing.T, p *pipeline, apply func(v *bool) settings.Patch, on bool) {
	t.Helper()
	ctx := context.Background()

	off := !on
	if _, err := p.settings.Update(ctx, p.adminCred, apply(&on)); err != nil {
		t.Fatalf("set toggle: %v", err)
	}
	t.Cleanup(func() {
		if _, err := p.settings.Update(ctx, p.adminCred, apply(&off)); err != nil {
			t.Errorf("restore toggle: %v", err)
		}
	})
}

func TestMaintenanceModeBlocksPublicMutations(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	owned := seedListing(t, p.db, "seller-1", models.ListingStatusRejected, "Survey.pdf")
	pending := seedListing(t, p.db, "seller-1", models.ListingStatusPending, "Title Deed.pdf")

	setToggle(t, p, func(v *bool) settings.Patch { return settings.Patch{MaintenanceMode: v} }, true)

	if _, err := p.mod.CreateListing(ctx, p.sellerCred, moderation.NewListing{
		Title: "plot", Location: "Kitengela", Price: 1_000_000,
	}); !errors.Is(err, moderation.ErrMaintenanceMode) {
		t.Errorf("CreateListing err = %v, want ErrMaintenanceMode", err)
	}

	if _, err := p.mod.Resubmit(ctx, p.sellerCred, owned.ID, moderation.ListingEdits{}); !errors.Is(err, moderation.ErrMaintenanceMode) {
		t.Errorf("Resubmit err = %v, want ErrMaintenanceMode", err)
	}

	if _, err := p.mod.AttachDocument(ctx, p.sellerCred, owned.ID, moderation.NewDocument{
		Name: "Survey Plan.pdf", Content: "beacons verified",
	}); !errors.Is(err, moderation.ErrMaintenanceMode) {
		t.Errorf("AttachDocument err = %v, want ErrMaintenanceMode", err)
	}

	if _, err := p.mod.RecordReport(ctx, owned.ID, "spam", nil); !errors.Is(err, moderation.ErrMaintenanceMode) {
		t.Errorf("RecordReport err = %v, want ErrMaintenanceMode", err)
	}

	// admin review keeps working so the queue can drain during maintenance
	if _, err := p.mod.UpdateStatus(ctx, p.adminCred, pending.ID, models.ListingStatusApproved); err != nil {
		t.Errorf("admin review blocked by maintenance mode: %v", err)
	}
}

func TestListingCreationToggle(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	setToggle(t, p, func(v *bool) settings.Patch { return settings.Patch{EnableListingCreation: v} }, false)

	_, err := p.mod.CreateListing(ctx, p.sellerCred, moderation.NewListing{
		Title: "plot", Location: "Kitengela", Price: 1_000_000,
	})
	if !errors.Is(err, moderation.ErrListingCreationDisabled) {
		t.Errorf("err = %v, want ErrListingCreationDisabled", err)
	}
}

func TestOwnerVerificationComesFromIdentity(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	unverifiedCred, err := p.gate.IssueToken("seller-2", auth.RoleSeller, false, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	verified, err := p.mod.CreateListing(ctx, p.sellerCred, moderation.NewListing{
		Title: "plot A", Location: "Kitengela", Price: 1_000_000,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if !verified.OwnerVerified {
		t.Error("attested identity did not mark the listing owner verified")
	}

	unverified, err := p.mod.CreateListing(ctx, unverifiedCred, moderation.NewListing{
		Title: "plot B", Location: "Kitengela", Price: 1_000_000,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if unverified.OwnerVerified {
		t.Error("unattested identity produced a verified listing owner")
	}
}

func TestSettingsUpdateValidatesBeforeWriting(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	persisted, err := p.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	bad := "not-an-email"
	_, err = p.settings.Update(ctx, p.adminCred, settings.Patch{ContactEmail: &bad})
	var fe settings.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if _, ok := fe["contact_email"]; !ok {
		t.Errorf("FieldErrors missing contact_email: %v", fe)
	}

	unchanged, err := p.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if unchanged.ContactEmail != persisted.ContactEmail {
		t.Errorf("contact_email changed to %q despite validation failure", unchanged.ContactEmail)
	}
}

func TestSettingsNoopUpdateIsNotAudited(t *testing.T) {
	p := setupPipeline(t)
	ctx := context.Background()

	email := "ops@lands.example"
	if _, err := p.settings.Update(ctx, p.adminCred, settings.Patch{ContactEmail: &email}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	var before int64
	p.db.Model(&models.AuditLog{}).Where("entity_type = ?", models.AuditEntitySettings).Count(&before)

	// identical patch changes nothing
	if _, err := p.settings.Update(ctx, p.adminCred, settings.Patch{ContactEmail: &email}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	var after int64
	p.db.Model(&models.AuditLog{}).Where("entity_type = ?", models.AuditEntitySettings).Count(&after)
	if after != before {
		t.Errorf("no-op settings update produced %d audit entries", after-before)
	}
}
