package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/models"
)

// RecordReport files a complaint against a listing. No authentication is
// required; when the reporter left an email, a confirmation is enqueued.
// Queue failures never fail the caller.
func (s *Service) RecordReport(ctx context.Context, listingID, reason string, reporter *models.ReportReporter) (*models.ListingReport, error) {
	if listingID == "" || reason == "" {
		return nil, ErrMissingReportFields
	}
	if err := s.checkMaintenance(ctx); err != nil {
		return nil, err
	}

	report := models.ListingReport{
		ID:        uuid.NewString(),
		ListingID: listingID,
		Reason:    reason,
		Reporter:  reporter,
		Status:    models.ReportStatusNew,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("record report failed: %w", err)
	}

	if reporter != nil && reporter.Email != "" {
		s.notify.Enqueue(ctx, reporter.Email, models.NotificationTemplateReportReceived,
			"We received your report",
			map[string]interface{}{"report_id": report.ID, "listing_id": listingID})
	}

	return &report, nil
}

// ListReports returns reports for admin review, optionally filtered by status
func (s *Service) ListReports(ctx context.Context, credential string, status models.ReportStatus, limit int) ([]models.ListingReport, error) {
	if _, err := s.gate.Authorize(credential, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := s.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []models.ListingReport
	err := q.Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}

// ReviewReport transitions a report to reviewed or dismissed and audits the change
func (s *Service) ReviewReport(ctx context.Context, credential, reportID string, newStatus models.ReportStatus) (*models.ListingReport, error) {
	identity, err := s.gate.Authorize(credential, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if newStatus != models.ReportStatusReviewed && newStatus != models.ReportStatusDismissed {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	var report models.ListingReport
	err = s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	before := map[string]interface{}{"status": string(report.Status)}
	report.Status = newStatus
	if err := s.db.WithContext(ctx).Save(&report).Error; err != nil {
		return nil, err
	}

	s.audit.Record(ctx, identity.UID, models.AuditActionUpdate, models.AuditEntityReport, report.ID,
		audit.Diff(before, map[string]interface{}{"status": string(report.Status)}))

	return &report, nil
}
