// Package settings owns the singleton platform configuration aggregate.
// Every write goes through an explicit load/validate/diff/save cycle and is
// audited; there is no ambient mutable settings global.
package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"land-listing-portal/internal/audit"
	"land-listing-portal/internal/auth"
	"land-listing-portal/internal/config"
	"land-listing-portal/internal/models"
)

// FieldErrors carries per-field validation messages back to the caller
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Patch is a partial settings update. Nil fields are left untouched.
type Patch struct {
	MaxUploadSizeMB         *int    `json:"max_upload_size_mb" validate:"omitempty,gte=1,lte=500"`
	ModerationThresholdDays *int    `json:"moderation_threshold_days" validate:"omitempty,gte=1,lte=90"`
	MaintenanceMode         *bool   `json:"maintenance_mode"`
	EnableUserSignups       *bool   `json:"enable_user_signups"`
	EnableListingCreation   *bool   `json:"enable_listing_creation"`
	ContactEmail            *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone            *string `json:"contact_phone" validate:"omitempty,max=50"`
	FacebookURL             *string `json:"facebook_url" validate:"omitempty,url"`
	TwitterURL              *string `json:"twitter_url" validate:"omitempty,url"`
}

// Service validates and persists platform settings
type Service struct {
	db       *gorm.DB
	gate     *auth.Gate
	audit    *audit.Logger
	validate *validator.Validate
	log      *logrus.Logger
}

// NewService creates a new settings service
func NewService(db *gorm.DB, gate *auth.Gate, auditLogger *audit.Logger) *Service {
	v := validator.New()
	// report validation errors under json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		db:       db,
		gate:     gate,
		audit:    auditLogger,
		validate: v,
		log:      config.GetLogger(),
	}
}

// Get returns the persisted settings, or the documented defaults when no
// row exists yet. Reading never writes the defaults back.
func (s *Service) Get(ctx context.Context) (models.PlatformSettings, error) {
	var current models.PlatformSettings
	err := s.db.WithContext(ctx).First(&current, models.PlatformSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPlatformSettings(), nil
	}
	if err != nil {
		return models.PlatformSettings{}, fmt.Errorf("settings: load failed: %w", err)
	}
	return current, nil
}

// Update validates the patch, merges it over the current settings, persists
// the result and audits the field-level diff. Validation failures leave
// persisted state untouched; a patch that changes nothing writes nothing
// and records no audit entry.
func (s *Service) Update(ctx context.Context, credential string, patch Patch) (models.PlatformSettings, error) {
	identity, err := s.gate.Authorize(credential, auth.RoleAdmin)
	if err != nil {
		return models.PlatformSettings{}, err
	}

	if err := s.ValidatePatch(patch); err != nil {
		return models.PlatformSettings{}, err
	}

	current, err := s.Get(ctx)
	if err != nil {
		return models.PlatformSettings{}, err
	}

	merged := applyPatch(current, patch)
	changes := audit.Diff(fieldMap(current), fieldMap(merged))
	if len(changes) == 0 {
		return current, nil
	}

	merged.ID = models.PlatformSettingsID
	merged.UpdatedBy = identity.UID
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&merged).Error; err != nil {
		return models.PlatformSettings{}, fmt.Errorf("settings: save failed: %w", err)
	}

	s.audit.Record(ctx, identity.UID, models.AuditActionUpdate, models.AuditEntitySettings, "", changes)
	s.log.WithFields(logrus.Fields{"admin_id": identity.UID, "fields": len(changes)}).
		Info("settings updated")

	return merged, nil
}

// ValidatePatch checks the patch against the settings schema and returns
// FieldErrors keyed by json field name on any violation
func (s *Service) ValidatePatch(patch Patch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fieldErrorsFrom(err)
	}
	return nil
}

func applyPatch(current models.PlatformSettings, patch Patch) models.PlatformSettings {
	merged := current
	if patch.MaxUploadSizeMB != nil {
		merged.MaxUploadSizeMB = *patch.MaxUploadSizeMB
	}
	if patch.ModerationThresholdDays != nil {
		merged.ModerationThresholdDays = *patch.ModerationThresholdDays
	}
	if patch.MaintenanceMode != nil {
		merged.MaintenanceMode = *patch.MaintenanceMode
	}
	if patch.EnableUserSignups != nil {
		merged.EnableUserSignups = *patch.EnableUserSignups
	}
	if patch.EnableListingCreation != nil {
		merged.EnableListingCreation = *patch.EnableListingCreation
	}
	if patch.ContactEmail != nil {
		merged.ContactEmail = *patch.ContactEmail
	}
	if patch.ContactPhone != nil {
		merged.ContactPhone = *patch.ContactPhone
	}
	if patch.FacebookURL != nil {
		merged.FacebookURL = *patch.FacebookURL
	}
	if patch.TwitterURL != nil {
		merged.TwitterURL = *patch.TwitterURL
	}
	return merged
}

// fieldMap flattens the patchable fields for diffing
func fieldMap(s models.PlatformSettings) map[string]interface{} {
	return map[string]interface{}{
		"max_upload_size_mb":        s.MaxUploadSizeMB,
		"moderation_threshold_days": s.ModerationThresholdDays,
		"maintenance_mode":          s.MaintenanceMode,
		"enable_user_signups":       s.EnableUserSignups,
		"enable_listing_creation":   s.EnableListingCreation,
		"contact_email":             s.ContactEmail,
		"contact_phone":             s.ContactPhone,
		"facebook_url":              s.FacebookURL,
		"twitter_url":               s.TwitterURL,
	}
}

func fieldErrorsFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := FieldErrors{}
	for _, v := range verrs {
		fe[v.Field()] = messageFor(v)
	}
	return fe
}

func messageFor(v validator.FieldError) string {
	switch v.Tag() {
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be at least " + v.Param()
	case "lte":
		return "must be at most " + v.Param()
	case "max":
		return "must be at most " + v.Param() + " characters"
	default:
		return "is invalid"
	}
}
