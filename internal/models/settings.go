package models

import "time"

// platformSettingsID is the fixed primary key of the singleton settings row
const PlatformSettingsID = 1

// TrustStats is an optional aggregate of badge counts shown on the public site
type TrustStats struct {
	GoldCount     int `json:"gold_count"`
	SilverCount   int `json:"silver_count"`
	BronzeCount   int `json:"bronze_count"`
	TotalApproved int `json:"total_approved"`
}

// PlatformSettings is the singleton platform configuration document.
// All writes go through the settings service, which diffs and audits them.
type PlatformSettings struct {
	ID uint `gorm:"primaryKey" json:"-"`

	MaxUploadSizeMB         int  `gorm:"type:int;not null" json:"max_upload_size_mb"`
	ModerationThresholdDays int  `gorm:"type:int;not null" json:"moderation_threshold_days"`
	MaintenanceMode         bool `gorm:"type:boolean;not null;default:false" json:"maintenance_mode"`
	EnableUserSignups       bool `gorm:"type:boolean;not null;default:true" json:"enable_user_signups"`
	EnableListingCreation   bool `gorm:"type:boolean;not null;default:true" json:"enable_listing_creation"`

	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email"`
	ContactPhone string `gorm:"type:varchar(50)" json:"contact_phone"`
	FacebookURL  string `gorm:"type:varchar(500)" json:"facebook_url"`
	TwitterURL   string `gorm:"type:varchar(500)" json:"twitter_url"`

	TrustStats *TrustStats `gorm:"type:json;serializer:json" json:"trust_stats,omitempty"`

	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy string    `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
}

// TableName specifies the table name
func (PlatformSettings) TableName() string {
	return "platform_settings"
}

// DefaultPlatformSettings returns the settings served before an admin has
// ever saved the singleton row. Reading defaults never writes them back.
func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		ID:                      PlatformSettingsID,
		MaxUploadSizeMB:         10,
		ModerationThresholdDays: 3,
		MaintenanceMode:         false,
		EnableUserSignups:       true,
		EnableListingCreation:   true,
	}
}
