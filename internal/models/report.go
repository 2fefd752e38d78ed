package models

import "time"

// ReportStatus is the admin-review state of a listing report
type ReportStatus string

const (
	ReportStatusNew       ReportStatus = "new"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ReportReporter identifies the (optional) authenticated reporter
type ReportReporter struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ListingReport is a user-submitted complaint about a listing. Anyone may
// file one; only admins read or transition them.
type ListingReport struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID string          `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	Reason    string          `gorm:"type:text;not null" json:"reason"`
	Reporter  *ReportReporter `gorm:"type:json;serializer:json" json:"reporter"`
	Status    ReportStatus    `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CreatedAt time.Time       `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (ListingReport) TableName() string {
	return "listing_reports"
}
