package models

import "time"

// Document is an evidence file attached to a listing (title deed, survey
// plan, rate clearance, ...). Content is the extracted text; Summary is
// written once by the AI collaborator and cached.
type Document struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Content   string    `gorm:"type:text" json:"content"`
	Summary   string    `gorm:"type:text" json:"summary,omitempty"`
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}
