package models

import "time"

// ListingStatus is the moderation state of a listing
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// BadgeLevel is the trust badge assigned to an approved listing
type BadgeLevel string

const (
	BadgeGold   BadgeLevel = "gold"
	BadgeSilver BadgeLevel = "silver"
	BadgeBronze BadgeLevel = "bronze"
	BadgeNone   BadgeLevel = "none"
)

// BadgeSuggestion is the AI collaborator's advisory badge recommendation.
// It never overrides the authoritative Badge field.
type BadgeSuggestion struct {
	Badge  BadgeLevel `json:"badge"`
	Reason string     `json:"reason"`
}

// ImageAnalysis is the AI collaborator's suspicion check on listing photos
type ImageAnalysis struct {
	IsSuspicious bool   `json:"is_suspicious"`
	Reason       string `json:"reason,omitempty"`
}

type Listing struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string  `gorm:"type:text;not null" json:"title"`
	Location    string  `gorm:"type:varchar(255)" json:"location"`
	County      string  `gorm:"type:varchar(100);index" json:"county"`
	Price       float64 `gorm:"type:decimal(14,2);not null" json:"price"`
	AreaAcres   float64 `gorm:"type:decimal(10,2)" json:"area_acres"`
	LandType    string  `gorm:"type:varchar(50)" json:"land_type"`
	Description string  `gorm:"type:text" json:"description"`

	OwnerID       string `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	OwnerVerified bool   `gorm:"type:boolean;not null;default:false" json:"owner_verified"`

	Status ListingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Badge  *BadgeLevel   `gorm:"type:varchar(10)" json:"badge"`

	// Advisory AI output, surfaced to the admin alongside the review queue
	BadgeSuggestion *BadgeSuggestion `gorm:"type:json;serializer:json" json:"badge_suggestion,omitempty"`
	ImageAnalysis   *ImageAnalysis   `gorm:"type:json;serializer:json" json:"image_analysis,omitempty"`

	PhotoCount int        `gorm:"type:int;not null;default:0" json:"photo_count"`
	Documents  []Document `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt       time.Time  `gorm:"type:datetime;not null;autoCreateTime;index:idx_listing_created,sort:desc" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
	AdminReviewedAt *time.Time `gorm:"type:datetime" json:"admin_reviewed_at,omitempty"`
}

// TableName specifies the table name
func (Listing) TableName() string {
	return "listings"
}

// IsApproved reports whether the listing passed review
func (l *Listing) IsApproved() bool {
	return l.Status == ListingStatusApproved
}

// EditableByOwner reports whether the owner may still edit and resubmit.
// Approved listings are frozen until an admin re-opens review.
func (l *Listing) EditableByOwner() bool {
	return l.Status == ListingStatusPending || l.Status == ListingStatusRejected
}

// ClearReview resets review metadata when a listing goes back to pending
func (l *Listing) ClearReview() {
	l.Badge = nil
	l.AdminReviewedAt = nil
}
