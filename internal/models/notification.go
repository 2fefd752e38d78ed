package models

import "time"

// NotificationStatus constants
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "queued"
	NotificationStatusSent   NotificationStatus = "sent"
)

// Notification template names
const (
	NotificationTemplateListingReviewed = "listing_reviewed"
	NotificationTemplateReportReceived  = "report_received"
	NotificationTemplatePendingReminder = "pending_reminder"
)

// Notification is a queued outbound message. This service only enqueues;
// delivery belongs to an external worker that drains the queue.
type Notification struct {
	ID        uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	To        string             `gorm:"column:recipient;type:varchar(255);not null" json:"to"`
	Template  string             `gorm:"type:varchar(50);not null" json:"template"`
	Subject   string             `gorm:"type:varchar(255)" json:"subject"`
	Payload   string             `gorm:"type:text" json:"payload"`
	Status    NotificationStatus `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	CreatedAt time.Time          `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}
