// Package notify enqueues outbound notifications. Delivery is owned by an
// external worker; this service only appends queue rows, and a failed
// enqueue never fails the operation that requested it.
package notify

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"land-listing-portal/internal/config"
	"land-listing-portal/internal/models"
)

// Queue appends notification records to the outbound queue table
type Queue struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewQueue creates a new notification queue
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db, log: config.GetLogger()}
}

// Enqueue records one notification. Errors are logged and swallowed.
func (q *Queue) Enqueue(ctx context.Context, to, template, subject string, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		q.log.WithFields(logrus.Fields{"to": to, "template": template}).
			WithError(err).Error("notify: failed to encode payload")
		return
	}

	n := models.Notification{
		To:       to,
		Template: template,
		Subject:  subject,
		Payload:  string(encoded),
		Status:   models.NotificationStatusQueued,
	}
	if err := q.db.WithContext(ctx).Create(&n).Error; err != nil {
		q.log.WithFields(logrus.Fields{"to": to, "template": template}).
			WithError(err).Error("notify: failed to enqueue")
	}
}

// Pending returns queued notifications, oldest first. Used by operators to
// inspect the queue; the delivery worker drains it out of process.
func (q *Queue) Pending(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var notifications []models.Notification
	err := q.db.WithContext(ctx).
		Where("status = ?", models.NotificationStatusQueued).
		Order("created_at ASC").Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
