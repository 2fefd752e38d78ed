// Package audit appends immutable records of administrative changes.
// Recording is best-effort: a failed audit write is surfaced to operators
// through the log but never fails the operation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"land-listing-portal/internal/config"
	"land-listing-portal/internal/models"
)

// Logger writes audit entries
type Logger struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db, log: config.GetLogger()}
}

// Record appends one audit entry for a logical change-set. An update that
// changed nothing records nothing. Errors are logged and swallowed so the
// primary operation always survives an unavailable audit store.
func (l *Logger) Record(ctx context.Context, adminID string, action models.AuditAction, entityType, entityID string, changes models.ChangeSet) {
	if action == models.AuditActionUpdate && len(changes) == 0 {
		return
	}

	encoded, err := json.Marshal(changes)
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"admin_id":    adminID,
			"entity_type": entityType,
			"entity_id":   entityID,
		}).WithError(err).Error("audit: failed to encode change-set")
		return
	}

	entry := models.AuditLog{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    string(encoded),
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		l.log.WithFields(logrus.Fields{
			"admin_id":    adminID,
			"action":      action,
			"entity_type": entityType,
			"entity_id":   entityID,
		}).WithError(err).Error("audit: failed to write entry")
	}
}

// Recent returns the newest audit entries, most recent first
func (l *Logger) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.AuditLog
	err := l.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// Diff builds a change-set from before/after field maps. Fields present in
// either map with differing values appear in the result.
func Diff(before, after map[string]interface{}) models.ChangeSet {
	changes := models.ChangeSet{}
	for field, newVal := range after {
		oldVal, existed := before[field]
		if !existed || !reflect.DeepEqual(oldVal, newVal) {
			changes[field] = models.FieldChange{Old: oldVal, New: newVal}
		}
	}
	for field, oldVal := range before {
		if _, kept := after[field]; !kept {
			changes[field] = models.FieldChange{Old: oldVal, New: nil}
		}
	}
	return changes
}
