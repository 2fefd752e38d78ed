package models

import (
	"encoding/json"
	"time"
)

// AuditAction constants
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// Audited entity types
const (
	AuditEntityListing  = "listing"
	AuditEntitySettings = "settings"
	AuditEntityReport   = "report"
)

// FieldChange records one field's old and new value inside a change-set
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// ChangeSet maps field names to their old/new values. One audit entry
// carries the whole change-set of a logical operation, not one row per field.
type ChangeSet map[string]FieldChange

// AuditLog is an append-only record of an administrative mutation.
// Rows are never updated or deleted.
type AuditLog struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminID    string      `gorm:"type:varchar(36);not null;index" json:"admin_id"`
	Action     AuditAction `gorm:"type:varchar(10);not null" json:"action"`
	EntityType string      `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	EntityID   string      `gorm:"type:varchar(36);index" json:"entity_id,omitempty"`
	Changes    string      `gorm:"type:text" json:"changes"`
	CreatedAt  time.Time   `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// DecodeChanges unmarshals the stored change-set
func (a *AuditLog) DecodeChanges() (ChangeSet, error) {
	var cs ChangeSet
	if a.Changes == "" {
		return cs, nil
	}
	err := json.Unmarshal([]byte(a.Changes), &cs)
	return cs, err
}
