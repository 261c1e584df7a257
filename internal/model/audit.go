package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	AuditActionUpdateLocked = "update_locked"
	AuditActionVoid         = "void"
	AuditActionDelete       = "delete"
	AuditActionClosePeriod  = "close_period"
	AuditActionMarkPaid     = "mark_paid"
	AuditActionDeletePeriod = "delete_period"
)

const (
	EntityTripInvoice      = "trip_invoice"
	EntityMachinerySession = "machinery_session"
	EntityPayrollPeriod    = "payroll_period"
	EntityPayrollLine      = "payroll_line"
)

// Snapshot is a free-form JSON document attached to an audit entry.
type Snapshot map[string]any

func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *Snapshot) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Snapshot", value)
	}
	return json.Unmarshal(raw, s)
}

type AuditLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Action     string    `gorm:"size:32;not null" json:"action"`
	EntityType string    `gorm:"size:32;not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   int64     `gorm:"not null;index:idx_audit_entity,priority:2" json:"entity_id"`
	OldData    Snapshot  `gorm:"type:jsonb" json:"old_data"`
	NewData    Snapshot  `gorm:"type:jsonb" json:"new_data"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
