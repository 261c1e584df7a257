package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
	SessionStatusLocked SessionStatus = "locked"
)

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusOpen, SessionStatusClosed, SessionStatusLocked:
		return true
	default:
		return false
	}
}

var SessionTransitions = TransitionTable[SessionStatus]{
	SessionStatusOpen: {
		SessionStatusClosed: GateUser,
	},
	SessionStatusClosed: {
		SessionStatusLocked: GateSystem,
	},
	SessionStatusLocked: {
		SessionStatusClosed: GateSystem,
	},
}

var minPayHours = decimal.NewFromInt(1)

// PayHours is the billable duration of a session: elapsed hours rounded to two
// decimals with a floor of one hour, or zero while the session has no end.
func PayHours(startAt time.Time, endAt *time.Time) decimal.Decimal {
	if endAt == nil {
		return decimal.Zero
	}
	hours := decimal.NewFromInt(int64(endAt.Sub(startAt) / time.Second)).
		Div(decimal.NewFromInt(3600)).
		Round(2)
	return decimal.Max(minPayHours, hours)
}

type MachinerySession struct {
	ID          int64               `gorm:"primaryKey" json:"id"`
	WorkDate    Date                `gorm:"type:date;not null;index" json:"work_date"`
	OperatorID  int64               `gorm:"not null;index" json:"operator_id"`
	MachineryID int64               `gorm:"not null;index" json:"machinery_id"`
	BuyerID     *int64              `json:"buyer_id"`
	StartAt     time.Time           `gorm:"not null" json:"start_at"`
	EndAt       *time.Time          `json:"end_at"`
	HourlyRate  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"hourly_rate"`
	Status      SessionStatus       `gorm:"size:16;not null;default:open;index" json:"status"`
	Notes       *string             `json:"notes"`
	FuelLiters  decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"fuel_liters"`
	CreatedBy   int64               `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (MachinerySession) TableName() string { return "machinery_sessions" }

func (s MachinerySession) BillableHours() decimal.Decimal {
	return PayHours(s.StartAt, s.EndAt)
}

// Rate picks the session's own rate, or fallback when the session has none.
func (s MachinerySession) Rate(fallback decimal.Decimal) decimal.Decimal {
	if s.HourlyRate.Valid && !s.HourlyRate.Decimal.IsZero() {
		return s.HourlyRate.Decimal
	}
	return fallback
}

type MachinerySessionView struct {
	MachinerySession
	OperatorName  string          `json:"operator_name"`
	MachineryName string          `json:"machinery_name"`
	BuyerName     *string         `json:"buyer_name"`
	PayHours      decimal.Decimal `gorm:"-" json:"pay_hours"`
}

type SessionFilter struct {
	DateFrom    *Date
	DateTo      *Date
	OperatorID  *int64
	MachineryID *int64
	Status      *SessionStatus
	OnlyOpen    bool
}
