package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
	PeriodStatusPaid   PeriodStatus = "paid"
)

// PeriodTransitions: nothing leaves paid.
var PeriodTransitions = TransitionTable[PeriodStatus]{
	PeriodStatusOpen: {
		PeriodStatusClosed: GateUser,
	},
	PeriodStatusClosed: {
		PeriodStatusPaid: GateUser,
	},
}

type PayrollPeriod struct {
	ID        int64        `gorm:"primaryKey" json:"id"`
	Month     string       `gorm:"size:7;not null;uniqueIndex" json:"month"`
	Status    PeriodStatus `gorm:"size:16;not null;default:open" json:"status"`
	ClosedAt  *time.Time   `json:"closed_at"`
	ClosedBy  *int64       `json:"closed_by"`
	CreatedAt time.Time    `json:"created_at"`
}

func (PayrollPeriod) TableName() string { return "payroll_periods" }

type PayrollLine struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	PeriodID         int64           `gorm:"not null;uniqueIndex:uq_payroll_lines_employee,priority:1" json:"period_id"`
	EmployeeID       int64           `gorm:"not null;uniqueIndex:uq_payroll_lines_employee,priority:2" json:"employee_id"`
	EmployeeType     EmployeeType    `gorm:"size:16;not null;uniqueIndex:uq_payroll_lines_employee,priority:3" json:"employee_type"`
	TripsCount       int             `gorm:"not null;default:0" json:"trips_count"`
	TripsAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"trips_amount"`
	HoursTotal       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"hours_total"`
	HoursAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"hours_amount"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	ManualCorrection decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"manual_correction"`
	IsPaid           bool            `gorm:"not null;default:false" json:"is_paid"`
}

func (PayrollLine) TableName() string { return "payroll_lines" }

// LineKey identifies an employee's line within a period.
type LineKey struct {
	EmployeeID   int64
	EmployeeType EmployeeType
}

func (l PayrollLine) Key() LineKey {
	return LineKey{EmployeeID: l.EmployeeID, EmployeeType: l.EmployeeType}
}

// Payable is total plus manual correction minus advances taken in the month.
func (l PayrollLine) Payable(advances decimal.Decimal) decimal.Decimal {
	return l.TotalAmount.Add(l.ManualCorrection).Sub(advances)
}

type PayrollLineView struct {
	PayrollLine
	EmployeeName   string          `json:"employee_name"`
	AdvancesAmount decimal.Decimal `gorm:"-" json:"advances_amount"`
	PayableAmount  decimal.Decimal `gorm:"-" json:"payable_amount"`
}

// PayrollStatement is a period with its lines, ready for export.
type PayrollStatement struct {
	Period PayrollPeriod
	Lines  []PayrollLineView
}

type SalaryAdvance struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	EmployeeID int64           `gorm:"not null;index" json:"employee_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date       Date            `gorm:"type:date;not null;index" json:"date"`
	Comment    *string         `json:"comment"`
	CreatedBy  int64           `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (SalaryAdvance) TableName() string { return "salary_advances" }

type SalaryAdvanceView struct {
	SalaryAdvance
	EmployeeName string `json:"employee_name"`
}
