package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeType string

const (
	EmployeeTypeDriver   EmployeeType = "driver"
	EmployeeTypeOperator EmployeeType = "operator"
)

func (t EmployeeType) IsValid() bool {
	return t == EmployeeTypeDriver || t == EmployeeTypeOperator
}

type Employee struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	FullName     string       `gorm:"size:255;not null" json:"full_name" binding:"required"`
	EmployeeType EmployeeType `gorm:"size:16;not null;index" json:"employee_type" binding:"required,oneof=driver operator"`
	Phone        *string      `gorm:"size:32" json:"phone"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (Employee) TableName() string { return "employees" }

type Carrier struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	PricePerTrip decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price_per_trip"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Carrier) TableName() string { return "carriers" }

type Buyer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Buyer) TableName() string { return "buyers" }

type Material struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Material) TableName() string { return "materials" }

type Vehicle struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlateNumber string    `gorm:"size:32;not null;uniqueIndex" json:"plate_number" binding:"required"`
	VehicleType string    `gorm:"size:32;not null;default:truck" json:"vehicle_type"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Vehicle) TableName() string { return "vehicles" }

type Machinery struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Machinery) TableName() string { return "machinery" }

type ObjectPlace struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BuyerID   *int64    `gorm:"index" json:"buyer_id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Comment   *string   `json:"comment"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (ObjectPlace) TableName() string { return "object_places" }

// SettingMachineryHourRate is the fallback hourly rate for sessions without their own rate.
const SettingMachineryHourRate = "machinery_hour_rate"

type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "system_settings" }
