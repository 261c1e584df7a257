package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusConfirmed TripStatus = "confirmed"
	TripStatusVoid      TripStatus = "void"
	TripStatusLocked    TripStatus = "locked"
)

func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusDraft, TripStatusConfirmed, TripStatusVoid, TripStatusLocked:
		return true
	default:
		return false
	}
}

// TripTransitions: confirm only from draft, void is terminal, lock/unlock belong to payroll.
var TripTransitions = TransitionTable[TripStatus]{
	TripStatusDraft: {
		TripStatusConfirmed: GateUser,
		TripStatusVoid:      GateUser,
	},
	TripStatusConfirmed: {
		TripStatusVoid:   GateUser,
		TripStatusLocked: GateSystem,
	},
	TripStatusLocked: {
		TripStatusVoid:      GateAdmin,
		TripStatusConfirmed: GateSystem,
	},
}

type TripInvoice struct {
	ID             int64               `gorm:"primaryKey" json:"id"`
	TripDate       Date                `gorm:"type:date;not null;index" json:"trip_date"`
	DriverID       int64               `gorm:"not null;index" json:"driver_id"`
	VehicleID      int64               `gorm:"not null;index" json:"vehicle_id"`
	CarrierID      int64               `gorm:"not null" json:"carrier_id"`
	BuyerID        int64               `gorm:"not null;index" json:"buyer_id"`
	MaterialID     int64               `gorm:"not null" json:"material_id"`
	PlaceID        *int64              `json:"place_id"`
	InvoiceNumber  *string             `gorm:"size:64" json:"invoice_number"`
	TripPriceFixed decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"trip_price_fixed"`
	FuelLiters     decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"fuel_liters"`
	VolumeM3       decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"volume_m3"`
	Status         TripStatus          `gorm:"size:16;not null;default:draft;index" json:"status"`
	DeliveryActID  *int64              `gorm:"index" json:"delivery_act_id"`
	CreatedBy      int64               `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (TripInvoice) TableName() string { return "trip_invoices" }

// HasInvoiceNumber reports whether the duplicate key applies to the invoice.
func (t TripInvoice) HasInvoiceNumber() bool {
	return t.InvoiceNumber != nil && *t.InvoiceNumber != ""
}

// TripInvoiceView is a trip row with reference names joined in for display.
type TripInvoiceView struct {
	TripInvoice
	DriverName   string  `json:"driver_name"`
	VehiclePlate string  `json:"vehicle_plate"`
	CarrierName  string  `json:"carrier_name"`
	BuyerName    string  `json:"buyer_name"`
	MaterialName string  `json:"material_name"`
	PlaceName    *string `json:"place_name"`
}

type TripFilter struct {
	DateFrom  *Date
	DateTo    *Date
	DriverID  *int64
	CarrierID *int64
	BuyerID   *int64
	Status    *TripStatus
}
