package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ActStatus string

const (
	ActStatusOpen   ActStatus = "open"
	ActStatusClosed ActStatus = "closed"
)

// DeliveryAct freezes the trips it claimed: totals are computed once at creation.
type DeliveryAct struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	BuyerID     int64           `gorm:"not null;index" json:"buyer_id"`
	StartDate   Date            `gorm:"type:date;not null" json:"start_date"`
	EndDate     Date            `gorm:"type:date;not null" json:"end_date"`
	TotalTrips  int             `gorm:"not null;default:0" json:"total_trips"`
	TotalVolume decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_volume"`
	Status      ActStatus       `gorm:"size:16;not null;default:open" json:"status"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (DeliveryAct) TableName() string { return "delivery_acts" }

type DeliveryActView struct {
	DeliveryAct
	BuyerName string `json:"buyer_name"`
}

// ActDocument is an act with the trips it claimed, used by the exporters.
type ActDocument struct {
	Act   DeliveryActView   `json:"act"`
	Trips []TripInvoiceView `json:"trips"`
}

func (d ActDocument) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, trip := range d.Trips {
		total = total.Add(trip.TripPriceFixed)
	}
	return total
}
