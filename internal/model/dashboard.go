package model

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TodayTrips       int64           `json:"today_trips"`
	TodayTripsAmount decimal.Decimal `json:"today_trips_amount"`
	MonthTrips       int64           `json:"month_trips"`
	MonthTripsAmount decimal.Decimal `json:"month_trips_amount"`
	OpenSessions     int64           `json:"open_sessions"`
	MonthSessions    int64           `json:"month_sessions"`
}

type FuelReportRow struct {
	VehicleID    int64           `json:"vehicle_id"`
	VehiclePlate string          `json:"vehicle_plate"`
	TripsCount   int64           `json:"trips_count"`
	TotalFuel    decimal.Decimal `json:"total_fuel"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
}

type BuyerPending struct {
	BuyerID     int64           `json:"buyer_id"`
	TripsCount  int64           `json:"trips_count"`
	TotalVolume decimal.Decimal `json:"total_volume"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
