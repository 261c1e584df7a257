package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type tripTotals struct {
	Count  int64
	Amount decimal.Decimal
}

// TripTotals counts non-void trips with trip_date in [from, to).
func (r *DashboardRepository) TripTotals(ctx context.Context, from, to model.Date) (int64, decimal.Decimal, error) {
	var row tripTotals
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS count,
			COALESCE(SUM(trip_price_fixed), 0) AS amount
		FROM trip_invoices
		WHERE status <> ? AND trip_date >= ? AND trip_date < ?
	`, model.TripStatusVoid, from, to).Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.Count, row.Amount, nil
}

func (r *DashboardRepository) CountOpenSessions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MachinerySession{}).
		Where("status = ?", model.SessionStatusOpen).
		Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountSessions(ctx context.Context, from, to model.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MachinerySession{}).
		Where("work_date >= ? AND work_date < ?", from, to).
		Count(&count).Error
	return count, err
}

// FuelReport aggregates fuel and volume per vehicle for non-void trips in [from, to].
func (r *DashboardRepository) FuelReport(ctx context.Context, from, to model.Date) ([]model.FuelReportRow, error) {
	var rows []model.FuelReportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			t.vehicle_id,
			COALESCE(v.plate_number, '') AS vehicle_plate,
			COUNT(*) AS trips_count,
			COALESCE(SUM(t.fuel_liters), 0) AS total_fuel,
			COALESCE(SUM(t.volume_m3), 0) AS total_volume
		FROM trip_invoices t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.status <> ? AND t.trip_date >= ? AND t.trip_date <= ?
		GROUP BY t.vehicle_id, v.plate_number
		ORDER BY v.plate_number ASC
	`, model.TripStatusVoid, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BuyerPending summarizes the buyer's confirmed trips not yet claimed by an act.
func (r *DashboardRepository) BuyerPending(ctx context.Context, buyerID int64) (*model.BuyerPending, error) {
	row := model.BuyerPending{BuyerID: buyerID}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS trips_count,
			COALESCE(SUM(volume_m3), 0) AS total_volume,
			COALESCE(SUM(trip_price_fixed), 0) AS total_amount
		FROM trip_invoices
		WHERE buyer_id = ? AND status = ? AND delivery_act_id IS NULL
	`, buyerID, model.TripStatusConfirmed).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	row.BuyerID = buyerID
	return &row, nil
}
