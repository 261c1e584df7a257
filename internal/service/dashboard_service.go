package service

import (
	"context"
	"fmt"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type DashboardService struct {
	dashboard *repository.DashboardRepository
	buyers    *repository.ReferenceRepository[model.Buyer]
}

func NewDashboardService(
	dashboard *repository.DashboardRepository,
	buyers *repository.ReferenceRepository[model.Buyer],
) *DashboardService {
	return &DashboardService{dashboard: dashboard, buyers: buyers}
}

// Stats summarizes activity for today and the month to date.
func (s *DashboardService) Stats(ctx context.Context, today model.Date) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	var err error

	stats.TodayTrips, stats.TodayTripsAmount, err = s.dashboard.TripTotals(ctx, today, today.AddDays(1))
	if err != nil {
		return nil, err
	}
	month := model.MonthOf(today)
	stats.MonthTrips, stats.MonthTripsAmount, err = s.dashboard.TripTotals(ctx, month.Start(), today.AddDays(1))
	if err != nil {
		return nil, err
	}
	if stats.OpenSessions, err = s.dashboard.CountOpenSessions(ctx); err != nil {
		return nil, err
	}
	if stats.MonthSessions, err = s.dashboard.CountSessions(ctx, month.Start(), today.AddDays(1)); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) FuelReport(ctx context.Context, from, to model.Date) ([]model.FuelReportRow, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: date_from must be before or equal to date_to", ErrInvalidInput)
	}
	rows, err := s.dashboard.FuelReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.FuelReportRow{}
	}
	return rows, nil
}

func (s *DashboardService) BuyerPending(ctx context.Context, buyerID int64) (*model.BuyerPending, error) {
	if _, err := s.buyers.Get(ctx, buyerID); err != nil {
		return nil, notFound(err, "buyer", buyerID)
	}
	return s.dashboard.BuyerPending(ctx, buyerID)
}
