package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type AdvanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) *AdvanceRepository {
	return &AdvanceRepository{db: db}
}

type AdvanceFilter struct {
	EmployeeID *int64
	From       *model.Date
	To         *model.Date
}

// List returns advances ordered newest first. To is exclusive.
func (r *AdvanceRepository) List(ctx context.Context, filter AdvanceFilter) ([]model.SalaryAdvanceView, error) {
	var f filters
	if filter.EmployeeID != nil {
		f.add("a.employee_id = ?", *filter.EmployeeID)
	}
	if filter.From != nil {
		f.add("a.date >= ?", *filter.From)
	}
	if filter.To != nil {
		f.add("a.date < ?", *filter.To)
	}

	var rows []model.SalaryAdvanceView
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			a.*,
			COALESCE(e.full_name, '') AS employee_name
		FROM salary_advances a
		LEFT JOIN employees e ON e.id = a.employee_id
	`+f.where()+" ORDER BY a.date DESC, a.id DESC", f.args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AdvanceRepository) Create(ctx context.Context, advance *model.SalaryAdvance) error {
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *AdvanceRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.SalaryAdvance{}, id)
	return result.RowsAffected, result.Error
}
