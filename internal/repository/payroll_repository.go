package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

func (r *PayrollRepository) WithTx(tx *gorm.DB) *PayrollRepository {
	if tx == nil {
		return r
	}
	return &PayrollRepository{db: tx}
}

func (r *PayrollRepository) GetPeriod(ctx context.Context, id int64) (*model.PayrollPeriod, error) {
	var period model.PayrollPeriod
	if err := r.db.WithContext(ctx).First(&period, id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *PayrollRepository) GetPeriodForUpdate(ctx context.Context, id int64) (*model.PayrollPeriod, error) {
	var period model.PayrollPeriod
	if err := forUpdate(r.db.WithContext(ctx)).First(&period, id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *PayrollRepository) GetPeriodByMonth(ctx context.Context, month string) (*model.PayrollPeriod, error) {
	var period model.PayrollPeriod
	if err := forUpdate(r.db.WithContext(ctx)).Where("month = ?", month).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *PayrollRepository) CreatePeriod(ctx context.Context, period *model.PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *PayrollRepository) SavePeriod(ctx context.Context, period *model.PayrollPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *PayrollRepository) ListPeriods(ctx context.Context) ([]model.PayrollPeriod, error) {
	var periods []model.PayrollPeriod
	if err := r.db.WithContext(ctx).Order("month DESC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *PayrollRepository) DeletePeriod(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.PayrollPeriod{}, id).Error
}

func (r *PayrollRepository) ListLines(ctx context.Context, periodID int64) ([]model.PayrollLine, error) {
	var lines []model.PayrollLine
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("employee_type ASC, employee_id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *PayrollRepository) DeleteLines(ctx context.Context, periodID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("period_id = ?", periodID).Delete(&model.PayrollLine{})
	return result.RowsAffected, result.Error
}

func (r *PayrollRepository) CreateLines(ctx context.Context, lines []model.PayrollLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *PayrollRepository) GetLine(ctx context.Context, id int64) (*model.PayrollLine, error) {
	var line model.PayrollLine
	if err := forUpdate(r.db.WithContext(ctx)).First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *PayrollRepository) SaveLine(ctx context.Context, line *model.PayrollLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// LineViews returns the period's lines with employee names, drivers first then
// operators, each by name.
func (r *PayrollRepository) LineViews(ctx context.Context, periodID int64) ([]model.PayrollLineView, error) {
	var rows []model.PayrollLineView
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			l.*,
			COALESCE(e.full_name, '') AS employee_name
		FROM payroll_lines l
		LEFT JOIN employees e ON e.id = l.employee_id
		WHERE l.period_id = ?
		ORDER BY l.employee_type ASC, e.full_name ASC, l.id ASC
	`, periodID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AdvanceTotals sums salary advances per employee for dates in [from, to).
func (r *PayrollRepository) AdvanceTotals(ctx context.Context, from, to model.Date) (map[int64]decimal.Decimal, error) {
	var advances []model.SalaryAdvance
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Find(&advances).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[int64]decimal.Decimal, len(advances))
	for _, advance := range advances {
		totals[advance.EmployeeID] = totals[advance.EmployeeID].Add(advance.Amount)
	}
	return totals, nil
}
