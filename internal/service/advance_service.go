package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type AdvanceService struct {
	advances  *repository.AdvanceRepository
	employees *repository.ReferenceRepository[model.Employee]
}

func NewAdvanceService(
	advances *repository.AdvanceRepository,
	employees *repository.ReferenceRepository[model.Employee],
) *AdvanceService {
	return &AdvanceService{advances: advances, employees: employees}
}

type CreateAdvanceInput struct {
	EmployeeID int64
	Amount     decimal.Decimal
	Date       model.Date
	Comment    *string
}

// List filters by employee and by calendar month ("YYYY-MM", empty for all).
func (s *AdvanceService) List(ctx context.Context, employeeID *int64, rawMonth string) ([]model.SalaryAdvanceView, error) {
	filter := repository.AdvanceFilter{EmployeeID: employeeID}
	if strings.TrimSpace(rawMonth) != "" {
		month, err := model.ParseMonth(rawMonth)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		from, to := month.Start(), month.End()
		filter.From, filter.To = &from, &to
	}
	rows, err := s.advances.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.SalaryAdvanceView{}
	}
	return rows, nil
}

func (s *AdvanceService) Create(ctx context.Context, input CreateAdvanceInput, actor model.Principal) (*model.SalaryAdvance, error) {
	if err := requireRole(actor, "record salary advances", elevatedRoles...); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := s.employees.Get(ctx, input.EmployeeID); err != nil {
		return nil, notFound(err, "employee", input.EmployeeID)
	}

	advance := &model.SalaryAdvance{
		EmployeeID: input.EmployeeID,
		Amount:     input.Amount.Round(2),
		Date:       input.Date,
		Comment:    input.Comment,
		CreatedBy:  actor.UserID,
	}
	if err := s.advances.Create(ctx, advance); err != nil {
		return nil, storeError(err, "salary advance already exists")
	}
	return advance, nil
}

func (s *AdvanceService) Delete(ctx context.Context, id int64, actor model.Principal) error {
	if err := requireRole(actor, "delete salary advances", elevatedRoles...); err != nil {
		return err
	}
	affected, err := s.advances.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound(gorm.ErrRecordNotFound, "salary advance", id)
	}
	return nil
}
