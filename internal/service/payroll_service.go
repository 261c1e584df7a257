package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

// HourRateSource supplies the fallback machinery hour rate, 0 when unset.
type HourRateSource interface {
	WithTx(tx *gorm.DB) HourRateSource
	HourRate(ctx context.Context) (decimal.Decimal, error)
}

type PayrollExcelGenerator interface {
	GeneratePayroll(statement model.PayrollStatement) ([]byte, error)
}

type PayrollService struct {
	db       *gorm.DB
	payroll  *repository.PayrollRepository
	trips    *repository.TripRepository
	sessions *repository.SessionRepository
	rates    HourRateSource
	audit    audit.Trail
	excel    PayrollExcelGenerator
	recorder Recorder
	log      zerolog.Logger
}

func NewPayrollService(
	db *gorm.DB,
	payroll *repository.PayrollRepository,
	trips *repository.TripRepository,
	sessions *repository.SessionRepository,
	rates HourRateSource,
	trail audit.Trail,
	excel PayrollExcelGenerator,
	recorder Recorder,
	log zerolog.Logger,
) *PayrollService {
	return &PayrollService{
		db:       db,
		payroll:  payroll,
		trips:    trips,
		sessions: sessions,
		rates:    rates,
		audit:    trail,
		excel:    excel,
		recorder: recorderOrNop(recorder),
		log:      log,
	}
}

type GenerateResult struct {
	Period model.PayrollPeriod `json:"period"`
	Lines  []model.PayrollLine `json:"lines"`
}

type LinePatch struct {
	ManualCorrection *decimal.Decimal
	IsPaid           *bool
}

// Generate recomputes every line of the month's period, creating the period on
// first use. Manual corrections and paid flags of existing lines carry over.
func (s *PayrollService) Generate(ctx context.Context, rawMonth string, actor model.Principal) (result *GenerateResult, err error) {
	if err := requireRole(actor, "generate payroll", elevatedRoles...); err != nil {
		return nil, err
	}
	month, err := model.ParseMonth(rawMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	started := time.Now()
	defer func() {
		s.recorder.ObservePayroll("generate", time.Since(started), err)
	}()

	var rate decimal.Decimal
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payroll := s.payroll.WithTx(tx)
		period, err := s.openPeriod(ctx, payroll, month)
		if err != nil {
			return err
		}
		if rate, err = s.rates.WithTx(tx).HourRate(ctx); err != nil {
			return err
		}

		existing, err := payroll.ListLines(ctx, period.ID)
		if err != nil {
			return err
		}
		carried := carryOverOf(existing)
		if _, err := payroll.DeleteLines(ctx, period.ID); err != nil {
			return err
		}

		trips, err := s.trips.WithTx(tx).ListByStatusInRange(ctx, model.TripStatusConfirmed, month.Start(), month.End())
		if err != nil {
			return err
		}
		sessions, err := s.sessions.WithTx(tx).ListByStatusInRange(ctx, model.SessionStatusClosed, month.Start(), month.End())
		if err != nil {
			return err
		}

		lines := buildPayrollLines(period.ID, trips, sessions, rate, carried)
		if err := payroll.CreateLines(ctx, lines); err != nil {
			return err
		}
		result = &GenerateResult{Period: *period, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("month", month.String()).
		Int64("period_id", result.Period.ID).
		Int("lines", len(result.Lines)).
		Str("hour_rate", rate.String()).
		Msg("payroll generated")
	return result, nil
}

func (s *PayrollService) openPeriod(ctx context.Context, payroll *repository.PayrollRepository, month model.Month) (*model.PayrollPeriod, error) {
	period, err := payroll.GetPeriodByMonth(ctx, month.String())
	switch {
	case err == nil:
		if period.Status != model.PeriodStatusOpen {
			return nil, fmt.Errorf("%w: payroll period %s is %s", ErrInvalidState, month, period.Status)
		}
		return period, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		period = &model.PayrollPeriod{Month: month.String(), Status: model.PeriodStatusOpen}
		if err := payroll.CreatePeriod(ctx, period); err != nil {
			return nil, storeError(err, "payroll period %s already exists", month)
		}
		return period, nil
	default:
		return nil, err
	}
}

// Close locks the month's confirmed trips and closed sessions and closes the period.
func (s *PayrollService) Close(ctx context.Context, periodID int64, actor model.Principal) (period *model.PayrollPeriod, err error) {
	if err := requireRole(actor, "close payroll periods", elevatedRoles...); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		s.recorder.ObservePayroll("close", time.Since(started), err)
	}()

	var lockedTrips, lockedSessions int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payroll := s.payroll.WithTx(tx)
		current, err := payroll.GetPeriodForUpdate(ctx, periodID)
		if err != nil {
			return notFound(err, "payroll period", periodID)
		}
		if err := transition(model.PeriodTransitions, "payroll period", periodID, current.Status, model.PeriodStatusClosed, actor); err != nil {
			return err
		}
		month, err := model.ParseMonth(current.Month)
		if err != nil {
			return err
		}

		lockedTrips, err = s.trips.WithTx(tx).TransitionInRange(ctx, month.Start(), month.End(),
			model.TripStatusConfirmed, model.TripStatusLocked)
		if err != nil {
			return err
		}
		lockedSessions, err = s.sessions.WithTx(tx).TransitionInRange(ctx, month.Start(), month.End(),
			model.SessionStatusClosed, model.SessionStatusLocked)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		closedBy := actor.UserID
		current.Status = model.PeriodStatusClosed
		current.ClosedAt = &now
		current.ClosedBy = &closedBy
		if err := payroll.SavePeriod(ctx, current); err != nil {
			return err
		}

		if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     model.AuditActionClosePeriod,
			EntityType: model.EntityPayrollPeriod,
			EntityID:   periodID,
			OldData:    model.Snapshot{"status": string(model.PeriodStatusOpen)},
			NewData: model.Snapshot{
				"status":          string(model.PeriodStatusClosed),
				"month":           current.Month,
				"locked_trips":    lockedTrips,
				"locked_sessions": lockedSessions,
			},
		}); err != nil {
			return err
		}
		period = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.RecordTransition(model.EntityPayrollPeriod, string(model.PeriodStatusOpen), string(model.PeriodStatusClosed))
	s.log.Info().
		Str("month", period.Month).
		Int64("locked_trips", lockedTrips).
		Int64("locked_sessions", lockedSessions).
		Msg("payroll period closed")
	return period, nil
}

func (s *PayrollService) MarkPaid(ctx context.Context, periodID int64, actor model.Principal) (*model.PayrollPeriod, error) {
	if err := requireRole(actor, "mark payroll paid", model.RoleAdmin, model.RoleDispatcher, model.RoleAccountant); err != nil {
		return nil, err
	}

	var period *model.PayrollPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payroll := s.payroll.WithTx(tx)
		current, err := payroll.GetPeriodForUpdate(ctx, periodID)
		if err != nil {
			return notFound(err, "payroll period", periodID)
		}
		if err := transition(model.PeriodTransitions, "payroll period", periodID, current.Status, model.PeriodStatusPaid, actor); err != nil {
			return err
		}
		current.Status = model.PeriodStatusPaid
		if err := payroll.SavePeriod(ctx, current); err != nil {
			return err
		}
		if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     model.AuditActionMarkPaid,
			EntityType: model.EntityPayrollPeriod,
			EntityID:   periodID,
			OldData:    model.Snapshot{"status": string(model.PeriodStatusClosed)},
			NewData:    model.Snapshot{"status": string(model.PeriodStatusPaid), "month": current.Month},
		}); err != nil {
			return err
		}
		period = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recorder.RecordTransition(model.EntityPayrollPeriod, string(model.PeriodStatusClosed), string(model.PeriodStatusPaid))
	return period, nil
}

// Delete reverts the lock cascade of the period's month, then drops its lines
// and the period itself. Allowed in any status.
func (s *PayrollService) Delete(ctx context.Context, periodID int64, actor model.Principal) (err error) {
	if err := requireRole(actor, "delete payroll periods", elevatedRoles...); err != nil {
		return err
	}

	started := time.Now()
	defer func() {
		s.recorder.ObservePayroll("delete", time.Since(started), err)
	}()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payroll := s.payroll.WithTx(tx)
		current, err := payroll.GetPeriodForUpdate(ctx, periodID)
		if err != nil {
			return notFound(err, "payroll period", periodID)
		}
		month, err := model.ParseMonth(current.Month)
		if err != nil {
			return err
		}

		unlockedTrips, err := s.trips.WithTx(tx).TransitionInRange(ctx, month.Start(), month.End(),
			model.TripStatusLocked, model.TripStatusConfirmed)
		if err != nil {
			return err
		}
		unlockedSessions, err := s.sessions.WithTx(tx).TransitionInRange(ctx, month.Start(), month.End(),
			model.SessionStatusLocked, model.SessionStatusClosed)
		if err != nil {
			return err
		}
		if _, err := payroll.DeleteLines(ctx, periodID); err != nil {
			return err
		}
		if err := payroll.DeletePeriod(ctx, periodID); err != nil {
			return err
		}

		return s.audit.WithTx(tx).Append(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     model.AuditActionDeletePeriod,
			EntityType: model.EntityPayrollPeriod,
			EntityID:   periodID,
			OldData:    model.Snapshot{"status": string(current.Status), "month": current.Month},
			NewData: model.Snapshot{
				"unlocked_trips":    unlockedTrips,
				"unlocked_sessions": unlockedSessions,
			},
		})
	})
}

func (s *PayrollService) UpdateLine(ctx context.Context, lineID int64, patch LinePatch, actor model.Principal) (*model.PayrollLine, error) {
	if err := requireRole(actor, "edit payroll lines", elevatedRoles...); err != nil {
		return nil, err
	}

	var line *model.PayrollLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payroll := s.payroll.WithTx(tx)
		current, err := payroll.GetLine(ctx, lineID)
		if err != nil {
			return notFound(err, "payroll line", lineID)
		}
		period, err := payroll.GetPeriod(ctx, current.PeriodID)
		if err != nil {
			return notFound(err, "payroll period", current.PeriodID)
		}
		paid := period.Status == model.PeriodStatusPaid
		if paid && !actor.IsAdmin() {
			return fmt.Errorf("%w: payroll period %s is paid", ErrInvalidState, period.Month)
		}

		before := lineSnapshot(current)
		if patch.ManualCorrection != nil {
			current.ManualCorrection = *patch.ManualCorrection
		}
		if patch.IsPaid != nil {
			current.IsPaid = *patch.IsPaid
		}
		if err := payroll.SaveLine(ctx, current); err != nil {
			return err
		}

		if paid {
			if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
				ActorID:    actor.UserID,
				Action:     model.AuditActionUpdateLocked,
				EntityType: model.EntityPayrollLine,
				EntityID:   current.ID,
				OldData:    before,
				NewData:    lineSnapshot(current),
			}); err != nil {
				return err
			}
		}
		line = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Lines returns the period's lines with the month's advances and payable amounts.
func (s *PayrollService) Lines(ctx context.Context, periodID int64) ([]model.PayrollLineView, error) {
	statement, err := s.statement(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return statement.Lines, nil
}

func (s *PayrollService) ListPeriods(ctx context.Context) ([]model.PayrollPeriod, error) {
	periods, err := s.payroll.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	if periods == nil {
		periods = []model.PayrollPeriod{}
	}
	return periods, nil
}

func (s *PayrollService) Export(ctx context.Context, periodID int64) (*ExportResult, error) {
	statement, err := s.statement(ctx, periodID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.GeneratePayroll(*statement)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("payroll-%s.xlsx", statement.Period.Month),
		Content:  content,
	}, nil
}

func (s *PayrollService) statement(ctx context.Context, periodID int64) (*model.PayrollStatement, error) {
	period, err := s.payroll.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, notFound(err, "payroll period", periodID)
	}
	month, err := model.ParseMonth(period.Month)
	if err != nil {
		return nil, err
	}

	lines, err := s.payroll.LineViews(ctx, periodID)
	if err != nil {
		return nil, err
	}
	advances, err := s.payroll.AdvanceTotals(ctx, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []model.PayrollLineView{}
	}
	for i := range lines {
		lines[i].AdvancesAmount = advances[lines[i].EmployeeID].Round(2)
		lines[i].PayableAmount = lines[i].Payable(lines[i].AdvancesAmount)
	}
	return &model.PayrollStatement{Period: *period, Lines: lines}, nil
}

func lineSnapshot(line *model.PayrollLine) model.Snapshot {
	return model.Snapshot{
		"manual_correction": line.ManualCorrection.StringFixed(2),
		"is_paid":           line.IsPaid,
	}
}
