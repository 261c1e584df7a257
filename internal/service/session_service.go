package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/audit"
	"github.com/nurpe/logist-zp/internal/model"
	"github.com/nurpe/logist-zp/internal/repository"
)

type SessionService struct {
	db       *gorm.DB
	sessions *repository.SessionRepository
	audit    audit.Trail
	recorder Recorder
}

func NewSessionService(
	db *gorm.DB,
	sessions *repository.SessionRepository,
	trail audit.Trail,
	recorder Recorder,
) *SessionService {
	return &SessionService{
		db:       db,
		sessions: sessions,
		audit:    trail,
		recorder: recorderOrNop(recorder),
	}
}

type CreateSessionInput struct {
	OperatorID  int64
	MachineryID int64
	BuyerID     *int64
	StartAt     time.Time
	HourlyRate  decimal.NullDecimal
	Notes       *string
}

type CloseSessionInput struct {
	EndAt      time.Time
	FuelLiters decimal.NullDecimal
}

// SessionPatch carries the fields to change; nil means untouched.
type SessionPatch struct {
	OperatorID  *int64
	MachineryID *int64
	BuyerID     *int64
	StartAt     *time.Time
	EndAt       *time.Time
	HourlyRate  *decimal.Decimal
	Notes       *string
	FuelLiters  *decimal.Decimal
}

const (
	operatorColumn  = "operator_id"
	machineryColumn = "machinery_id"
)

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput, actor model.Principal) (*model.MachinerySession, error) {
	if err := requireRole(actor, "open machinery sessions", elevatedRoles...); err != nil {
		return nil, err
	}
	if input.OperatorID == 0 || input.MachineryID == 0 {
		return nil, fmt.Errorf("%w: operator and machinery are required", ErrInvalidInput)
	}
	if input.StartAt.IsZero() {
		return nil, fmt.Errorf("%w: start_at is required", ErrInvalidInput)
	}

	session := &model.MachinerySession{
		WorkDate:    model.DateOf(input.StartAt),
		OperatorID:  input.OperatorID,
		MachineryID: input.MachineryID,
		BuyerID:     input.BuyerID,
		StartAt:     input.StartAt,
		HourlyRate:  input.HourlyRate,
		Status:      model.SessionStatusOpen,
		Notes:       input.Notes,
		CreatedBy:   actor.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		if err := ensureNoOpenSession(ctx, sessions, session); err != nil {
			return err
		}
		if err := sessions.Create(ctx, session); err != nil {
			return storeError(err, "operator %d or machinery %d already has an open session", session.OperatorID, session.MachineryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Close(ctx context.Context, id int64, input CloseSessionInput, actor model.Principal) (*model.MachinerySession, error) {
	if err := requireRole(actor, "close machinery sessions", elevatedRoles...); err != nil {
		return nil, err
	}

	var session *model.MachinerySession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		current, err := sessions.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "machinery session", id)
		}
		if err := transition(model.SessionTransitions, "machinery session", id, current.Status, model.SessionStatusClosed, actor); err != nil {
			return err
		}
		if !input.EndAt.After(current.StartAt) {
			return fmt.Errorf("%w: end_at must be after start_at", ErrInvalidInput)
		}

		endAt := input.EndAt
		current.EndAt = &endAt
		current.Status = model.SessionStatusClosed
		if input.FuelLiters.Valid {
			current.FuelLiters = input.FuelLiters
		}
		if err := sessions.Save(ctx, current); err != nil {
			return err
		}
		session = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recorder.RecordTransition(model.EntityMachinerySession, string(model.SessionStatusOpen), string(model.SessionStatusClosed))
	return session, nil
}

func (s *SessionService) Update(ctx context.Context, id int64, patch SessionPatch, actor model.Principal) (*model.MachinerySession, error) {
	if err := requireRole(actor, "update machinery sessions", elevatedRoles...); err != nil {
		return nil, err
	}

	var session *model.MachinerySession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		current, err := sessions.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "machinery session", id)
		}
		if current.Status == model.SessionStatusLocked && !actor.IsAdmin() {
			return fmt.Errorf("%w: machinery session %d is locked", ErrPermissionDenied, id)
		}
		if patch.EndAt != nil && current.Status == model.SessionStatusOpen {
			return fmt.Errorf("%w: close the session to set end_at", ErrInvalidInput)
		}
		before := sessionSnapshot(current)

		applySessionPatch(current, patch)
		if current.EndAt != nil && !current.EndAt.After(current.StartAt) {
			return fmt.Errorf("%w: end_at must be after start_at", ErrInvalidInput)
		}
		if current.Status == model.SessionStatusOpen {
			if err := ensureNoOpenSession(ctx, sessions, current); err != nil {
				return err
			}
		}
		if err := sessions.Save(ctx, current); err != nil {
			return storeError(err, "operator %d or machinery %d already has an open session", current.OperatorID, current.MachineryID)
		}

		if current.Status == model.SessionStatusLocked {
			if err := s.audit.WithTx(tx).Append(ctx, audit.Entry{
				ActorID:    actor.UserID,
				Action:     model.AuditActionUpdateLocked,
				EntityType: model.EntityMachinerySession,
				EntityID:   current.ID,
				OldData:    before,
				NewData:    sessionSnapshot(current),
			}); err != nil {
				return err
			}
		}
		session = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes the session whatever its status.
func (s *SessionService) Delete(ctx context.Context, id int64, actor model.Principal) error {
	if err := requireRole(actor, "delete machinery sessions", model.RoleAdmin); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		current, err := sessions.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "machinery session", id)
		}
		if err := sessions.Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.WithTx(tx).Append(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     model.AuditActionDelete,
			EntityType: model.EntityMachinerySession,
			EntityID:   id,
			OldData:    sessionSnapshot(current),
		})
	})
}

// List returns sessions with pay hours computed for each row.
func (s *SessionService) List(
	ctx context.Context,
	filter model.SessionFilter,
	page model.PageRequest,
) (*model.Page[model.MachinerySessionView], error) {
	page = page.Normalize()
	rows, total, err := s.sessions.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.MachinerySessionView{}
	}
	for i := range rows {
		rows[i].PayHours = rows[i].BillableHours()
	}
	return &model.Page[model.MachinerySessionView]{Items: rows, Total: total, Page: page.Page, Size: page.Size}, nil
}

func ensureNoOpenSession(ctx context.Context, sessions *repository.SessionRepository, session *model.MachinerySession) error {
	busy, err := sessions.OpenExists(ctx, operatorColumn, session.OperatorID, session.ID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: operator %d already has an open session", ErrConflict, session.OperatorID)
	}
	busy, err = sessions.OpenExists(ctx, machineryColumn, session.MachineryID, session.ID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: machinery %d already has an open session", ErrConflict, session.MachineryID)
	}
	return nil
}

func applySessionPatch(session *model.MachinerySession, patch SessionPatch) {
	if patch.OperatorID != nil {
		session.OperatorID = *patch.OperatorID
	}
	if patch.MachineryID != nil {
		session.MachineryID = *patch.MachineryID
	}
	if patch.BuyerID != nil {
		session.BuyerID = patch.BuyerID
	}
	if patch.StartAt != nil {
		session.StartAt = *patch.StartAt
		session.WorkDate = model.DateOf(*patch.StartAt)
	}
	if patch.EndAt != nil {
		endAt := *patch.EndAt
		session.EndAt = &endAt
	}
	if patch.HourlyRate != nil {
		session.HourlyRate = decimal.NewNullDecimal(*patch.HourlyRate)
	}
	if patch.Notes != nil {
		session.Notes = patch.Notes
	}
	if patch.FuelLiters != nil {
		session.FuelLiters = decimal.NewNullDecimal(*patch.FuelLiters)
	}
}

func sessionSnapshot(session *model.MachinerySession) model.Snapshot {
	snapshot := model.Snapshot{
		"work_date":    session.WorkDate.String(),
		"operator_id":  session.OperatorID,
		"machinery_id": session.MachineryID,
		"buyer_id":     session.BuyerID,
		"start_at":     session.StartAt.Format(time.RFC3339),
		"end_at":       nil,
		"hourly_rate":  nullDecimalString(session.HourlyRate),
		"notes":        session.Notes,
		"fuel_liters":  nullDecimalString(session.FuelLiters),
		"status":       string(session.Status),
	}
	if session.EndAt != nil {
		snapshot["end_at"] = session.EndAt.Format(time.RFC3339)
	}
	return snapshot
}
