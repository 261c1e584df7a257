package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	if tx == nil {
		return r
	}
	return &SessionRepository{db: tx}
}

const sessionViewSelect = `
	SELECT
		s.*,
		COALESCE(o.full_name, '') AS operator_name,
		COALESCE(mc.name, '') AS machinery_name,
		b.name AS buyer_name
	FROM machinery_sessions s
	LEFT JOIN employees o ON o.id = s.operator_id
	LEFT JOIN machinery mc ON mc.id = s.machinery_id
	LEFT JOIN buyers b ON b.id = s.buyer_id
`

func (r *SessionRepository) Get(ctx context.Context, id int64) (*model.MachinerySession, error) {
	var session model.MachinerySession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetForUpdate(ctx context.Context, id int64) (*model.MachinerySession, error) {
	var session model.MachinerySession
	if err := forUpdate(r.db.WithContext(ctx)).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *model.MachinerySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) Save(ctx context.Context, session *model.MachinerySession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.MachinerySession{}, id).Error
}

// OpenExists reports whether column (operator_id or machinery_id) already has an
// open session other than excludeID.
func (r *SessionRepository) OpenExists(ctx context.Context, column string, value int64, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MachinerySession{}).
		Where(column+" = ? AND status = ? AND id <> ?", value, model.SessionStatusOpen, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter model.SessionFilter,
	page model.PageRequest,
) ([]model.MachinerySessionView, int64, error) {
	var f filters
	if filter.OnlyOpen {
		f.add("s.status = ?", model.SessionStatusOpen)
	} else if filter.Status != nil {
		f.add("s.status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		f.add("s.work_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		f.add("s.work_date <= ?", *filter.DateTo)
	}
	if filter.OperatorID != nil {
		f.add("s.operator_id = ?", *filter.OperatorID)
	}
	if filter.MachineryID != nil {
		f.add("s.machinery_id = ?", *filter.MachineryID)
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM machinery_sessions s"+f.where(), f.args...).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	query := sessionViewSelect + f.where() + " ORDER BY s.work_date DESC, s.id DESC LIMIT ? OFFSET ?"
	args := append(f.args, page.Size, page.Offset())

	var rows []model.MachinerySessionView
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByStatusInRange returns sessions with status and work_date in [from, to).
func (r *SessionRepository) ListByStatusInRange(
	ctx context.Context,
	status model.SessionStatus,
	from, to model.Date,
) ([]model.MachinerySession, error) {
	var sessions []model.MachinerySession
	err := r.db.WithContext(ctx).
		Where("status = ? AND work_date >= ? AND work_date < ?", status, from, to).
		Order("operator_id ASC, id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) TransitionInRange(
	ctx context.Context,
	from, to model.Date,
	fromStatus, toStatus model.SessionStatus,
) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.MachinerySession{}).
		Where("status = ? AND work_date >= ? AND work_date < ?", fromStatus, from, to).
		Update("status", toStatus)
	return result.RowsAffected, result.Error
}
