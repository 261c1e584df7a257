package audit

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

// Entry describes one privileged mutation.
type Entry struct {
	ActorID    int64
	Action     string
	EntityType string
	EntityID   int64
	OldData    model.Snapshot
	NewData    model.Snapshot
}

// Trail is the append-only audit log. Entries are appended inside the
// mutation's transaction rather than after commit: WithTx binds appends to the
// caller's unit of work, so a failed append rolls the mutation back.
type Trail interface {
	WithTx(tx *gorm.DB) Trail
	Append(ctx context.Context, entry Entry) error
}

type GormTrail struct {
	db *gorm.DB
}

func NewGormTrail(db *gorm.DB) *GormTrail {
	return &GormTrail{db: db}
}

func (t *GormTrail) WithTx(tx *gorm.DB) Trail {
	if tx == nil {
		return t
	}
	return &GormTrail{db: tx}
}

func (t *GormTrail) Append(ctx context.Context, entry Entry) error {
	record := model.AuditLog{
		UserID:     entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldData:    entry.OldData,
		NewData:    entry.NewData,
	}
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("append audit %s %s#%d: %w", entry.Action, entry.EntityType, entry.EntityID, err)
	}
	return nil
}

// List returns the entries recorded for one entity, oldest first.
func (t *GormTrail) List(ctx context.Context, entityType string, entityID int64) ([]model.AuditLog, error) {
	var rows []model.AuditLog
	err := t.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MemoryTrail keeps entries in process. Fail, when set, is returned by Append.
type MemoryTrail struct {
	mu      sync.Mutex
	entries []Entry
	Fail    error
}

func NewMemoryTrail() *MemoryTrail {
	return &MemoryTrail{}
}

func (t *MemoryTrail) WithTx(*gorm.DB) Trail {
	return t
}

func (t *MemoryTrail) Append(_ context.Context, entry Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Fail != nil {
		return t.Fail
	}
	t.entries = append(t.entries, entry)
	return nil
}

func (t *MemoryTrail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
