package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type ActRepository struct {
	db *gorm.DB
}

func NewActRepository(db *gorm.DB) *ActRepository {
	return &ActRepository{db: db}
}

func (r *ActRepository) WithTx(tx *gorm.DB) *ActRepository {
	if tx == nil {
		return r
	}
	return &ActRepository{db: tx}
}

const actViewSelect = `
	SELECT
		a.*,
		COALESCE(b.name, '') AS buyer_name
	FROM delivery_acts a
	LEFT JOIN buyers b ON b.id = a.buyer_id
`

func (r *ActRepository) CreateAct(ctx context.Context, act *model.DeliveryAct) error {
	return r.db.WithContext(ctx).Create(act).Error
}

// GetActByID возвращает акт с именем покупателя
func (r *ActRepository) GetActByID(ctx context.Context, id int64) (*model.DeliveryActView, error) {
	var act model.DeliveryActView
	err := r.db.WithContext(ctx).Raw(actViewSelect+" WHERE a.id = ? LIMIT 1", id).Scan(&act).Error
	if err != nil {
		return nil, err
	}
	if act.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &act, nil
}

func (r *ActRepository) ListActs(
	ctx context.Context,
	buyerID *int64,
	page model.PageRequest,
) ([]model.DeliveryActView, int64, error) {
	var f filters
	if buyerID != nil {
		f.add("a.buyer_id = ?", *buyerID)
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM delivery_acts a"+f.where(), f.args...).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	query := actViewSelect + f.where() + " ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?"
	args := append(f.args, page.Size, page.Offset())

	var acts []model.DeliveryActView
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&acts).Error; err != nil {
		return nil, 0, err
	}
	return acts, total, nil
}

func (r *ActRepository) DeleteAct(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.DeliveryAct{}, id)
	return result.RowsAffected, result.Error
}
