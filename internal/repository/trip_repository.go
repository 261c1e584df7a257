package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) WithTx(tx *gorm.DB) *TripRepository {
	if tx == nil {
		return r
	}
	return &TripRepository{db: tx}
}

const tripViewSelect = `
	SELECT
		t.*,
		COALESCE(d.full_name, '') AS driver_name,
		COALESCE(v.plate_number, '') AS vehicle_plate,
		COALESCE(c.name, '') AS carrier_name,
		COALESCE(b.name, '') AS buyer_name,
		COALESCE(m.name, '') AS material_name,
		p.name AS place_name
	FROM trip_invoices t
	LEFT JOIN employees d ON d.id = t.driver_id
	LEFT JOIN vehicles v ON v.id = t.vehicle_id
	LEFT JOIN carriers c ON c.id = t.carrier_id
	LEFT JOIN buyers b ON b.id = t.buyer_id
	LEFT JOIN materials m ON m.id = t.material_id
	LEFT JOIN object_places p ON p.id = t.place_id
`

func (r *TripRepository) Get(ctx context.Context, id int64) (*model.TripInvoice, error) {
	var trip model.TripInvoice
	if err := r.db.WithContext(ctx).First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetForUpdate reads the trip holding a row lock until the transaction ends.
func (r *TripRepository) GetForUpdate(ctx context.Context, id int64) (*model.TripInvoice, error) {
	var trip model.TripInvoice
	if err := forUpdate(r.db.WithContext(ctx)).First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip *model.TripInvoice) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *TripRepository) Save(ctx context.Context, trip *model.TripInvoice) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

func (r *TripRepository) UpdateStatus(ctx context.Context, id int64, status model.TripStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.TripInvoice{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *TripRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.TripInvoice{}, id).Error
}

// ActiveKeyExists reports whether a non-void invoice other than excludeID
// already holds (invoice_number, trip_date, vehicle_id).
func (r *TripRepository) ActiveKeyExists(
	ctx context.Context,
	invoiceNumber string,
	tripDate model.Date,
	vehicleID int64,
	excludeID int64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TripInvoice{}).
		Where("invoice_number = ? AND trip_date = ? AND vehicle_id = ? AND status <> ? AND id <> ?",
			invoiceNumber, tripDate, vehicleID, model.TripStatusVoid, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TripRepository) List(
	ctx context.Context,
	filter model.TripFilter,
	page model.PageRequest,
) ([]model.TripInvoiceView, int64, error) {
	var f filters
	if filter.DateFrom != nil {
		f.add("t.trip_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		f.add("t.trip_date <= ?", *filter.DateTo)
	}
	if filter.DriverID != nil {
		f.add("t.driver_id = ?", *filter.DriverID)
	}
	if filter.CarrierID != nil {
		f.add("t.carrier_id = ?", *filter.CarrierID)
	}
	if filter.BuyerID != nil {
		f.add("t.buyer_id = ?", *filter.BuyerID)
	}
	if filter.Status != nil {
		f.add("t.status = ?", *filter.Status)
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM trip_invoices t"+f.where(), f.args...).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	query := tripViewSelect + f.where() + " ORDER BY t.trip_date DESC, t.id DESC LIMIT ? OFFSET ?"
	args := append(f.args, page.Size, page.Offset())

	var rows []model.TripInvoiceView
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *TripRepository) ListByAct(ctx context.Context, actID int64) ([]model.TripInvoiceView, error) {
	var rows []model.TripInvoiceView
	err := r.db.WithContext(ctx).
		Raw(tripViewSelect+" WHERE t.delivery_act_id = ? ORDER BY t.trip_date ASC, t.id ASC", actID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListClaimable locks and returns the buyer's confirmed trips in [from, to]
// that no act has claimed yet.
func (r *TripRepository) ListClaimable(ctx context.Context, buyerID int64, from, to model.Date) ([]model.TripInvoice, error) {
	var trips []model.TripInvoice
	err := forUpdate(r.db.WithContext(ctx)).
		Where("buyer_id = ? AND status = ? AND delivery_act_id IS NULL AND trip_date >= ? AND trip_date <= ?",
			buyerID, model.TripStatusConfirmed, from, to).
		Order("trip_date ASC, id ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// AssignAct links still-unclaimed confirmed trips to the act and returns how many were linked.
func (r *TripRepository) AssignAct(ctx context.Context, actID int64, tripIDs []int64) (int64, error) {
	if len(tripIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.TripInvoice{}).
		Where("id IN ? AND delivery_act_id IS NULL AND status = ?", tripIDs, model.TripStatusConfirmed).
		Update("delivery_act_id", actID)
	return result.RowsAffected, result.Error
}

func (r *TripRepository) UnassignAct(ctx context.Context, actID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TripInvoice{}).
		Where("delivery_act_id = ?", actID).
		Update("delivery_act_id", nil)
	return result.RowsAffected, result.Error
}

// ListByStatusInRange returns trips with status and trip_date in [from, to).
func (r *TripRepository) ListByStatusInRange(
	ctx context.Context,
	status model.TripStatus,
	from, to model.Date,
) ([]model.TripInvoice, error) {
	var trips []model.TripInvoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND trip_date >= ? AND trip_date < ?", status, from, to).
		Order("driver_id ASC, id ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// TransitionInRange moves every trip in [from, to) from one status to another.
func (r *TripRepository) TransitionInRange(
	ctx context.Context,
	from, to model.Date,
	fromStatus, toStatus model.TripStatus,
) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TripInvoice{}).
		Where("status = ? AND trip_date >= ? AND trip_date < ?", fromStatus, from, to).
		Update("status", toStatus)
	return result.RowsAffected, result.Error
}
